package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jisoo/quantfolio/internal/engine"
	"github.com/jisoo/quantfolio/internal/model"
	"github.com/jisoo/quantfolio/pkg/config"
	"github.com/jisoo/quantfolio/pkg/logger"
)

// optimizeCmd represents the optimize command
var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Compute an efficient frontier for a set of assets",
	Long: `Computes the efficient frontier by random portfolio sampling and
prints the frontier plus the selected portfolios as JSON.

Assets are given as SYMBOL:RETURN:VOLATILITY triples (percent units),
comma separated. Pairwise correlations default to the configured value.

Example:
  go run ./cmd/quantfolio optimize --assets "SPY:12:25,AGG:8:10,GLD:6:18"
  go run ./cmd/quantfolio optimize --assets "SPY:12:25,AGG:8:10" --tolerance 75 --risk-free 4`,
	RunE: runOptimize,
}

var (
	optimizeAssets    string
	optimizeTolerance float64
	optimizeRiskFree  float64
)

func init() {
	rootCmd.AddCommand(optimizeCmd)

	optimizeCmd.Flags().StringVar(&optimizeAssets, "assets", "", "assets as SYMBOL:RETURN:VOL, comma separated (required)")
	optimizeCmd.Flags().Float64Var(&optimizeTolerance, "tolerance", 50, "risk tolerance 0-100")
	optimizeCmd.Flags().Float64Var(&optimizeRiskFree, "risk-free", 3, "risk-free rate in percent")
	optimizeCmd.MarkFlagRequired("assets")
}

func runOptimize(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg)

	universe := model.NewUniverse(cfg.Engine.DefaultCorrelation)
	for _, spec := range strings.Split(optimizeAssets, ",") {
		symbol, ret, vol, err := parseAssetSpec(spec)
		if err != nil {
			return err
		}
		if err := universe.AddAsset(symbol, ret, vol); err != nil {
			return fmt.Errorf("add asset %q: %w", symbol, err)
		}
	}

	snap := universe.Snapshot()
	result, err := engine.New(cfg.Engine, nil, log).Optimize(cmd.Context(), engine.OptimizeInput{
		Assets:        snap.Assets,
		Correlations:  snap.Correlations,
		RiskFreeRate:  optimizeRiskFree,
		RiskTolerance: optimizeTolerance,
	})
	if err != nil {
		return fmt.Errorf("optimize: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// parseAssetSpec parses one SYMBOL:RETURN:VOL triple.
func parseAssetSpec(spec string) (string, float64, float64, error) {
	parts := strings.Split(strings.TrimSpace(spec), ":")
	if len(parts) != 3 {
		return "", 0, 0, fmt.Errorf("invalid asset spec %q, want SYMBOL:RETURN:VOL", spec)
	}
	ret, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return "", 0, 0, fmt.Errorf("invalid expected return in %q: %w", spec, err)
	}
	vol, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return "", 0, 0, fmt.Errorf("invalid volatility in %q: %w", spec, err)
	}
	return parts[0], ret, vol, nil
}
