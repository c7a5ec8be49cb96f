package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jisoo/quantfolio/internal/engine"
	"github.com/jisoo/quantfolio/internal/frontier"
	"github.com/jisoo/quantfolio/internal/montecarlo"
	"github.com/jisoo/quantfolio/pkg/config"
	"github.com/jisoo/quantfolio/pkg/logger"
)

// simulateCmd represents the simulate command
var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Monte Carlo forward simulation of a portfolio",
	Long: `Forward-simulates a portfolio's value over time and prints the
percentile bands and outcome statistics as JSON.

Return and risk are annual percent figures, typically taken from a
frontier point produced by the optimize command.

Example:
  go run ./cmd/quantfolio simulate --return 9 --risk 15 --initial 100000 --years 20
  go run ./cmd/quantfolio simulate --return 9 --risk 15 --sims 5000 --seed 42`,
	RunE: runSimulate,
}

var (
	simReturn  float64
	simRisk    float64
	simInitial float64
	simYears   int
	simCount   int
	simSeed    int64
)

func init() {
	rootCmd.AddCommand(simulateCmd)

	simulateCmd.Flags().Float64Var(&simReturn, "return", 0, "expected annual return in percent (required)")
	simulateCmd.Flags().Float64Var(&simRisk, "risk", 0, "annual volatility in percent (required)")
	simulateCmd.Flags().Float64Var(&simInitial, "initial", 100000, "initial investment")
	simulateCmd.Flags().IntVar(&simYears, "years", 20, "simulation horizon in years")
	simulateCmd.Flags().IntVar(&simCount, "sims", montecarlo.DefaultSimulations, "number of simulated paths")
	simulateCmd.Flags().Int64Var(&simSeed, "seed", 0, "random seed (0 = time-based)")
	simulateCmd.MarkFlagRequired("return")
	simulateCmd.MarkFlagRequired("risk")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg)

	simCfg := montecarlo.DefaultConfig()
	simCfg.NumSimulations = simCount
	simCfg.Years = simYears
	simCfg.InitialInvestment = simInitial
	simCfg.Seed = simSeed

	point := frontier.Point{Return: simReturn, Risk: simRisk}

	result, err := engine.New(cfg.Engine, nil, log).Simulate(cmd.Context(), point, simCfg)
	if err != nil {
		return fmt.Errorf("simulate: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
