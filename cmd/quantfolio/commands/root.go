package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "quantfolio",
	Short: "Portfolio construction and risk simulation engine",
	Long: `Quantfolio CLI

Builds random-sampling efficient frontiers over a user-defined asset
universe and forward-simulates selected portfolios with Monte Carlo.

Usage:
  go run ./cmd/quantfolio [command]

Examples:
  go run ./cmd/quantfolio api
  go run ./cmd/quantfolio optimize --assets "SPY:12:25,AGG:8:10"
  go run ./cmd/quantfolio simulate --return 9 --risk 15 --years 20`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
