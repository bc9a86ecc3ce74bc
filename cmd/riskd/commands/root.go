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
	Use:   "riskd",
	Short: "Credit-risk decision service",
	Long: `riskd - credit-risk decision service

Scores client solvency with a pretrained tree-ensemble model, explains
every decision feature by feature, finds comparable clients, and monitors
the live population for statistical drift.

Usage:
  go run ./cmd/riskd [command]

Examples:
  go run ./cmd/riskd serve
  go run ./cmd/riskd predict 369780
  go run ./cmd/riskd explain 369780
  go run ./cmd/riskd drift`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
