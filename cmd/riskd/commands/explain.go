package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// explainCmd prints attribution for one client or the whole population
var explainCmd = &cobra.Command{
	Use:   "explain [client-id]",
	Short: "Explain a decision feature by feature",
	Long: `Prints per-feature attribution for one client's decision, or ranked
population-level importance with --global.

Example:
  go run ./cmd/riskd explain 369780
  go run ./cmd/riskd explain --global
  go run ./cmd/riskd explain --global --sample-size 200 --seed 7`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExplain,
}

var (
	explainGlobal     bool
	explainSampleSize int
	explainSeed       int64
)

func init() {
	rootCmd.AddCommand(explainCmd)

	explainCmd.Flags().BoolVar(&explainGlobal, "global", false, "rank features over a population subsample")
	explainCmd.Flags().IntVar(&explainSampleSize, "sample-size", 0, "subsample size for --global (0 uses the configured default)")
	explainCmd.Flags().Int64Var(&explainSeed, "seed", 0, "sampling seed for --global (defaults to the configured seed)")
}

func runExplain(cmd *cobra.Command, args []string) error {
	if !explainGlobal && len(args) == 0 {
		return fmt.Errorf("provide a client id or --global")
	}

	eng, _, err := bootstrapEngine()
	if err != nil {
		return err
	}

	if explainGlobal {
		seed := eng.GlobalExplainSeed()
		if cmd.Flags().Changed("seed") {
			seed = explainSeed
		}
		result, err := eng.GetGlobalExplanation(explainSampleSize, seed)
		if err != nil {
			return err
		}
		return printJSON(result)
	}

	clientID, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid client id %q", args[0])
	}

	result, err := eng.GetLocalExplanation(clientID)
	if err != nil {
		return err
	}
	return printJSON(result)
}
