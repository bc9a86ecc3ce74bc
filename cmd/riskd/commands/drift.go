package commands

import (
	"github.com/spf13/cobra"
)

// driftCmd runs the drift analysis once and prints the report
var driftCmd = &cobra.Command{
	Use:   "drift",
	Short: "Compare the live population against the training reference",
	Long: `Runs the per-column drift tests once and prints the report.

Numeric columns use the two-sample Kolmogorov-Smirnov test, low-cardinality
columns the chi-squared homogeneity test. The score of every column is the
test p-value.

Example:
  go run ./cmd/riskd drift`,
	RunE: runDrift,
}

func init() {
	rootCmd.AddCommand(driftCmd)
}

func runDrift(cmd *cobra.Command, args []string) error {
	eng, _, err := bootstrapEngine()
	if err != nil {
		return err
	}

	report, err := eng.RunDriftReport()
	if err != nil {
		return err
	}
	return printJSON(report)
}
