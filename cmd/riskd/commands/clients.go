package commands

import (
	"github.com/spf13/cobra"
)

// clientsCmd lists the scored population
var clientsCmd = &cobra.Command{
	Use:   "clients",
	Short: "List client identifiers in the scoring snapshot",
	Long: `Prints every client identifier in snapshot order, or a reproducible
sample of full records with --sample.

Example:
  go run ./cmd/riskd clients
  go run ./cmd/riskd clients --sample --n 20 --seed 42`,
	RunE: runClients,
}

var (
	clientsSample bool
	clientsN      int
	clientsSeed   int64
)

func init() {
	rootCmd.AddCommand(clientsCmd)

	clientsCmd.Flags().BoolVar(&clientsSample, "sample", false, "print a seeded sample of full records")
	clientsCmd.Flags().IntVar(&clientsN, "n", 10, "sample size for --sample")
	clientsCmd.Flags().Int64Var(&clientsSeed, "seed", 42, "sampling seed for --sample")
}

func runClients(cmd *cobra.Command, args []string) error {
	eng, _, err := bootstrapEngine()
	if err != nil {
		return err
	}

	if clientsSample {
		records, err := eng.SampleClients(clientsN, clientsSeed)
		if err != nil {
			return err
		}
		return printJSON(records)
	}
	return printJSON(eng.ListClientIDs())
}
