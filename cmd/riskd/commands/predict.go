package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/akenfack/creditrisk/internal/engine"
	"github.com/akenfack/creditrisk/pkg/config"
	"github.com/akenfack/creditrisk/pkg/logger"
)

// predictCmd scores one client from the command line
var predictCmd = &cobra.Command{
	Use:   "predict <client-id>",
	Short: "Score one client's solvency",
	Long: `Scores one client with the pretrained model and prints the decision.

The probability is the solvent-class probability rounded to two decimals.

Example:
  go run ./cmd/riskd predict 369780`,
	Args: cobra.ExactArgs(1),
	RunE: runPredict,
}

func init() {
	rootCmd.AddCommand(predictCmd)
}

// bootstrapEngine builds the engine for one-shot CLI commands.
func bootstrapEngine() (*engine.Engine, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	log := logger.New(cfg)

	eng, err := engine.Bootstrap(cfg, log)
	if err != nil {
		return nil, nil, fmt.Errorf("bootstrap engine: %w", err)
	}
	return eng, log, nil
}

// printJSON writes a result to stdout as indented JSON.
func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runPredict(cmd *cobra.Command, args []string) error {
	clientID, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid client id %q", args[0])
	}

	eng, _, err := bootstrapEngine()
	if err != nil {
		return err
	}

	prediction, err := eng.GetPrediction(clientID)
	if err != nil {
		return err
	}
	return printJSON(prediction)
}
