package main

import (
	"os"

	"github.com/akenfack/creditrisk/cmd/riskd/commands"
)

// main is the entry point for the riskd CLI
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
