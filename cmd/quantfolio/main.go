package main

import (
	"os"

	"github.com/jisoo/quantfolio/cmd/quantfolio/commands"
)

// main is the entry point for the quantfolio CLI.
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
