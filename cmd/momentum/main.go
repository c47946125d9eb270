package main

import (
	"os"

	"github.com/quantmill/momentum/cmd/momentum/commands"
)

// main is the entry point for the momentum CLI
// ⭐ SSOT: go run ./cmd/momentum [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
