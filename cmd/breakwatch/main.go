package main

import (
	"os"

	"github.com/wonny/breakwatch/cmd/breakwatch/commands"
)

// main is the entry point for the breakwatch CLI
// ⭐ single CLI entry point: go run ./cmd/breakwatch [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
