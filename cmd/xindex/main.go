// Package main provides the entry point for the xindex CLI tool.
package main

import (
	"fmt"
	"os"

	"go.uber.org/automaxprocs/maxprocs"

	"github.com/benz9527/xindex/cmd/xindex/commands"
)

func main() {
	// Respect the container CPU quota before any pool is sized.
	if _, err := maxprocs.Set(maxprocs.Logger(func(string, ...any) {})); err != nil {
		fmt.Fprintf(os.Stderr, "Warn: %v\n", err)
	}

	if err := commands.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
