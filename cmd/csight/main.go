// Package main provides the entry point for the csight CLI.
package main

import (
	"os"

	"github.com/csight/csight/cmd/csight/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
