// Package main provides the kmviz binary.
//
// Usage:
//
//	kmviz [flags] <command> [args]
//
// Commands:
//
//	serve    - HTTP API for step-wise k-means sessions
//	run      - cluster a data set in the terminal, one frame per step
package main

import (
	"fmt"
	"os"

	"kmviz/cmd/service/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
