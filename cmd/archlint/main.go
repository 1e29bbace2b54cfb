// Package main is the archlint command.
package main

import (
	"os"

	"github.com/leapstack-labs/archlint/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
