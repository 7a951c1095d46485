// Package main is the graphprep command.
package main

import (
	"os"

	"github.com/leapstack-labs/graphprep/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
