// Package main provides the gaiac CLI.
package main

import (
	"os"

	"github.com/leapstack-labs/gaiac/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
