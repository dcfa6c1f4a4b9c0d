// Package main provides the dbmitra command.
package main

import (
	"os"

	"github.com/leapstack-labs/dbmitra/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
