// Package main is the entry point for ledgerctl.
package main

import (
	"os"

	"pgcledger/internal/cli"
)

func main() {
	if err := cli.NewRootCommand(cli.DefaultEnv()).Execute(); err != nil {
		os.Exit(1)
	}
}
