// Package main is the entry point for the field-visits CLI and server.
package main

import (
	"fmt"
	"os"

	"github.com/evcraddock/field-visits/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
