// Package main is the entry point for the posgate CLI binary.
package main

import (
	"os"

	"posgate/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}
