// Package main provides the entry point for the editorial desk CLI.
package main

import (
	"os"

	"github.com/inkwellpress/editorial-desk/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
