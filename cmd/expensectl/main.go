// Package main is the entry point for the expensectl CLI binary.
package main

import (
	"os"

	"github.com/mmynk/expensecmd/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
