package main

import (
	"os"

	"github.com/civickit/civickit/cmd/civickit/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
