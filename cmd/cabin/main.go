package main

import (
	"os"

	"github.com/cabinpkg/cabin/cmd/cabin/internal"
	"github.com/cabinpkg/cabin/internal/diag"
)

func main() {
	if err := internal.Execute(); err != nil {
		diag.PrintErrorChain(err)
		os.Exit(1)
	}
}
