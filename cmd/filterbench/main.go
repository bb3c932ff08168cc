package main

import (
	"os"

	"github.com/nvr-ai/go-filterbench/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
