package main

import (
	"os"

	"github.com/tcfw/mastersched/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
