package main

import (
	"os"

	"github.com/chris-regnier/daybook/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(cmd.ExitCode(err))
	}
}
