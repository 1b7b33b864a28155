package main

import (
	"os"

	"github.com/rustyeddy/quantbot/cmd/quantbot/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
