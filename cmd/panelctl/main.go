package main

import (
	"os"

	"github.com/GriffinCanCode/panelfs/backend/cmd/panelctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		commands.PrintErr(err)
		os.Exit(1)
	}
}
