package main

import (
	"os"

	"github.com/ecstasoy/msgbus/cmd/msgbus/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
