package main

import (
	"errors"
	"os"

	"github.com/agentsync-dev/agentsync/cmd/agentsync/commands"
)

func main() {
	rootCmd := commands.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, commands.ErrConflictsPresent) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
