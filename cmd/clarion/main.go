package main

import (
	"github.com/spf13/cobra"

	"clarion/internal/interfaces/cli/seed"
	"clarion/internal/interfaces/cli/server"
	"clarion/internal/shared/logger"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "clarion",
		Short: "Clarion - EHS operations console backend",
		Long:  `Clarion is the backend of the EHS operations console: the role and permission matrix engine plus its REST API.`,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		seed.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		logger.Fatal("command failed", "error", err)
	}
}
