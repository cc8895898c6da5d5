package main

import (
	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var envFile string

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "arktutor",
		Short: "arktutor - tutoring platform API",
		Long: `arktutor serves registration, authentication and the study records
(grades, study sessions, LLM chat) shared by students and teachers.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "optional dotenv file loaded before the environment")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newMigrateCmd())
	return cmd
}
