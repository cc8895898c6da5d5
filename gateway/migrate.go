package main

import (
	"github.com/RigelNana/arktutor/pkg/config"

	"github.com/samber/oops"
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long:  `Create or update every table, then exit.`,
		RunE:  runMigrate,
	}
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return oops.Code("CONFIG_INVALID").With("operation", "load config").Wrap(err)
	}
	logger := newLogger(cfg.Log)

	db, err := openDatabase(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer closeDatabase(db, logger)

	logger.Info("migrations completed successfully")
	return nil
}
