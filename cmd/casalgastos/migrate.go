package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"casalgastos/internal/backend"
	"casalgastos/internal/config"
	"casalgastos/internal/postgres"
	"casalgastos/internal/storage"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back the database schema",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return runMigrate(false)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back every migration",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return runMigrate(true)
		},
	})
	return cmd
}

func runMigrate(down bool) error {
	bcfg, err := backend.FromAppConfig(config.Load())
	if err != nil {
		return err
	}
	if err := bcfg.Validate(); err != nil {
		return err
	}

	switch bcfg.Type {
	case backend.SQLiteBackend:
		err = storage.Migrate(bcfg.SQLiteDBPath, down)
	case backend.PostgresBackend:
		err = postgres.Migrate(bcfg.DatabaseURL, down)
	default:
		return fmt.Errorf("backend %s has no schema", bcfg.Type)
	}
	if err != nil {
		return err
	}
	logger.Info("Migrations applied", "backend", bcfg.Type.String(), "down", down)
	return nil
}
