package cmd

import (
	"database/sql"
	"fmt"

	"github.com/frameweavers/showreel/internal/config"
	"github.com/frameweavers/showreel/internal/db"
	"github.com/frameweavers/showreel/internal/logger"
	"github.com/spf13/cobra"
)

func MigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return migrate(db.RunMigrations)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the latest migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return migrate(db.MigrateDown)
		},
	})

	return cmd
}

func migrate(run func(*sql.DB, string) error) error {
	cfg := config.Load()
	logger.Init(logger.Options{AppName: cfg.AppName, AppEnv: cfg.AppEnv})

	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close(database) }()

	err = run(database.DB, cfg.DBDriver)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}
