package main

import (
	"fmt"

	"github.com/spf13/cobra"

	appMigrations "github.com/yigit/edutech/internal/app/migrations"
	"github.com/yigit/edutech/internal/bootstrap"
)

// newMigrateCmd creates the migrate subcommand and its up/down/reset/version children.
func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(func(m *appMigrations.Migrator) error {
				if err := m.Up(); err != nil {
					return err
				}
				cmd.Println("Migrations completed successfully")
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(func(m *appMigrations.Migrator) error {
				if err := m.Down(); err != nil {
					return err
				}
				cmd.Println("Rolled back one migration")
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Roll back every migration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(func(m *appMigrations.Migrator) error {
				if err := m.Reset(); err != nil {
					return err
				}
				cmd.Println("All migrations rolled back")
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the applied migration version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(func(m *appMigrations.Migrator) error {
				version, dirty, err := m.Version()
				if err != nil {
					return err
				}
				cmd.Printf("version=%d dirty=%t\n", version, dirty)
				return nil
			})
		},
	})

	return cmd
}

func withMigrator(fn func(*appMigrations.Migrator) error) error {
	cfg, _, err := bootstrap.LoadConfigAndSetupLogger(configFile)
	if err != nil {
		return err
	}

	migrator, err := appMigrations.NewMigrator(cfg.GetPostgresConnectionString())
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}
	defer migrator.Close()

	return fn(migrator)
}
