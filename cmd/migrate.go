package main

import (
	"fmt"
	"os"

	"github.com/shenikar/incident_reporting_api/migrations"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all up migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig(os.Stderr)
		if err != nil {
			return err
		}
		if err := migrations.Up(cfg.DatabaseURL); err != nil {
			return err
		}
		log.Info("Database migrations applied successfully")
		return nil
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the last migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		steps, err := cmd.Flags().GetInt("steps")
		if err != nil {
			return err
		}
		cfg, log, err := loadConfig(os.Stderr)
		if err != nil {
			return err
		}
		if err := migrations.Down(cfg.DatabaseURL, steps); err != nil {
			return err
		}
		log.WithField("steps", steps).Info("Database migrations rolled back")
		return nil
	},
}

var migrateVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the current schema version",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig(os.Stderr)
		if err != nil {
			return err
		}
		version, dirty, err := migrations.Version(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		if dirty {
			fmt.Fprintf(cmd.OutOrStdout(), "%d (dirty)\n", version)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), version)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateVersionCmd)
	migrateDownCmd.Flags().Int("steps", 1, "number of migrations to roll back")
}
