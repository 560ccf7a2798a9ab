package main

import (
	"fmt"

	"github.com/Dan9191/fee-reminder/internal/database"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the Postgres schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			db, err := database.Open(cmd.Context(), cfg.DBConn)
			if err != nil {
				return err
			}
			defer db.Close()
			return database.MigrateUp(db, logger)
		},
	})

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			db, err := database.Open(cmd.Context(), cfg.DBConn)
			if err != nil {
				return err
			}
			defer db.Close()
			return database.MigrateDown(db, steps, logger)
		},
	}
	down.Flags().IntVarP(&steps, "steps", "n", 1, "Number of migrations to roll back")
	cmd.AddCommand(down)

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Print the applied schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := setup()
			if err != nil {
				return err
			}
			db, err := database.Open(cmd.Context(), cfg.DBConn)
			if err != nil {
				return err
			}
			defer db.Close()

			version, dirty, err := database.MigrateStatus(db)
			if err != nil {
				return err
			}
			fmt.Printf("version: %d, dirty: %t\n", version, dirty)
			return nil
		},
	})
	return cmd
}
