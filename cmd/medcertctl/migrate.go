package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bossygit/digital-medical-certificate-system/internal/platform/postgres"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back schema migrations.",
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply every pending migration.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			db, err := openDatabase(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()
			if err := postgres.RunMigrations(db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migrations.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if steps < 1 {
				return fmt.Errorf("--steps must be at least 1")
			}
			cmd.SilenceUsage = true
			db, err := openDatabase(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()
			if err := postgres.RollbackMigrations(db, steps); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "rolled back %d migration(s)\n", steps)
			return nil
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")

	cmd.AddCommand(up, down)
	return cmd
}
