package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/tiffin/config"
	"github.com/shashiranjanraj/tiffin/database/seeders"
	"github.com/shashiranjanraj/tiffin/pkg/database"
	"github.com/shashiranjanraj/tiffin/pkg/migration"
)

// bootDB loads config and opens the database; the migration commands need
// nothing else.
func bootDB() error {
	if err := config.Load(); err != nil {
		return err
	}
	return database.Connect()
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run all pending database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := bootDB(); err != nil {
				return err
			}
			applied, err := migration.New(database.DB).Run(context.Background())
			for _, name := range applied {
				fmt.Fprintln(cmd.OutOrStdout(), "  migrated:", name)
			}
			if err == nil && len(applied) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing to migrate.")
			}
			return err
		},
	}
}

func migrateRollbackCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate:rollback",
		Short: "Roll back the last batch of migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := bootDB(); err != nil {
				return err
			}
			reverted, err := migration.New(database.DB).Rollback(context.Background())
			for _, name := range reverted {
				fmt.Fprintln(cmd.OutOrStdout(), "  rolled back:", name)
			}
			if err == nil && len(reverted) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing to roll back.")
			}
			return err
		},
	}
}

func migrateStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate:status",
		Short: "Show the status of each migration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := bootDB(); err != nil {
				return err
			}
			statuses, err := migration.New(database.DB).Status(context.Background())
			if err != nil {
				return err
			}
			for _, s := range statuses {
				state := "pending"
				if s.Ran {
					state = fmt.Sprintf("ran (batch %d)", s.Batch)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "  %-60s %s\n", s.Name, state)
			}
			return nil
		},
	}
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load demo food makers, menu items and addresses",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := bootDB(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Running seeders…")
			return seeders.RunAll(cmd.Context(), database.DB, cmd.OutOrStdout())
		},
	}
}
