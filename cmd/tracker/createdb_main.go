package main

import (
	"fmt"

	"github.com/go-fireball/portfolio-tracker/config"
	"github.com/go-fireball/portfolio-tracker/data"
	"github.com/spf13/cobra"
)

func newCreateDbCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "create-db",
		Short: "Create database tables by applying all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			db := data.NewPostgresClient(cfg)
			defer db.Close()

			if err := data.MigratePostgres(db, cfg.Postgres.MigrationDir); err != nil {
				return err
			}

			fmt.Println("Database tables created successfully.")
			return nil
		},
	}
}
