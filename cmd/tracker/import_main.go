package main

import (
	"fmt"
	"os"

	"github.com/go-fireball/portfolio-tracker/config"
	"github.com/go-fireball/portfolio-tracker/data"
	pgRepository "github.com/go-fireball/portfolio-tracker/data/repository/postgres"
	"github.com/go-fireball/portfolio-tracker/internal/csvimport"
	"github.com/go-fireball/portfolio-tracker/internal/service/portfolioService"
	"github.com/go-fireball/portfolio-tracker/utils"
	"github.com/spf13/cobra"
)

func newImportCsvCmd(cfg *config.Config) *cobra.Command {
	var (
		accountID int64
		broker    string
		format    string
		file      string
	)

	cmd := &cobra.Command{
		Use:   "import-csv",
		Short: "Import transactions from a broker CSV export",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := utils.CreateCtxWithRqID(cmd.Context())

			parser, err := csvimport.NewParser(broker, format)
			if err != nil {
				return err
			}

			f, err := os.Open(file)
			if err != nil {
				return fmt.Errorf("open csv file: %w", err)
			}
			defer f.Close()

			parsed, err := parser.Parse(ctx, f)
			if err != nil {
				return fmt.Errorf("parse csv file: %w", err)
			}

			fmt.Printf("Parser returned %d potential transactions.\n", len(parsed))

			if len(parsed) == 0 {
				fmt.Println("No transactions were parsed from the file.")
				return nil
			}

			db := data.NewPostgresClient(cfg)
			defer db.Close()

			repo := pgRepository.NewPostgres(cfg, db)
			srv := portfolioService.New(cfg, repo, nil, nil, nil, nil)

			result, err := srv.ImportTransactions(ctx, accountID, parsed)
			if err != nil {
				return err
			}

			if result.Imported > 0 {
				fmt.Printf("Successfully imported %d transactions into account %d.\n", result.Imported, accountID)
			} else {
				fmt.Println("No new transactions were imported.")
			}
			if result.Skipped > 0 {
				fmt.Printf("Skipped %d transactions due to missing data.\n", result.Skipped)
			}

			return nil
		},
	}

	cmd.Flags().Int64Var(&accountID, "account-id", 0, "ID of the account to associate transactions with")
	cmd.Flags().StringVar(&broker, "broker", "", "Broker name (e.g. 'schwab')")
	cmd.Flags().StringVar(&format, "format", "", "File format name (e.g. 'transactions_v1')")
	cmd.Flags().StringVar(&file, "file", "", "Path to the CSV file")
	_ = cmd.MarkFlagRequired("account-id")
	_ = cmd.MarkFlagRequired("broker")
	_ = cmd.MarkFlagRequired("format")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}
