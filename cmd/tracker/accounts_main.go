package main

import (
	"fmt"

	"github.com/go-fireball/portfolio-tracker/config"
	"github.com/go-fireball/portfolio-tracker/data"
	pgRepository "github.com/go-fireball/portfolio-tracker/data/repository/postgres"
	"github.com/go-fireball/portfolio-tracker/internal/service/portfolioService"
	"github.com/go-fireball/portfolio-tracker/utils"
	"github.com/spf13/cobra"
)

func newAccountsCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Account management",
	}

	var (
		name          string
		accountNumber string
		broker        string
	)

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new account",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := utils.CreateCtxWithRqID(cmd.Context())

			db := data.NewPostgresClient(cfg)
			defer db.Close()

			repo := pgRepository.NewPostgres(cfg, db)
			srv := portfolioService.New(cfg, repo, nil, nil, nil, nil)

			accountID, err := srv.CreateAccount(ctx, name, accountNumber, broker)
			if err != nil {
				return err
			}

			fmt.Printf("Account %d created.\n", accountID)
			return nil
		},
	}

	createCmd.Flags().StringVar(&name, "name", "", "User friendly account name")
	createCmd.Flags().StringVar(&accountNumber, "number", "", "Broker account number")
	createCmd.Flags().StringVar(&broker, "broker", "", "Broker name")
	_ = createCmd.MarkFlagRequired("number")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := utils.CreateCtxWithRqID(cmd.Context())

			db := data.NewPostgresClient(cfg)
			defer db.Close()

			repo := pgRepository.NewPostgres(cfg, db)
			srv := portfolioService.New(cfg, repo, nil, nil, nil, nil)

			accounts, err := srv.ListAccounts(ctx)
			if err != nil {
				return err
			}

			for _, account := range accounts {
				fmt.Printf("%d\t%s\t%s\t%s\n", account.AccountID, account.AccountNumber, account.FriendlyName, account.BrokerName)
			}
			return nil
		},
	}

	cmd.AddCommand(createCmd, listCmd)

	return cmd
}
