package main

import (
	"fmt"

	"github.com/go-fireball/portfolio-tracker/config"
	"github.com/go-fireball/portfolio-tracker/data"
	"github.com/go-fireball/portfolio-tracker/data/cache"
	pgRepository "github.com/go-fireball/portfolio-tracker/data/repository/postgres"
	"github.com/go-fireball/portfolio-tracker/internal/externalApi/quotesApi"
	"github.com/go-fireball/portfolio-tracker/internal/service/portfolioService"
	"github.com/go-fireball/portfolio-tracker/utils"
	"github.com/spf13/cobra"
)

func newPositionsCmd(cfg *config.Config) *cobra.Command {
	var accountID int64

	cmd := &cobra.Command{
		Use:   "positions",
		Short: "Show aggregated positions with market valuation",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := utils.CreateCtxWithRqID(cmd.Context())

			db := data.NewPostgresClient(cfg)
			defer db.Close()

			redisClient := data.NewRedisClient(cfg)
			defer redisClient.Close()

			repo := pgRepository.NewPostgres(cfg, db)
			quotesCache := cache.NewRedisCache(redisClient, cfg)
			quotesApiClient := quotesApi.New(cfg)

			srv := portfolioService.New(cfg, repo, quotesCache, quotesApiClient, nil, nil)

			positions, err := srv.GetPositions(ctx, accountID)
			if err != nil {
				return err
			}

			summary, err := srv.GetPortfolioSummary(ctx, accountID)
			if err != nil {
				return err
			}

			fmt.Printf("%-10s %-8s %12s %14s %12s %14s\n", "TICKER", "TYPE", "QTY", "COST", "PRICE", "VALUE")
			for _, p := range positions {
				fmt.Printf("%-10s %-8s %12s %14s %12s %14s\n",
					p.Ticker, p.AssetType, p.Quantity.String(), p.Cost.StringFixed(2), p.MarketPrice.StringFixed(2), p.MarketValue.StringFixed(2))
			}

			fmt.Printf("\npositions: %d, market value: %s, cash income: %s\n",
				summary.PositionsCount, summary.MarketValue.StringFixed(2), summary.CashIncome.StringFixed(2))

			return nil
		},
	}

	cmd.Flags().Int64Var(&accountID, "account-id", 0, "Account ID")
	_ = cmd.MarkFlagRequired("account-id")

	return cmd
}
