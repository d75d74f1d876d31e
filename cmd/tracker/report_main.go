package main

import (
	"fmt"
	"os"

	"github.com/go-fireball/portfolio-tracker/config"
	"github.com/go-fireball/portfolio-tracker/data"
	"github.com/go-fireball/portfolio-tracker/data/cache"
	pgRepository "github.com/go-fireball/portfolio-tracker/data/repository/postgres"
	"github.com/go-fireball/portfolio-tracker/internal/externalApi/cloudStorageApi/googleDriveApi"
	"github.com/go-fireball/portfolio-tracker/internal/externalApi/quotesApi"
	"github.com/go-fireball/portfolio-tracker/internal/reportGenerator/xlsxGenerator"
	"github.com/go-fireball/portfolio-tracker/internal/service/portfolioService"
	"github.com/go-fireball/portfolio-tracker/utils"
	"github.com/spf13/cobra"
)

func newReportCmd(cfg *config.Config) *cobra.Command {
	var (
		accountID int64
		out       string
		upload    bool
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate an XLSX portfolio report",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := utils.CreateCtxWithRqID(cmd.Context())

			db := data.NewPostgresClient(cfg)
			defer db.Close()

			redisClient := data.NewRedisClient(cfg)
			defer redisClient.Close()

			repo := pgRepository.NewPostgres(cfg, db)
			quotesCache := cache.NewRedisCache(redisClient, cfg)
			quotesApiClient := quotesApi.New(cfg)
			reportGenerator := xlsxGenerator.New()

			var cloudStorage portfolioService.CloudStorage
			if upload {
				cloudStorage = googleDriveApi.New(ctx, cfg)
			}

			srv := portfolioService.New(cfg, repo, quotesCache, quotesApiClient, reportGenerator, cloudStorage)

			fileBytes, fileExtension, downloadLink, err := srv.GenerateReport(ctx, accountID, upload)
			if err != nil {
				return err
			}

			if out == "" {
				out = fmt.Sprintf("portfolio_%d%s", accountID, fileExtension)
			}

			if err := os.WriteFile(out, fileBytes, 0o644); err != nil {
				return fmt.Errorf("write report file: %w", err)
			}

			fmt.Printf("Report written to %s\n", out)
			if downloadLink != "" {
				fmt.Printf("Uploaded: %s\n", downloadLink)
			}

			return nil
		},
	}

	cmd.Flags().Int64Var(&accountID, "account-id", 0, "Account ID")
	cmd.Flags().StringVar(&out, "out", "", "Output file path (default portfolio_<account-id>.xlsx)")
	cmd.Flags().BoolVar(&upload, "upload", false, "Upload the report to Google Drive")
	_ = cmd.MarkFlagRequired("account-id")

	return cmd
}
