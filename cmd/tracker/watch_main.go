package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/go-fireball/portfolio-tracker/config"
	"github.com/go-fireball/portfolio-tracker/data"
	"github.com/go-fireball/portfolio-tracker/data/cache"
	pgRepository "github.com/go-fireball/portfolio-tracker/data/repository/postgres"
	"github.com/go-fireball/portfolio-tracker/internal/externalApi/cloudStorageApi/googleDriveApi"
	"github.com/go-fireball/portfolio-tracker/internal/externalApi/quotesApi"
	"github.com/go-fireball/portfolio-tracker/internal/scheduler"
	"github.com/go-fireball/portfolio-tracker/internal/service/portfolioService"
	"github.com/spf13/cobra"
)

func newWatchCmd(cfg *config.Config) *cobra.Command {
	var driveCleanup bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Keep the quote cache warm until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			db := data.NewPostgresClient(cfg)
			defer db.Close()

			redisClient := data.NewRedisClient(cfg)
			defer redisClient.Close()

			repo := pgRepository.NewPostgres(cfg, db)
			quotesCache := cache.NewRedisCache(redisClient, cfg)
			quotesApiClient := quotesApi.New(cfg)

			srv := portfolioService.New(cfg, repo, quotesCache, quotesApiClient, nil, nil)

			sched := scheduler.New()
			sched.NewIntervalJob("refresh quotes cache", srv.RefreshQuotesCache, cfg.Jobs.RefreshQuotesInterval, true)

			if driveCleanup {
				driveApi := googleDriveApi.New(cmd.Context(), cfg)
				sched.NewCrontabJob("drive cleanup", driveApi.DeleteOldFiles, cfg.Jobs.DriveCleanupCrontab, false)
			}

			sched.Start()
			defer sched.Stop()

			// Waiting interruption signal
			interrupt := make(chan os.Signal, 1)
			signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
			<-interrupt

			return nil
		},
	}

	cmd.Flags().BoolVar(&driveCleanup, "drive-cleanup", false, "Also run the daily Google Drive retention job")

	return cmd
}
