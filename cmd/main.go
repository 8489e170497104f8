// Package main is the entry point for the rta-sync CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rta-sync/internal/di"
	"rta-sync/internal/extraction/adapter/persistence/mongodb"
	"rta-sync/internal/extraction/config"
	"rta-sync/internal/extraction/usecase"
	"rta-sync/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "rta-sync",
		Short:         "Periodically copy RTA datasets into MongoDB and enforce their retention window",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(runCmd(), snapshotCmd(), jobsCmd())
	return root
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Connect to the store and run the scheduler until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			appLogger := logger.NewLogger()
			appLogger.Info("Application configuration loaded successfully")

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			container := di.NewContainer(cfg, appLogger)
			defer func() {
				closeCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()
				if err := container.Close(closeCtx); err != nil {
					appLogger.Errorf("Failed to close container: %v", err)
				}
			}()

			if err := container.ConnectStore(ctx); err != nil {
				return err
			}
			container.ConnectRedis(ctx)
			if err := container.InitializeExtraction(); err != nil {
				return err
			}
			module := container.GetExtractionModule()

			var app *fiber.App
			if cfg.Admin.Enabled {
				app = fiber.New(fiber.Config{
					AppName:               "rta-sync admin",
					DisableStartupMessage: true,
					ReadTimeout:           10 * time.Second,
					WriteTimeout:          30 * time.Second,
				})
				app.Use(recover.New())
				module.RegisterRoutes(app)
				go func() {
					appLogger.Infof("Admin listener on %s", cfg.Admin.Addr)
					if err := app.Listen(cfg.Admin.Addr); err != nil {
						appLogger.Errorf("Admin listener stopped: %v", err)
					}
				}()
			}

			err = module.Start(ctx)

			if app != nil {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := app.ShutdownWithContext(shutdownCtx); err != nil {
					appLogger.Errorf("Admin listener forced to shutdown: %v", err)
				}
			}
			appLogger.Info("Application stopped gracefully.")
			return err
		},
	}
}

func snapshotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot <partition>",
		Short: "Print a tabular view of a partition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt64("limit")
			if limit < 0 {
				return errors.New("--limit must not be negative")
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			appLogger := logger.NewLogger()

			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()

			container := di.NewContainer(cfg, appLogger)
			defer container.Close(context.Background())
			if err := container.ConnectStore(ctx); err != nil {
				return err
			}

			store := mongodb.NewRecordStore(container.MongoDB, appLogger)
			snap, err := usecase.NewSnapshotViewer(store, appLogger).Snapshot(ctx, args[0], limit)
			if err != nil {
				return err
			}
			return renderSnapshot(cmd.OutOrStdout(), snap)
		},
	}
	cmd.Flags().Int64P("limit", "n", usecase.DefaultSampleSize, "Number of rows to sample")
	return cmd
}

func jobsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "jobs",
		Short: "Validate configuration and list the jobs it produces",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			datasets, err := cfg.Datasets(logger.NewLogger())
			if err != nil {
				return err
			}
			return renderJobs(cmd.OutOrStdout(), usecase.BuildDescriptors(datasets, cfg.PurgeAt))
		},
	}
}
