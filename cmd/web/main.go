package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/de-tools/tagwarden/pkg/runtime/app"
	"github.com/de-tools/tagwarden/pkg/server"
	"github.com/de-tools/tagwarden/pkg/services/config"
	"github.com/de-tools/tagwarden/pkg/services/workflow"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var cfgPath string

func main() {
	var rootCmd = &cobra.Command{
		Use:   "tagwarden-web",
		Short: "Serve the Tag Warden run API",
		RunE:  runServer,
	}

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "", "Path to a YAML configuration file")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Printf("Error loading .env file: %v\n", err)
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		return err
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	logger := zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()
	ctx := logger.WithContext(cmd.Context())

	application, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	defer func() {
		if err := application.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close run history")
		}
	}()

	logger.Info().
		Strs("required_tags", cfg.RequiredTags).
		Bool("dry_run", cfg.DryRun).
		Int("grace_period_hours", cfg.GracePeriodHours).
		Msg("configuration loaded")

	deps := server.Dependencies{
		Cleanup: application.Orchestrator,
		Metrics: application.Aggregator,
	}
	if application.History != nil {
		deps.History = application.History
	}

	scheduler := workflow.NewController(false)
	defer scheduler.Stop(ctx)
	if err := startSchedules(ctx, scheduler, application, cfg.Schedule); err != nil {
		return err
	}

	webAPI := server.NewWebAPI(logger, server.Config{
		Addr:         cfg.Address(),
		Dependencies: deps,
	})
	return webAPI.Start()
}

func startSchedules(ctx context.Context, scheduler workflow.Controller, application *app.App, schedule config.ScheduleConfig) error {
	if schedule.CleanupInterval > 0 {
		err := scheduler.Start(ctx, "cleanup", schedule.CleanupInterval, func(ctx context.Context) string {
			return application.Orchestrator.Run(ctx).ID
		})
		if err != nil {
			return fmt.Errorf("failed to schedule cleanup: %w", err)
		}
	}
	if schedule.MetricsInterval > 0 {
		err := scheduler.Start(ctx, "metrics", schedule.MetricsInterval, func(ctx context.Context) string {
			return application.Aggregator.Collect(ctx).ID
		})
		if err != nil {
			return fmt.Errorf("failed to schedule metrics: %w", err)
		}
	}
	return nil
}
