package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/de-tools/tagwarden/pkg/models/domain"
	"github.com/de-tools/tagwarden/pkg/runtime/terminal/commands"
	"github.com/de-tools/tagwarden/pkg/services/config"
	"github.com/de-tools/tagwarden/pkg/services/cost/aws_ce"
	"github.com/de-tools/tagwarden/pkg/services/governance"
	"github.com/de-tools/tagwarden/pkg/services/inventory"
	awsinventory "github.com/de-tools/tagwarden/pkg/services/inventory/aws"
	"github.com/de-tools/tagwarden/pkg/services/metrics"
	"github.com/de-tools/tagwarden/pkg/services/metrics/sinks"
	"github.com/de-tools/tagwarden/pkg/services/notify"
	"github.com/de-tools/tagwarden/pkg/services/policy"
	"github.com/de-tools/tagwarden/pkg/store/duckdb"
	"github.com/de-tools/tagwarden/pkg/store/duckdb/runs"
	"github.com/rs/zerolog"
)

// App holds everything a cleanup or metrics run needs
type App struct {
	Orchestrator *governance.Orchestrator
	Aggregator   *metrics.Aggregator
	History      runs.Store
	db           *sql.DB
}

// New loads the AWS configuration, probes credentials and opens the run history.
// Any failure here is a setup failure: nothing has been scanned yet.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := zerolog.Ctx(ctx)

	awsCfg, err := awsinventory.LoadConfig(ctx, cfg.AWS.Profile, cfg.AWS.Region)
	if err != nil {
		return nil, err
	}
	logger.Debug().
		Str("profile", cfg.AWS.Profile).
		Str("region", awsCfg.Region).
		Msg("AWS configuration loaded")

	var (
		db      *sql.DB
		history runs.Store
	)
	if cfg.HistoryDBPath != "" {
		db, err = duckdb.NewDB(duckdb.Settings{DbPath: cfg.HistoryDBPath})
		if err != nil {
			return nil, fmt.Errorf("failed to open run history: %w", err)
		}
		history, err = runs.NewStore(db)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to create run store: %w", err)
		}
	}

	a, err := Assemble(cfg, *awsCfg, history)
	if err != nil {
		if db != nil {
			_ = db.Close()
		}
		return nil, err
	}
	a.db = db
	return a, nil
}

// Assemble wires scanners, policy, notifier, metrics sink and cost provider. It performs no AWS calls.
// history may be nil.
func Assemble(cfg *config.Config, awsCfg aws.Config, history runs.Store) (*App, error) {
	pol, err := policy.New(cfg.RequiredTags)
	if err != nil {
		return nil, err
	}

	registry, err := inventory.NewRegistry(awsinventory.NewScanners(awsCfg, awsinventory.Options{
		SelfFunctionName: cfg.SelfFunctionName,
		DeleteBatchSize:  cfg.DeleteBatchSize,
	})...)
	if err != nil {
		return nil, fmt.Errorf("failed to register scanners: %w", err)
	}

	var (
		cleanupHistory governance.HistoryStore
		metricsHistory metrics.HistoryStore
	)
	if history != nil {
		cleanupHistory = history
		metricsHistory = history
	}

	orchestrator := governance.NewOrchestrator(
		registry,
		pol,
		governance.Options{
			Mode:              domain.ModeFor(cfg.DryRun),
			GracePeriod:       cfg.GracePeriod(),
			Region:            awsCfg.Region,
			DeleteConcurrency: cfg.DeleteConcurrency,
		},
		notify.New(awsCfg, cfg.SNSTopicARN),
		cleanupHistory,
	)

	sink, err := newSink(cfg.MetricsSink, awsCfg)
	if err != nil {
		return nil, err
	}

	var costs metrics.CostProvider
	if cfg.CostExplorer {
		costs = aws_ce.NewProviderFromConfig(awsCfg)
	}

	aggregator := metrics.NewAggregator(
		registry,
		pol,
		costs,
		sink,
		metricsHistory,
		metrics.Options{
			NamespacePrefix: cfg.MetricsNamespace,
			Region:          awsCfg.Region,
		},
	)

	return &App{
		Orchestrator: orchestrator,
		Aggregator:   aggregator,
		History:      history,
	}, nil
}

func newSink(kind string, awsCfg aws.Config) (metrics.Sink, error) {
	switch kind {
	case config.MetricsSinkCloudWatch:
		return sinks.NewCloudWatchSink(cloudwatch.NewFromConfig(awsCfg)), nil
	case config.MetricsSinkLog:
		return sinks.NewLogSink(), nil
	default:
		return nil, fmt.Errorf("unsupported metrics sink %q", kind)
	}
}

func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

// Services adapts the application to the CLI commands
func (a *App) Services() *commands.Services {
	s := &commands.Services{
		Cleanup: a.Orchestrator,
		Metrics: a.Aggregator,
		Close:   a.Close,
	}
	if a.History != nil {
		s.History = a.History
	}
	return s
}

// Bootstrap is the commands.Bootstrap used by the tagwarden binary
func Bootstrap(ctx context.Context, cfg *config.Config) (*commands.Services, error) {
	if cfg == nil {
		return nil, errors.New("configuration is nil")
	}
	a, err := New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return a.Services(), nil
}
