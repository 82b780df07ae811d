package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/de-tools/tagwarden/pkg/models/domain"
	"github.com/de-tools/tagwarden/pkg/runtime/terminal/export"
	"github.com/de-tools/tagwarden/pkg/services/config"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type CleanupRunner interface {
	Run(ctx context.Context) *domain.RunReport
}

type MetricsCollector interface {
	Collect(ctx context.Context) *domain.MetricsReport
}

type RunHistory interface {
	List(ctx context.Context, limit int) ([]domain.RunSummary, error)
}

// Services are the collaborators one command invocation works with. Any of them may be nil
// when the configuration does not enable it.
type Services struct {
	Cleanup CleanupRunner
	Metrics MetricsCollector
	History RunHistory
	Close   func() error
}

// Bootstrap builds the services from the resolved configuration
type Bootstrap func(ctx context.Context, cfg *config.Config) (*Services, error)

// Settings holds the flags shared by every command
type Settings struct {
	ConfigPath string
	Profile    string
	Region     string
	Output     string
	LogLevel   string

	Stdout io.Writer
	Stderr io.Writer
}

func (s *Settings) Bind(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVarP(&s.ConfigPath, "config", "c", "", "Path to a YAML configuration file")
	cmd.PersistentFlags().StringVar(&s.Profile, "profile", "", "AWS shared config profile")
	cmd.PersistentFlags().StringVar(&s.Region, "region", "", "AWS region")
	cmd.PersistentFlags().StringVarP(&s.Output, "output", "o", string(export.FormatText), "Output format: text, json or yaml")
	cmd.PersistentFlags().StringVar(&s.LogLevel, "log-level", "", "Log level (overrides log_level)")
}

// Load reads the configuration and applies the flag overrides on top of it
func (s *Settings) Load() (*config.Config, error) {
	cfg, err := config.LoadConfig(s.ConfigPath)
	if err != nil {
		return nil, err
	}
	if s.Profile != "" {
		cfg.AWS.Profile = s.Profile
	}
	if s.Region != "" {
		cfg.AWS.Region = s.Region
	}
	if s.LogLevel != "" {
		cfg.LogLevel = s.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Context attaches a logger at the configured level. Logs go to stderr so reports stay parseable.
func (s *Settings) Context(ctx context.Context, cfg *config.Config) context.Context {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(s.stderr()).Level(level).With().Timestamp().Logger()
	return logger.WithContext(ctx)
}

func (s *Settings) Reporter() (*export.Reporter, error) {
	format, err := export.ParseFormat(s.Output)
	if err != nil {
		return nil, err
	}
	return export.NewReporter(s.stdout(), format), nil
}

func (s *Settings) stdout() io.Writer {
	if s.Stdout == nil {
		return os.Stdout
	}
	return s.Stdout
}

func (s *Settings) stderr() io.Writer {
	if s.Stderr == nil {
		return os.Stderr
	}
	return s.Stderr
}

func closeServices(ctx context.Context, services *Services) {
	if services == nil || services.Close == nil {
		return
	}
	if err := services.Close(); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("failed to release resources")
	}
}

// prepare is the common preamble of commands that need AWS services
func prepare(cmd *cobra.Command, settings *Settings, bootstrap Bootstrap, override func(*config.Config)) (
	context.Context, *Services, *export.Reporter, error,
) {
	reporter, err := settings.Reporter()
	if err != nil {
		return nil, nil, nil, err
	}

	cfg, err := settings.Load()
	if err != nil {
		return nil, nil, nil, err
	}
	if override != nil {
		override(cfg)
		if err := cfg.Validate(); err != nil {
			return nil, nil, nil, err
		}
	}

	ctx := settings.Context(cmd.Context(), cfg)
	services, err := bootstrap(ctx, cfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to initialize: %w", err)
	}
	return ctx, services, reporter, nil
}
