package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

const (
	EnvPrefix = "TAGWARDEN"

	MetricsSinkCloudWatch = "cloudwatch"
	MetricsSinkLog        = "log"

	maxDeleteBatchSize = 1000
)

type AWSConfig struct {
	Profile string `mapstructure:"profile"`
	Region  string `mapstructure:"region"`
}

type HTTPConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// ScheduleConfig drives the periodic runs of the web server. A zero interval disables the job.
type ScheduleConfig struct {
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	MetricsInterval time.Duration `mapstructure:"metrics_interval"`
}

type Config struct {
	RequiredTags      []string       `mapstructure:"required_tags"`
	GracePeriodHours  int            `mapstructure:"grace_period_hours"`
	DryRun            bool           `mapstructure:"dry_run"`
	SNSTopicARN       string         `mapstructure:"sns_topic_arn"`
	SelfFunctionName  string         `mapstructure:"self_function_name"`
	DeleteConcurrency int            `mapstructure:"delete_concurrency"`
	DeleteBatchSize   int            `mapstructure:"delete_batch_size"`
	MetricsNamespace  string         `mapstructure:"metrics_namespace_prefix"`
	MetricsSink       string         `mapstructure:"metrics_sink"`
	CostExplorer      bool           `mapstructure:"cost_explorer"`
	HistoryDBPath     string         `mapstructure:"history_db_path"`
	LogLevel          string         `mapstructure:"log_level"`
	AWS               AWSConfig      `mapstructure:"aws"`
	HTTP              HTTPConfig     `mapstructure:"http"`
	Schedule          ScheduleConfig `mapstructure:"schedule"`
}

func (c *Config) GracePeriod() time.Duration {
	return time.Duration(c.GracePeriodHours) * time.Hour
}

func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.HTTP.Host, c.HTTP.Port)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("required_tags", []string{"Owner", "Squad", "CostCenter", "Environment"})
	v.SetDefault("grace_period_hours", 24)
	v.SetDefault("dry_run", true)
	v.SetDefault("sns_topic_arn", "")
	v.SetDefault("self_function_name", "")
	v.SetDefault("delete_concurrency", 8)
	v.SetDefault("delete_batch_size", maxDeleteBatchSize)
	v.SetDefault("metrics_namespace_prefix", "")
	v.SetDefault("metrics_sink", MetricsSinkCloudWatch)
	v.SetDefault("cost_explorer", true)
	v.SetDefault("history_db_path", "tagwarden.duckdb")
	v.SetDefault("log_level", "info")
	v.SetDefault("aws.profile", "")
	v.SetDefault("aws.region", "")
	v.SetDefault("http.host", "localhost")
	v.SetDefault("http.port", 8080)
	v.SetDefault("schedule.cleanup_interval", "0s")
	v.SetDefault("schedule.metrics_interval", "0s")
}

// legacyEnv lists environment names read in addition to the prefixed ones, lowest precedence last
var legacyEnv = map[string][]string{
	"grace_period_hours": {"GRACE_PERIOD_HOURS"},
	"dry_run":            {"DRY_RUN"},
	"sns_topic_arn":      {"SNS_TOPIC_ARN"},
	"self_function_name": {"AWS_LAMBDA_FUNCTION_NAME"},
	"aws.profile":        {"AWS_PROFILE"},
	"aws.region":         {"AWS_REGION", "AWS_DEFAULT_REGION"},
}

// LoadConfig reads defaults, then the optional YAML file at path, then the environment
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, names := range legacyEnv {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(append([]string{key, prefixed}, names...)...); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	for i, tag := range cfg.RequiredTags {
		cfg.RequiredTags[i] = strings.TrimSpace(tag)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if len(c.RequiredTags) == 0 {
		errs = append(errs, errors.New("required_tags must not be empty"))
	}
	if c.GracePeriodHours < 0 {
		errs = append(errs, fmt.Errorf("grace_period_hours must not be negative, got %d", c.GracePeriodHours))
	}
	if c.DeleteConcurrency < 1 {
		errs = append(errs, fmt.Errorf("delete_concurrency must be at least 1, got %d", c.DeleteConcurrency))
	}
	if c.DeleteBatchSize < 1 || c.DeleteBatchSize > maxDeleteBatchSize {
		errs = append(errs, fmt.Errorf("delete_batch_size must be within 1..%d, got %d", maxDeleteBatchSize, c.DeleteBatchSize))
	}
	if c.MetricsSink != MetricsSinkCloudWatch && c.MetricsSink != MetricsSinkLog {
		errs = append(errs, fmt.Errorf("metrics_sink must be %q or %q, got %q", MetricsSinkCloudWatch, MetricsSinkLog, c.MetricsSink))
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("invalid log_level: %w", err))
	}
	if c.HTTP.Port < 0 || c.HTTP.Port > 65535 {
		errs = append(errs, fmt.Errorf("http.port out of range: %d", c.HTTP.Port))
	}

	if c.Schedule.CleanupInterval < 0 || c.Schedule.MetricsInterval < 0 {
		errs = append(errs, errors.New("schedule intervals must not be negative"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}
