package commands

import (
	"errors"

	"github.com/de-tools/tagwarden/pkg/adapters"
	"github.com/de-tools/tagwarden/pkg/services/config"
	"github.com/spf13/cobra"
)

type MetricsCmd struct {
	settings  *Settings
	bootstrap Bootstrap
	sink      string
	noCosts   bool
}

func NewMetricsCmd(settings *Settings, bootstrap Bootstrap) *cobra.Command {
	mc := &MetricsCmd{settings: settings, bootstrap: bootstrap}
	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Publish tag compliance, inventory, savings and cost metrics",
		Args:  cobra.NoArgs,
		RunE:  mc.run,
	}

	cmd.Flags().StringVar(&mc.sink, "sink", "", "Metrics sink: cloudwatch or log")
	cmd.Flags().BoolVar(&mc.noCosts, "no-costs", false, "Skip Cost Explorer roll-ups")

	return cmd
}

func (mc *MetricsCmd) run(cmd *cobra.Command, _ []string) error {
	ctx, services, reporter, err := prepare(cmd, mc.settings, mc.bootstrap, func(cfg *config.Config) {
		if mc.sink != "" {
			cfg.MetricsSink = mc.sink
		}
		if mc.noCosts {
			cfg.CostExplorer = false
		}
	})
	if err != nil {
		return err
	}
	defer closeServices(ctx, services)

	if services.Metrics == nil {
		return errors.New("metrics collection is not configured")
	}

	report := services.Metrics.Collect(ctx)
	return reporter.MetricsReport(adapters.MapMetricsReportDomainToApi(report))
}
