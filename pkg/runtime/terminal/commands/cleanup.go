package commands

import (
	"errors"

	"github.com/de-tools/tagwarden/pkg/adapters"
	"github.com/de-tools/tagwarden/pkg/services/config"
	"github.com/spf13/cobra"
)

type CleanupCmd struct {
	settings         *Settings
	bootstrap        Bootstrap
	dryRun           bool
	gracePeriodHours int
	concurrency      int
}

func NewCleanupCmd(settings *Settings, bootstrap Bootstrap) *cobra.Command {
	cc := &CleanupCmd{settings: settings, bootstrap: bootstrap}
	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete untagged EC2, RDS, S3 and Lambda resources past their grace period",
		Long: "Scans every supported resource type, reports resources missing required tags " +
			"and deletes the ones older than the grace period. Runs as a dry run unless --dry-run=false.",
		Args: cobra.NoArgs,
		RunE: cc.run,
	}

	cmd.Flags().BoolVar(&cc.dryRun, "dry-run", true, "Only report what would be deleted")
	cmd.Flags().IntVar(&cc.gracePeriodHours, "grace-period-hours", 0, "Hours a new resource is protected from deletion")
	cmd.Flags().IntVar(&cc.concurrency, "concurrency", 0, "Maximum deletions in flight per resource type")

	return cmd
}

func (cc *CleanupCmd) run(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	ctx, services, reporter, err := prepare(cmd, cc.settings, cc.bootstrap, func(cfg *config.Config) {
		if flags.Changed("dry-run") {
			cfg.DryRun = cc.dryRun
		}
		if flags.Changed("grace-period-hours") {
			cfg.GracePeriodHours = cc.gracePeriodHours
		}
		if flags.Changed("concurrency") {
			cfg.DeleteConcurrency = cc.concurrency
		}
	})
	if err != nil {
		return err
	}
	defer closeServices(ctx, services)

	if services.Cleanup == nil {
		return errors.New("cleanup is not configured")
	}

	run := services.Cleanup.Run(ctx)
	return reporter.CleanupReport(adapters.MapCleanupReportDomainToApi(run))
}
