package commands

import (
	"errors"
	"fmt"

	"github.com/de-tools/tagwarden/pkg/adapters"
	"github.com/de-tools/tagwarden/pkg/models/api"
	"github.com/spf13/cobra"
)

type HistoryCmd struct {
	settings  *Settings
	bootstrap Bootstrap
	limit     int
}

func NewHistoryCmd(settings *Settings, bootstrap Bootstrap) *cobra.Command {
	hc := &HistoryCmd{settings: settings, bootstrap: bootstrap}
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded cleanup and metrics runs, newest first",
		Args:  cobra.NoArgs,
		RunE:  hc.run,
	}

	cmd.Flags().IntVarP(&hc.limit, "limit", "n", 20, "Number of runs to show")

	return cmd
}

func (hc *HistoryCmd) run(cmd *cobra.Command, _ []string) error {
	if hc.limit <= 0 {
		return fmt.Errorf("limit must be positive, got %d", hc.limit)
	}

	ctx, services, reporter, err := prepare(cmd, hc.settings, hc.bootstrap, nil)
	if err != nil {
		return err
	}
	defer closeServices(ctx, services)

	if services.History == nil {
		return errors.New("run history is not configured (set history_db_path)")
	}

	summaries, err := services.History.List(ctx, hc.limit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	runs := make([]api.RunSummary, 0, len(summaries))
	for _, s := range summaries {
		runs = append(runs, adapters.MapRunSummaryDomainToApi(s))
	}
	return reporter.Runs(runs)
}
