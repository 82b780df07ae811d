package commands

import (
	"fmt"

	"github.com/de-tools/tagwarden/pkg/runtime/terminal/export"
	"github.com/de-tools/tagwarden/pkg/services/config"
	"github.com/spf13/cobra"
)

type ProfilesCmd struct {
	settings  *Settings
	awsConfig string
}

func NewProfilesCmd(settings *Settings) *cobra.Command {
	pc := &ProfilesCmd{settings: settings}
	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "List the AWS profiles available for --profile",
		Args:  cobra.NoArgs,
		RunE:  pc.run,
	}

	cmd.Flags().StringVar(&pc.awsConfig, "aws-config", "", "Path to the AWS config file (default is $HOME/.aws/config)")

	return cmd
}

func (pc *ProfilesCmd) run(_ *cobra.Command, _ []string) error {
	reporter, err := pc.settings.Reporter()
	if err != nil {
		return err
	}

	path := pc.awsConfig
	if path == "" {
		path, err = config.DefaultAWSConfigPath()
		if err != nil {
			return err
		}
	}

	registry, err := config.NewProfileRegistry(path)
	if err != nil {
		return fmt.Errorf("failed to read AWS profiles: %w", err)
	}

	profiles, err := registry.GetProfiles()
	if err != nil {
		return fmt.Errorf("failed to list AWS profiles: %w", err)
	}

	rows := make([]export.ProfileRow, 0, len(profiles))
	for _, p := range profiles {
		row := export.ProfileRow{Name: p.Name, Type: string(p.Type)}
		if region, err := registry.GetRegion(p.Name); err == nil {
			row.Region = region
		}
		rows = append(rows, row)
	}
	return reporter.Profiles(rows)
}
