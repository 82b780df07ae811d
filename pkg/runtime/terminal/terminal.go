package terminal

import (
	"context"
	"io"
	"os"

	"github.com/de-tools/tagwarden/pkg/runtime/terminal/commands"
	"github.com/spf13/cobra"
)

// CLI represents the command-line interface
type CLI struct {
	settings  *commands.Settings
	bootstrap commands.Bootstrap
	rootCmd   *cobra.Command
}

// Options contain configuration for the CLI
type Options struct {
	Bootstrap commands.Bootstrap
	Output    io.Writer
	Errors    io.Writer
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Errors == nil {
		opts.Errors = os.Stderr
	}

	cli := &CLI{
		settings: &commands.Settings{
			Stdout: opts.Output,
			Stderr: opts.Errors,
		},
		bootstrap: opts.Bootstrap,
	}

	cli.rootCmd = cli.newRootCmd()
	cli.rootCmd.SetOut(opts.Output)
	cli.rootCmd.SetErr(opts.Errors)
	return cli
}

func (cli *CLI) Execute() error {
	return cli.ExecuteContext(context.Background())
}

func (cli *CLI) ExecuteContext(ctx context.Context) error {
	return cli.rootCmd.ExecuteContext(ctx)
}

// SetArgs overrides os.Args, used by tests
func (cli *CLI) SetArgs(args []string) {
	cli.rootCmd.SetArgs(args)
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "tagwarden",
		Short:         "Tag governance for EC2, RDS, S3 and Lambda",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cli.settings.Bind(cmd)

	cmd.AddCommand(commands.NewCleanupCmd(cli.settings, cli.bootstrap))
	cmd.AddCommand(commands.NewMetricsCmd(cli.settings, cli.bootstrap))
	cmd.AddCommand(commands.NewHistoryCmd(cli.settings, cli.bootstrap))
	cmd.AddCommand(commands.NewProfilesCmd(cli.settings))

	return cmd
}
