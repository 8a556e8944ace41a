package cmd

import (
	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"

	"github.com/goto/sentinel/client/cmd/render"
	"github.com/goto/sentinel/client/cmd/version"
)

// New constructs the 'sentinel' command.
func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sentinel <command> <subcommand> [flags]",
		Short: "Source freshness alerts for chat",
		Long: heredoc.Doc(`
			Sentinel delivers source freshness warnings and failures
			to chat channels and webhooks.`),
		SilenceUsage: true,
		Example: heredoc.Doc(`
			$ sentinel serve --config sentinel.yaml
			$ sentinel render alert.yaml --format table
			$ sentinel version`),
		Annotations: map[string]string{
			"help:learn": heredoc.Doc(`
				Use 'sentinel <command> --help' for more information about a command.`),
		},
	}

	cmd.AddCommand(
		render.NewRenderCommand(),
		version.NewVersionCommand(),
	)
	return cmd
}
