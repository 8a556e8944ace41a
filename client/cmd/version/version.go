package version

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goto/sentinel/config"
)

type versionCommand struct{}

// NewVersionCommand initializes command to get version
func NewVersionCommand() *cobra.Command {
	v := &versionCommand{}

	return &cobra.Command{
		Use:     "version",
		Short:   "Print the version information",
		Example: "sentinel version",
		RunE:    v.RunE,
	}
}

func (*versionCommand) RunE(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "sentinel %s\n", config.BuildVersion)
	if config.BuildCommit != "" {
		fmt.Fprintf(out, "commit: %s\n", config.BuildCommit)
	}
	if config.BuildDate != "" {
		fmt.Fprintf(out, "built at: %s\n", config.BuildDate)
	}
	return nil
}
