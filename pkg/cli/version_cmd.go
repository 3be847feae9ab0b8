package cli

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the CLI version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if getOutputFormat(cmd) == "json" {
				return PrintJSON(os.Stdout, map[string]string{
					"version":    version,
					"commit":     commit,
					"go_version": runtime.Version(),
				})
			}
			fmt.Fprintf(os.Stdout, "posgate version %s (commit %s, %s)\n", version, commit, runtime.Version())
			return nil
		},
	}
}
