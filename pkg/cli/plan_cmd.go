package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"posgate/internal/declarative"
)

func newPlanCmd(client *Client) *cobra.Command {
	var (
		seedDir string
		output  string
		noColor bool
	)

	cmd := &cobra.Command{
		Use:   "plan",
		Args:  cobra.NoArgs,
		Short: "Show what apply would change",
		Long:  "Reads YAML seed documents, compares them with the current server state, and shows the pending registrations without applying them. Exits 2 when changes are pending.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			plan, err := planAgainstServer(client, seedDir)
			if err != nil {
				return err
			}

			switch output {
			case "json":
				if err := declarative.FormatJSON(os.Stdout, plan); err != nil {
					return fmt.Errorf("format plan: %w", err)
				}
			default:
				declarative.FormatText(os.Stdout, plan, noColor || !IsStdoutTTY())
			}

			// Exit code 2 means changes are pending, for CI gates.
			if plan.HasChanges() {
				return &exitError{code: 2}
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&seedDir, "seed-dir", "./seeds", "Path to the seed directory")
	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format (text, json)")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	return cmd
}
