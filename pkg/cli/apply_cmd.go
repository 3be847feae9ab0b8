package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"posgate/internal/declarative"
)

func newApplyCmd(client *Client) *cobra.Command {
	var (
		seedDir     string
		autoApprove bool
		noColor     bool
	)

	cmd := &cobra.Command{
		Use:   "apply",
		Args:  cobra.NoArgs,
		Short: "Apply a declarative seed tree to the server",
		Long:  "Reads YAML seed documents, compares them with the current server state, and registers what is missing or different.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			plan, err := planAgainstServer(client, seedDir)
			if err != nil {
				return err
			}

			declarative.FormatText(os.Stdout, plan, noColor || !IsStdoutTTY())

			if !plan.HasChanges() {
				return nil
			}

			if !autoApprove {
				ok, err := confirmApply()
				if err != nil {
					return err
				}
				if !ok {
					_, _ = fmt.Fprintln(os.Stdout, "Apply cancelled.")
					return nil
				}
			}

			var succeeded, failed int
			for _, action := range plan.Actions {
				_, _ = fmt.Fprintf(os.Stdout, "  %s %s %q ... ", action.Op, action.Kind, action.Name)

				if err := applyAction(client, action); err != nil {
					_, _ = fmt.Fprintf(os.Stdout, "failed: %v\n", err)
					failed++
				} else {
					_, _ = fmt.Fprintln(os.Stdout, "succeeded")
					succeeded++
				}
			}

			_, _ = fmt.Fprintf(os.Stdout, "\nApply complete: %d succeeded, %d failed.\n", succeeded, failed)
			if failed > 0 {
				return &exitError{code: 1}
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&seedDir, "seed-dir", "./seeds", "Path to the seed directory")
	cmd.Flags().BoolVar(&autoApprove, "auto-approve", false, "Skip interactive confirmation prompt")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	return cmd
}

// confirmApply prompts on the terminal for a yes/no answer.
func confirmApply() (bool, error) {
	if !IsStdinTTY() {
		return false, fmt.Errorf("confirmation required but stdin is not a terminal; use --auto-approve")
	}
	_, _ = fmt.Fprint(os.Stdout, "\nApply these changes? [y/N] ")
	answer, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false, fmt.Errorf("read confirmation: %w", err)
	}
	answer = strings.TrimSpace(strings.ToLower(answer))
	return answer == "y" || answer == "yes", nil
}
