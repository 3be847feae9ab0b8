package cli

import (
	"net/http"
	"os"

	"github.com/spf13/cobra"
)

func newSnapshotCmd(client *Client) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Directory snapshot exports",
	}

	cmd.AddCommand(newSnapshotCreateCmd(client))
	return cmd
}

func newSnapshotCreateCmd(client *Client) *cobra.Command {
	return &cobra.Command{
		Use:   "create",
		Short: "Export a directory snapshot to the configured archive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var res map[string]interface{}
			if err := client.doJSON(http.MethodPost, "/snapshots", nil, nil, &res); err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return PrintJSON(os.Stdout, res)
			}
			PrintDetail(os.Stdout, res)
			return nil
		},
	}
}
