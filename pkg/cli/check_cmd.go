package cli

import (
	"fmt"
	"net/http"
	"net/url"
	"os"

	"github.com/spf13/cobra"
)

func newCheckCmd(client *Client) *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "check <permission>",
		Short: "Check whether a user holds a permission",
		Long:  "Check whether a user holds a permission. Without --user the check runs against the calling principal. Exits 1 when the permission is denied.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := url.Values{}
			query.Set("permission", args[0])
			if userID != "" {
				query.Set("user_id", userID)
			}

			var res map[string]interface{}
			if err := client.doJSON(http.MethodGet, "/check", query, nil, &res); err != nil {
				return err
			}

			allowed, _ := res["allowed"].(bool)
			if getOutputFormat(cmd) == "json" {
				if err := PrintJSON(os.Stdout, res); err != nil {
					return err
				}
			} else if !isQuiet(cmd) {
				verdict := "denied"
				if allowed {
					verdict = "allowed"
				}
				_, _ = fmt.Fprintf(os.Stdout, "%s: %s for user %s\n",
					args[0], verdict, ExtractField(res, "user_id"))
			}
			if !allowed {
				os.Exit(1)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "User ID to check (defaults to the calling principal)")
	return cmd
}
