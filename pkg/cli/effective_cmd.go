package cli

import (
	"net/http"

	"github.com/spf13/cobra"
)

func newEffectiveCmd(client *Client) *cobra.Command {
	return &cobra.Command{
		Use:   "effective <user-id>",
		Short: "Show a user's effective permissions",
		Long:  "Show the full set of permissions a user holds through direct grants, group membership and group inheritance.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var res map[string]interface{}
			err := client.doJSON(http.MethodGet, "/users/"+args[0]+"/effective-permissions", nil, nil, &res)
			if err != nil {
				return err
			}
			return printPermissionList(cmd, res)
		},
	}
}
