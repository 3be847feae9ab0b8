package cli

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"
)

var permissionListColumns = []string{"name", "description", "aliases", "is_default"}

func newPermissionsCmd(client *Client) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "permissions",
		Short: "Manage permissions",
	}

	cmd.AddCommand(newPermissionsListCmd(client))
	cmd.AddCommand(newPermissionsGetCmd(client))
	cmd.AddCommand(newPermissionsCreateCmd(client))
	cmd.AddCommand(newPermissionsRemoveCmd(client))
	return cmd
}

func newPermissionsListCmd(client *Client) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List permissions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var perms []interface{}
			if err := client.doJSON(http.MethodGet, "/permissions", nil, nil, &perms); err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return PrintJSON(os.Stdout, perms)
			}
			rows := ExtractRows(map[string]interface{}{"data": perms}, permissionListColumns)
			PrintTable(os.Stdout, permissionListColumns, rows)
			return nil
		},
	}
}

func newPermissionsGetCmd(client *Client) *cobra.Command {
	return &cobra.Command{
		Use:   "get <name>",
		Short: "Show a single permission",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var perm map[string]interface{}
			if err := client.doJSON(http.MethodGet, "/permissions/"+args[0], nil, nil, &perm); err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return PrintJSON(os.Stdout, perm)
			}
			PrintDetail(os.Stdout, perm)
			return nil
		},
	}
}

func newPermissionsCreateCmd(client *Client) *cobra.Command {
	var (
		description string
		aliases     []string
		isDefault   bool
	)

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Register a permission",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]interface{}{"name": args[0]}
			if description != "" {
				body["description"] = description
			}
			if len(aliases) > 0 {
				body["aliases"] = aliases
			}
			if isDefault {
				body["is_default"] = true
			}

			var perm map[string]interface{}
			if err := client.doJSON(http.MethodPost, "/permissions", nil, body, &perm); err != nil {
				return err
			}
			if isQuiet(cmd) {
				_, _ = fmt.Fprintln(os.Stdout, ExtractField(perm, "name"))
				return nil
			}
			if getOutputFormat(cmd) == "json" {
				return PrintJSON(os.Stdout, perm)
			}
			PrintDetail(os.Stdout, perm)
			return nil
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "Permission description")
	cmd.Flags().StringSliceVar(&aliases, "aliases", nil, "Alternate names (comma separated)")
	cmd.Flags().BoolVar(&isDefault, "default", false, "Grant to every user by default")
	return cmd
}

func newPermissionsRemoveCmd(client *Client) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "remove <name>",
		Short: "Unregister a permission",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes && !confirmAction(fmt.Sprintf("Delete permission %q?", args[0])) {
				_, _ = fmt.Fprintln(os.Stderr, "Aborted.")
				return nil
			}
			if err := client.doJSON(http.MethodDelete, "/permissions/"+args[0], nil, nil, nil); err != nil {
				return err
			}
			return printStatus(cmd, "deleted", "Permission %q deleted.", args[0])
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Skip the confirmation prompt")
	return cmd
}
