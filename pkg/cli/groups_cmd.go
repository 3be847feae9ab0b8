package cli

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"
)

var groupListColumns = []string{"name", "description", "is_default"}

func newGroupsCmd(client *Client) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "groups",
		Short: "Manage groups",
	}

	cmd.AddCommand(newGroupsListCmd(client))
	cmd.AddCommand(newGroupsGetCmd(client))
	cmd.AddCommand(newGroupsCreateCmd(client))
	cmd.AddCommand(newGroupsRemoveCmd(client))
	cmd.AddCommand(newGroupsAddPermissionCmd(client))
	cmd.AddCommand(newGroupsRemovePermissionCmd(client))
	cmd.AddCommand(newGroupsAddParentCmd(client))
	cmd.AddCommand(newGroupsRemoveParentCmd(client))
	cmd.AddCommand(newGroupsEffectiveCmd(client))
	return cmd
}

func newGroupsListCmd(client *Client) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List groups",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var groups []interface{}
			if err := client.doJSON(http.MethodGet, "/groups", nil, nil, &groups); err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return PrintJSON(os.Stdout, groups)
			}
			rows := ExtractRows(map[string]interface{}{"data": groups}, groupListColumns)
			PrintTable(os.Stdout, groupListColumns, rows)
			return nil
		},
	}
}

func newGroupsGetCmd(client *Client) *cobra.Command {
	return &cobra.Command{
		Use:   "get <name>",
		Short: "Show a single group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var group map[string]interface{}
			if err := client.doJSON(http.MethodGet, "/groups/"+args[0], nil, nil, &group); err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return PrintJSON(os.Stdout, group)
			}
			PrintDetail(os.Stdout, group)
			return nil
		},
	}
}

func newGroupsCreateCmd(client *Client) *cobra.Command {
	var (
		description string
		isDefault   bool
		permissions []string
		parents     []string
	)

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]interface{}{"name": args[0]}
			if description != "" {
				body["description"] = description
			}
			if isDefault {
				body["is_default"] = true
			}
			if len(permissions) > 0 {
				body["permissions"] = permissions
			}
			if len(parents) > 0 {
				body["parents"] = parents
			}

			var group map[string]interface{}
			if err := client.doJSON(http.MethodPost, "/groups", nil, body, &group); err != nil {
				return err
			}
			if isQuiet(cmd) {
				_, _ = fmt.Fprintln(os.Stdout, ExtractField(group, "name"))
				return nil
			}
			if getOutputFormat(cmd) == "json" {
				return PrintJSON(os.Stdout, group)
			}
			PrintDetail(os.Stdout, group)
			return nil
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "Group description")
	cmd.Flags().BoolVar(&isDefault, "default", false, "Add new users to this group automatically")
	cmd.Flags().StringSliceVar(&permissions, "permissions", nil, "Permissions to attach (comma separated)")
	cmd.Flags().StringSliceVar(&parents, "parents", nil, "Parent groups to inherit from (comma separated)")
	return cmd
}

func newGroupsRemoveCmd(client *Client) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "remove <name>",
		Short: "Delete a group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes && !confirmAction(fmt.Sprintf("Delete group %q?", args[0])) {
				_, _ = fmt.Fprintln(os.Stderr, "Aborted.")
				return nil
			}
			if err := client.doJSON(http.MethodDelete, "/groups/"+args[0], nil, nil, nil); err != nil {
				return err
			}
			return printStatus(cmd, "deleted", "Group %q deleted.", args[0])
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Skip the confirmation prompt")
	return cmd
}

func newGroupsAddPermissionCmd(client *Client) *cobra.Command {
	return &cobra.Command{
		Use:   "add-permission <name> <permission>",
		Short: "Attach a permission to a group",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]string{"permission": args[1]}
			if err := client.doJSON(http.MethodPost, "/groups/"+args[0]+"/permissions", nil, body, nil); err != nil {
				return err
			}
			return printStatus(cmd, "added", "Permission %q added to group %q.", args[1], args[0])
		},
	}
}

func newGroupsRemovePermissionCmd(client *Client) *cobra.Command {
	return &cobra.Command{
		Use:   "remove-permission <name> <permission>",
		Short: "Detach a permission from a group",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := client.doJSON(http.MethodDelete, "/groups/"+args[0]+"/permissions/"+args[1], nil, nil, nil)
			if err != nil {
				return err
			}
			return printStatus(cmd, "removed", "Permission %q removed from group %q.", args[1], args[0])
		},
	}
}

func newGroupsAddParentCmd(client *Client) *cobra.Command {
	return &cobra.Command{
		Use:   "add-parent <name> <parent>",
		Short: "Add a parent group",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]string{"parent": args[1]}
			if err := client.doJSON(http.MethodPost, "/groups/"+args[0]+"/parents", nil, body, nil); err != nil {
				return err
			}
			return printStatus(cmd, "added", "Group %q now inherits from %q.", args[0], args[1])
		},
	}
}

func newGroupsRemoveParentCmd(client *Client) *cobra.Command {
	return &cobra.Command{
		Use:   "remove-parent <name> <parent>",
		Short: "Remove a parent group",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := client.doJSON(http.MethodDelete, "/groups/"+args[0]+"/parents/"+args[1], nil, nil, nil)
			if err != nil {
				return err
			}
			return printStatus(cmd, "removed", "Group %q no longer inherits from %q.", args[0], args[1])
		},
	}
}

func newGroupsEffectiveCmd(client *Client) *cobra.Command {
	return &cobra.Command{
		Use:   "effective <name>",
		Short: "Show the permissions a group grants, including inherited ones",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var res map[string]interface{}
			err := client.doJSON(http.MethodGet, "/groups/"+args[0]+"/effective-permissions", nil, nil, &res)
			if err != nil {
				return err
			}
			return printPermissionList(cmd, res)
		},
	}
}

// printPermissionList renders an effective-permissions response, one
// permission per line in table mode.
func printPermissionList(cmd *cobra.Command, res map[string]interface{}) error {
	if getOutputFormat(cmd) == "json" {
		return PrintJSON(os.Stdout, res)
	}
	perms, _ := res["permissions"].([]interface{})
	for _, p := range perms {
		_, _ = fmt.Fprintf(os.Stdout, "%v\n", p)
	}
	return nil
}
