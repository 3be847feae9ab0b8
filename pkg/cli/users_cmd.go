package cli

import (
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

var userListColumns = []string{"id", "username", "email", "active", "locked"}

func newUsersCmd(client *Client) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage users",
	}

	cmd.AddCommand(newUsersListCmd(client))
	cmd.AddCommand(newUsersGetCmd(client))
	cmd.AddCommand(newUsersCreateCmd(client))
	cmd.AddCommand(newUsersRemoveCmd(client))
	cmd.AddCommand(newUsersLockCmd(client))
	cmd.AddCommand(newUsersUnlockCmd(client))
	cmd.AddCommand(newUsersActivateCmd(client))
	cmd.AddCommand(newUsersDeactivateCmd(client))
	cmd.AddCommand(newUsersSetPasswordCmd(client))
	cmd.AddCommand(newUsersAddGroupCmd(client))
	cmd.AddCommand(newUsersRemoveGroupCmd(client))
	cmd.AddCommand(newUsersGrantCmd(client))
	cmd.AddCommand(newUsersRevokeCmd(client))
	return cmd
}

func newUsersListCmd(client *Client) *cobra.Command {
	var (
		all        bool
		maxResults int
		pageToken  string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			query := url.Values{}
			if maxResults > 0 {
				query.Set("max_results", strconv.Itoa(maxResults))
			}
			if pageToken != "" {
				query.Set("page_token", pageToken)
			}

			if all {
				items, err := FetchAllPages(client, http.MethodGet, "/users", query)
				if err != nil {
					return err
				}
				if getOutputFormat(cmd) == "json" {
					return PrintJSON(os.Stdout, items)
				}
				rows := ExtractRows(map[string]interface{}{"data": items}, userListColumns)
				PrintTable(os.Stdout, userListColumns, rows)
				return nil
			}

			var page map[string]interface{}
			if err := client.doJSON(http.MethodGet, "/users", query, nil, &page); err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return PrintJSON(os.Stdout, page)
			}
			rows := ExtractRows(page, userListColumns)
			PrintTable(os.Stdout, userListColumns, rows)
			if tok, _ := page["next_page_token"].(string); tok != "" {
				_, _ = fmt.Fprintf(os.Stderr, "Next page: --page-token %s\n", tok)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Fetch all pages")
	cmd.Flags().IntVar(&maxResults, "max-results", 0, "Maximum results per page")
	cmd.Flags().StringVar(&pageToken, "page-token", "", "Page token from a previous response")
	return cmd
}

func newUsersGetCmd(client *Client) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a single user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var user map[string]interface{}
			if err := client.doJSON(http.MethodGet, "/users/"+args[0], nil, nil, &user); err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return PrintJSON(os.Stdout, user)
			}
			PrintDetail(os.Stdout, user)
			return nil
		},
	}
}

func newUsersCreateCmd(client *Client) *cobra.Command {
	var (
		username    string
		password    string
		firstName   string
		lastName    string
		email       string
		groups      []string
		permissions []string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if password == "" && IsStdinTTY() {
				pw, err := promptPassword("Password: ")
				if err != nil {
					return err
				}
				password = pw
			}
			if password == "" {
				return fmt.Errorf("password is required (use --password or run interactively)")
			}

			body := map[string]interface{}{
				"username": username,
				"password": password,
			}
			if firstName != "" {
				body["first_name"] = firstName
			}
			if lastName != "" {
				body["last_name"] = lastName
			}
			if email != "" {
				body["email"] = email
			}
			if len(groups) > 0 {
				body["groups"] = groups
			}
			if len(permissions) > 0 {
				body["permissions"] = permissions
			}

			var user map[string]interface{}
			if err := client.doJSON(http.MethodPost, "/users", nil, body, &user); err != nil {
				return err
			}
			if isQuiet(cmd) {
				_, _ = fmt.Fprintln(os.Stdout, ExtractField(user, "id"))
				return nil
			}
			if getOutputFormat(cmd) == "json" {
				return PrintJSON(os.Stdout, user)
			}
			PrintDetail(os.Stdout, user)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Username (required)")
	cmd.Flags().StringVar(&password, "password", "", "Initial password (prompted when omitted)")
	cmd.Flags().StringVar(&firstName, "first-name", "", "First name")
	cmd.Flags().StringVar(&lastName, "last-name", "", "Last name")
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringSliceVar(&groups, "groups", nil, "Groups to join (comma separated)")
	cmd.Flags().StringSliceVar(&permissions, "permissions", nil, "Direct permission grants (comma separated)")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

func newUsersRemoveCmd(client *Client) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "remove <id>",
		Short: "Delete a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes && !confirmAction(fmt.Sprintf("Delete user %q?", args[0])) {
				_, _ = fmt.Fprintln(os.Stderr, "Aborted.")
				return nil
			}
			if err := client.doJSON(http.MethodDelete, "/users/"+args[0], nil, nil, nil); err != nil {
				return err
			}
			return printStatus(cmd, "deleted", "User %q deleted.", args[0])
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Skip the confirmation prompt")
	return cmd
}

func newUsersLockCmd(client *Client) *cobra.Command {
	return newUserActionCmd(client, "lock", "Lock a user account", "locked", "User %q locked.")
}

func newUsersUnlockCmd(client *Client) *cobra.Command {
	return newUserActionCmd(client, "unlock", "Unlock a user account", "unlocked", "User %q unlocked.")
}

func newUsersActivateCmd(client *Client) *cobra.Command {
	return newUserActionCmd(client, "activate", "Activate a user account", "activated", "User %q activated.")
}

func newUsersDeactivateCmd(client *Client) *cobra.Command {
	return newUserActionCmd(client, "deactivate", "Deactivate a user account", "deactivated", "User %q deactivated.")
}

// newUserActionCmd builds the shared shape of the four POST
// /users/{id}/<action> toggles.
func newUserActionCmd(client *Client, action, short, status, message string) *cobra.Command {
	return &cobra.Command{
		Use:   action + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := client.doJSON(http.MethodPost, "/users/"+args[0]+"/"+action, nil, nil, nil)
			if err != nil {
				return err
			}
			return printStatus(cmd, status, message, args[0])
		},
	}
}

func newUsersSetPasswordCmd(client *Client) *cobra.Command {
	var oldPassword, newPassword string

	cmd := &cobra.Command{
		Use:   "set-password <id>",
		Short: "Change a user's password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if oldPassword == "" && IsStdinTTY() {
				pw, err := promptPassword("Current password: ")
				if err != nil {
					return err
				}
				oldPassword = pw
			}
			if newPassword == "" && IsStdinTTY() {
				pw, err := promptPassword("New password: ")
				if err != nil {
					return err
				}
				newPassword = pw
			}
			if oldPassword == "" || newPassword == "" {
				return fmt.Errorf("old and new passwords are required")
			}

			body := map[string]string{
				"old_password": oldPassword,
				"new_password": newPassword,
			}
			if err := client.doJSON(http.MethodPost, "/users/"+args[0]+"/password", nil, body, nil); err != nil {
				return err
			}
			return printStatus(cmd, "password_changed", "Password changed for user %q.", args[0])
		},
	}

	cmd.Flags().StringVar(&oldPassword, "old-password", "", "Current password (prompted when omitted)")
	cmd.Flags().StringVar(&newPassword, "new-password", "", "New password (prompted when omitted)")
	return cmd
}

func newUsersAddGroupCmd(client *Client) *cobra.Command {
	return &cobra.Command{
		Use:   "add-group <id> <group>",
		Short: "Add a user to a group",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]string{"group": args[1]}
			if err := client.doJSON(http.MethodPost, "/users/"+args[0]+"/groups", nil, body, nil); err != nil {
				return err
			}
			return printStatus(cmd, "added", "User %q added to group %q.", args[0], args[1])
		},
	}
}

func newUsersRemoveGroupCmd(client *Client) *cobra.Command {
	return &cobra.Command{
		Use:   "remove-group <id> <group>",
		Short: "Remove a user from a group",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := client.doJSON(http.MethodDelete, "/users/"+args[0]+"/groups/"+args[1], nil, nil, nil)
			if err != nil {
				return err
			}
			return printStatus(cmd, "removed", "User %q removed from group %q.", args[0], args[1])
		},
	}
}

func newUsersGrantCmd(client *Client) *cobra.Command {
	return &cobra.Command{
		Use:   "grant <id> <permission>",
		Short: "Grant a permission directly to a user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]string{"permission": args[1]}
			if err := client.doJSON(http.MethodPost, "/users/"+args[0]+"/permissions", nil, body, nil); err != nil {
				return err
			}
			return printStatus(cmd, "granted", "Permission %q granted to user %q.", args[1], args[0])
		},
	}
}

func newUsersRevokeCmd(client *Client) *cobra.Command {
	return &cobra.Command{
		Use:   "revoke <id> <permission>",
		Short: "Revoke a direct permission from a user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := client.doJSON(http.MethodDelete, "/users/"+args[0]+"/permissions/"+args[1], nil, nil, nil)
			if err != nil {
				return err
			}
			return printStatus(cmd, "revoked", "Permission %q revoked from user %q.", args[1], args[0])
		},
	}
}

// printStatus reports a completed mutation in the selected output
// format. Quiet mode suppresses the message entirely.
func printStatus(cmd *cobra.Command, status, format string, args ...interface{}) error {
	if isQuiet(cmd) {
		return nil
	}
	if getOutputFormat(cmd) == "json" {
		return PrintJSON(os.Stdout, map[string]string{"status": status})
	}
	_, _ = fmt.Fprintf(os.Stdout, format+"\n", args...)
	return nil
}
