// Package cli implements the posgate command line client.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
)

// Execute runs the CLI and maps failure onto the process exit code.
func Execute() int {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		var exit *exitError
		if errors.As(err, &exit) {
			if exit.msg != "" {
				reportError(rootCmd, err)
			}
			return exit.code
		}
		reportError(rootCmd, err)
		return 1
	}
	return 0
}

// exitError carries a specific process exit code out of a RunE function.
// Commands return it instead of calling os.Exit so they stay testable
// in-process. An empty msg means the command already printed everything
// worth saying.
type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string { return e.msg }

// reportError honors --output json so scripted callers get a parseable
// failure instead of a bare stderr line.
func reportError(rootCmd *cobra.Command, err error) {
	output, _ := rootCmd.PersistentFlags().GetString("output")
	if output != "json" {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return
	}
	body := map[string]interface{}{"error": err.Error()}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		body["http_status"] = apiErr.HTTPStatus
		body["code"] = apiErr.Code
	}
	_ = PrintJSON(os.Stdout, body)
}

func newRootCmd() *cobra.Command {
	var (
		host    string
		apiKey  string
		token   string
		output  string
		profile string
		quiet   bool
	)

	rootCmd := &cobra.Command{
		Use:           "posgate",
		Short:         "Point-of-sale authorization gateway CLI",
		Long:          "Command-line interface for the posgate directory and store API.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&host, "host", "http://localhost:8080", "API host URL")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "API key for authentication")
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "JWT token for authentication")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "table", "Output format (table, json)")
	rootCmd.PersistentFlags().StringVarP(&profile, "profile", "p", "", "Config profile to use")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Only output resource identifiers")

	client := NewClient(host, apiKey, token)

	// Settle each connection setting as flag > env > profile > built-in
	// default, then point the shared client at the result.
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		cfg, err := LoadUserConfig()
		if err != nil {
			return err
		}
		p, err := cfg.ActiveProfile(profile)
		if err != nil {
			return err
		}

		settle := func(flagName, envVar, profileVal string, dst *string) {
			if cmd.Flags().Changed(flagName) {
				return
			}
			if v := os.Getenv(envVar); v != "" {
				*dst = v
			} else if profileVal != "" {
				*dst = profileVal
			}
		}
		settle("host", "POSGATE_HOST", p.Host, &host)
		settle("api-key", "POSGATE_API_KEY", p.APIKey, &apiKey)
		settle("token", "POSGATE_TOKEN", p.Token, &token)
		settle("output", "POSGATE_OUTPUT", p.Output, &output)

		if err := validateOutputFormat(output); err != nil {
			return err
		}

		client.BaseURL = host
		client.APIKey = apiKey
		client.Token = token
		return nil
	}

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newLoginCmd(client))

	// Directory resources
	rootCmd.AddCommand(newUsersCmd(client))
	rootCmd.AddCommand(newGroupsCmd(client))
	rootCmd.AddCommand(newPermissionsCmd(client))
	rootCmd.AddCommand(newCheckCmd(client))
	rootCmd.AddCommand(newEffectiveCmd(client))
	rootCmd.AddCommand(newSnapshotCmd(client))

	// Declarative seed commands
	rootCmd.AddCommand(newPlanCmd(client))
	rootCmd.AddCommand(newApplyCmd(client))
	rootCmd.AddCommand(newValidateCmd())

	// Discovery
	rootCmd.AddCommand(newCommandsCmd())

	rootCmd.AddCommand(newCompletionCmd())

	return rootCmd
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			default:
				return fmt.Errorf("unsupported shell: %s", args[0])
			}
		},
	}
}
