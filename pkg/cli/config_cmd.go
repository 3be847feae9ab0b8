package cli

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration profiles",
	}
	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigSetProfileCmd())
	cmd.AddCommand(newConfigUseProfileCmd())
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	var reveal bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Display the configured profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := LoadUserConfig()
			if err != nil {
				return err
			}
			if !reveal {
				cfg = cfg.Redacted()
			}
			if getOutputFormat(cmd) == "json" {
				return PrintJSON(os.Stdout, cfg)
			}
			PrintTable(os.Stdout,
				[]string{"profile", "active", "host", "api-key", "token", "output"},
				profileRows(cfg))
			return nil
		},
	}

	cmd.Flags().BoolVar(&reveal, "reveal", false, "Show credentials unmasked")
	return cmd
}

// profileRows flattens the profile map into table rows, sorted by name,
// with the active profile starred.
func profileRows(cfg *UserConfig) [][]string {
	names := make([]string, 0, len(cfg.Profiles))
	for name := range cfg.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([][]string, 0, len(names))
	for _, name := range names {
		p := cfg.Profiles[name]
		active := ""
		if name == cfg.CurrentProfile {
			active = "*"
		}
		rows = append(rows, []string{name, active, p.Host, p.APIKey, p.Token, p.Output})
	}
	return rows
}

func newConfigSetProfileCmd() *cobra.Command {
	var name, host, apiKey, token, output string

	cmd := &cobra.Command{
		Use:   "set-profile",
		Short: "Create or update a configuration profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			changed := cmd.Flags().Changed

			if changed("host") {
				normalized, err := normalizeHostURL(host)
				if err != nil {
					return err
				}
				host = normalized
			}
			if changed("output") {
				if err := validateOutputFormat(output); err != nil {
					return err
				}
			}

			cfg, err := LoadUserConfig()
			if err != nil {
				return err
			}

			// Merge only the flags that were set, so repeated calls
			// can update a profile field by field.
			p := cfg.Profiles[name]
			for _, f := range []struct {
				flag string
				src  string
				dst  *string
			}{
				{"host", host, &p.Host},
				{"api-key", apiKey, &p.APIKey},
				{"token", token, &p.Token},
				{"output", output, &p.Output},
			} {
				if changed(f.flag) {
					*f.dst = f.src
				}
			}
			cfg.Profiles[name] = p

			if err := SaveUserConfig(cfg); err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return PrintJSON(os.Stdout, map[string]string{
					"status":  "ok",
					"profile": name,
					"path":    ConfigPath(),
				})
			}
			fmt.Fprintf(os.Stdout, "Profile %q saved to %s\n", name, ConfigPath())
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Profile name (required)")
	cmd.Flags().StringVar(&host, "host", "", "API host URL")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "API key")
	cmd.Flags().StringVar(&token, "token", "", "Session token")
	cmd.Flags().StringVar(&output, "output", "", "Default output format")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newConfigUseProfileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "use-profile <name>",
		Short: "Select the active configuration profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return switchProfile(cmd, args[0])
		},
	}
}

func switchProfile(cmd *cobra.Command, name string) error {
	cfg, err := LoadUserConfig()
	if err != nil {
		return err
	}
	if _, ok := cfg.Profiles[name]; !ok {
		return fmt.Errorf("profile %q not found", name)
	}

	cfg.CurrentProfile = name
	if err := SaveUserConfig(cfg); err != nil {
		return err
	}

	if getOutputFormat(cmd) == "json" {
		return PrintJSON(os.Stdout, map[string]string{
			"status":         "ok",
			"active_profile": name,
		})
	}
	fmt.Fprintf(os.Stdout, "Active profile set to %q\n", name)
	return nil
}
