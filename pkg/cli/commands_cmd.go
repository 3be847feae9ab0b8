package cli

import (
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// commandInfo describes one leaf command for machine consumption.
type commandInfo struct {
	Path    string     `json:"path"`
	Group   string     `json:"group"`
	Short   string     `json:"short"`
	Long    string     `json:"long,omitempty"`
	Example string     `json:"example,omitempty"`
	Args    string     `json:"args,omitempty"`
	Flags   []flagInfo `json:"flags,omitempty"`
}

type flagInfo struct {
	Name     string `json:"name"`
	Short    string `json:"shorthand,omitempty"`
	Type     string `json:"type"`
	Default  string `json:"default,omitempty"`
	Usage    string `json:"usage,omitempty"`
	Required bool   `json:"required,omitempty"`
}

func (c commandInfo) matches(q string) bool {
	hay := strings.ToLower(c.Path + " " + c.Short + " " + c.Long)
	return strings.Contains(hay, q)
}

func newCommandsCmd() *cobra.Command {
	var (
		filter string
		group  string
	)

	cmd := &cobra.Command{
		Use:   "commands",
		Short: "List every CLI command with its flags and description",
		Long: `Walks the command tree and prints each leaf command's path, flags,
and description. Runs entirely offline, so scripts and agents can
discover the CLI surface without a server.`,
		Example: `  # Everything, as a table
  posgate commands

  # Find the snapshot commands
  posgate commands --filter snapshot

  # Full metadata for one command group
  posgate commands --group users --output json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var entries []commandInfo
			collectCommands(cmd.Root(), "", &entries)
			sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })

			q := strings.ToLower(filter)
			kept := entries[:0]
			for _, e := range entries {
				if group != "" && e.Group != group {
					continue
				}
				if q != "" && !e.matches(q) {
					continue
				}
				kept = append(kept, e)
			}

			if getOutputFormat(cmd) == "json" {
				return PrintJSON(os.Stdout, kept)
			}
			rows := make([][]string, 0, len(kept))
			for _, e := range kept {
				rows = append(rows, []string{e.Path, e.Short})
			}
			PrintTable(os.Stdout, []string{"path", "description"}, rows)
			return nil
		},
	}

	cmd.Flags().StringVar(&filter, "filter", "", "Substring search across command names and descriptions")
	cmd.Flags().StringVar(&group, "group", "", "Only list commands in this group (e.g. users, snapshot)")

	return cmd
}

// collectCommands walks the tree rooted at cmd, appending an entry per
// visible leaf. Group commands contribute their name to the path but no
// entry of their own.
func collectCommands(cmd *cobra.Command, prefix string, out *[]commandInfo) {
	for _, child := range cmd.Commands() {
		if child.Hidden || child.Name() == "help" || child.Name() == "completion" {
			continue
		}
		path := child.Name()
		if prefix != "" {
			path = prefix + " " + child.Name()
		}
		if child.HasSubCommands() {
			collectCommands(child, path, out)
			continue
		}

		grp, _, _ := strings.Cut(path, " ")
		_, positional, _ := strings.Cut(child.Use, " ")
		*out = append(*out, commandInfo{
			Path:    path,
			Group:   grp,
			Short:   child.Short,
			Long:    child.Long,
			Example: child.Example,
			Args:    positional,
			Flags:   describeFlags(child),
		})
	}
}

func describeFlags(cmd *cobra.Command) []flagInfo {
	var out []flagInfo
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Hidden || f.Name == "help" {
			return
		}
		fi := flagInfo{
			Name:    f.Name,
			Short:   f.Shorthand,
			Type:    f.Value.Type(),
			Default: f.DefValue,
			Usage:   f.Usage,
		}
		// cobra records MarkFlagRequired in this annotation.
		if req, ok := f.Annotations[cobra.BashCompOneRequiredFlag]; ok && len(req) > 0 && req[0] == "true" {
			fi.Required = true
		}
		out = append(out, fi)
	})
	return out
}
