package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

// getOutputFormat reads the effective --output value off the root
// command, after profile and env resolution.
func getOutputFormat(cmd *cobra.Command) string {
	v, _ := cmd.Root().PersistentFlags().GetString("output")
	return v
}

// isQuiet reports whether --quiet was set on the root command.
func isQuiet(cmd *cobra.Command) bool {
	v, _ := cmd.Root().PersistentFlags().GetBool("quiet")
	return v
}

func validateOutputFormat(output string) error {
	switch output {
	case "", "table", "json":
		return nil
	}
	return fmt.Errorf("unsupported output format %q: use 'table' or 'json'", output)
}

// PrintJSON writes v to w as indented JSON followed by a newline.
func PrintJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// PrintTable writes rows in aligned columns with uppercased headers.
// Columns are separated by two spaces and padded to the widest cell.
func PrintTable(w io.Writer, columns []string, rows [][]string) {
	if len(columns) == 0 {
		return
	}

	widths := make([]int, len(columns))
	for i, col := range columns {
		widths[i] = len(col)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	header := make([]string, len(columns))
	for i, col := range columns {
		header[i] = pad(strings.ToUpper(col), widths[i])
	}
	_, _ = fmt.Fprintln(w, strings.TrimRight(strings.Join(header, "  "), " "))

	for _, row := range rows {
		cells := make([]string, len(columns))
		for i := range columns {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			cells[i] = pad(cell, widths[i])
		}
		_, _ = fmt.Fprintln(w, strings.TrimRight(strings.Join(cells, "  "), " "))
	}
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// PrintDetail writes one key per line, sorted, with colons aligned.
// Nil values render as empty, maps and slices as compact JSON.
func PrintDetail(w io.Writer, fields map[string]interface{}) {
	keys := make([]string, 0, len(fields))
	maxKeyLen := 0
	for k := range fields {
		keys = append(keys, k)
		if len(k) > maxKeyLen {
			maxKeyLen = len(k)
		}
	}
	sort.Strings(keys)

	for _, k := range keys {
		_, _ = fmt.Fprintf(w, "%s:%s%s\n", k,
			strings.Repeat(" ", maxKeyLen-len(k)+2), renderValue(fields[k]))
	}
}

// renderValue formats a decoded JSON value for terminal output. Nested
// structures go back through the JSON encoder so they stay paste-able.
func renderValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case map[string]interface{}, []interface{}:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(data)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// ExtractField pulls a single field out of a decoded JSON object as a
// display string. Missing keys and nil values yield "".
func ExtractField(data map[string]interface{}, key string) string {
	v, ok := data[key]
	if !ok {
		return ""
	}
	return renderValue(v)
}

// ExtractRows converts a paginated list payload into table rows. Items
// that are not objects are skipped; missing columns render empty.
func ExtractRows(data map[string]interface{}, columns []string) [][]string {
	items, ok := data["data"].([]interface{})
	if !ok {
		return nil
	}
	var rows [][]string
	for _, item := range items {
		obj, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		row := make([]string, len(columns))
		for i, col := range columns {
			row[i] = ExtractField(obj, col)
		}
		rows = append(rows, row)
	}
	return rows
}
