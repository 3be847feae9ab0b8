package declarative

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

const (
	colorReset  = "\x1b[0m"
	colorRed    = "\x1b[31m"
	colorGreen  = "\x1b[32m"
	colorYellow = "\x1b[33m"
)

// FormatText renders a plan for a terminal: one line per skipped
// resource and pending action, then a summary line.
func FormatText(w io.Writer, p *Plan, noColor bool) {
	paint := func(code, s string) string {
		if noColor {
			return s
		}
		return code + s + colorReset
	}

	for _, e := range p.Errors {
		_, _ = fmt.Fprintln(w, paint(colorRed, fmt.Sprintf("  ! %s %q skipped: %s", e.Kind, e.Name, e.Message)))
	}
	for _, a := range p.Actions {
		switch a.Op {
		case OpCreate:
			_, _ = fmt.Fprintln(w, paint(colorGreen, fmt.Sprintf("  + %s %q will be created", a.Kind, a.Name)))
		case OpUpdate:
			_, _ = fmt.Fprintln(w, paint(colorYellow, fmt.Sprintf("  ~ %s %q will be updated (%s)",
				a.Kind, a.Name, strings.Join(a.Changes, ", "))))
		}
	}

	if !p.HasChanges() {
		if len(p.Errors) == 0 {
			_, _ = fmt.Fprintln(w, "No changes. The directory matches the declared state.")
			return
		}
		_, _ = fmt.Fprintln(w, "\nNo applicable changes.")
		return
	}

	creates, updates := p.Summary()
	_, _ = fmt.Fprintf(w, "\nPlan: %d to create, %d to update.\n", creates, updates)
}

type jsonAction struct {
	Operation string   `json:"operation"`
	Kind      string   `json:"kind"`
	Name      string   `json:"name"`
	Changes   []string `json:"changes,omitempty"`
}

type jsonPlanError struct {
	Kind    string `json:"kind"`
	Name    string `json:"name"`
	Message string `json:"message"`
}

type jsonPlan struct {
	Actions []jsonAction    `json:"actions"`
	Errors  []jsonPlanError `json:"errors,omitempty"`
	Creates int             `json:"creates"`
	Updates int             `json:"updates"`
}

// FormatJSON renders a plan as indented JSON for scripting.
func FormatJSON(w io.Writer, p *Plan) error {
	out := jsonPlan{Actions: make([]jsonAction, 0, len(p.Actions))}
	for _, a := range p.Actions {
		out.Actions = append(out.Actions, jsonAction{
			Operation: a.Op.String(),
			Kind:      a.Kind.String(),
			Name:      a.Name,
			Changes:   a.Changes,
		})
	}
	for _, e := range p.Errors {
		out.Errors = append(out.Errors, jsonPlanError{
			Kind:    e.Kind.String(),
			Name:    e.Name,
			Message: e.Message,
		})
	}
	out.Creates, out.Updates = p.Summary()

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("encode plan: %w", err)
	}
	_, _ = fmt.Fprintln(w, string(data))
	return nil
}
