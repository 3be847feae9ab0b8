// Package apilint lints the posgate OpenAPI contract against project
// conventions. Rules work on gopkg.in/yaml.v3 raw nodes so findings keep
// the line numbers of the source document, and individual findings can be
// waived inline with "apilint:ignore PGLNNN" comments.
package apilint

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Severity of a lint finding.
type Severity string

// Severity levels, weakest to strongest.
const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

func (s Severity) rank() int {
	switch s {
	case SeverityError:
		return 2
	case SeverityWarning:
		return 1
	default:
		return 0
	}
}

// Violation is a single lint finding.
type Violation struct {
	File     string
	Line     int
	RuleID   string
	Severity Severity
	Message  string
}

// String formats a violation in golangci-lint style.
func (v Violation) String() string {
	return fmt.Sprintf("%s:%d: %s %s: %s", v.File, v.Line, v.RuleID, v.Severity, v.Message)
}

// === Rules and their registry ===

// Rule is the interface every lint rule implements.
type Rule interface {
	ID() string
	Description() string
	DefaultSeverity() Severity
	Check(ctx *LintContext) []Violation
}

// registry holds all registered rules in registration order.
var registry []Rule

// Register adds a rule to the global registry; rules self-register
// from the init in rules.go.
func Register(r Rule) { registry = append(registry, r) }

// RegisteredRules returns a copy of the registry for introspection (e.g. -list-rules).
func RegisteredRules() []Rule {
	out := make([]Rule, len(registry))
	copy(out, registry)
	return out
}

// === Lint context ===

// LintContext gives a rule read access to the parsed spec plus the yaml
// helpers every rule needs. It is passed to each Rule.Check call.
type LintContext struct {
	File string
	Root *yaml.Node
}

// MapGet looks up a key in a YAML mapping node and returns the value node.
func (ctx *LintContext) MapGet(m *yaml.Node, key string) *yaml.Node { return mapGet(m, key) }

// HasGlobalSecurity reports whether the document declares top-level security.
func (ctx *LintContext) HasGlobalSecurity() bool {
	sec := mapGet(ctx.Root, "security")
	return sec != nil && len(sec.Content) > 0
}

// ResolveRef reports whether a $ref string resolves to a component.
// External refs are not checked and always resolve.
func (ctx *LintContext) ResolveRef(ref string) bool {
	if !strings.HasPrefix(ref, "#/") {
		return true
	}
	node := ctx.Root
	for _, p := range strings.Split(strings.TrimPrefix(ref, "#/"), "/") {
		if node = mapGet(node, p); node == nil {
			return false
		}
	}
	return true
}

// ForEachOperation calls fn for every (path, method, operationNode) in the spec.
func (ctx *LintContext) ForEachOperation(fn func(path, method string, op *yaml.Node)) {
	paths := mapGet(ctx.Root, "paths")
	if paths == nil {
		return
	}
	for i := 0; i+1 < len(paths.Content); i += 2 {
		pathKey := paths.Content[i].Value
		pathItem := paths.Content[i+1]
		for j := 0; j+1 < len(pathItem.Content); j += 2 {
			if method := pathItem.Content[j].Value; httpMethods[method] {
				fn(pathKey, method, pathItem.Content[j+1])
			}
		}
	}
}

// Violation creates a Violation carrying the context's file path.
func (ctx *LintContext) Violation(line int, ruleID string, sev Severity, msg string) Violation {
	return Violation{File: ctx.File, Line: line, RuleID: ruleID, Severity: sev, Message: msg}
}

// === Linter & run loop ===

// Linter runs the rule registry against one parsed OpenAPI document.
type Linter struct {
	ctx *LintContext
}

// New parses the given YAML file and returns a Linter.
func New(path string) (*Linter, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is provided by the caller
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, fmt.Errorf("%s: empty or invalid YAML document", path)
	}
	return &Linter{ctx: &LintContext{File: path, Root: doc.Content[0]}}, nil
}

// Run executes all registered rules at their default severity and returns
// violations sorted by line number.
func (l *Linter) Run() []Violation {
	return l.RunWithConfig(nil)
}

// RunWithConfig executes all registered rules using the given configuration
// (nil for defaults). Rules overridden to "off" are skipped, and findings
// waived by inline suppression comments are dropped.
func (l *Linter) RunWithConfig(cfg *Config) []Violation {
	var vs []Violation
	for _, rule := range registry {
		sev := cfg.severityFor(rule)
		if sev == "" {
			continue
		}
		for _, v := range rule.Check(l.ctx) {
			v.Severity = sev
			if !suppressed(l.ctx.Root, v.Line, rule.ID()) {
				vs = append(vs, v)
			}
		}
	}
	sort.Slice(vs, func(i, j int) bool { return vs[i].Line < vs[j].Line })
	return vs
}

// HasErrors reports whether any violation has error severity.
func HasErrors(vs []Violation) bool {
	for _, v := range vs {
		if v.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Filter returns violations at or above the given severity.
func Filter(vs []Violation, minSev Severity) []Violation {
	var out []Violation
	for _, v := range vs {
		if v.Severity.rank() >= minSev.rank() {
			out = append(out, v)
		}
	}
	return out
}

// === Suppression comments ===

// suppressRe matches YAML comments like "apilint:ignore PGL012 PGL013".
var suppressRe = regexp.MustCompile(`apilint:ignore\s+(PGL\d+(?:\s+PGL\d+)*)`)

// suppressed reports whether a finding for ruleID at line is waived by an
// inline comment. A comment counts when it sits on the flagged node itself,
// on the line directly above it, or on an ancestor mapping key whose value
// spans the flagged line.
func suppressed(root *yaml.Node, line int, ruleID string) bool {
	for _, ln := range []int{line, line - 1} {
		if n := nodeAt(root, ln); n != nil && nodeWaives(n, ruleID) {
			return true
		}
	}
	return ancestorKeyWaives(root, line, ruleID)
}

func nodeWaives(n *yaml.Node, ruleID string) bool {
	return commentWaives(n.LineComment, ruleID) || commentWaives(n.HeadComment, ruleID)
}

// ancestorKeyWaives descends along the nodes spanning the line, checking the
// comment of every mapping key passed on the way down.
func ancestorKeyWaives(n *yaml.Node, line int, ruleID string) bool {
	if n == nil {
		return false
	}
	if n.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(n.Content); i += 2 {
			key, val := n.Content[i], n.Content[i+1]
			if key.Line > line || !spans(val, line) {
				continue
			}
			return nodeWaives(key, ruleID) || ancestorKeyWaives(val, line, ruleID)
		}
		return false
	}
	for _, c := range n.Content {
		if spans(c, line) && ancestorKeyWaives(c, line, ruleID) {
			return true
		}
	}
	return false
}

// spans reports whether the node or any descendant sits on the line.
func spans(n *yaml.Node, line int) bool {
	if n == nil {
		return false
	}
	if n.Line == line {
		return true
	}
	for _, c := range n.Content {
		if spans(c, line) {
			return true
		}
	}
	return false
}

// nodeAt returns the first node in document order sitting on the line.
func nodeAt(n *yaml.Node, line int) *yaml.Node {
	if n == nil {
		return nil
	}
	if n.Line == line {
		return n
	}
	for _, c := range n.Content {
		if found := nodeAt(c, line); found != nil {
			return found
		}
	}
	return nil
}

// commentWaives checks whether a YAML comment waives the given rule ID.
func commentWaives(comment, ruleID string) bool {
	if comment == "" {
		return false
	}
	for _, m := range suppressRe.FindAllStringSubmatch(comment, -1) {
		for _, id := range strings.Fields(m[1]) {
			if id == ruleID {
				return true
			}
		}
	}
	return false
}

// === YAML node helpers ===

// mapGet looks up a key in a YAML mapping node and returns the value node.
func mapGet(m *yaml.Node, key string) *yaml.Node {
	if m == nil || m.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

// httpMethods is the set of HTTP methods in OpenAPI.
var httpMethods = map[string]bool{
	"get": true, "put": true, "post": true, "delete": true,
	"options": true, "head": true, "patch": true, "trace": true,
}

// operationID extracts the operationId from an operation node.
func operationID(op *yaml.Node) string {
	if n := mapGet(op, "operationId"); n != nil {
		return n.Value
	}
	return ""
}

// camelCaseRe matches lowerCamelCase identifiers.
var camelCaseRe = regexp.MustCompile(`^[a-z][a-zA-Z0-9]*$`)

// snakeCaseRe matches snake_case identifiers.
var snakeCaseRe = regexp.MustCompile(`^[a-z][a-z0-9]*(_[a-z0-9]+)*$`)

// kebabCaseRe matches kebab-case path segments.
var kebabCaseRe = regexp.MustCompile(`^[a-z][a-z0-9]*(-[a-z0-9]+)*$`)
