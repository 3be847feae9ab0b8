// Package seeds renders a markdown reference for the declarative seed
// format. Field tables come from the loader's own document types via
// reflection, so the reference cannot drift from what the loader accepts.
package seeds

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"posgate/internal/declarative"
)

type fieldDoc struct {
	Name        string
	Type        string
	Required    bool
	Description string
}

type kindDoc struct {
	Kind    string
	Summary string
	Fields  []fieldDoc
	Example string
}

// Field prose lives here rather than in struct tags; the loader types
// stay lean and the docs stay in one place.
var fieldDescriptions = map[string]string{
	"Permission.name":        "Canonical permission name. Normalized to lower case; must be unique across the seed tree.",
	"Permission.description": "Human-readable account of what the permission allows.",
	"Permission.aliases":     "Alternative names that resolve to this permission in grants and checks.",
	"Permission.default":     "Marks the permission as part of the default grant set for new setups.",
	"Group.name":             "Group name. Normalized to lower case; must be unique across the seed tree.",
	"Group.description":      "Human-readable account of who belongs in the group.",
	"Group.default":          "New users join this group automatically when true.",
	"Group.permissions":      "Permission names granted to the group. Each must be registered by the time the group document is applied.",
	"Group.parents":          "Parent group names the group inherits from. Weak references; a parent may be registered later.",
	"User.username":          "Login name. Normalized to lower case; must be unique across the seed tree.",
	"User.password":          "Plaintext password, hashed at apply time. Mutually exclusive with password_hash.",
	"User.password_hash":     "Pre-computed credential hash, stored as-is. Mutually exclusive with password.",
	"User.first_name":        "Given name shown in profiles and receipts.",
	"User.last_name":         "Family name shown in profiles and receipts.",
	"User.email":             "Contact address for the account.",
	"User.groups":            "Groups the user joins. Weak references resolved at read time.",
	"User.permissions":       "Direct permission grants. Each must be registered by the time the user document is applied.",
}

var requiredFields = map[string]bool{
	"Permission.apiVersion": true,
	"Permission.kind":       true,
	"Permission.name":       true,
	"Group.apiVersion":      true,
	"Group.kind":            true,
	"Group.name":            true,
	"User.apiVersion":       true,
	"User.kind":             true,
	"User.username":         true,
}

const permissionExample = `apiVersion: posgate/v1
kind: Permission
name: pos.reports
description: View end-of-day reports
aliases: [reports]
`

const groupExample = `apiVersion: posgate/v1
kind: Group
name: managers
description: Shift managers
permissions: [pos.reports]
parents: [staff]
`

const userExample = `apiVersion: posgate/v1
kind: User
username: morgan
password: changeme
first_name: Morgan
email: morgan@example.com
groups: [managers]
`

// Generate renders the seed format reference under outDir. The output
// directory is wiped first.
func Generate(outDir string) error {
	if err := os.RemoveAll(outDir); err != nil {
		return fmt.Errorf("clean output dir: %w", err)
	}
	if err := os.MkdirAll(filepath.Join(outDir, "kinds"), 0o750); err != nil {
		return fmt.Errorf("create kinds dir: %w", err)
	}

	docs := []kindDoc{
		{
			Kind:    declarative.KindNamePermission,
			Summary: "Registers a named permission in the catalog. Reapplying updates description, aliases and the default flag in place.",
			Fields:  structFields(declarative.KindNamePermission, reflect.TypeOf(declarative.PermissionDoc{})),
			Example: permissionExample,
		},
		{
			Kind:    declarative.KindNameGroup,
			Summary: "Registers a permission group. Reapplying replaces the group's grants and parents wholesale.",
			Fields:  structFields(declarative.KindNameGroup, reflect.TypeOf(declarative.GroupDoc{})),
			Example: groupExample,
		},
		{
			Kind:    declarative.KindNameUser,
			Summary: "Creates a user account. Applied only when the username is free, so operator changes and lockouts survive reapplying the same tree.",
			Fields:  structFields(declarative.KindNameUser, reflect.TypeOf(declarative.UserDoc{})),
			Example: userExample,
		},
	}

	for _, doc := range docs {
		path := filepath.Join(outDir, "kinds", strings.ToLower(doc.Kind)+".md")
		if err := writeKindPage(path, doc); err != nil {
			return err
		}
	}

	return writeIndexPage(filepath.Join(outDir, "index.md"), docs)
}

// structFields walks a document struct and renders one row per YAML
// field, in declaration order.
func structFields(kind string, t reflect.Type) []fieldDoc {
	fields := make([]fieldDoc, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := f.Tag.Get("yaml")
		name := strings.Split(tag, ",")[0]
		if name == "" || name == "-" {
			continue
		}
		fields = append(fields, fieldDoc{
			Name:        name,
			Type:        yamlType(f.Type),
			Required:    requiredFields[kind+"."+name],
			Description: fieldDescriptions[kind+"."+name],
		})
	}
	return fields
}

func yamlType(t reflect.Type) string {
	switch t.Kind() {
	case reflect.Slice:
		return "list of " + yamlType(t.Elem())
	case reflect.Bool:
		return "bool"
	default:
		return t.Kind().String()
	}
}

func writeKindPage(path string, doc kindDoc) error {
	var b strings.Builder
	b.WriteString(generatedHeader())
	b.WriteString(fmt.Sprintf("# Kind: `%s`\n\n", doc.Kind))
	b.WriteString(doc.Summary)
	b.WriteString("\n\n## Fields\n\n")
	b.WriteString("| Field | Type | Required | Description |\n")
	b.WriteString("| --- | --- | --- | --- |\n")
	for _, f := range doc.Fields {
		desc := f.Description
		if desc == "" {
			desc = "-"
		}
		b.WriteString(fmt.Sprintf("| `%s` | `%s` | `%t` | %s |\n", f.Name, f.Type, f.Required, desc))
	}
	b.WriteString("\n## Example\n\n```yaml\n")
	b.WriteString(doc.Example)
	b.WriteString("```\n")
	return writeFile(path, b.String())
}

func writeIndexPage(path string, docs []kindDoc) error {
	var b strings.Builder
	b.WriteString(generatedHeader())
	b.WriteString("# Declarative Seeds\n\n")
	b.WriteString(fmt.Sprintf("Seed files declare directory state as YAML documents with `apiVersion: %s`. ", declarative.SupportedAPIVersion))
	b.WriteString("A file may hold several documents separated by `---`; the server walks the seed directory recursively, skipping dotfiles. ")
	b.WriteString("Documents apply in dependency order regardless of file layout: permissions first, then groups, then users.\n\n")
	b.WriteString("## Kinds\n\n")
	for _, doc := range docs {
		b.WriteString(fmt.Sprintf("- [%s](./kinds/%s)\n", doc.Kind, strings.ToLower(doc.Kind)))
	}
	b.WriteString("\nUnknown fields are rejected; a typo in a seed file fails startup rather than being silently dropped.\n")
	return writeFile(path, b.String())
}

func generatedHeader() string {
	return "<!-- Code generated by cmd/docsgen. DO NOT EDIT. -->\n\n"
}

func writeFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create directory %q: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return fmt.Errorf("write %q: %w", path, err)
	}
	return nil
}
