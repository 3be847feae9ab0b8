// Package declarative loads directory seed documents from a YAML tree.
// Each document carries apiVersion posgate/v1 and a Kind of Permission,
// Group or User; files may hold several documents separated by "---".
package declarative

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"posgate/internal/domain"
)

// LoadOptions configures YAML loading behavior.
type LoadOptions struct {
	AllowUnknownFields bool
}

// Load reads every .yaml/.yml file under dir (recursively, sorted) and
// returns the declared state. Unknown fields are rejected.
func Load(dir string) (*State, error) {
	return LoadWithOptions(dir, LoadOptions{})
}

// LoadWithOptions reads the seed tree using caller-provided options.
func LoadWithOptions(dir string, opts LoadOptions) (*State, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("seed directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("seed directory: %s is not a directory", dir)
	}

	state := &State{}
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if strings.HasPrefix(name, ".") {
			if d.IsDir() && path != dir {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !isYAMLFile(name) {
			return nil
		}
		return loadFile(path, state, opts)
	})
	if err != nil {
		return nil, err
	}
	if err := checkDuplicates(state); err != nil {
		return nil, err
	}
	return state, nil
}

func isYAMLFile(name string) bool {
	return strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")
}

// loadFile parses every document in one file and appends it to state.
func loadFile(path string, state *State, opts LoadOptions) error {
	f, err := os.Open(path) //nolint:gosec // intentional: reading user-specified seed files
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	for docIndex := 1; ; docIndex++ {
		var node yaml.Node
		if err := dec.Decode(&node); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("parse %s: %w", path, err)
		}
		if emptyDocument(&node) {
			continue
		}
		if err := loadDocument(path, docIndex, &node, state, opts); err != nil {
			return err
		}
	}
}

// emptyDocument reports whether a parsed document carries no content.
// A stray "---" separator or a comment-only document parses to a null
// scalar wrapped in a document node.
func emptyDocument(node *yaml.Node) bool {
	n := node
	if n.Kind == yaml.DocumentNode {
		if len(n.Content) == 0 {
			return true
		}
		n = n.Content[0]
	}
	return n.Kind == 0 || (n.Kind == yaml.ScalarNode && n.Tag == "!!null")
}

// loadDocument peeks at the envelope to dispatch on Kind, then decodes
// the node strictly into the matching type.
func loadDocument(path string, index int, node *yaml.Node, state *State, opts LoadOptions) error {
	var env Document
	if err := node.Decode(&env); err != nil {
		return fmt.Errorf("parse %s document %d: %w", path, index, err)
	}
	if env.APIVersion != SupportedAPIVersion {
		return fmt.Errorf("%s document %d: unsupported apiVersion %q (expected %q)",
			path, index, env.APIVersion, SupportedAPIVersion)
	}

	switch env.Kind {
	case KindNamePermission:
		var doc PermissionDoc
		if err := decodeStrict(path, index, node, &doc, opts); err != nil {
			return err
		}
		if domain.NormalizeName(doc.Name) == "" {
			return fmt.Errorf("%s document %d: permission name is required", path, index)
		}
		state.Permissions = append(state.Permissions, doc)
	case KindNameGroup:
		var doc GroupDoc
		if err := decodeStrict(path, index, node, &doc, opts); err != nil {
			return err
		}
		if domain.NormalizeName(doc.Name) == "" {
			return fmt.Errorf("%s document %d: group name is required", path, index)
		}
		state.Groups = append(state.Groups, doc)
	case KindNameUser:
		var doc UserDoc
		if err := decodeStrict(path, index, node, &doc, opts); err != nil {
			return err
		}
		if domain.NormalizeName(doc.Username) == "" {
			return fmt.Errorf("%s document %d: username is required", path, index)
		}
		if doc.Password != "" && doc.PasswordHash != "" {
			return fmt.Errorf("%s document %d: password and password_hash are mutually exclusive", path, index)
		}
		state.Users = append(state.Users, doc)
	default:
		return fmt.Errorf("%s document %d: unknown kind %q (expected Permission, Group or User)",
			path, index, env.Kind)
	}
	return nil
}

// decodeStrict re-encodes the node and decodes it with KnownFields so
// typos in field names fail loudly instead of being dropped.
func decodeStrict(path string, index int, node *yaml.Node, target any, opts LoadOptions) error {
	if opts.AllowUnknownFields {
		if err := node.Decode(target); err != nil {
			return fmt.Errorf("parse %s document %d: %w", path, index, err)
		}
		return nil
	}
	raw, err := yaml.Marshal(node)
	if err != nil {
		return fmt.Errorf("parse %s document %d: %w", path, index, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(target); err != nil {
		return fmt.Errorf("parse %s document %d: %w", path, index, err)
	}
	return nil
}

// checkDuplicates rejects trees that declare the same normalized name
// twice. The registries would upsert silently, which hides authoring
// mistakes in a seed tree.
func checkDuplicates(state *State) error {
	perms := make(map[string]struct{}, len(state.Permissions))
	for _, p := range state.Permissions {
		n := domain.NormalizeName(p.Name)
		if _, dup := perms[n]; dup {
			return fmt.Errorf("duplicate permission %q in seed tree", n)
		}
		perms[n] = struct{}{}
	}
	groups := make(map[string]struct{}, len(state.Groups))
	for _, g := range state.Groups {
		n := domain.NormalizeName(g.Name)
		if _, dup := groups[n]; dup {
			return fmt.Errorf("duplicate group %q in seed tree", n)
		}
		groups[n] = struct{}{}
	}
	users := make(map[string]struct{}, len(state.Users))
	for _, u := range state.Users {
		n := domain.NormalizeName(u.Username)
		if _, dup := users[n]; dup {
			return fmt.Errorf("duplicate user %q in seed tree", n)
		}
		users[n] = struct{}{}
	}
	return nil
}
