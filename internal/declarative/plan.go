package declarative

import (
	"fmt"
	"sort"

	"posgate/internal/domain"
)

// Operation is what applying a planned action will do. Seeds are
// additive: resources present on the server but absent from the tree
// are left alone, so there is no delete operation.
type Operation int

const (
	OpCreate Operation = iota
	OpUpdate
)

func (o Operation) String() string {
	switch o {
	case OpCreate:
		return "create"
	case OpUpdate:
		return "update"
	default:
		return fmt.Sprintf("Operation(%d)", int(o))
	}
}

// ResourceKind identifies which registry an action targets.
type ResourceKind int

const (
	KindPermission ResourceKind = iota
	KindGroup
	KindUser
)

func (k ResourceKind) String() string {
	switch k {
	case KindPermission:
		return "permission"
	case KindGroup:
		return "group"
	case KindUser:
		return "user"
	default:
		return fmt.Sprintf("ResourceKind(%d)", int(k))
	}
}

// Action is one pending registration. Desired holds the seed document
// (PermissionDoc, GroupDoc or UserDoc) to submit. Changes lists the
// fields that differ for updates.
type Action struct {
	Op      Operation
	Kind    ResourceKind
	Name    string
	Changes []string
	Desired any
}

// PlanError marks a declared resource the registration API cannot
// apply. The resource stays in the tree for server-side seeding but is
// skipped by apply.
type PlanError struct {
	Kind    ResourceKind
	Name    string
	Message string
}

// Plan is the ordered set of registrations that would bring the server
// in line with a seed tree. Actions are ordered permissions, groups,
// users so grant names resolve as they are applied.
type Plan struct {
	Actions []Action
	Errors  []PlanError
}

// HasChanges reports whether applying the plan would touch the server.
func (p *Plan) HasChanges() bool {
	return len(p.Actions) > 0
}

// Summary counts actions by operation.
func (p *Plan) Summary() (creates, updates int) {
	for _, a := range p.Actions {
		switch a.Op {
		case OpCreate:
			creates++
		case OpUpdate:
			updates++
		}
	}
	return creates, updates
}

// Diff compares a desired seed state against the server's current
// content, both expressed as states. Identity is the normalized name;
// registries replace documents wholesale on re-registration, so any
// field difference on an existing resource becomes a single update.
// Existing users are never touched.
func Diff(desired, actual *State) *Plan {
	plan := &Plan{}
	canon := aliasIndex(desired)

	actualPerms := make(map[string]PermissionDoc, len(actual.Permissions))
	for _, p := range actual.Permissions {
		actualPerms[domain.NormalizeName(p.Name)] = p
	}
	for _, p := range desired.Permissions {
		name := domain.NormalizeName(p.Name)
		current, exists := actualPerms[name]
		if !exists {
			plan.Actions = append(plan.Actions, Action{Op: OpCreate, Kind: KindPermission, Name: name, Desired: p})
			continue
		}
		var changes []string
		if p.Description != current.Description {
			changes = append(changes, "description")
		}
		if p.Default != current.Default {
			changes = append(changes, "default")
		}
		if !equalSets(normalizeSet(p.Aliases, nil), normalizeSet(current.Aliases, nil)) {
			changes = append(changes, "aliases")
		}
		if len(changes) > 0 {
			plan.Actions = append(plan.Actions, Action{Op: OpUpdate, Kind: KindPermission, Name: name, Changes: changes, Desired: p})
		}
	}

	actualGroups := make(map[string]GroupDoc, len(actual.Groups))
	for _, g := range actual.Groups {
		actualGroups[domain.NormalizeName(g.Name)] = g
	}
	for _, g := range desired.Groups {
		name := domain.NormalizeName(g.Name)
		current, exists := actualGroups[name]
		if !exists {
			plan.Actions = append(plan.Actions, Action{Op: OpCreate, Kind: KindGroup, Name: name, Desired: g})
			continue
		}
		var changes []string
		if g.Description != current.Description {
			changes = append(changes, "description")
		}
		if g.Default != current.Default {
			changes = append(changes, "default")
		}
		if !equalSets(normalizeSet(g.Permissions, canon), normalizeSet(current.Permissions, canon)) {
			changes = append(changes, "permissions")
		}
		if !equalSets(normalizeSet(g.Parents, nil), normalizeSet(current.Parents, nil)) {
			changes = append(changes, "parents")
		}
		if len(changes) > 0 {
			plan.Actions = append(plan.Actions, Action{Op: OpUpdate, Kind: KindGroup, Name: name, Changes: changes, Desired: g})
		}
	}

	actualUsers := make(map[string]struct{}, len(actual.Users))
	for _, u := range actual.Users {
		actualUsers[domain.NormalizeName(u.Username)] = struct{}{}
	}
	for _, u := range desired.Users {
		name := domain.NormalizeName(u.Username)
		if _, exists := actualUsers[name]; exists {
			continue
		}
		if u.PasswordHash != "" {
			plan.Errors = append(plan.Errors, PlanError{Kind: KindUser, Name: name,
				Message: "declares password_hash; the registration API only accepts plaintext passwords, seed it server-side instead"})
			continue
		}
		if u.Password == "" {
			plan.Errors = append(plan.Errors, PlanError{Kind: KindUser, Name: name,
				Message: "declares no password; the registration API requires one, seed it server-side instead"})
			continue
		}
		plan.Actions = append(plan.Actions, Action{Op: OpCreate, Kind: KindUser, Name: name, Desired: u})
	}

	return plan
}

// aliasIndex maps each declared alias to its canonical permission name
// so alias and canonical references to the same permission compare
// equal in Diff.
func aliasIndex(state *State) map[string]string {
	idx := make(map[string]string)
	for _, p := range state.Permissions {
		name := domain.NormalizeName(p.Name)
		if name == "" {
			continue
		}
		for _, a := range p.Aliases {
			if alias := domain.NormalizeName(a); alias != "" {
				idx[alias] = name
			}
		}
	}
	return idx
}

// normalizeSet normalizes, optionally canonicalizes, dedupes and sorts
// a name list for comparison.
func normalizeSet(names []string, canon map[string]string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		v := domain.NormalizeName(n)
		if c, ok := canon[v]; ok {
			v = c
		}
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func equalSets(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
