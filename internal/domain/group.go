package domain

import (
	"sort"
	"strings"
	"sync"
)

// Group is a named bundle of permissions plus weak references, by name,
// to zero or more parent groups. Parent links are plain strings so groups
// can be created, removed and re-created independently without dangling
// pointers; a parent name that matches no registered group simply
// contributes nothing at resolution time.
//
// Only the trivial self-cycle is rejected here. Longer cycles (a -> b -> a)
// are legal at write time and neutralized by the registry's cycle-safe
// traversal, so concurrent edits can never wedge a write by forming a loop.
type Group struct {
	mu          sync.RWMutex
	name        string
	description string
	isDefault   bool
	permissions map[string]*Permission // keyed by canonical permission name
	parents     map[string]struct{}    // normalized parent group names
}

// NewGroup builds a Group. The name is normalized and must be non-empty
// after normalization.
func NewGroup(name, description string, isDefault bool) (*Group, error) {
	n := NormalizeName(name)
	if n == "" {
		return nil, ErrValidation("group name is required")
	}
	return &Group{
		name:        n,
		description: strings.TrimSpace(description),
		isDefault:   isDefault,
		permissions: make(map[string]*Permission),
		parents:     make(map[string]struct{}),
	}, nil
}

// Name returns the normalized group name.
func (g *Group) Name() string { return g.name }

// Description returns the human-readable description.
func (g *Group) Description() string { return g.description }

// IsDefault reports whether new users should join this group automatically.
func (g *Group) IsDefault() bool { return g.isDefault }

// AddPermission grants a permission to the group. Granting the same
// permission name twice replaces the stored object, so an upserted
// permission with new aliases takes effect here too.
func (g *Group) AddPermission(p *Permission) {
	if p == nil {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.permissions[p.Name()] = p
}

// RemovePermission revokes a permission by object identity (canonical
// name). Returns true if something was removed.
func (g *Group) RemovePermission(p *Permission) bool {
	if p == nil {
		return false
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.permissions[p.Name()]; !ok {
		return false
	}
	delete(g.permissions, p.Name())
	return true
}

// RemovePermissionNamed revokes every permission that matches query by
// name or alias. Returns true if something was removed.
func (g *Group) RemovePermissionNamed(query string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	removed := false
	for name, p := range g.permissions {
		if p.Matches(query) {
			delete(g.permissions, name)
			removed = true
		}
	}
	return removed
}

// HasPermission reports whether this group directly holds a permission
// matching query. Parent groups are not consulted; inherited permissions
// are the registry's concern.
func (g *Group) HasPermission(query string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, p := range g.permissions {
		if p.Matches(query) {
			return true
		}
	}
	return false
}

// Permissions returns the group's own permissions sorted by name.
func (g *Group) Permissions() []*Permission {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]*Permission, 0, len(g.permissions))
	for _, p := range g.permissions {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// PermissionCount returns the number of directly held permissions.
func (g *Group) PermissionCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.permissions)
}

// AddParent links this group under a parent by name. The name is
// normalized; empty names and the trivial self-reference are rejected.
func (g *Group) AddParent(name string) error {
	n := NormalizeName(name)
	if n == "" {
		return ErrValidation("parent group name is required")
	}
	if n == g.name {
		return ErrValidation("group %q cannot be its own parent", g.name)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.parents[n] = struct{}{}
	return nil
}

// RemoveParent unlinks a parent by name. Returns true if the link existed.
func (g *Group) RemoveParent(name string) bool {
	n := NormalizeName(name)
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.parents[n]; !ok {
		return false
	}
	delete(g.parents, n)
	return true
}

// HasParent reports whether the group links directly to the named parent.
func (g *Group) HasParent(name string) bool {
	n := NormalizeName(name)
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.parents[n]
	return ok
}

// Parents returns the parent group names in sorted order.
func (g *Group) Parents() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]string, 0, len(g.parents))
	for n := range g.parents {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// ParentCount returns the number of direct parent links.
func (g *Group) ParentCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.parents)
}

// IsEmpty reports whether the group holds no permissions and no parent
// links.
func (g *Group) IsEmpty() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.permissions) == 0 && len(g.parents) == 0
}

// Record converts the group to its persistence form.
func (g *Group) Record() GroupRecord {
	g.mu.RLock()
	defer g.mu.RUnlock()
	perms := make([]string, 0, len(g.permissions))
	for name := range g.permissions {
		perms = append(perms, name)
	}
	sort.Strings(perms)
	parents := make([]string, 0, len(g.parents))
	for name := range g.parents {
		parents = append(parents, name)
	}
	sort.Strings(parents)
	return GroupRecord{
		Name:            g.name,
		Description:     g.description,
		IsDefault:       g.isDefault,
		PermissionNames: perms,
		ParentNames:     parents,
	}
}
