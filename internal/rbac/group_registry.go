// Package rbac implements the in-memory permission, group and identity
// registries that back the directory service. Registries are plain maps
// behind RW mutexes; resolution walks the group graph on every call so
// membership and grant edits take effect immediately.
package rbac

import (
	"sort"
	"sync"

	"posgate/internal/domain"
)

// GroupRegistry holds every registered group and permission, keyed by
// normalized name, and resolves inherited permissions across the parent
// graph.
//
// The graph may contain cycles and dangling parent names. Resolution
// carries a per-call visited set, so cycles terminate and unknown parents
// contribute nothing. Queries against unknown groups return empty results
// rather than errors.
type GroupRegistry struct {
	mu          sync.RWMutex
	groups      map[string]*domain.Group
	permissions map[string]*domain.Permission
}

// NewGroupRegistry creates an empty registry.
func NewGroupRegistry() *GroupRegistry {
	return &GroupRegistry{
		groups:      make(map[string]*domain.Group),
		permissions: make(map[string]*domain.Permission),
	}
}

var _ domain.GroupResolver = (*GroupRegistry)(nil)

// RegisterPermission adds or replaces a permission in the catalog, keyed
// by canonical name. Groups that already hold an older object with the
// same name are not rewritten; re-grant to pick up new aliases.
func (r *GroupRegistry) RegisterPermission(p *domain.Permission) {
	if p == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.permissions[p.Name()] = p
}

// UnregisterPermission removes a permission from the catalog by canonical
// name. Returns true if it existed.
func (r *GroupRegistry) UnregisterPermission(name string) bool {
	n := domain.NormalizeName(name)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.permissions[n]; !ok {
		return false
	}
	delete(r.permissions, n)
	return true
}

// Permission looks up a permission by canonical name.
func (r *GroupRegistry) Permission(name string) (*domain.Permission, bool) {
	n := domain.NormalizeName(name)
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.permissions[n]
	return p, ok
}

// ResolvePermission looks up a permission by canonical name or alias.
func (r *GroupRegistry) ResolvePermission(query string) (*domain.Permission, bool) {
	n := domain.NormalizeName(query)
	if n == "" {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.permissions[n]; ok {
		return p, true
	}
	for _, p := range r.permissions {
		if p.Matches(n) {
			return p, true
		}
	}
	return nil, false
}

// Permissions returns all registered permissions sorted by name.
func (r *GroupRegistry) Permissions() []*domain.Permission {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Permission, 0, len(r.permissions))
	for _, p := range r.permissions {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// PermissionCount returns the number of registered permissions.
func (r *GroupRegistry) PermissionCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.permissions)
}

// RegisterGroup adds or replaces a group, keyed by its normalized name.
func (r *GroupRegistry) RegisterGroup(g *domain.Group) {
	if g == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.groups[g.Name()] = g
}

// UnregisterGroup removes a group by name. Returns true if it existed.
// Other groups naming it as a parent keep the link; it simply resolves to
// nothing until a group with that name is registered again.
func (r *GroupRegistry) UnregisterGroup(name string) bool {
	n := domain.NormalizeName(name)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.groups[n]; !ok {
		return false
	}
	delete(r.groups, n)
	return true
}

// Group looks up a group by name.
func (r *GroupRegistry) Group(name string) (*domain.Group, bool) {
	n := domain.NormalizeName(name)
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.groups[n]
	return g, ok
}

// Groups returns all registered groups sorted by name.
func (r *GroupRegistry) Groups() []*domain.Group {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Group, 0, len(r.groups))
	for _, g := range r.groups {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// GroupCount returns the number of registered groups.
func (r *GroupRegistry) GroupCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.groups)
}

// DefaultGroups returns the groups flagged as defaults, sorted by name.
// New users join these automatically.
func (r *GroupRegistry) DefaultGroups() []*domain.Group {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Group, 0)
	for _, g := range r.groups {
		if g.IsDefault() {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// HasPermission reports whether the named group grants the permission,
// directly or through any reachable ancestor. The walk is depth-first
// with an explicit stack and a per-call visited set, so cycles and
// dangling parent names terminate cleanly. Cost is O(groups + parent
// links) worst case; nothing is cached.
func (r *GroupRegistry) HasPermission(groupName, permission string) bool {
	start := domain.NormalizeName(groupName)
	if start == "" {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	visited := map[string]bool{}
	stack := []string{start}
	for len(stack) > 0 {
		name := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[name] {
			continue
		}
		visited[name] = true

		g, ok := r.groups[name]
		if !ok {
			continue
		}
		if g.HasPermission(permission) {
			return true
		}
		stack = append(stack, g.Parents()...)
	}
	return false
}

// EffectivePermissions returns the union of the named group's own
// permissions and everything inherited from reachable ancestors, sorted
// by name. Unknown groups yield an empty slice.
func (r *GroupRegistry) EffectivePermissions(groupName string) []*domain.Permission {
	start := domain.NormalizeName(groupName)
	union := make(map[string]*domain.Permission)
	if start == "" {
		return []*domain.Permission{}
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	visited := map[string]bool{}
	stack := []string{start}
	for len(stack) > 0 {
		name := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[name] {
			continue
		}
		visited[name] = true

		g, ok := r.groups[name]
		if !ok {
			continue
		}
		for _, p := range g.Permissions() {
			union[p.Name()] = p
		}
		stack = append(stack, g.Parents()...)
	}

	out := make([]*domain.Permission, 0, len(union))
	for _, p := range union {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}
