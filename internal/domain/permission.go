package domain

import (
	"sort"
	"strings"
)

// NormalizeName canonicalizes an identifier for lookups and comparisons:
// surrounding whitespace is trimmed and the result is lowercased. Every
// permission name, alias, group name and username in the system is stored
// and compared in this form.
func NormalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Built-in permission names seeded at startup and required by the store
// module.
const (
	PermSale   = "pos.sale"
	PermRefund = "pos.refund"
	PermAdmin  = "pos.admin"
)

// Permission is an immutable named capability. Identity is the normalized
// name alone: description, aliases and the default flag never participate
// in equality. Aliases are alternate names that resolve to the same
// permission, so "pos.admin" can also answer to "posadmin".
type Permission struct {
	name        string
	description string
	aliases     map[string]struct{}
	isDefault   bool
}

// NewPermission builds a Permission. The name is normalized and must be
// non-empty after normalization. Aliases are normalized the same way;
// empties and duplicates of the canonical name are dropped.
func NewPermission(name, description string, aliases []string, isDefault bool) (*Permission, error) {
	n := NormalizeName(name)
	if n == "" {
		return nil, ErrValidation("permission name is required")
	}
	set := make(map[string]struct{}, len(aliases))
	for _, a := range aliases {
		na := NormalizeName(a)
		if na == "" || na == n {
			continue
		}
		set[na] = struct{}{}
	}
	return &Permission{
		name:        n,
		description: strings.TrimSpace(description),
		aliases:     set,
		isDefault:   isDefault,
	}, nil
}

// NewPermissionFromRecord rebuilds a Permission from its persisted form.
func NewPermissionFromRecord(rec PermissionRecord) (*Permission, error) {
	return NewPermission(rec.Name, rec.Description, rec.Aliases, rec.IsDefault)
}

// Name returns the normalized canonical name.
func (p *Permission) Name() string { return p.name }

// Description returns the human-readable description.
func (p *Permission) Description() string { return p.description }

// IsDefault reports whether the permission should be granted to new setups.
func (p *Permission) IsDefault() bool { return p.isDefault }

// Aliases returns the alias set in sorted order.
func (p *Permission) Aliases() []string {
	out := make([]string, 0, len(p.aliases))
	for a := range p.aliases {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

// Matches reports whether query names this permission, either by its
// canonical name or by one of its aliases. The query is normalized first.
func (p *Permission) Matches(query string) bool {
	q := NormalizeName(query)
	if q == "" {
		return false
	}
	if q == p.name {
		return true
	}
	_, ok := p.aliases[q]
	return ok
}

// Equal reports name-only identity: two permissions with the same
// normalized name are the same permission regardless of description,
// aliases or default flag.
func (p *Permission) Equal(other *Permission) bool {
	return other != nil && p.name == other.name
}

// Record converts the permission to its persistence form.
func (p *Permission) Record() PermissionRecord {
	return PermissionRecord{
		Name:        p.name,
		Description: p.description,
		Aliases:     p.Aliases(),
		IsDefault:   p.isDefault,
	}
}
