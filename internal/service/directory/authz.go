package directory

import (
	"context"

	"posgate/internal/domain"
)

// Check reports whether the user holds the permission, directly or
// through group inheritance. Unknown users are denied, never an error.
func (s *Service) Check(ctx context.Context, userID, permission string) bool {
	p, ok := s.identities.UserByID(userID)
	if !ok {
		msg := "user not found"
		s.insertAudit(ctx, userID, "CHECK", domain.NormalizeName(permission), "DENIED", &msg)
		return false
	}
	allowed := p.HasPermission(permission, s.groups)
	status := "DENIED"
	if allowed {
		status = "ALLOWED"
	}
	s.insertAudit(ctx, p.Username(), "CHECK", domain.NormalizeName(permission), status, nil)
	return allowed
}

// EffectivePermissions returns the names of every permission the user
// holds, directly or through groups. Unknown users get an empty set.
func (s *Service) EffectivePermissions(userID string) []string {
	p, ok := s.identities.UserByID(userID)
	if !ok {
		return []string{}
	}
	perms := p.EffectivePermissions(s.groups)
	names := make([]string, 0, len(perms))
	for _, perm := range perms {
		names = append(names, perm.Name())
	}
	return names
}

// HasAnyPermission reports whether the user holds at least one of the
// named permissions. An empty query set is never satisfied.
func (s *Service) HasAnyPermission(userID string, permissions []string) bool {
	p, ok := s.identities.UserByID(userID)
	if !ok {
		return false
	}
	return p.HasAnyPermission(permissions, s.groups)
}

// HasAllPermissions reports whether the user holds every named
// permission. An empty query set is vacuously satisfied.
func (s *Service) HasAllPermissions(userID string, permissions []string) bool {
	p, ok := s.identities.UserByID(userID)
	if !ok {
		return false
	}
	return p.HasAllPermissions(permissions, s.groups)
}

// ContextPrincipal builds the request principal for an authenticated
// username. Admin standing is derived from pos.admin at call time, so a
// revoked grant takes effect on the next request. Accounts that cannot
// log in resolve to nothing.
func (s *Service) ContextPrincipal(username, source string) (domain.ContextPrincipal, bool) {
	p, ok := s.identities.UserByUsername(domain.NormalizeName(username))
	if !ok {
		return domain.ContextPrincipal{}, false
	}
	return s.contextPrincipal(p, source)
}

// ContextPrincipalForUser is ContextPrincipal keyed by user ID, used by
// the API key path.
func (s *Service) ContextPrincipalForUser(id, source string) (domain.ContextPrincipal, bool) {
	p, ok := s.identities.UserByID(id)
	if !ok {
		return domain.ContextPrincipal{}, false
	}
	return s.contextPrincipal(p, source)
}

func (s *Service) contextPrincipal(p *domain.Principal, source string) (domain.ContextPrincipal, bool) {
	if !p.CanLogin() {
		return domain.ContextPrincipal{}, false
	}
	return domain.ContextPrincipal{
		Name:    p.Username(),
		IsAdmin: p.HasPermission(domain.PermAdmin, s.groups),
		Source:  source,
	}, true
}
