package directory

import (
	"context"
	"fmt"

	"posgate/internal/domain"
)

// RegisterPermission upserts a permission into the catalog and
// persists it. Re-registering a name replaces the stored definition
// wholesale, aliases included.
func (s *Service) RegisterPermission(ctx context.Context, rec domain.PermissionRecord) (*domain.Permission, error) {
	p, err := domain.NewPermissionFromRecord(rec)
	if err != nil {
		return nil, err
	}
	s.groups.RegisterPermission(p)
	if err := s.store.SavePermission(ctx, p.Record()); err != nil {
		return nil, fmt.Errorf("persist permission %q: %w", p.Name(), err)
	}
	s.logAudit(ctx, "REGISTER_PERMISSION", p.Name())
	return p, nil
}

// UnregisterPermission removes a permission from the catalog. Grant
// links that reference the name keep dangling and heal if the name is
// ever re-registered.
func (s *Service) UnregisterPermission(ctx context.Context, name string) (bool, error) {
	normalized := domain.NormalizeName(name)
	removed := s.groups.UnregisterPermission(normalized)
	if err := s.store.DeletePermission(ctx, normalized); err != nil {
		return removed, fmt.Errorf("delete permission %q: %w", normalized, err)
	}
	if removed {
		s.logAudit(ctx, "UNREGISTER_PERMISSION", normalized)
	}
	return removed, nil
}

// Permission looks up a permission by canonical name or alias.
func (s *Service) Permission(query string) (*domain.Permission, bool) {
	return s.groups.ResolvePermission(query)
}

// Permissions returns the whole catalog sorted by name.
func (s *Service) Permissions() []*domain.Permission {
	return s.groups.Permissions()
}
