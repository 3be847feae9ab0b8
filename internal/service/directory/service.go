// Package directory implements the identity and authorization service
// fronting the in-memory registries. Mutations hit the registries
// first and are then persisted through the store port; the registries
// themselves never touch storage.
package directory

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"posgate/internal/domain"
	"posgate/internal/rbac"
)

// Service orchestrates the permission catalog, group graph and user
// index, and records every decision in the audit log.
type Service struct {
	groups            *rbac.GroupRegistry
	identities        *rbac.IdentityRegistry
	store             domain.DirectoryStore
	audit             domain.AuditRepository
	logger            *slog.Logger
	credentialMaxDays int
}

// NewService creates a new directory Service. A credentialMaxDays of
// zero disables credential expiry checks at login.
func NewService(
	groups *rbac.GroupRegistry,
	identities *rbac.IdentityRegistry,
	store domain.DirectoryStore,
	audit domain.AuditRepository,
	logger *slog.Logger,
	credentialMaxDays int,
) *Service {
	return &Service{
		groups:            groups,
		identities:        identities,
		store:             store,
		audit:             audit,
		logger:            logger,
		credentialMaxDays: credentialMaxDays,
	}
}

// LoadAll populates the registries from the store. The three
// collections are fetched in parallel; registration then runs in
// dependency order so grant names resolve against the full catalog.
// Rows that fail to rebuild are logged and skipped, never fatal.
func (s *Service) LoadAll(ctx context.Context) error {
	var (
		permRecs  []domain.PermissionRecord
		groupRecs []domain.GroupRecord
		userRecs  []domain.UserRecord
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		permRecs, err = s.store.LoadAllPermissions(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		groupRecs, err = s.store.LoadAllGroups(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		userRecs, err = s.store.LoadAllUsers(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("load directory: %w", err)
	}

	for _, rec := range permRecs {
		p, err := domain.NewPermissionFromRecord(rec)
		if err != nil {
			s.logger.Warn("skipping invalid permission row", "name", rec.Name, "error", err)
			continue
		}
		s.groups.RegisterPermission(p)
	}

	for _, rec := range groupRecs {
		grp, err := domain.NewGroup(rec.Name, rec.Description, rec.IsDefault)
		if err != nil {
			s.logger.Warn("skipping invalid group row", "name", rec.Name, "error", err)
			continue
		}
		for _, name := range rec.PermissionNames {
			p, ok := s.groups.ResolvePermission(name)
			if !ok {
				s.logger.Warn("group references unknown permission", "group", grp.Name(), "permission", name)
				continue
			}
			grp.AddPermission(p)
		}
		for _, parent := range rec.ParentNames {
			if err := grp.AddParent(parent); err != nil {
				s.logger.Warn("dropping invalid parent link", "group", grp.Name(), "parent", parent, "error", err)
			}
		}
		s.groups.RegisterGroup(grp)
	}

	for _, rec := range userRecs {
		var direct []*domain.Permission
		for _, name := range rec.PermissionNames {
			p, ok := s.groups.ResolvePermission(name)
			if !ok {
				s.logger.Warn("user references unknown permission", "user", rec.Username, "permission", name)
				continue
			}
			direct = append(direct, p)
		}
		p, err := domain.NewPrincipalFromRecord(rec, direct)
		if err != nil {
			s.logger.Warn("skipping invalid user row", "username", rec.Username, "error", err)
			continue
		}
		if err := s.identities.AddUser(p); err != nil {
			s.logger.Warn("skipping user row", "username", rec.Username, "error", err)
		}
	}

	s.logger.Info("directory loaded",
		"permissions", s.groups.PermissionCount(),
		"groups", s.groups.GroupCount(),
		"users", s.identities.Count())
	return nil
}

// resolveGrants maps permission names to registered permissions. Every
// name must resolve; callers registering entities get an error instead
// of a silently dropped grant.
func (s *Service) resolveGrants(names []string) ([]*domain.Permission, error) {
	perms := make([]*domain.Permission, 0, len(names))
	for _, name := range names {
		p, ok := s.groups.ResolvePermission(name)
		if !ok {
			return nil, domain.ErrNotFound("permission %q is not registered", name)
		}
		perms = append(perms, p)
	}
	return perms, nil
}

// UserCount returns the number of registered users.
func (s *Service) UserCount() int { return s.identities.Count() }

// LockedUserCount returns the number of locked accounts.
func (s *Service) LockedUserCount() int { return s.identities.LockedCount() }

// ActiveUserCount returns the number of active accounts.
func (s *Service) ActiveUserCount() int { return s.identities.ActiveCount() }

// GroupCount returns the number of registered groups.
func (s *Service) GroupCount() int { return s.groups.GroupCount() }

// PermissionCount returns the size of the permission catalog.
func (s *Service) PermissionCount() int { return s.groups.PermissionCount() }
