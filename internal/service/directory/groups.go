package directory

import (
	"context"
	"fmt"

	"posgate/internal/domain"
)

// RegisterGroup upserts a group and persists it. Grant names must
// resolve against the permission catalog; parent names are weak
// references and may point at groups that do not exist yet.
func (s *Service) RegisterGroup(ctx context.Context, rec domain.GroupRecord) (*domain.Group, error) {
	grp, err := domain.NewGroup(rec.Name, rec.Description, rec.IsDefault)
	if err != nil {
		return nil, err
	}
	perms, err := s.resolveGrants(rec.PermissionNames)
	if err != nil {
		return nil, err
	}
	for _, p := range perms {
		grp.AddPermission(p)
	}
	for _, parent := range rec.ParentNames {
		if err := grp.AddParent(parent); err != nil {
			return nil, err
		}
	}
	s.groups.RegisterGroup(grp)
	if err := s.store.SaveGroup(ctx, grp.Record()); err != nil {
		return nil, fmt.Errorf("persist group %q: %w", grp.Name(), err)
	}
	s.logAudit(ctx, "REGISTER_GROUP", grp.Name())
	return grp, nil
}

// UnregisterGroup removes a group. Parent links in other groups and
// user memberships that reference the name keep dangling; traversal
// skips them until the name is re-registered.
func (s *Service) UnregisterGroup(ctx context.Context, name string) (bool, error) {
	normalized := domain.NormalizeName(name)
	removed := s.groups.UnregisterGroup(normalized)
	if err := s.store.DeleteGroup(ctx, normalized); err != nil {
		return removed, fmt.Errorf("delete group %q: %w", normalized, err)
	}
	if removed {
		s.logAudit(ctx, "UNREGISTER_GROUP", normalized)
	}
	return removed, nil
}

// Group looks up a group by name.
func (s *Service) Group(name string) (*domain.Group, bool) {
	return s.groups.Group(name)
}

// Groups returns all registered groups sorted by name.
func (s *Service) Groups() []*domain.Group {
	return s.groups.Groups()
}

// GroupEffectivePermissions returns the names of every permission a
// group holds, its own and those inherited through parents. Unknown
// groups get an empty set.
func (s *Service) GroupEffectivePermissions(name string) []string {
	perms := s.groups.EffectivePermissions(name)
	names := make([]string, 0, len(perms))
	for _, p := range perms {
		names = append(names, p.Name())
	}
	return names
}

// AddGroupPermission grants a permission to a group and persists the
// change.
func (s *Service) AddGroupPermission(ctx context.Context, groupName, permission string) error {
	grp, ok := s.groups.Group(groupName)
	if !ok {
		return domain.ErrNotFound("group %q not found", groupName)
	}
	p, ok := s.groups.ResolvePermission(permission)
	if !ok {
		return domain.ErrNotFound("permission %q is not registered", permission)
	}
	grp.AddPermission(p)
	if err := s.store.SaveGroup(ctx, grp.Record()); err != nil {
		return fmt.Errorf("persist group %q: %w", grp.Name(), err)
	}
	s.logAudit(ctx, "GRANT_GROUP_PERMISSION", grp.Name()+":"+p.Name())
	return nil
}

// RemoveGroupPermission revokes a permission, matched by name or
// alias, from a group.
func (s *Service) RemoveGroupPermission(ctx context.Context, groupName, permission string) error {
	grp, ok := s.groups.Group(groupName)
	if !ok {
		return domain.ErrNotFound("group %q not found", groupName)
	}
	if !grp.RemovePermissionNamed(permission) {
		return domain.ErrNotFound("group %q does not hold %q", grp.Name(), permission)
	}
	if err := s.store.SaveGroup(ctx, grp.Record()); err != nil {
		return fmt.Errorf("persist group %q: %w", grp.Name(), err)
	}
	s.logAudit(ctx, "REVOKE_GROUP_PERMISSION", grp.Name()+":"+domain.NormalizeName(permission))
	return nil
}

// AddGroupParent links a group to a parent by name. Self-links are
// rejected; longer cycles are allowed and handled at read time.
func (s *Service) AddGroupParent(ctx context.Context, groupName, parent string) error {
	grp, ok := s.groups.Group(groupName)
	if !ok {
		return domain.ErrNotFound("group %q not found", groupName)
	}
	if err := grp.AddParent(parent); err != nil {
		return err
	}
	if err := s.store.SaveGroup(ctx, grp.Record()); err != nil {
		return fmt.Errorf("persist group %q: %w", grp.Name(), err)
	}
	s.logAudit(ctx, "ADD_GROUP_PARENT", grp.Name()+":"+domain.NormalizeName(parent))
	return nil
}

// RemoveGroupParent removes a parent link.
func (s *Service) RemoveGroupParent(ctx context.Context, groupName, parent string) error {
	grp, ok := s.groups.Group(groupName)
	if !ok {
		return domain.ErrNotFound("group %q not found", groupName)
	}
	if !grp.RemoveParent(parent) {
		return domain.ErrNotFound("group %q has no parent %q", grp.Name(), parent)
	}
	if err := s.store.SaveGroup(ctx, grp.Record()); err != nil {
		return fmt.Errorf("persist group %q: %w", grp.Name(), err)
	}
	s.logAudit(ctx, "REMOVE_GROUP_PARENT", grp.Name()+":"+domain.NormalizeName(parent))
	return nil
}
