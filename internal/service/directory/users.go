package directory

import (
	"context"
	"fmt"
	"strings"

	"posgate/internal/domain"
)

// RegisterUser upserts a user and persists it. A blank ID gets a
// generated one; direct grant names must resolve against the
// permission catalog, group names are weak references.
func (s *Service) RegisterUser(ctx context.Context, rec domain.UserRecord) (*domain.Principal, error) {
	if strings.TrimSpace(rec.ID) == "" {
		rec.ID = domain.NewID()
	}
	direct, err := s.resolveGrants(rec.PermissionNames)
	if err != nil {
		return nil, err
	}
	p, err := domain.NewPrincipalFromRecord(rec, direct)
	if err != nil {
		return nil, err
	}
	if err := s.identities.AddUser(p); err != nil {
		return nil, err
	}
	if err := s.store.SaveUser(ctx, p.Record()); err != nil {
		return nil, fmt.Errorf("persist user %q: %w", p.Username(), err)
	}
	s.logAudit(ctx, "REGISTER_USER", p.Username())
	return p, nil
}

// UnregisterUser removes a user from the registry and the store.
func (s *Service) UnregisterUser(ctx context.Context, id string) (bool, error) {
	var username string
	if u, ok := s.identities.UserByID(id); ok {
		username = u.Username()
	}
	removed := s.identities.RemoveUserByID(id)
	if err := s.store.DeleteUser(ctx, id); err != nil {
		return removed, fmt.Errorf("delete user %q: %w", id, err)
	}
	if removed {
		s.logAudit(ctx, "UNREGISTER_USER", username)
	}
	return removed, nil
}

// User looks up a user by ID.
func (s *Service) User(id string) (*domain.Principal, bool) {
	return s.identities.UserByID(id)
}

// UserByUsername looks up a user by normalized username.
func (s *Service) UserByUsername(username string) (*domain.Principal, bool) {
	return s.identities.UserByUsername(username)
}

// Users returns all registered users sorted by username.
func (s *Service) Users() []*domain.Principal {
	return s.identities.Users()
}

// UsersInGroup returns the direct members of a group.
func (s *Service) UsersInGroup(groupName string) []*domain.Principal {
	return s.identities.UsersInGroup(groupName)
}

// SetUserLocked locks or unlocks an account. An explicit unlock also
// clears the failure counter.
func (s *Service) SetUserLocked(ctx context.Context, id string, locked bool) error {
	u, ok := s.identities.UserByID(id)
	if !ok {
		return domain.ErrNotFound("user %q not found", id)
	}
	u.SetLocked(locked)
	if err := s.store.SaveUser(ctx, u.Record()); err != nil {
		return fmt.Errorf("persist user %q: %w", u.Username(), err)
	}
	action := "LOCK_USER"
	if !locked {
		action = "UNLOCK_USER"
	}
	s.logAudit(ctx, action, u.Username())
	return nil
}

// SetUserActive activates or deactivates an account. Inactive accounts
// cannot log in and hold no permissions.
func (s *Service) SetUserActive(ctx context.Context, id string, active bool) error {
	u, ok := s.identities.UserByID(id)
	if !ok {
		return domain.ErrNotFound("user %q not found", id)
	}
	u.SetActive(active)
	if err := s.store.SaveUser(ctx, u.Record()); err != nil {
		return fmt.Errorf("persist user %q: %w", u.Username(), err)
	}
	action := "ACTIVATE_USER"
	if !active {
		action = "DEACTIVATE_USER"
	}
	s.logAudit(ctx, action, u.Username())
	return nil
}

// AddUserToGroup adds a membership by group name. The group must be
// registered at the time of the call; the stored membership itself is
// a weak name reference.
func (s *Service) AddUserToGroup(ctx context.Context, id, groupName string) error {
	u, ok := s.identities.UserByID(id)
	if !ok {
		return domain.ErrNotFound("user %q not found", id)
	}
	if _, ok := s.groups.Group(groupName); !ok {
		return domain.ErrNotFound("group %q not found", groupName)
	}
	if err := u.AddGroup(groupName); err != nil {
		return err
	}
	if err := s.store.SaveUser(ctx, u.Record()); err != nil {
		return fmt.Errorf("persist user %q: %w", u.Username(), err)
	}
	s.logAudit(ctx, "ADD_USER_TO_GROUP", u.Username()+":"+domain.NormalizeName(groupName))
	return nil
}

// RemoveUserFromGroup removes a membership.
func (s *Service) RemoveUserFromGroup(ctx context.Context, id, groupName string) error {
	u, ok := s.identities.UserByID(id)
	if !ok {
		return domain.ErrNotFound("user %q not found", id)
	}
	if !u.RemoveGroup(groupName) {
		return domain.ErrNotFound("user %q is not in group %q", u.Username(), groupName)
	}
	if err := s.store.SaveUser(ctx, u.Record()); err != nil {
		return fmt.Errorf("persist user %q: %w", u.Username(), err)
	}
	s.logAudit(ctx, "REMOVE_USER_FROM_GROUP", u.Username()+":"+domain.NormalizeName(groupName))
	return nil
}

// GrantUserPermission grants a direct permission to a user.
func (s *Service) GrantUserPermission(ctx context.Context, id, permission string) error {
	u, ok := s.identities.UserByID(id)
	if !ok {
		return domain.ErrNotFound("user %q not found", id)
	}
	p, ok := s.groups.ResolvePermission(permission)
	if !ok {
		return domain.ErrNotFound("permission %q is not registered", permission)
	}
	u.AddPermission(p)
	if err := s.store.SaveUser(ctx, u.Record()); err != nil {
		return fmt.Errorf("persist user %q: %w", u.Username(), err)
	}
	s.logAudit(ctx, "GRANT_USER_PERMISSION", u.Username()+":"+p.Name())
	return nil
}

// RevokeUserPermission revokes a direct permission, matched by name or
// alias.
func (s *Service) RevokeUserPermission(ctx context.Context, id, permission string) error {
	u, ok := s.identities.UserByID(id)
	if !ok {
		return domain.ErrNotFound("user %q not found", id)
	}
	if !u.RemovePermissionNamed(permission) {
		return domain.ErrNotFound("user %q does not hold %q directly", u.Username(), permission)
	}
	if err := s.store.SaveUser(ctx, u.Record()); err != nil {
		return fmt.Errorf("persist user %q: %w", u.Username(), err)
	}
	s.logAudit(ctx, "REVOKE_USER_PERMISSION", u.Username()+":"+domain.NormalizeName(permission))
	return nil
}

// UpdateUserProfile updates the display fields of a user.
func (s *Service) UpdateUserProfile(ctx context.Context, id, firstName, lastName, email string) error {
	u, ok := s.identities.UserByID(id)
	if !ok {
		return domain.ErrNotFound("user %q not found", id)
	}
	u.UpdateProfile(firstName, lastName, email)
	if err := s.store.SaveUser(ctx, u.Record()); err != nil {
		return fmt.Errorf("persist user %q: %w", u.Username(), err)
	}
	s.logAudit(ctx, "UPDATE_USER_PROFILE", u.Username())
	return nil
}

// RenameUser changes a username, keeping the username index unique.
func (s *Service) RenameUser(ctx context.Context, id, username string) error {
	if err := s.identities.RenameUser(id, username); err != nil {
		return err
	}
	u, ok := s.identities.UserByID(id)
	if !ok {
		return domain.ErrNotFound("user %q not found", id)
	}
	if err := s.store.SaveUser(ctx, u.Record()); err != nil {
		return fmt.Errorf("persist user %q: %w", u.Username(), err)
	}
	s.logAudit(ctx, "RENAME_USER", u.Username())
	return nil
}
