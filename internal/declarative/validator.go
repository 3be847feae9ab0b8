package declarative

import (
	"fmt"

	"posgate/internal/domain"
)

// ValidationError describes one problem in a seed state. Path points at
// the offending document or field in list-index form, for example
// "groups[2].permissions[0]".
type ValidationError struct {
	Path    string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// Validate checks a state for mistakes the loader cannot see: duplicate
// names, alias collisions and grant references that will not resolve at
// apply time. Group parents and user group memberships are weak
// references, so only self-parents are rejected; cycles between groups
// are tolerated, matching the directory's read-time traversal.
func Validate(state *State) []ValidationError {
	var errs []ValidationError
	addErr := func(path, format string, args ...any) {
		errs = append(errs, ValidationError{Path: path, Message: fmt.Sprintf(format, args...)})
	}

	// Grant names resolve against declared permissions, their aliases
	// and the built-in permissions seeded at startup.
	resolvable := map[string]struct{}{
		domain.PermSale:   {},
		domain.PermRefund: {},
		domain.PermAdmin:  {},
	}
	canonical := map[string]struct{}{
		domain.PermSale:   {},
		domain.PermRefund: {},
		domain.PermAdmin:  {},
	}

	declared := make(map[string]string, len(state.Permissions))
	for i, p := range state.Permissions {
		path := fmt.Sprintf("permissions[%d]", i)
		name := domain.NormalizeName(p.Name)
		if name == "" {
			addErr(path, "permission name is required")
			continue
		}
		if prev, dup := declared[name]; dup {
			addErr(path, "permission %q already declared at %s", name, prev)
		} else {
			declared[name] = path
		}
		canonical[name] = struct{}{}
		resolvable[name] = struct{}{}
	}

	aliasOwner := make(map[string]string)
	for i, p := range state.Permissions {
		name := domain.NormalizeName(p.Name)
		if name == "" {
			continue
		}
		for j, a := range p.Aliases {
			path := fmt.Sprintf("permissions[%d].aliases[%d]", i, j)
			alias := domain.NormalizeName(a)
			switch {
			case alias == "":
				addErr(path, "alias must not be empty")
				continue
			case alias == name:
				addErr(path, "alias %q duplicates the permission's own name", alias)
				continue
			}
			if _, taken := canonical[alias]; taken {
				addErr(path, "alias %q collides with a permission name", alias)
				continue
			}
			if owner, taken := aliasOwner[alias]; taken && owner != name {
				addErr(path, "alias %q already claimed by permission %q", alias, owner)
				continue
			}
			aliasOwner[alias] = name
			resolvable[alias] = struct{}{}
		}
	}

	groupNames := make(map[string]string, len(state.Groups))
	for i, g := range state.Groups {
		path := fmt.Sprintf("groups[%d]", i)
		name := domain.NormalizeName(g.Name)
		if name == "" {
			addErr(path, "group name is required")
			continue
		}
		if prev, dup := groupNames[name]; dup {
			addErr(path, "group %q already declared at %s", name, prev)
		} else {
			groupNames[name] = path
		}
		for j, perm := range g.Permissions {
			if _, ok := resolvable[domain.NormalizeName(perm)]; !ok {
				addErr(fmt.Sprintf("%s.permissions[%d]", path, j),
					"permission %q is not declared in this tree and is not a built-in", perm)
			}
		}
		for j, parent := range g.Parents {
			if domain.NormalizeName(parent) == name {
				addErr(fmt.Sprintf("%s.parents[%d]", path, j),
					"group %q cannot be its own parent", name)
			}
		}
	}

	userNames := make(map[string]string, len(state.Users))
	for i, u := range state.Users {
		path := fmt.Sprintf("users[%d]", i)
		name := domain.NormalizeName(u.Username)
		if name == "" {
			addErr(path, "username is required")
			continue
		}
		if prev, dup := userNames[name]; dup {
			addErr(path, "user %q already declared at %s", name, prev)
		} else {
			userNames[name] = path
		}
		if u.Password != "" && u.PasswordHash != "" {
			addErr(path, "password and password_hash are mutually exclusive")
		}
		for j, perm := range u.Permissions {
			if _, ok := resolvable[domain.NormalizeName(perm)]; !ok {
				addErr(fmt.Sprintf("%s.permissions[%d]", path, j),
					"permission %q is not declared in this tree and is not a built-in", perm)
			}
		}
	}

	return errs
}
