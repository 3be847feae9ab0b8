package app

import (
	"context"
	"fmt"
	"log/slog"

	"posgate/internal/config"
	"posgate/internal/declarative"
	"posgate/internal/domain"
	"posgate/internal/service/directory"
)

// seedBuiltins registers the built-in permissions, the staff/cashier
// groups and the initial admin account. Everything is check-then-create;
// an operator's later edits are never overwritten on restart.
func seedBuiltins(ctx context.Context, dir *directory.Service, cfg *config.Config, logger *slog.Logger) error {
	ctx = domain.WithPrincipal(ctx, domain.ContextPrincipal{Name: "bootstrap", IsAdmin: true, Source: "system"})

	perms := []domain.PermissionRecord{
		{Name: domain.PermSale, Description: "Record sales at the register", IsDefault: true},
		{Name: domain.PermRefund, Description: "Refund completed transactions"},
		{Name: domain.PermAdmin, Description: "Full administrative access"},
	}
	for _, rec := range perms {
		if _, ok := dir.Permission(rec.Name); ok {
			continue
		}
		if _, err := dir.RegisterPermission(ctx, rec); err != nil {
			return fmt.Errorf("permission %q: %w", rec.Name, err)
		}
	}

	groupRecs := []domain.GroupRecord{
		{Name: "staff", Description: "Floor staff", IsDefault: true,
			PermissionNames: []string{domain.PermSale}},
		{Name: "cashier", Description: "Cashiers, may refund",
			PermissionNames: []string{domain.PermRefund}, ParentNames: []string{"staff"}},
	}
	for _, rec := range groupRecs {
		if _, ok := dir.Group(rec.Name); ok {
			continue
		}
		if _, err := dir.RegisterGroup(ctx, rec); err != nil {
			return fmt.Errorf("group %q: %w", rec.Name, err)
		}
	}

	if _, ok := dir.UserByUsername(cfg.AdminUsername); ok {
		return nil
	}
	if cfg.AdminPassword == "" {
		logger.Warn("admin account not created: POSGATE_ADMIN_PASSWORD is empty",
			"username", cfg.AdminUsername)
		return nil
	}
	if _, err := dir.RegisterUser(ctx, domain.UserRecord{
		Username:        cfg.AdminUsername,
		CredentialHash:  directory.HashCredential(cfg.AdminPassword),
		Active:          true,
		PermissionNames: []string{domain.PermAdmin},
	}); err != nil {
		return fmt.Errorf("admin user %q: %w", cfg.AdminUsername, err)
	}
	logger.Info("admin account created", "username", cfg.AdminUsername)
	return nil
}

// ApplySeedDir loads a declarative seed tree and applies it through the
// directory service.
func ApplySeedDir(ctx context.Context, dir *directory.Service, seedDir string) error {
	state, err := declarative.Load(seedDir)
	if err != nil {
		return err
	}
	return ApplySeeds(ctx, dir, state)
}

// ApplySeeds applies parsed seed state in dependency order: permissions,
// then groups, then users. Permissions and groups upsert; a user is
// created only when the username is free, so password changes and
// lockouts survive a restart with the same seed tree.
func ApplySeeds(ctx context.Context, dir *directory.Service, state *declarative.State) error {
	ctx = domain.WithPrincipal(ctx, domain.ContextPrincipal{Name: "seed", IsAdmin: true, Source: "system"})

	for _, doc := range state.Permissions {
		if _, err := dir.RegisterPermission(ctx, domain.PermissionRecord{
			Name:        doc.Name,
			Description: doc.Description,
			Aliases:     doc.Aliases,
			IsDefault:   doc.Default,
		}); err != nil {
			return fmt.Errorf("permission %q: %w", doc.Name, err)
		}
	}

	for _, doc := range state.Groups {
		if _, err := dir.RegisterGroup(ctx, domain.GroupRecord{
			Name:            doc.Name,
			Description:     doc.Description,
			IsDefault:       doc.Default,
			PermissionNames: doc.Permissions,
			ParentNames:     doc.Parents,
		}); err != nil {
			return fmt.Errorf("group %q: %w", doc.Name, err)
		}
	}

	for _, doc := range state.Users {
		if _, exists := dir.UserByUsername(doc.Username); exists {
			continue
		}
		hash := doc.PasswordHash
		if doc.Password != "" {
			hash = directory.HashCredential(doc.Password)
		}
		if _, err := dir.RegisterUser(ctx, domain.UserRecord{
			Username:        doc.Username,
			FirstName:       doc.FirstName,
			LastName:        doc.LastName,
			Email:           doc.Email,
			CredentialHash:  hash,
			Active:          true,
			GroupNames:      doc.Groups,
			PermissionNames: doc.Permissions,
		}); err != nil {
			return fmt.Errorf("user %q: %w", doc.Username, err)
		}
	}
	return nil
}
