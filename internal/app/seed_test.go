package app

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"posgate/internal/config"
	internaldb "posgate/internal/db"
	"posgate/internal/domain"
)

func testConfig() *config.Config {
	return &config.Config{
		LockoutThreshold: 5,
		AdminUsername:    "admin",
		AdminPassword:    "adminpw",
		StoreName:        "posgate test",
	}
}

func newTestApp(t *testing.T, cfg *config.Config) *App {
	t.Helper()
	writeDB, readDB := internaldb.OpenTestSQLite(t)
	a, err := New(context.Background(), Deps{
		Cfg:     cfg,
		WriteDB: writeDB,
		ReadDB:  readDB,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)
	return a
}

func TestNew_SeedsBuiltins(t *testing.T) {
	a := newTestApp(t, testConfig())

	for _, name := range []string{domain.PermSale, domain.PermRefund, domain.PermAdmin} {
		_, ok := a.Directory.Permission(name)
		assert.True(t, ok, "permission %s should be seeded", name)
	}

	staff, ok := a.Directory.Group("staff")
	require.True(t, ok)
	assert.True(t, staff.IsDefault())
	_, ok = a.Directory.Group("cashier")
	require.True(t, ok)
	assert.ElementsMatch(t, []string{domain.PermSale, domain.PermRefund},
		a.Directory.GroupEffectivePermissions("cashier"))

	admin, ok := a.Directory.UserByUsername("admin")
	require.True(t, ok)
	assert.True(t, a.Directory.Check(context.Background(), admin.ID(), domain.PermAdmin))
}

func TestSeedBuiltins_NeverOverwrites(t *testing.T) {
	cfg := testConfig()
	a := newTestApp(t, cfg)
	ctx := domain.WithPrincipal(context.Background(),
		domain.ContextPrincipal{Name: "op", IsAdmin: true, Source: "jwt"})

	// An operator strips pos.sale from staff; a reseed must not put it back.
	require.NoError(t, a.Directory.RemoveGroupPermission(ctx, "staff", domain.PermSale))
	require.NoError(t, seedBuiltins(ctx, a.Directory, cfg,
		slog.New(slog.NewTextHandler(io.Discard, nil))))

	assert.Empty(t, a.Directory.GroupEffectivePermissions("staff"))
	assert.Equal(t, 1, a.Directory.UserCount(), "admin must not be duplicated")
}

func TestNew_NoAdminPasswordSkipsAdmin(t *testing.T) {
	cfg := testConfig()
	cfg.AdminPassword = ""
	a := newTestApp(t, cfg)

	_, ok := a.Directory.UserByUsername("admin")
	assert.False(t, ok)
	assert.Equal(t, 0, a.Directory.UserCount())
}

func writeSeedFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func TestApplySeedDir(t *testing.T) {
	cfg := testConfig()
	seedDir := t.TempDir()
	writeSeedFile(t, seedDir, "directory.yaml", `
apiVersion: posgate/v1
kind: Permission
name: pos.reports
description: View end-of-day reports
---
apiVersion: posgate/v1
kind: Group
name: managers
permissions: [pos.reports]
parents: [staff]
---
apiVersion: posgate/v1
kind: User
username: morgan
password: morganpw
groups: [managers]
`)
	cfg.SeedDir = seedDir
	a := newTestApp(t, cfg)

	morgan, ok := a.Directory.UserByUsername("morgan")
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"pos.reports", domain.PermSale},
		a.Directory.EffectivePermissions(morgan.ID()))

	// Applying the same tree again must not disturb existing users.
	ctx := context.Background()
	require.NoError(t, a.Directory.SetUserLocked(ctx, morgan.ID(), true))
	require.NoError(t, ApplySeedDir(ctx, a.Directory, seedDir))
	morgan, ok = a.Directory.UserByUsername("morgan")
	require.True(t, ok)
	assert.True(t, morgan.Locked(), "reapply must not reset account state")
}

func TestApplySeedDir_UnknownGrantFails(t *testing.T) {
	a := newTestApp(t, testConfig())
	seedDir := t.TempDir()
	writeSeedFile(t, seedDir, "bad.yaml", `
apiVersion: posgate/v1
kind: Group
name: ghosts
permissions: [no.such.permission]
`)
	err := ApplySeedDir(context.Background(), a.Directory, seedDir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no.such.permission")
}

func TestApplySeedDir_PasswordHashPassthrough(t *testing.T) {
	a := newTestApp(t, testConfig())
	seedDir := t.TempDir()
	writeSeedFile(t, seedDir, "svc.yaml", `
apiVersion: posgate/v1
kind: User
username: till-01
password_hash: 0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef
`)
	require.NoError(t, ApplySeedDir(context.Background(), a.Directory, seedDir))

	u, ok := a.Directory.UserByUsername("till-01")
	require.True(t, ok)
	rec := u.Record()
	assert.Equal(t,
		"0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef",
		rec.CredentialHash)
}
