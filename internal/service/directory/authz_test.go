package directory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"posgate/internal/domain"
)

func TestService_Check(t *testing.T) {
	f := setupService(t)
	seedDirectory(t, f.svc)
	ctx := context.Background()

	// Direct chain: alice -> cashier -> staff.
	assert.True(t, f.svc.Check(ctx, "u-alice", "pos.refund"))
	assert.True(t, f.svc.Check(ctx, "u-alice", "pos.sale"))
	assert.False(t, f.svc.Check(ctx, "u-alice", "pos.admin"))

	// Aliases resolve like the canonical name.
	assert.True(t, f.svc.Check(ctx, "u-alice", "returns"))

	// Unknown users and unknown permissions are plain denials.
	assert.False(t, f.svc.Check(ctx, "u-ghost", "pos.sale"))
	assert.False(t, f.svc.Check(ctx, "u-alice", "no.such.permission"))
}

func TestService_Check_Audited(t *testing.T) {
	f := setupService(t)
	seedDirectory(t, f.svc)
	ctx := context.Background()

	f.svc.Check(ctx, "u-alice", "pos.sale")
	f.svc.Check(ctx, "u-alice", "pos.admin")

	action := "CHECK"
	entries, total, err := f.audit.List(ctx, domain.AuditFilter{
		Action: &action,
		Page:   domain.PageRequest{MaxResults: 10},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	statuses := make(map[string]int)
	for _, e := range entries {
		statuses[e.Status]++
		assert.Equal(t, "alice", e.PrincipalName)
	}
	assert.Equal(t, 1, statuses["ALLOWED"])
	assert.Equal(t, 1, statuses["DENIED"])
}

func TestService_EffectivePermissions(t *testing.T) {
	f := setupService(t)
	seedDirectory(t, f.svc)
	ctx := adminCtx()

	perms := f.svc.EffectivePermissions("u-alice")
	assert.ElementsMatch(t, []string{"pos.sale", "pos.refund"}, perms)

	// Direct grants merge with inherited ones, without duplicates.
	require.NoError(t, f.svc.GrantUserPermission(ctx, "u-alice", "pos.admin"))
	require.NoError(t, f.svc.GrantUserPermission(ctx, "u-alice", "pos.sale"))
	perms = f.svc.EffectivePermissions("u-alice")
	assert.ElementsMatch(t, []string{"pos.sale", "pos.refund", "pos.admin"}, perms)

	// Unknown user resolves to the empty set, not an error.
	assert.Empty(t, f.svc.EffectivePermissions("u-ghost"))
	assert.NotNil(t, f.svc.EffectivePermissions("u-ghost"))
}

func TestService_HasAnyAndAllPermissions(t *testing.T) {
	f := setupService(t)
	seedDirectory(t, f.svc)

	assert.True(t, f.svc.HasAnyPermission("u-alice", []string{"pos.admin", "pos.sale"}))
	assert.False(t, f.svc.HasAnyPermission("u-alice", []string{"pos.admin"}))
	assert.True(t, f.svc.HasAllPermissions("u-alice", []string{"pos.sale", "pos.refund"}))
	assert.False(t, f.svc.HasAllPermissions("u-alice", []string{"pos.sale", "pos.admin"}))

	assert.False(t, f.svc.HasAnyPermission("u-ghost", []string{"pos.sale"}))
	assert.False(t, f.svc.HasAllPermissions("u-ghost", []string{"pos.sale"}))
}

func TestService_Snapshot(t *testing.T) {
	f := setupService(t)
	seedDirectory(t, f.svc)

	snap := f.svc.Snapshot()
	assert.False(t, snap.TakenAt.IsZero())
	assert.Len(t, snap.Permissions, 3)
	assert.Len(t, snap.Groups, 2)
	require.Len(t, snap.Users, 1)

	u := snap.Users[0]
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, []string{"cashier"}, u.Groups)
	assert.ElementsMatch(t, []string{"pos.sale", "pos.refund"}, u.Permissions)
}
