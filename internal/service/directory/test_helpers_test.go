package directory

import (
	"context"
	"io"
	"log/slog"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	internaldb "posgate/internal/db"
	"posgate/internal/db/repository"
	"posgate/internal/domain"
	"posgate/internal/rbac"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// adminCtx returns a context with an admin principal for testing.
func adminCtx() context.Context {
	return domain.WithPrincipal(context.Background(), domain.ContextPrincipal{
		Name: "admin", IsAdmin: true, Source: "jwt",
	})
}

type serviceFixture struct {
	svc   *Service
	store domain.DirectoryStore
	audit *repository.AuditRepo
}

func setupService(t *testing.T) serviceFixture {
	t.Helper()
	writeDB, _ := internaldb.OpenTestSQLite(t)
	store := repository.NewDirectoryRepo(writeDB)
	audit := repository.NewAuditRepo(writeDB)
	svc := NewService(
		rbac.NewGroupRegistry(),
		rbac.NewIdentityRegistry(0),
		store,
		audit,
		discardLogger(),
		0,
	)
	return serviceFixture{svc: svc, store: store, audit: audit}
}

// reload builds a fresh service with empty registries over the same
// store and loads it, simulating a process restart.
func (f serviceFixture) reload(t *testing.T) *Service {
	t.Helper()
	svc := NewService(
		rbac.NewGroupRegistry(),
		rbac.NewIdentityRegistry(0),
		f.store,
		f.audit,
		discardLogger(),
		0,
	)
	require.NoError(t, svc.LoadAll(context.Background()))
	return svc
}

func seedDirectory(t *testing.T, svc *Service) {
	t.Helper()
	ctx := adminCtx()

	for _, rec := range []domain.PermissionRecord{
		{Name: "pos.sale", Description: "Record sales"},
		{Name: "pos.refund", Description: "Process refunds", Aliases: []string{"returns"}},
		{Name: "pos.admin", Description: "Administer the till"},
	} {
		_, err := svc.RegisterPermission(ctx, rec)
		require.NoError(t, err)
	}

	_, err := svc.RegisterGroup(ctx, domain.GroupRecord{
		Name:            "staff",
		PermissionNames: []string{"pos.sale"},
	})
	require.NoError(t, err)
	_, err = svc.RegisterGroup(ctx, domain.GroupRecord{
		Name:            "cashier",
		PermissionNames: []string{"pos.refund"},
		ParentNames:     []string{"staff"},
	})
	require.NoError(t, err)

	_, err = svc.RegisterUser(ctx, domain.UserRecord{
		ID:             "u-alice",
		Username:       "alice",
		CredentialHash: HashCredential("s3cret"),
		Active:         true,
		GroupNames:     []string{"cashier"},
	})
	require.NoError(t, err)
}
