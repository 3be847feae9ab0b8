package store

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
	"posgate/internal/service/directory"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func adminCtx() context.Context {
	return domain.WithPrincipal(context.Background(), domain.ContextPrincipal{
		Name: "admin", IsAdmin: true, Source: "jwt",
	})
}

type storeFixture struct {
	svc      *Service
	dir      *directory.Service
	products *repository.ProductRepo
	audit    *repository.AuditRepo
}

// setupStore wires the store service against real repositories and a real
// directory. Cashier "u-cash" holds pos.sale and pos.refund; clerk
// "u-clerk" holds nothing.
func setupStore(t *testing.T) storeFixture {
	t.Helper()
	writeDB, _ := internaldb.OpenTestSQLite(t)
	products := repository.NewProductRepo(writeDB)
	customers := repository.NewCustomerRepo(writeDB)
	transactions := repository.NewTransactionRepo(writeDB)
	audit := repository.NewAuditRepo(writeDB)

	dir := directory.NewService(
		rbac.NewGroupRegistry(),
		rbac.NewIdentityRegistry(0),
		repository.NewDirectoryRepo(writeDB),
		audit,
		discardLogger(),
		0,
	)
	ctx := adminCtx()
	for _, name := range []string{domain.PermSale, domain.PermRefund} {
		_, err := dir.RegisterPermission(ctx, domain.PermissionRecord{Name: name})
		require.NoError(t, err)
	}
	_, err := dir.RegisterUser(ctx, domain.UserRecord{
		ID: "u-cash", Username: "cash", Active: true,
		PermissionNames: []string{domain.PermSale, domain.PermRefund},
	})
	require.NoError(t, err)
	_, err = dir.RegisterUser(ctx, domain.UserRecord{
		ID: "u-clerk", Username: "clerk", Active: true,
	})
	require.NoError(t, err)

	svc := NewService(products, customers, transactions, dir, audit, discardLogger(), "POSGATE MARKET")
	return storeFixture{svc: svc, dir: dir, products: products, audit: audit}
}

func (f storeFixture) addProduct(t *testing.T, sku, name string, price float64, stock int) *domain.Product {
	t.Helper()
	p, err := f.svc.AddProduct(adminCtx(), domain.CreateProductRequest{
		SKU: sku, Name: name, Category: "beverages", Price: price, Stock: stock,
	})
	require.NoError(t, err)
	return p
}

func (f storeFixture) addCustomer(t *testing.T, first, last string) *domain.Customer {
	t.Helper()
	c, err := f.svc.AddCustomer(adminCtx(), domain.CreateCustomerRequest{
		FirstName: first, LastName: last, Type: domain.CustomerTypeMember,
	})
	require.NoError(t, err)
	return c
}

func (f storeFixture) stockOf(t *testing.T, id string) int {
	t.Helper()
	p, err := f.products.GetByID(context.Background(), id)
	require.NoError(t, err)
	return p.Stock
}
