package repository

import (
	"context"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internaldb "posgate/internal/db"
	"posgate/internal/domain"
)

func setupCustomerRepo(t *testing.T) *CustomerRepo {
	t.Helper()
	writeDB, _ := internaldb.OpenTestSQLite(t)
	return NewCustomerRepo(writeDB)
}

func makeCustomer(first, last string, ctype domain.CustomerType) *domain.Customer {
	return &domain.Customer{
		ID:        domain.NewID(),
		FirstName: first,
		LastName:  last,
		Email:     first + "@example.com",
		Type:      ctype,
		CreatedAt: time.Now().UTC(),
	}
}

func TestCustomerRepo_InsertAndGet(t *testing.T) {
	repo := setupCustomerRepo(t)
	ctx := context.Background()

	c := makeCustomer("Alice", "Smith", domain.CustomerVIP)
	require.NoError(t, repo.Insert(ctx, c))

	got, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.FirstName)
	assert.Equal(t, "Smith", got.LastName)
	assert.Equal(t, domain.CustomerVIP, got.Type)
	assert.Equal(t, 0, got.LoyaltyPoints)
}

func TestCustomerRepo_GetNotFound(t *testing.T) {
	repo := setupCustomerRepo(t)
	ctx := context.Background()

	_, err := repo.GetByID(ctx, "nope")
	require.Error(t, err)
	var notFoundErr *domain.NotFoundError
	assert.ErrorAs(t, err, &notFoundErr)
}

func TestCustomerRepo_List(t *testing.T) {
	repo := setupCustomerRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx, makeCustomer("Carol", "Young", domain.CustomerRegular)))
	require.NoError(t, repo.Insert(ctx, makeCustomer("Alice", "Adams", domain.CustomerMember)))
	require.NoError(t, repo.Insert(ctx, makeCustomer("Bob", "Miller", domain.CustomerRegular)))

	customers, total, err := repo.List(ctx, domain.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, customers, 3)

	// Ordered by last name.
	assert.Equal(t, "Adams", customers[0].LastName)
	assert.Equal(t, "Miller", customers[1].LastName)
	assert.Equal(t, "Young", customers[2].LastName)
}

func TestCustomerRepo_AddLoyaltyPoints(t *testing.T) {
	repo := setupCustomerRepo(t)
	ctx := context.Background()

	c := makeCustomer("Alice", "Smith", domain.CustomerMember)
	require.NoError(t, repo.Insert(ctx, c))

	require.NoError(t, repo.AddLoyaltyPoints(ctx, c.ID, 25))
	require.NoError(t, repo.AddLoyaltyPoints(ctx, c.ID, 10))

	got, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 35, got.LoyaltyPoints)
}

func TestCustomerRepo_AddLoyaltyPointsUnknownCustomer(t *testing.T) {
	repo := setupCustomerRepo(t)
	ctx := context.Background()

	err := repo.AddLoyaltyPoints(ctx, "nope", 10)
	require.Error(t, err)
	var notFoundErr *domain.NotFoundError
	assert.ErrorAs(t, err, &notFoundErr)
}
