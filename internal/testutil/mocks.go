// Package testutil provides shared mock implementations of domain interfaces
// for use in tests across the codebase. This follows the Go convention of a
// shared test utility package (like net/http/httptest).
package testutil

import (
	"context"
	"time"

	"posgate/internal/domain"
)

// === Audit Repository Mock ===

// MockAuditRepo implements domain.AuditRepository for testing.
type MockAuditRepo struct {
	InsertFn       func(ctx context.Context, e *domain.AuditEntry) error
	ListFn         func(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEntry, int64, error)
	DeleteBeforeFn func(ctx context.Context, cutoff time.Time) (int64, error)
	Entries        []*domain.AuditEntry // collected entries for assertions
}

// Insert implements the interface method for testing.
func (m *MockAuditRepo) Insert(ctx context.Context, e *domain.AuditEntry) error {
	if m.InsertFn != nil {
		err := m.InsertFn(ctx, e)
		if err != nil {
			return err
		}
		m.Entries = append(m.Entries, e)
		return nil
	}
	m.Entries = append(m.Entries, e)
	return nil
}

// List implements the interface method for testing.
func (m *MockAuditRepo) List(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEntry, int64, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, filter)
	}
	panic("unexpected call to MockAuditRepo.List")
}

// DeleteBefore implements the interface method for testing.
func (m *MockAuditRepo) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	if m.DeleteBeforeFn != nil {
		return m.DeleteBeforeFn(ctx, cutoff)
	}
	panic("unexpected call to MockAuditRepo.DeleteBefore")
}

// LastEntry returns the last collected audit entry, or nil if none.
func (m *MockAuditRepo) LastEntry() *domain.AuditEntry {
	if len(m.Entries) == 0 {
		return nil
	}
	return m.Entries[len(m.Entries)-1]
}

// HasAction returns true if any collected entry has the given action.
func (m *MockAuditRepo) HasAction(action string) bool {
	for _, e := range m.Entries {
		if e.Action == action {
			return true
		}
	}
	return false
}

var _ domain.AuditRepository = (*MockAuditRepo)(nil)

// === Directory Store Mock ===

// MockDirectoryStore implements domain.DirectoryStore for testing.
type MockDirectoryStore struct {
	LoadAllPermissionsFn func(ctx context.Context) ([]domain.PermissionRecord, error)
	LoadAllGroupsFn      func(ctx context.Context) ([]domain.GroupRecord, error)
	LoadAllUsersFn       func(ctx context.Context) ([]domain.UserRecord, error)
	SavePermissionFn     func(ctx context.Context, rec domain.PermissionRecord) error
	SaveGroupFn          func(ctx context.Context, rec domain.GroupRecord) error
	SaveUserFn           func(ctx context.Context, rec domain.UserRecord) error
	DeletePermissionFn   func(ctx context.Context, name string) error
	DeleteGroupFn        func(ctx context.Context, name string) error
	DeleteUserFn         func(ctx context.Context, id string) error
}

// LoadAllPermissions implements the interface method for testing.
func (m *MockDirectoryStore) LoadAllPermissions(ctx context.Context) ([]domain.PermissionRecord, error) {
	if m.LoadAllPermissionsFn != nil {
		return m.LoadAllPermissionsFn(ctx)
	}
	panic("unexpected call to MockDirectoryStore.LoadAllPermissions")
}

// LoadAllGroups implements the interface method for testing.
func (m *MockDirectoryStore) LoadAllGroups(ctx context.Context) ([]domain.GroupRecord, error) {
	if m.LoadAllGroupsFn != nil {
		return m.LoadAllGroupsFn(ctx)
	}
	panic("unexpected call to MockDirectoryStore.LoadAllGroups")
}

// LoadAllUsers implements the interface method for testing.
func (m *MockDirectoryStore) LoadAllUsers(ctx context.Context) ([]domain.UserRecord, error) {
	if m.LoadAllUsersFn != nil {
		return m.LoadAllUsersFn(ctx)
	}
	panic("unexpected call to MockDirectoryStore.LoadAllUsers")
}

// SavePermission implements the interface method for testing.
func (m *MockDirectoryStore) SavePermission(ctx context.Context, rec domain.PermissionRecord) error {
	if m.SavePermissionFn != nil {
		return m.SavePermissionFn(ctx, rec)
	}
	panic("unexpected call to MockDirectoryStore.SavePermission")
}

// SaveGroup implements the interface method for testing.
func (m *MockDirectoryStore) SaveGroup(ctx context.Context, rec domain.GroupRecord) error {
	if m.SaveGroupFn != nil {
		return m.SaveGroupFn(ctx, rec)
	}
	panic("unexpected call to MockDirectoryStore.SaveGroup")
}

// SaveUser implements the interface method for testing.
func (m *MockDirectoryStore) SaveUser(ctx context.Context, rec domain.UserRecord) error {
	if m.SaveUserFn != nil {
		return m.SaveUserFn(ctx, rec)
	}
	panic("unexpected call to MockDirectoryStore.SaveUser")
}

// DeletePermission implements the interface method for testing.
func (m *MockDirectoryStore) DeletePermission(ctx context.Context, name string) error {
	if m.DeletePermissionFn != nil {
		return m.DeletePermissionFn(ctx, name)
	}
	panic("unexpected call to MockDirectoryStore.DeletePermission")
}

// DeleteGroup implements the interface method for testing.
func (m *MockDirectoryStore) DeleteGroup(ctx context.Context, name string) error {
	if m.DeleteGroupFn != nil {
		return m.DeleteGroupFn(ctx, name)
	}
	panic("unexpected call to MockDirectoryStore.DeleteGroup")
}

// DeleteUser implements the interface method for testing.
func (m *MockDirectoryStore) DeleteUser(ctx context.Context, id string) error {
	if m.DeleteUserFn != nil {
		return m.DeleteUserFn(ctx, id)
	}
	panic("unexpected call to MockDirectoryStore.DeleteUser")
}

var _ domain.DirectoryStore = (*MockDirectoryStore)(nil)

// === API Key Repository Mock ===

// MockAPIKeyRepo implements domain.APIKeyRepository for testing.
type MockAPIKeyRepo struct {
	InsertFn     func(ctx context.Context, key *domain.APIKey) error
	GetByHashFn  func(ctx context.Context, keyHash string) (*domain.APIKey, error)
	ListByUserFn func(ctx context.Context, userID string) ([]domain.APIKey, error)
	DeleteFn     func(ctx context.Context, id string) error
}

// Insert implements the interface method for testing.
func (m *MockAPIKeyRepo) Insert(ctx context.Context, key *domain.APIKey) error {
	if m.InsertFn != nil {
		return m.InsertFn(ctx, key)
	}
	panic("unexpected call to MockAPIKeyRepo.Insert")
}

// GetByHash implements the interface method for testing.
func (m *MockAPIKeyRepo) GetByHash(ctx context.Context, keyHash string) (*domain.APIKey, error) {
	if m.GetByHashFn != nil {
		return m.GetByHashFn(ctx, keyHash)
	}
	panic("unexpected call to MockAPIKeyRepo.GetByHash")
}

// ListByUser implements the interface method for testing.
func (m *MockAPIKeyRepo) ListByUser(ctx context.Context, userID string) ([]domain.APIKey, error) {
	if m.ListByUserFn != nil {
		return m.ListByUserFn(ctx, userID)
	}
	panic("unexpected call to MockAPIKeyRepo.ListByUser")
}

// Delete implements the interface method for testing.
func (m *MockAPIKeyRepo) Delete(ctx context.Context, id string) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	panic("unexpected call to MockAPIKeyRepo.Delete")
}

var _ domain.APIKeyRepository = (*MockAPIKeyRepo)(nil)

// === Product Repository Mock ===

// MockProductRepo implements domain.ProductRepository for testing.
type MockProductRepo struct {
	InsertFn      func(ctx context.Context, p *domain.Product) error
	GetByIDFn     func(ctx context.Context, id string) (*domain.Product, error)
	GetBySKUFn    func(ctx context.Context, sku string) (*domain.Product, error)
	ListFn        func(ctx context.Context, page domain.PageRequest) ([]domain.Product, int64, error)
	UpdateStockFn func(ctx context.Context, id string, delta int) error
	SetActiveFn   func(ctx context.Context, id string, active bool) error
	DeleteFn      func(ctx context.Context, id string) error
}

// Insert implements the interface method for testing.
func (m *MockProductRepo) Insert(ctx context.Context, p *domain.Product) error {
	if m.InsertFn != nil {
		return m.InsertFn(ctx, p)
	}
	panic("unexpected call to MockProductRepo.Insert")
}

// GetByID implements the interface method for testing.
func (m *MockProductRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	panic("unexpected call to MockProductRepo.GetByID")
}

// GetBySKU implements the interface method for testing.
func (m *MockProductRepo) GetBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	if m.GetBySKUFn != nil {
		return m.GetBySKUFn(ctx, sku)
	}
	panic("unexpected call to MockProductRepo.GetBySKU")
}

// List implements the interface method for testing.
func (m *MockProductRepo) List(ctx context.Context, page domain.PageRequest) ([]domain.Product, int64, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, page)
	}
	panic("unexpected call to MockProductRepo.List")
}

// UpdateStock implements the interface method for testing.
func (m *MockProductRepo) UpdateStock(ctx context.Context, id string, delta int) error {
	if m.UpdateStockFn != nil {
		return m.UpdateStockFn(ctx, id, delta)
	}
	panic("unexpected call to MockProductRepo.UpdateStock")
}

// SetActive implements the interface method for testing.
func (m *MockProductRepo) SetActive(ctx context.Context, id string, active bool) error {
	if m.SetActiveFn != nil {
		return m.SetActiveFn(ctx, id, active)
	}
	panic("unexpected call to MockProductRepo.SetActive")
}

// Delete implements the interface method for testing.
func (m *MockProductRepo) Delete(ctx context.Context, id string) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	panic("unexpected call to MockProductRepo.Delete")
}

var _ domain.ProductRepository = (*MockProductRepo)(nil)

// === Customer Repository Mock ===

// MockCustomerRepo implements domain.CustomerRepository for testing.
type MockCustomerRepo struct {
	InsertFn           func(ctx context.Context, c *domain.Customer) error
	GetByIDFn          func(ctx context.Context, id string) (*domain.Customer, error)
	ListFn             func(ctx context.Context, page domain.PageRequest) ([]domain.Customer, int64, error)
	AddLoyaltyPointsFn func(ctx context.Context, id string, points int) error
}

// Insert implements the interface method for testing.
func (m *MockCustomerRepo) Insert(ctx context.Context, c *domain.Customer) error {
	if m.InsertFn != nil {
		return m.InsertFn(ctx, c)
	}
	panic("unexpected call to MockCustomerRepo.Insert")
}

// GetByID implements the interface method for testing.
func (m *MockCustomerRepo) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	panic("unexpected call to MockCustomerRepo.GetByID")
}

// List implements the interface method for testing.
func (m *MockCustomerRepo) List(ctx context.Context, page domain.PageRequest) ([]domain.Customer, int64, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, page)
	}
	panic("unexpected call to MockCustomerRepo.List")
}

// AddLoyaltyPoints implements the interface method for testing.
func (m *MockCustomerRepo) AddLoyaltyPoints(ctx context.Context, id string, points int) error {
	if m.AddLoyaltyPointsFn != nil {
		return m.AddLoyaltyPointsFn(ctx, id, points)
	}
	panic("unexpected call to MockCustomerRepo.AddLoyaltyPoints")
}

var _ domain.CustomerRepository = (*MockCustomerRepo)(nil)

// === Transaction Repository Mock ===

// MockTransactionRepo implements domain.TransactionRepository for testing.
type MockTransactionRepo struct {
	InsertFn       func(ctx context.Context, t *domain.Transaction) error
	GetByIDFn      func(ctx context.Context, id string) (*domain.Transaction, error)
	ListFn         func(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, int64, error)
	UpdateStatusFn func(ctx context.Context, id string, status domain.TransactionStatus) error
}

// Insert implements the interface method for testing.
func (m *MockTransactionRepo) Insert(ctx context.Context, t *domain.Transaction) error {
	if m.InsertFn != nil {
		return m.InsertFn(ctx, t)
	}
	panic("unexpected call to MockTransactionRepo.Insert")
}

// GetByID implements the interface method for testing.
func (m *MockTransactionRepo) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	panic("unexpected call to MockTransactionRepo.GetByID")
}

// List implements the interface method for testing.
func (m *MockTransactionRepo) List(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, int64, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, filter)
	}
	panic("unexpected call to MockTransactionRepo.List")
}

// UpdateStatus implements the interface method for testing.
func (m *MockTransactionRepo) UpdateStatus(ctx context.Context, id string, status domain.TransactionStatus) error {
	if m.UpdateStatusFn != nil {
		return m.UpdateStatusFn(ctx, id, status)
	}
	panic("unexpected call to MockTransactionRepo.UpdateStatus")
}

var _ domain.TransactionRepository = (*MockTransactionRepo)(nil)
