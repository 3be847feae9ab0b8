package domain

import (
	"context"
	"time"
)

// PermissionRecord is the persisted form of a Permission.
type PermissionRecord struct {
	Name        string
	Description string
	Aliases     []string
	IsDefault   bool
}

// GroupRecord is the persisted form of a Group. Permissions and parents
// are stored by name only, matching the weak-reference model.
type GroupRecord struct {
	Name            string
	Description     string
	IsDefault       bool
	PermissionNames []string
	ParentNames     []string
}

// UserRecord is the persisted form of a Principal.
type UserRecord struct {
	ID                     string
	Username               string
	FirstName              string
	LastName               string
	Email                  string
	CredentialHash         string
	Active                 bool
	Locked                 bool
	FailedAttempts         int
	CreatedAt              time.Time
	LastLoginAt            *time.Time
	LastCredentialChangeAt *time.Time
	GroupNames             []string
	PermissionNames        []string
}

// DirectoryStore loads and persists the directory: permissions, groups and
// users. Saves are whole-entity upserts keyed by the entity's identity
// (permission name, group name, user ID).
type DirectoryStore interface {
	LoadAllPermissions(ctx context.Context) ([]PermissionRecord, error)
	LoadAllGroups(ctx context.Context) ([]GroupRecord, error)
	LoadAllUsers(ctx context.Context) ([]UserRecord, error)

	SavePermission(ctx context.Context, rec PermissionRecord) error
	SaveGroup(ctx context.Context, rec GroupRecord) error
	SaveUser(ctx context.Context, rec UserRecord) error

	DeletePermission(ctx context.Context, name string) error
	DeleteGroup(ctx context.Context, name string) error
	DeleteUser(ctx context.Context, id string) error
}

// AuditRepository persists audit log entries.
type AuditRepository interface {
	Insert(ctx context.Context, entry *AuditEntry) error
	List(ctx context.Context, filter AuditFilter) ([]AuditEntry, int64, error)
	// DeleteBefore removes entries older than cutoff and returns how many
	// were removed.
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// APIKeyRepository persists API keys. Only the SHA-256 digest of a key is
// stored; the raw key is shown once at creation.
type APIKeyRepository interface {
	Insert(ctx context.Context, key *APIKey) error
	GetByHash(ctx context.Context, keyHash string) (*APIKey, error)
	ListByUser(ctx context.Context, userID string) ([]APIKey, error)
	Delete(ctx context.Context, id string) error
}

// ProductRepository persists the product catalog.
type ProductRepository interface {
	Insert(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, id string) (*Product, error)
	GetBySKU(ctx context.Context, sku string) (*Product, error)
	List(ctx context.Context, page PageRequest) ([]Product, int64, error)
	UpdateStock(ctx context.Context, id string, delta int) error
	SetActive(ctx context.Context, id string, active bool) error
	Delete(ctx context.Context, id string) error
}

// CustomerRepository persists store customers.
type CustomerRepository interface {
	Insert(ctx context.Context, c *Customer) error
	GetByID(ctx context.Context, id string) (*Customer, error)
	List(ctx context.Context, page PageRequest) ([]Customer, int64, error)
	AddLoyaltyPoints(ctx context.Context, id string, points int) error
}

// TransactionRepository persists sales transactions with their line items.
type TransactionRepository interface {
	Insert(ctx context.Context, t *Transaction) error
	GetByID(ctx context.Context, id string) (*Transaction, error)
	List(ctx context.Context, filter TransactionFilter) ([]Transaction, int64, error)
	UpdateStatus(ctx context.Context, id string, status TransactionStatus) error
}
