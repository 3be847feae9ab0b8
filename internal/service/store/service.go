// Package store implements the retail side of the register: the product
// catalog, customers with loyalty points, and sale transactions with
// receipts. Register operations are authorized against the directory
// before they touch inventory.
package store

import (
	"context"
	"log/slog"

	"posgate/internal/domain"
)

// PermissionChecker answers whether a user holds a permission. Implemented
// by directory.Service.
type PermissionChecker interface {
	Check(ctx context.Context, userID, permission string) bool
}

// Service coordinates catalog, customer and transaction operations.
type Service struct {
	products     domain.ProductRepository
	customers    domain.CustomerRepository
	transactions domain.TransactionRepository
	checker      PermissionChecker
	audit        domain.AuditRepository
	logger       *slog.Logger
	storeName    string
}

// NewService creates a new store Service. storeName appears on rendered
// receipts.
func NewService(
	products domain.ProductRepository,
	customers domain.CustomerRepository,
	transactions domain.TransactionRepository,
	checker PermissionChecker,
	audit domain.AuditRepository,
	logger *slog.Logger,
	storeName string,
) *Service {
	return &Service{
		products:     products,
		customers:    customers,
		transactions: transactions,
		checker:      checker,
		audit:        audit,
		logger:       logger,
		storeName:    storeName,
	}
}
