package repository

import (
	"context"
	"database/sql"

	"posgate/internal/domain"
)

// Compile-time check.
var _ domain.CustomerRepository = (*CustomerRepo)(nil)

// CustomerRepo implements domain.CustomerRepository against SQLite.
type CustomerRepo struct {
	db *sql.DB
}

// NewCustomerRepo creates a new CustomerRepo.
func NewCustomerRepo(db *sql.DB) *CustomerRepo {
	return &CustomerRepo{db: db}
}

// Insert stores a new customer row.
func (r *CustomerRepo) Insert(ctx context.Context, c *domain.Customer) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO customers (id, first_name, last_name, email, phone, customer_type, loyalty_points, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.FirstName, c.LastName, c.Email, c.Phone, string(c.Type), c.LoyaltyPoints, c.CreatedAt)
	return mapDBError(err)
}

// GetByID returns a customer by ID.
func (r *CustomerRepo) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	var c domain.Customer
	var customerType string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, first_name, last_name, email, phone, customer_type, loyalty_points, created_at
		 FROM customers WHERE id = ?`, id).Scan(
		&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Phone, &customerType, &c.LoyaltyPoints, &c.CreatedAt)
	if err != nil {
		return nil, mapDBError(err)
	}
	c.Type = domain.CustomerType(customerType)
	return &c, nil
}

// List returns a paginated customer listing ordered by last then first name.
func (r *CustomerRepo) List(ctx context.Context, page domain.PageRequest) ([]domain.Customer, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM customers`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, first_name, last_name, email, phone, customer_type, loyalty_points, created_at
		 FROM customers ORDER BY last_name, first_name, id LIMIT ? OFFSET ?`,
		page.Limit(), page.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close() //nolint:errcheck

	var customers []domain.Customer
	for rows.Next() {
		var c domain.Customer
		var customerType string
		if err := rows.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Phone,
			&customerType, &c.LoyaltyPoints, &c.CreatedAt); err != nil {
			return nil, 0, err
		}
		c.Type = domain.CustomerType(customerType)
		customers = append(customers, c)
	}
	return customers, total, rows.Err()
}

// AddLoyaltyPoints credits points to a customer's balance.
func (r *CustomerRepo) AddLoyaltyPoints(ctx context.Context, id string, points int) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE customers SET loyalty_points = loyalty_points + ? WHERE id = ?`, points, id)
	if err != nil {
		return mapDBError(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound("customer %q not found", id)
	}
	return nil
}
