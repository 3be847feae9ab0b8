package repository

import (
	"context"
	"database/sql"

	"posgate/internal/domain"
)

// Compile-time check.
var _ domain.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implements domain.ProductRepository against SQLite.
type ProductRepo struct {
	db *sql.DB
}

// NewProductRepo creates a new ProductRepo.
func NewProductRepo(db *sql.DB) *ProductRepo {
	return &ProductRepo{db: db}
}

// Insert stores a new product row.
func (r *ProductRepo) Insert(ctx context.Context, p *domain.Product) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO products (id, sku, name, description, category, price, stock, active, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.SKU, p.Name, p.Description, p.Category, p.Price, p.Stock,
		boolToInt(p.Active), p.CreatedAt)
	return mapDBError(err)
}

// GetByID returns a product by ID.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	return r.getOne(ctx,
		`SELECT id, sku, name, description, category, price, stock, active, created_at
		 FROM products WHERE id = ?`, id)
}

// GetBySKU returns a product by SKU.
func (r *ProductRepo) GetBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	return r.getOne(ctx,
		`SELECT id, sku, name, description, category, price, stock, active, created_at
		 FROM products WHERE sku = ?`, sku)
}

// List returns a paginated product listing ordered by name.
func (r *ProductRepo) List(ctx context.Context, page domain.PageRequest) ([]domain.Product, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, sku, name, description, category, price, stock, active, created_at
		 FROM products ORDER BY name, id LIMIT ? OFFSET ?`,
		page.Limit(), page.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close() //nolint:errcheck

	var products []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.SKU, &p.Name, &p.Description, &p.Category,
			&p.Price, &p.Stock, &p.Active, &p.CreatedAt); err != nil {
			return nil, 0, err
		}
		products = append(products, p)
	}
	return products, total, rows.Err()
}

// UpdateStock adjusts the stock level by delta. The update is guarded so
// stock never goes negative; an oversell surfaces as a conflict.
func (r *ProductRepo) UpdateStock(ctx context.Context, id string, delta int) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE products SET stock = stock + ? WHERE id = ? AND stock + ? >= 0`,
		delta, id, delta)
	if err != nil {
		return mapDBError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return domain.ErrConflict("insufficient stock for product %q", id)
	}
	return nil
}

// SetActive flags a product as sellable or discontinued.
func (r *ProductRepo) SetActive(ctx context.Context, id string, active bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE products SET active = ? WHERE id = ?`, boolToInt(active), id)
	if err != nil {
		return mapDBError(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound("product %q not found", id)
	}
	return nil
}

// Delete removes a product by ID.
func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return mapDBError(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound("product %q not found", id)
	}
	return nil
}

func (r *ProductRepo) getOne(ctx context.Context, stmt string, args ...interface{}) (*domain.Product, error) {
	var p domain.Product
	err := r.db.QueryRowContext(ctx, stmt, args...).Scan(
		&p.ID, &p.SKU, &p.Name, &p.Description, &p.Category,
		&p.Price, &p.Stock, &p.Active, &p.CreatedAt)
	if err != nil {
		return nil, mapDBError(err)
	}
	return &p, nil
}
