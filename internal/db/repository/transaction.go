package repository

import (
	"context"
	"database/sql"
	"fmt"

	"posgate/internal/domain"
)

// Compile-time check.
var _ domain.TransactionRepository = (*TransactionRepo)(nil)

// TransactionRepo implements domain.TransactionRepository against SQLite.
// A transaction and its line items are written atomically.
type TransactionRepo struct {
	db *sql.DB
}

// NewTransactionRepo creates a new TransactionRepo.
func NewTransactionRepo(db *sql.DB) *TransactionRepo {
	return &TransactionRepo{db: db}
}

// Insert stores a transaction with its line items.
func (r *TransactionRepo) Insert(ctx context.Context, t *domain.Transaction) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO transactions (id, customer_id, cashier_id, subtotal, tax, discount, total, payment_method, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, toNullString(t.CustomerID), t.CashierID, t.Subtotal, t.Tax, t.Discount, t.Total,
		string(t.PaymentMethod), string(t.Status), t.CreatedAt); err != nil {
		return mapDBError(err)
	}
	for i, item := range t.Items {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO transaction_items (transaction_id, line_no, product_id, product_name, unit_price, quantity, discount)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			t.ID, i+1, item.ProductID, item.ProductName, item.UnitPrice, item.Quantity, item.Discount); err != nil {
			return mapDBError(err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// GetByID returns a transaction with its line items.
func (r *TransactionRepo) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	var t domain.Transaction
	var customerID sql.NullString
	var paymentMethod, status string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, customer_id, cashier_id, subtotal, tax, discount, total, payment_method, status, created_at
		 FROM transactions WHERE id = ?`, id).Scan(
		&t.ID, &customerID, &t.CashierID, &t.Subtotal, &t.Tax, &t.Discount, &t.Total,
		&paymentMethod, &status, &t.CreatedAt)
	if err != nil {
		return nil, mapDBError(err)
	}
	t.CustomerID = fromNullString(customerID)
	t.PaymentMethod = domain.PaymentMethod(paymentMethod)
	t.Status = domain.TransactionStatus(status)

	items, err := r.loadItems(ctx, id)
	if err != nil {
		return nil, err
	}
	t.Items = items
	return &t, nil
}

// List returns transactions newest first, filtered and paginated. Line
// items are loaded per transaction.
func (r *TransactionRepo) List(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, int64, error) {
	where := ` WHERE (? IS NULL OR cashier_id = ?)
	             AND (? IS NULL OR customer_id = ?)
	             AND (? IS NULL OR status = ?)
	             AND (? IS NULL OR created_at >= ?)`
	var status interface{}
	if filter.Status != nil {
		status = string(*filter.Status)
	}
	var since interface{}
	if filter.Since != nil {
		since = *filter.Since
	}
	args := []interface{}{
		nilable(filter.CashierID), nilable(filter.CashierID),
		nilable(filter.CustomerID), nilable(filter.CustomerID),
		status, status,
		since, since,
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	listArgs := append(args, filter.Page.Limit(), filter.Page.Offset())
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, customer_id, cashier_id, subtotal, tax, discount, total, payment_method, status, created_at
		 FROM transactions`+where+` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		listArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close() //nolint:errcheck

	var txns []domain.Transaction
	for rows.Next() {
		var t domain.Transaction
		var customerID sql.NullString
		var paymentMethod, txnStatus string
		if err := rows.Scan(&t.ID, &customerID, &t.CashierID, &t.Subtotal, &t.Tax, &t.Discount,
			&t.Total, &paymentMethod, &txnStatus, &t.CreatedAt); err != nil {
			return nil, 0, err
		}
		t.CustomerID = fromNullString(customerID)
		t.PaymentMethod = domain.PaymentMethod(paymentMethod)
		t.Status = domain.TransactionStatus(txnStatus)
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	for i := range txns {
		items, err := r.loadItems(ctx, txns[i].ID)
		if err != nil {
			return nil, 0, err
		}
		txns[i].Items = items
	}
	return txns, total, nil
}

// UpdateStatus moves a transaction to a new lifecycle state.
func (r *TransactionRepo) UpdateStatus(ctx context.Context, id string, status domain.TransactionStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return mapDBError(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound("transaction %q not found", id)
	}
	return nil
}

func (r *TransactionRepo) loadItems(ctx context.Context, txnID string) ([]domain.TransactionItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT product_id, product_name, unit_price, quantity, discount
		 FROM transaction_items WHERE transaction_id = ? ORDER BY line_no`, txnID)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	var items []domain.TransactionItem
	for rows.Next() {
		var item domain.TransactionItem
		if err := rows.Scan(&item.ProductID, &item.ProductName, &item.UnitPrice, &item.Quantity, &item.Discount); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
