package repository

import (
	"context"
	"database/sql"
	"time"

	"posgate/internal/domain"
)

// Compile-time check.
var _ domain.AuditRepository = (*AuditRepo)(nil)

// AuditRepo implements domain.AuditRepository against SQLite.
type AuditRepo struct {
	db *sql.DB
}

// NewAuditRepo creates a new AuditRepo.
func NewAuditRepo(db *sql.DB) *AuditRepo {
	return &AuditRepo{db: db}
}

// Insert appends an audit entry.
func (r *AuditRepo) Insert(ctx context.Context, e *domain.AuditEntry) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO audit_log (id, principal_name, action, target, status, error_message, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.PrincipalName, e.Action, toNullString(e.Target), e.Status,
		toNullString(e.ErrorMessage), e.CreatedAt)
	return mapDBError(err)
}

// List returns audit entries newest first, filtered and paginated.
func (r *AuditRepo) List(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEntry, int64, error) {
	where := ` WHERE (? IS NULL OR principal_name = ?)
	             AND (? IS NULL OR action = ?)
	             AND (? IS NULL OR status = ?)
	             AND (? IS NULL OR created_at >= ?)`
	var since interface{}
	if filter.Since != nil {
		since = *filter.Since
	}
	args := []interface{}{
		nilable(filter.PrincipalName), nilable(filter.PrincipalName),
		nilable(filter.Action), nilable(filter.Action),
		nilable(filter.Status), nilable(filter.Status),
		since, since,
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_log`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	listArgs := append(args, filter.Page.Limit(), filter.Page.Offset())
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, principal_name, action, target, status, error_message, created_at
		 FROM audit_log`+where+` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		listArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close() //nolint:errcheck

	var entries []domain.AuditEntry
	for rows.Next() {
		var e domain.AuditEntry
		var target, errorMessage sql.NullString
		if err := rows.Scan(&e.ID, &e.PrincipalName, &e.Action, &target, &e.Status, &errorMessage, &e.CreatedAt); err != nil {
			return nil, 0, err
		}
		e.Target = fromNullString(target)
		e.ErrorMessage = fromNullString(errorMessage)
		entries = append(entries, e)
	}
	return entries, total, rows.Err()
}

// DeleteBefore prunes entries older than cutoff.
func (r *AuditRepo) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM audit_log WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// nilable turns a *string filter into a driver value: nil means "match
// everything" in the WHERE clause above.
func nilable(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}
