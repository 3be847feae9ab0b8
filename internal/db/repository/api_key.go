package repository

import (
	"context"
	"database/sql"

	"posgate/internal/domain"
)

// Compile-time check.
var _ domain.APIKeyRepository = (*APIKeyRepo)(nil)

// APIKeyRepo implements domain.APIKeyRepository against SQLite.
type APIKeyRepo struct {
	db *sql.DB
}

// NewAPIKeyRepo creates a new APIKeyRepo.
func NewAPIKeyRepo(db *sql.DB) *APIKeyRepo {
	return &APIKeyRepo{db: db}
}

// Insert stores a new API key row.
func (r *APIKeyRepo) Insert(ctx context.Context, key *domain.APIKey) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO api_keys (id, user_id, name, key_prefix, key_hash, expires_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		key.ID, key.UserID, key.Name, key.KeyPrefix, key.KeyHash,
		toNullTime(key.ExpiresAt), key.CreatedAt)
	return mapDBError(err)
}

// GetByHash returns the API key with the given SHA-256 digest.
func (r *APIKeyRepo) GetByHash(ctx context.Context, keyHash string) (*domain.APIKey, error) {
	return r.getOne(ctx,
		`SELECT id, user_id, name, key_prefix, key_hash, expires_at, created_at
		 FROM api_keys WHERE key_hash = ?`, keyHash)
}

// ListByUser returns a user's API keys, newest first.
func (r *APIKeyRepo) ListByUser(ctx context.Context, userID string) ([]domain.APIKey, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, name, key_prefix, key_hash, expires_at, created_at
		 FROM api_keys WHERE user_id = ? ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	var keys []domain.APIKey
	for rows.Next() {
		var k domain.APIKey
		var expiresAt sql.NullTime
		if err := rows.Scan(&k.ID, &k.UserID, &k.Name, &k.KeyPrefix, &k.KeyHash, &expiresAt, &k.CreatedAt); err != nil {
			return nil, err
		}
		k.ExpiresAt = fromNullTime(expiresAt)
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// Delete removes an API key by ID.
func (r *APIKeyRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM api_keys WHERE id = ?`, id)
	if err != nil {
		return mapDBError(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound("api key %q not found", id)
	}
	return nil
}

func (r *APIKeyRepo) getOne(ctx context.Context, stmt string, args ...interface{}) (*domain.APIKey, error) {
	var k domain.APIKey
	var expiresAt sql.NullTime
	err := r.db.QueryRowContext(ctx, stmt, args...).Scan(
		&k.ID, &k.UserID, &k.Name, &k.KeyPrefix, &k.KeyHash, &expiresAt, &k.CreatedAt)
	if err != nil {
		return nil, mapDBError(err)
	}
	k.ExpiresAt = fromNullTime(expiresAt)
	return &k, nil
}
