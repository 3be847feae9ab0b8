package repository

import (
	"context"
	"database/sql"
	"fmt"

	"posgate/internal/domain"
)

// Compile-time check.
var _ domain.DirectoryStore = (*DirectoryRepo)(nil)

// DirectoryRepo implements domain.DirectoryStore against SQLite. Entity
// saves are whole-row upserts plus a delete-and-reinsert of the junction
// rows, inside one transaction, so a persisted entity always matches its
// in-memory state exactly.
type DirectoryRepo struct {
	db *sql.DB
}

// NewDirectoryRepo creates a new DirectoryRepo.
func NewDirectoryRepo(db *sql.DB) *DirectoryRepo {
	return &DirectoryRepo{db: db}
}

// LoadAllPermissions returns every persisted permission with its aliases.
func (r *DirectoryRepo) LoadAllPermissions(ctx context.Context) ([]domain.PermissionRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT name, description, is_default FROM permissions ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	var recs []domain.PermissionRecord
	index := map[string]int{}
	for rows.Next() {
		var rec domain.PermissionRecord
		if err := rows.Scan(&rec.Name, &rec.Description, &rec.IsDefault); err != nil {
			return nil, err
		}
		index[rec.Name] = len(recs)
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	aliasRows, err := r.db.QueryContext(ctx,
		`SELECT permission_name, alias FROM permission_aliases ORDER BY permission_name, alias`)
	if err != nil {
		return nil, err
	}
	defer aliasRows.Close() //nolint:errcheck

	for aliasRows.Next() {
		var name, alias string
		if err := aliasRows.Scan(&name, &alias); err != nil {
			return nil, err
		}
		if i, ok := index[name]; ok {
			recs[i].Aliases = append(recs[i].Aliases, alias)
		}
	}
	return recs, aliasRows.Err()
}

// LoadAllGroups returns every persisted group with its grant and parent
// links.
func (r *DirectoryRepo) LoadAllGroups(ctx context.Context) ([]domain.GroupRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT name, description, is_default FROM groups ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	var recs []domain.GroupRecord
	index := map[string]int{}
	for rows.Next() {
		var rec domain.GroupRecord
		if err := rows.Scan(&rec.Name, &rec.Description, &rec.IsDefault); err != nil {
			return nil, err
		}
		index[rec.Name] = len(recs)
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	permRows, err := r.db.QueryContext(ctx,
		`SELECT group_name, permission_name FROM group_permissions ORDER BY group_name, permission_name`)
	if err != nil {
		return nil, err
	}
	defer permRows.Close() //nolint:errcheck
	for permRows.Next() {
		var group, perm string
		if err := permRows.Scan(&group, &perm); err != nil {
			return nil, err
		}
		if i, ok := index[group]; ok {
			recs[i].PermissionNames = append(recs[i].PermissionNames, perm)
		}
	}
	if err := permRows.Err(); err != nil {
		return nil, err
	}

	parentRows, err := r.db.QueryContext(ctx,
		`SELECT group_name, parent_name FROM group_parents ORDER BY group_name, parent_name`)
	if err != nil {
		return nil, err
	}
	defer parentRows.Close() //nolint:errcheck
	for parentRows.Next() {
		var group, parent string
		if err := parentRows.Scan(&group, &parent); err != nil {
			return nil, err
		}
		if i, ok := index[group]; ok {
			recs[i].ParentNames = append(recs[i].ParentNames, parent)
		}
	}
	return recs, parentRows.Err()
}

// LoadAllUsers returns every persisted user with group memberships and
// direct grants.
func (r *DirectoryRepo) LoadAllUsers(ctx context.Context) ([]domain.UserRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, username, first_name, last_name, email, credential_hash,
		        active, locked, failed_attempts, created_at, last_login_at, last_credential_change_at
		 FROM users ORDER BY username`)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	var recs []domain.UserRecord
	index := map[string]int{}
	for rows.Next() {
		var rec domain.UserRecord
		var lastLogin, lastChange sql.NullTime
		if err := rows.Scan(
			&rec.ID, &rec.Username, &rec.FirstName, &rec.LastName, &rec.Email, &rec.CredentialHash,
			&rec.Active, &rec.Locked, &rec.FailedAttempts, &rec.CreatedAt, &lastLogin, &lastChange,
		); err != nil {
			return nil, err
		}
		rec.LastLoginAt = fromNullTime(lastLogin)
		rec.LastCredentialChangeAt = fromNullTime(lastChange)
		index[rec.ID] = len(recs)
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	groupRows, err := r.db.QueryContext(ctx,
		`SELECT user_id, group_name FROM user_groups ORDER BY user_id, group_name`)
	if err != nil {
		return nil, err
	}
	defer groupRows.Close() //nolint:errcheck
	for groupRows.Next() {
		var userID, group string
		if err := groupRows.Scan(&userID, &group); err != nil {
			return nil, err
		}
		if i, ok := index[userID]; ok {
			recs[i].GroupNames = append(recs[i].GroupNames, group)
		}
	}
	if err := groupRows.Err(); err != nil {
		return nil, err
	}

	permRows, err := r.db.QueryContext(ctx,
		`SELECT user_id, permission_name FROM user_permissions ORDER BY user_id, permission_name`)
	if err != nil {
		return nil, err
	}
	defer permRows.Close() //nolint:errcheck
	for permRows.Next() {
		var userID, perm string
		if err := permRows.Scan(&userID, &perm); err != nil {
			return nil, err
		}
		if i, ok := index[userID]; ok {
			recs[i].PermissionNames = append(recs[i].PermissionNames, perm)
		}
	}
	return recs, permRows.Err()
}

// SavePermission upserts a permission and rewrites its alias rows.
func (r *DirectoryRepo) SavePermission(ctx context.Context, rec domain.PermissionRecord) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO permissions (name, description, is_default) VALUES (?, ?, ?)
			 ON CONFLICT(name) DO UPDATE SET description = excluded.description, is_default = excluded.is_default`,
			rec.Name, rec.Description, boolToInt(rec.IsDefault)); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM permission_aliases WHERE permission_name = ?`, rec.Name); err != nil {
			return err
		}
		for _, alias := range rec.Aliases {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO permission_aliases (permission_name, alias) VALUES (?, ?)`,
				rec.Name, alias); err != nil {
				return err
			}
		}
		return nil
	})
}

// SaveGroup upserts a group and rewrites its grant and parent rows.
func (r *DirectoryRepo) SaveGroup(ctx context.Context, rec domain.GroupRecord) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO groups (name, description, is_default) VALUES (?, ?, ?)
			 ON CONFLICT(name) DO UPDATE SET description = excluded.description, is_default = excluded.is_default`,
			rec.Name, rec.Description, boolToInt(rec.IsDefault)); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM group_permissions WHERE group_name = ?`, rec.Name); err != nil {
			return err
		}
		for _, perm := range rec.PermissionNames {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO group_permissions (group_name, permission_name) VALUES (?, ?)`,
				rec.Name, perm); err != nil {
				return err
			}
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM group_parents WHERE group_name = ?`, rec.Name); err != nil {
			return err
		}
		for _, parent := range rec.ParentNames {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO group_parents (group_name, parent_name) VALUES (?, ?)`,
				rec.Name, parent); err != nil {
				return err
			}
		}
		return nil
	})
}

// SaveUser upserts a user and rewrites its membership and grant rows.
func (r *DirectoryRepo) SaveUser(ctx context.Context, rec domain.UserRecord) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO users (id, username, first_name, last_name, email, credential_hash,
			                    active, locked, failed_attempts, created_at, last_login_at, last_credential_change_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET
			   username = excluded.username,
			   first_name = excluded.first_name,
			   last_name = excluded.last_name,
			   email = excluded.email,
			   credential_hash = excluded.credential_hash,
			   active = excluded.active,
			   locked = excluded.locked,
			   failed_attempts = excluded.failed_attempts,
			   last_login_at = excluded.last_login_at,
			   last_credential_change_at = excluded.last_credential_change_at`,
			rec.ID, rec.Username, rec.FirstName, rec.LastName, rec.Email, rec.CredentialHash,
			boolToInt(rec.Active), boolToInt(rec.Locked), rec.FailedAttempts, rec.CreatedAt,
			toNullTime(rec.LastLoginAt), toNullTime(rec.LastCredentialChangeAt)); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM user_groups WHERE user_id = ?`, rec.ID); err != nil {
			return err
		}
		for _, group := range rec.GroupNames {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO user_groups (user_id, group_name) VALUES (?, ?)`,
				rec.ID, group); err != nil {
				return err
			}
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM user_permissions WHERE user_id = ?`, rec.ID); err != nil {
			return err
		}
		for _, perm := range rec.PermissionNames {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO user_permissions (user_id, permission_name) VALUES (?, ?)`,
				rec.ID, perm); err != nil {
				return err
			}
		}
		return nil
	})
}

// DeletePermission removes a permission and its aliases. Grant rows that
// reference the name are left alone; they are weak links.
func (r *DirectoryRepo) DeletePermission(ctx context.Context, name string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM permissions WHERE name = ?`, name)
	return mapDBError(err)
}

// DeleteGroup removes a group with its grant and parent rows. Parent rows
// in other groups that reference this name are left alone.
func (r *DirectoryRepo) DeleteGroup(ctx context.Context, name string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM groups WHERE name = ?`, name)
	return mapDBError(err)
}

// DeleteUser removes a user with its membership and grant rows.
func (r *DirectoryRepo) DeleteUser(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	return mapDBError(err)
}

func (r *DirectoryRepo) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return mapDBError(err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
