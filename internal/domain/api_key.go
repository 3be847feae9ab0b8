package domain

import "time"

// APIKey represents an API key for programmatic access, tied to a user.
type APIKey struct {
	ID        string
	UserID    string
	Name      string
	KeyPrefix string // first 8 chars for identification
	KeyHash   string // SHA-256 of raw key; raw key is never stored
	ExpiresAt *time.Time
	CreatedAt time.Time
}

// Expired reports whether the key is past its expiry. Keys without an
// expiry never expire.
func (k *APIKey) Expired(now time.Time) bool {
	return k.ExpiresAt != nil && now.After(*k.ExpiresAt)
}

// CreateAPIKeyRequest holds parameters for creating a new API key.
type CreateAPIKeyRequest struct {
	UserID    string
	Name      string
	ExpiresAt *time.Time
}

// Validate checks that the request is well-formed.
func (r *CreateAPIKeyRequest) Validate() error {
	if r.UserID == "" {
		return ErrValidation("user_id is required")
	}
	if r.Name == "" {
		return ErrValidation("api key name is required")
	}
	return nil
}
