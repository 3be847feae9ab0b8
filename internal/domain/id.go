package domain

import "github.com/google/uuid"

// NewID returns a time-ordered UUIDv7 string for rows the application
// mints itself (users, audit entries, transactions).
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}
