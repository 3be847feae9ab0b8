package domain

import "time"

// AuditEntry represents a single audit log record.
type AuditEntry struct {
	ID            string
	PrincipalName string
	Action        string
	Target        *string // entity the action touched, e.g. a username or group name
	Status        string  // "ALLOWED", "DENIED", "ERROR"
	ErrorMessage  *string
	CreatedAt     time.Time
}

// AuditFilter narrows audit log listings. Nil fields match everything.
type AuditFilter struct {
	PrincipalName *string
	Action        *string
	Status        *string
	Since         *time.Time
	Page          PageRequest
}
