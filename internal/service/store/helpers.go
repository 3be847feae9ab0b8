package store

import (
	"context"
	"time"

	"posgate/internal/domain"
)

// logAudit records a successful operation attributed to the caller.
func (s *Service) logAudit(ctx context.Context, action, target string) {
	s.insertAudit(ctx, domain.CallerName(ctx), action, target, "ALLOWED", nil)
}

func (s *Service) insertAudit(ctx context.Context, principal, action, target, status string, errMsg *string) {
	entry := &domain.AuditEntry{
		ID:            domain.NewID(),
		PrincipalName: principal,
		Action:        action,
		Status:        status,
		ErrorMessage:  errMsg,
		CreatedAt:     time.Now().UTC(),
	}
	if target != "" {
		entry.Target = &target
	}
	if err := s.audit.Insert(ctx, entry); err != nil {
		s.logger.Warn("audit insert failed", "action", action, "error", err)
	}
}
