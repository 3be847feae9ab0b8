package directory

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

// persistUser writes a principal's current record to the store. Login
// paths call this best-effort: the in-memory registry stays the
// runtime source of truth and a failed write only costs durability.
func (s *Service) persistUser(ctx context.Context, p *domain.Principal) {
	if err := s.store.SaveUser(ctx, p.Record()); err != nil {
		s.logger.Error("persist user failed", "username", p.Username(), "error", err)
	}
}
