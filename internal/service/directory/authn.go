package directory

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"posgate/internal/domain"
)

// HashCredential returns the hex SHA-256 digest stored for a secret.
// Hashing happens at the edges; the registries only compare digests.
func HashCredential(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

// Authenticate verifies a credential digest against the identity
// registry. Counter and lock changes are persisted so they survive a
// restart, and every attempt lands in the audit log.
func (s *Service) Authenticate(ctx context.Context, username, credentialHash string) (*domain.Principal, error) {
	normalized := domain.NormalizeName(username)

	if s.credentialMaxDays > 0 {
		// Locked and inactive accounts keep their registry failure
		// reason; only loginable accounts are gated on expiry.
		if u, ok := s.identities.UserByUsername(normalized); ok && u.CanLogin() && u.IsCredentialExpired(s.credentialMaxDays) {
			err := domain.ErrAuthFailed(domain.AuthNotLoginable, "credential for %q has expired", normalized)
			msg := err.Error()
			s.insertAudit(ctx, normalized, "AUTHENTICATE", "", "DENIED", &msg)
			return nil, err
		}
	}

	p, err := s.identities.Authenticate(normalized, credentialHash)
	if err != nil {
		// A credential mismatch bumped the failure counter and may
		// have locked the account; persist that state.
		var authErr *domain.AuthFailedError
		if errors.As(err, &authErr) && authErr.Reason == domain.AuthBadCredentials {
			if u, ok := s.identities.UserByUsername(normalized); ok {
				s.persistUser(ctx, u)
			}
		}
		msg := err.Error()
		s.insertAudit(ctx, normalized, "AUTHENTICATE", "", "DENIED", &msg)
		return nil, err
	}

	s.persistUser(ctx, p)
	s.insertAudit(ctx, p.Username(), "AUTHENTICATE", "", "ALLOWED", nil)
	return p, nil
}

// ChangePassword rotates a credential when the current digest matches
// the stored one.
func (s *Service) ChangePassword(ctx context.Context, userID, oldHash, newHash string) error {
	if err := s.identities.ChangePassword(userID, oldHash, newHash); err != nil {
		msg := err.Error()
		s.insertAudit(ctx, domain.CallerName(ctx), "CHANGE_PASSWORD", userID, "DENIED", &msg)
		return err
	}
	if u, ok := s.identities.UserByID(userID); ok {
		if err := s.store.SaveUser(ctx, u.Record()); err != nil {
			return fmt.Errorf("persist user %q: %w", u.Username(), err)
		}
	}
	s.logAudit(ctx, "CHANGE_PASSWORD", userID)
	return nil
}
