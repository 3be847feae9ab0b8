package directory

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"posgate/internal/domain"
	"posgate/internal/rbac"
)

// APIKeyService manages API keys for programmatic access. Keys are tied
// to directory users; only the SHA-256 digest is stored.
type APIKeyService struct {
	repo       domain.APIKeyRepository
	identities *rbac.IdentityRegistry
	audit      domain.AuditRepository
	logger     *slog.Logger
}

// NewAPIKeyService creates a new APIKeyService.
func NewAPIKeyService(repo domain.APIKeyRepository, identities *rbac.IdentityRegistry, audit domain.AuditRepository, logger *slog.Logger) *APIKeyService {
	return &APIKeyService{repo: repo, identities: identities, audit: audit, logger: logger}
}

// Create generates a new API key for a user. Returns the raw key, which
// is shown exactly once, alongside the stored metadata.
func (s *APIKeyService) Create(ctx context.Context, req domain.CreateAPIKeyRequest) (*domain.APIKey, string, error) {
	if err := req.Validate(); err != nil {
		return nil, "", err
	}
	user, ok := s.identities.UserByID(req.UserID)
	if !ok {
		return nil, "", domain.ErrNotFound("user %q not found", req.UserID)
	}

	rawBytes := make([]byte, 32)
	if _, err := rand.Read(rawBytes); err != nil {
		return nil, "", fmt.Errorf("generate key: %w", err)
	}
	rawKey := hex.EncodeToString(rawBytes)

	hash := sha256.Sum256([]byte(rawKey))

	key := &domain.APIKey{
		ID:        domain.NewID(),
		UserID:    user.ID(),
		Name:      req.Name,
		KeyPrefix: rawKey[:8],
		KeyHash:   hex.EncodeToString(hash[:]),
		ExpiresAt: req.ExpiresAt,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Insert(ctx, key); err != nil {
		return nil, "", err
	}

	s.insertAudit(ctx, "CREATE_API_KEY", key.Name)
	return key, rawKey, nil
}

// ListForUser returns a user's keys, digests included, raw keys not.
func (s *APIKeyService) ListForUser(ctx context.Context, userID string) ([]domain.APIKey, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Delete removes an API key by ID.
func (s *APIKeyService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.insertAudit(ctx, "DELETE_API_KEY", id)
	return nil
}

// Resolve looks up a raw key presented by a client. Expired keys and
// keys whose user has been removed resolve to nothing.
func (s *APIKeyService) Resolve(ctx context.Context, rawKey string) (*domain.APIKey, *domain.Principal, error) {
	hash := sha256.Sum256([]byte(rawKey))
	key, err := s.repo.GetByHash(ctx, hex.EncodeToString(hash[:]))
	if err != nil {
		return nil, nil, err
	}
	if key.Expired(time.Now().UTC()) {
		return nil, nil, domain.ErrAuthFailed(domain.AuthNotLoginable, "api key %q has expired", key.KeyPrefix)
	}
	user, ok := s.identities.UserByID(key.UserID)
	if !ok {
		return nil, nil, domain.ErrNotFound("user %q not found", key.UserID)
	}
	return key, user, nil
}

func (s *APIKeyService) insertAudit(ctx context.Context, action, target string) {
	entry := &domain.AuditEntry{
		ID:            domain.NewID(),
		PrincipalName: domain.CallerName(ctx),
		Action:        action,
		Target:        &target,
		Status:        "ALLOWED",
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.audit.Insert(ctx, entry); err != nil {
		s.logger.Warn("audit insert failed", "action", action, "error", err)
	}
}
