package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"posgate/internal/domain"
)

// PrincipalResolver builds request principals for authenticated callers.
// Implemented by directory.Service.
type PrincipalResolver interface {
	ContextPrincipal(username, source string) (domain.ContextPrincipal, bool)
	ContextPrincipalForUser(id, source string) (domain.ContextPrincipal, bool)
}

// APIKeyResolver resolves raw API keys to their owning user.
// Implemented by directory.APIKeyService.
type APIKeyResolver interface {
	Resolve(ctx context.Context, rawKey string) (*domain.APIKey, *domain.Principal, error)
}

// AuthConfig wires the authentication middleware.
type AuthConfig struct {
	Validator JWTValidator
	Resolver  PrincipalResolver
	// APIKeys enables API key authentication when non-nil.
	APIKeys APIKeyResolver
	// APIKeyHeader overrides the header carrying API keys (default X-API-Key).
	APIKeyHeader string
	// CookieName enables session-cookie authentication for the web UI
	// when non-empty. The cookie value is a JWT.
	CookieName string
}

// Auth returns middleware that authenticates requests. Bearer tokens are
// tried first, then API keys, then the session cookie. Authenticated
// requests carry a domain.ContextPrincipal; everything else gets 401.
func Auth(cfg AuthConfig) func(http.Handler) http.Handler {
	keyHeader := cfg.APIKeyHeader
	if keyHeader == "" {
		keyHeader = "X-API-Key"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
				tokenStr := strings.TrimPrefix(auth, "Bearer ")
				if p, ok := principalFromToken(r.Context(), cfg, tokenStr, "jwt"); ok {
					next.ServeHTTP(w, r.WithContext(domain.WithPrincipal(r.Context(), p)))
					return
				}
			}

			if rawKey := r.Header.Get(keyHeader); rawKey != "" && cfg.APIKeys != nil {
				if _, user, err := cfg.APIKeys.Resolve(r.Context(), rawKey); err == nil {
					if p, ok := cfg.Resolver.ContextPrincipalForUser(user.ID(), "api_key"); ok {
						next.ServeHTTP(w, r.WithContext(domain.WithPrincipal(r.Context(), p)))
						return
					}
				}
			}

			if cfg.CookieName != "" {
				if cookie, err := r.Cookie(cfg.CookieName); err == nil && cookie.Value != "" {
					if p, ok := principalFromToken(r.Context(), cfg, cookie.Value, "cookie"); ok {
						next.ServeHTTP(w, r.WithContext(domain.WithPrincipal(r.Context(), p)))
						return
					}
				}
			}

			writeUnauthorized(w)
		})
	}
}

// RequireAdmin returns middleware that rejects non-admin principals with
// 403. It must run inside Auth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := domain.PrincipalFromContext(r.Context())
		if !ok {
			writeUnauthorized(w)
			return
		}
		if !p.IsAdmin {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"code":    403,
				"message": "admin access required",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func principalFromToken(ctx context.Context, cfg AuthConfig, tokenStr, source string) (domain.ContextPrincipal, bool) {
	claims, err := cfg.Validator.Validate(ctx, tokenStr)
	if err != nil || claims.Subject == "" {
		return domain.ContextPrincipal{}, false
	}
	return cfg.Resolver.ContextPrincipal(claims.Subject, source)
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"code":    401,
		"message": "unauthorized: provide a valid JWT Bearer token or API key",
	})
}
