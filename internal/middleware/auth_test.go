package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"posgate/internal/domain"
)

// === Test JWT Validator ===

type stubValidator struct {
	claims *JWTClaims
	err    error
}

func (v *stubValidator) Validate(_ context.Context, _ string) (*JWTClaims, error) {
	return v.claims, v.err
}

// === Test Principal Resolver ===

type stubResolver struct {
	byName map[string]domain.ContextPrincipal
	byID   map[string]domain.ContextPrincipal
}

func (s *stubResolver) ContextPrincipal(username, source string) (domain.ContextPrincipal, bool) {
	p, ok := s.byName[username]
	if ok {
		p.Source = source
	}
	return p, ok
}

func (s *stubResolver) ContextPrincipalForUser(id, source string) (domain.ContextPrincipal, bool) {
	p, ok := s.byID[id]
	if ok {
		p.Source = source
	}
	return p, ok
}

// === Test API Key Resolver ===

type stubKeys struct {
	keys map[string]string // raw key -> user ID
}

func (s *stubKeys) Resolve(_ context.Context, rawKey string) (*domain.APIKey, *domain.Principal, error) {
	userID, ok := s.keys[rawKey]
	if !ok {
		return nil, nil, domain.ErrNotFound("api key not found")
	}
	user, err := domain.NewPrincipal(userID, "key-owner")
	if err != nil {
		return nil, nil, err
	}
	return &domain.APIKey{ID: "k-1", UserID: userID, KeyPrefix: rawKey[:4]}, user, nil
}

// nextHandler returns a handler that records the context principal.
func nextHandler() (http.Handler, func() (domain.ContextPrincipal, bool)) {
	var cp domain.ContextPrincipal
	var found bool
	h := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		cp, found = domain.PrincipalFromContext(r.Context())
	})
	return h, func() (domain.ContextPrincipal, bool) { return cp, found }
}

func forbiddenHandler(t *testing.T) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler should not be called")
	})
}

func TestAuth_ValidJWT(t *testing.T) {
	handler, getPrincipal := nextHandler()

	mw := Auth(AuthConfig{
		Validator: &stubValidator{claims: &JWTClaims{Subject: "alice"}},
		Resolver: &stubResolver{byName: map[string]domain.ContextPrincipal{
			"alice": {Name: "alice", IsAdmin: true},
		}},
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer test-token")
	w := httptest.NewRecorder()

	mw(handler).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	cp, found := getPrincipal()
	require.True(t, found)
	assert.Equal(t, "alice", cp.Name)
	assert.True(t, cp.IsAdmin)
	assert.Equal(t, "jwt", cp.Source)
}

func TestAuth_InvalidJWT(t *testing.T) {
	mw := Auth(AuthConfig{
		Validator: &stubValidator{err: fmt.Errorf("token expired")},
		Resolver:  &stubResolver{},
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer expired-token")
	w := httptest.NewRecorder()

	mw(forbiddenHandler(t)).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, float64(401), body["code"])
	assert.Contains(t, body["message"], "unauthorized")
}

func TestAuth_MissingSubClaim(t *testing.T) {
	mw := Auth(AuthConfig{
		Validator: &stubValidator{claims: &JWTClaims{Subject: ""}},
		Resolver:  &stubResolver{},
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer no-sub-token")
	w := httptest.NewRecorder()

	mw(forbiddenHandler(t)).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_UnresolvableUser(t *testing.T) {
	// Valid token, but the user is unknown, locked, or inactive. The
	// resolver refuses and the request must not pass.
	mw := Auth(AuthConfig{
		Validator: &stubValidator{claims: &JWTClaims{Subject: "ghost"}},
		Resolver:  &stubResolver{byName: map[string]domain.ContextPrincipal{}},
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer valid-but-unknown")
	w := httptest.NewRecorder()

	mw(forbiddenHandler(t)).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_ValidAPIKey(t *testing.T) {
	handler, getPrincipal := nextHandler()
	rawKey := "pk_test_1234567890"

	mw := Auth(AuthConfig{
		Validator: &stubValidator{err: fmt.Errorf("no token")},
		APIKeys:   &stubKeys{keys: map[string]string{rawKey: "u-7"}},
		Resolver: &stubResolver{byID: map[string]domain.ContextPrincipal{
			"u-7": {Name: "service-bot"},
		}},
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-API-Key", rawKey)
	w := httptest.NewRecorder()

	mw(handler).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	cp, found := getPrincipal()
	require.True(t, found)
	assert.Equal(t, "service-bot", cp.Name)
	assert.False(t, cp.IsAdmin)
	assert.Equal(t, "api_key", cp.Source)
}

func TestAuth_UnknownAPIKey(t *testing.T) {
	mw := Auth(AuthConfig{
		Validator: &stubValidator{err: fmt.Errorf("no token")},
		APIKeys:   &stubKeys{keys: map[string]string{}},
		Resolver:  &stubResolver{},
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-API-Key", "unknown-key")
	w := httptest.NewRecorder()

	mw(forbiddenHandler(t)).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_APIKeysDisabled(t *testing.T) {
	// A nil APIKeys resolver means keys are not accepted at all.
	mw := Auth(AuthConfig{
		Validator: &stubValidator{err: fmt.Errorf("no token")},
		Resolver:  &stubResolver{},
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-API-Key", "pk_test_1234567890")
	w := httptest.NewRecorder()

	mw(forbiddenHandler(t)).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_BearerPrecedence(t *testing.T) {
	handler, getPrincipal := nextHandler()
	rawKey := "pk_test_1234567890"

	mw := Auth(AuthConfig{
		Validator: &stubValidator{claims: &JWTClaims{Subject: "jwt-user"}},
		APIKeys:   &stubKeys{keys: map[string]string{rawKey: "u-7"}},
		Resolver: &stubResolver{
			byName: map[string]domain.ContextPrincipal{"jwt-user": {Name: "jwt-user"}},
			byID:   map[string]domain.ContextPrincipal{"u-7": {Name: "key-user"}},
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer test-token")
	req.Header.Set("X-API-Key", rawKey)
	w := httptest.NewRecorder()

	mw(handler).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	cp, found := getPrincipal()
	require.True(t, found)
	assert.Equal(t, "jwt-user", cp.Name, "Bearer token should take precedence over API key")
}

func TestAuth_SessionCookie(t *testing.T) {
	handler, getPrincipal := nextHandler()

	mw := Auth(AuthConfig{
		Validator: &stubValidator{claims: &JWTClaims{Subject: "alice"}},
		Resolver: &stubResolver{byName: map[string]domain.ContextPrincipal{
			"alice": {Name: "alice"},
		}},
		CookieName: "posgate_session",
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "posgate_session", Value: "cookie-token"})
	w := httptest.NewRecorder()

	mw(handler).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	cp, found := getPrincipal()
	require.True(t, found)
	assert.Equal(t, "alice", cp.Name)
	assert.Equal(t, "cookie", cp.Source)
}

func TestAuth_CookieIgnoredWhenDisabled(t *testing.T) {
	mw := Auth(AuthConfig{
		Validator: &stubValidator{claims: &JWTClaims{Subject: "alice"}},
		Resolver: &stubResolver{byName: map[string]domain.ContextPrincipal{
			"alice": {Name: "alice"},
		}},
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "posgate_session", Value: "cookie-token"})
	w := httptest.NewRecorder()

	mw(forbiddenHandler(t)).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_NoCredentials(t *testing.T) {
	mw := Auth(AuthConfig{
		Validator: &stubValidator{err: fmt.Errorf("no token")},
		Resolver:  &stubResolver{},
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	mw(forbiddenHandler(t)).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
}

func TestRequireAdmin(t *testing.T) {
	t.Run("admin_passes", func(t *testing.T) {
		called := false
		h := RequireAdmin(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			called = true
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		ctx := domain.WithPrincipal(req.Context(), domain.ContextPrincipal{Name: "root", IsAdmin: true, Source: "jwt"})
		w := httptest.NewRecorder()

		h.ServeHTTP(w, req.WithContext(ctx))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, called)
	})

	t.Run("non_admin_forbidden", func(t *testing.T) {
		h := RequireAdmin(forbiddenHandler(t))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		ctx := domain.WithPrincipal(req.Context(), domain.ContextPrincipal{Name: "alice", Source: "jwt"})
		w := httptest.NewRecorder()

		h.ServeHTTP(w, req.WithContext(ctx))

		assert.Equal(t, http.StatusForbidden, w.Code)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "admin access required", body["message"])
	})

	t.Run("no_principal_unauthorized", func(t *testing.T) {
		h := RequireAdmin(forbiddenHandler(t))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		w := httptest.NewRecorder()

		h.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
