package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"posgate/internal/domain"
	"posgate/internal/service/directory"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string   `json:"token"`
	User  userView `json:"user"`
}

// Login authenticates a username/password pair and returns a signed
// session token. Unknown users, locked accounts and bad credentials all
// map to the same 401 so callers cannot probe account state; the audit
// log records the precise reason.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, domain.ErrValidation("username and password are required"))
		return
	}
	if h.tokens == nil {
		writeError(w, domain.ErrValidation("password login is not enabled"))
		return
	}
	p, err := h.directory.Authenticate(r.Context(), req.Username, directory.HashCredential(req.Password))
	if err != nil {
		writeError(w, domain.ErrAuthFailed(domain.AuthBadCredentials, "invalid username or password"))
		return
	}
	token, err := h.tokens.Issue(p.Username(), h.tokenTTL)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Token: token, User: userToAPI(p)})
}

// Check answers a single authorization question. Without an explicit
// user_id it checks the calling principal.
func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	permission := r.URL.Query().Get("permission")
	if permission == "" {
		writeError(w, domain.ErrValidation("permission query parameter is required"))
		return
	}
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		p, ok := domain.PrincipalFromContext(r.Context())
		if !ok {
			writeError(w, domain.ErrValidation("user_id query parameter is required"))
			return
		}
		u, ok := h.directory.UserByUsername(p.Name)
		if !ok {
			writeError(w, domain.ErrNotFound("user %q not found", p.Name))
			return
		}
		userID = u.ID()
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user_id":    userID,
		"permission": permission,
		"allowed":    h.directory.Check(r.Context(), userID, permission),
	})
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.OldPassword == "" || req.NewPassword == "" {
		writeError(w, domain.ErrValidation("old_password and new_password are required"))
		return
	}
	id := chi.URLParam(r, "id")
	if err := h.requireSelfOrAdmin(r, id); err != nil {
		writeError(w, err)
		return
	}
	err := h.directory.ChangePassword(r.Context(), id,
		directory.HashCredential(req.OldPassword),
		directory.HashCredential(req.NewPassword))
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// requireSelfOrAdmin lets a principal operate on its own account and
// admins on anyone's.
func (h *Handler) requireSelfOrAdmin(r *http.Request, userID string) error {
	p, ok := domain.PrincipalFromContext(r.Context())
	if !ok {
		return domain.ErrAuthFailed(domain.AuthUnknownUser, "no authenticated principal")
	}
	if p.IsAdmin {
		return nil
	}
	u, ok := h.directory.User(userID)
	if !ok {
		return domain.ErrNotFound("user %q not found", userID)
	}
	if u.Username() != p.Name {
		return domain.ErrAccessDenied("cannot change another user's password")
	}
	return nil
}

// === API keys ===

type createAPIKeyRequest struct {
	UserID    string     `json:"user_id"`
	Name      string     `json:"name"`
	ExpiresAt *time.Time `json:"expires_at"`
}

type apiKeyView struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	Name      string     `json:"name"`
	KeyPrefix string     `json:"key_prefix"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// createAPIKeyResponse carries the raw key exactly once; only the hash
// is stored, so it cannot be retrieved again.
type createAPIKeyResponse struct {
	apiKeyView
	Key string `json:"key"`
}

func apiKeyToAPI(k *domain.APIKey) apiKeyView {
	return apiKeyView{
		ID:        k.ID,
		UserID:    k.UserID,
		Name:      k.Name,
		KeyPrefix: k.KeyPrefix,
		ExpiresAt: k.ExpiresAt,
		CreatedAt: k.CreatedAt,
	}
}

func (h *Handler) CreateAPIKey(w http.ResponseWriter, r *http.Request) {
	var req createAPIKeyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	key, raw, err := h.apiKeys.Create(r.Context(), domain.CreateAPIKeyRequest{
		UserID:    req.UserID,
		Name:      req.Name,
		ExpiresAt: req.ExpiresAt,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, createAPIKeyResponse{apiKeyView: apiKeyToAPI(key), Key: raw})
}

func (h *Handler) ListAPIKeys(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeError(w, domain.ErrValidation("user_id query parameter is required"))
		return
	}
	keys, err := h.apiKeys.ListForUser(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]apiKeyView, len(keys))
	for i := range keys {
		out[i] = apiKeyToAPI(&keys[i])
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) DeleteAPIKey(w http.ResponseWriter, r *http.Request) {
	if err := h.apiKeys.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
