// Package ui serves the embedded admin console. It renders server-side
// gomponents pages over the same directory service the REST API uses;
// sessions ride an HttpOnly cookie signed by the login handler.
package ui

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	gomponents "maragu.dev/gomponents"

	"posgate/internal/domain"
	"posgate/internal/middleware"
	"posgate/internal/service/directory"
)

// SessionSigner issues and validates the JWT carried by the session
// cookie. Implemented by middleware.HS256Validator.
type SessionSigner interface {
	Issue(username string, ttl time.Duration) (string, error)
	Validate(ctx context.Context, token string) (*middleware.JWTClaims, error)
}

type Handler struct {
	Directory  *directory.Service
	Audit      domain.AuditRepository
	Sessions   SessionSigner
	SessionTTL time.Duration
	Production bool
}

func NewHandler(dir *directory.Service, audit domain.AuditRepository, sessions SessionSigner, sessionTTL time.Duration, production bool) *Handler {
	if sessionTTL <= 0 {
		sessionTTL = 12 * time.Hour
	}
	return &Handler{
		Directory:  dir,
		Audit:      audit,
		Sessions:   sessions,
		SessionTTL: sessionTTL,
		Production: production,
	}
}

func pageFromRequest(r *http.Request, defaultPageSize int) domain.PageRequest {
	maxResults := defaultPageSize
	if maxResults <= 0 {
		maxResults = 25
	}
	if raw := r.URL.Query().Get("max_results"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			maxResults = parsed
		}
	}
	if maxResults < 1 {
		maxResults = 1
	}
	if maxResults > 200 {
		maxResults = 200
	}
	return domain.PageRequest{
		MaxResults: maxResults,
		PageToken:  r.URL.Query().Get("page_token"),
	}
}

// pageSlice clamps an in-memory listing to the requested page and
// reports the bounds actually used.
func pageSlice(page domain.PageRequest, length int) (offset, end int) {
	offset, limit := page.Offset(), page.Limit()
	if offset > length {
		offset = length
	}
	end = offset + limit
	if end > length {
		end = length
	}
	return offset, end
}

func renderHTML(w http.ResponseWriter, status int, node gomponents.Node) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = node.Render(w)
}

func principalFromContext(ctx context.Context) domain.ContextPrincipal {
	p, ok := domain.PrincipalFromContext(ctx)
	if !ok {
		return domain.ContextPrincipal{Name: "unknown", Source: "cookie"}
	}
	return p
}

func (h *Handler) renderServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	title := "Unexpected Error"
	message := "An unexpected error occurred while loading this page."

	var notFound *domain.NotFoundError
	var accessDenied *domain.AccessDeniedError
	var validation *domain.ValidationError
	var conflict *domain.ConflictError
	if errors.As(err, &notFound) {
		status = http.StatusNotFound
		title = "Not Found"
		message = notFound.Error()
	} else if errors.As(err, &accessDenied) {
		status = http.StatusForbidden
		title = "Access Denied"
		message = accessDenied.Error()
	} else if errors.As(err, &validation) {
		status = http.StatusBadRequest
		title = "Invalid Request"
		message = validation.Error()
	} else if errors.As(err, &conflict) {
		status = http.StatusConflict
		title = "Conflict"
		message = conflict.Error()
	}

	_ = r
	renderHTML(w, status, errorPage(title, message))
}
