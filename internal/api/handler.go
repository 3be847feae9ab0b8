// Package api provides the HTTP handlers for the posgate REST API.
package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"posgate/internal/domain"
	"posgate/internal/service/archive"
	"posgate/internal/service/directory"
	"posgate/internal/service/store"
)

// TokenIssuer signs session tokens for the login endpoint.
// Implemented by middleware.HS256Validator.
type TokenIssuer interface {
	Issue(username string, ttl time.Duration) (string, error)
}

// Handler serves the REST API. Snapshot endpoints are disabled when
// archive is nil.
type Handler struct {
	directory *directory.Service
	apiKeys   *directory.APIKeyService
	store     *store.Service
	archive   *archive.Service
	audit     domain.AuditRepository
	tokens    TokenIssuer
	readDB    *sql.DB
	logger    *slog.Logger

	serverName string
	version    string
	tokenTTL   time.Duration
}

// NewHandler creates an API handler over the wired services.
func NewHandler(
	directorySvc *directory.Service,
	apiKeySvc *directory.APIKeyService,
	storeSvc *store.Service,
	archiveSvc *archive.Service,
	auditRepo domain.AuditRepository,
	tokens TokenIssuer,
	readDB *sql.DB,
	logger *slog.Logger,
	serverName, version string,
	tokenTTL time.Duration,
) *Handler {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &Handler{
		directory:  directorySvc,
		apiKeys:    apiKeySvc,
		store:      storeSvc,
		archive:    archiveSvc,
		audit:      auditRepo,
		tokens:     tokens,
		readDB:     readDB,
		logger:     logger,
		serverName: serverName,
		version:    version,
		tokenTTL:   tokenTTL,
	}
}

// MountRoutes mounts the public endpoints and the authenticated /v1 tree.
// auth handles authentication; admin gates mutating directory routes and
// must run inside auth.
func MountRoutes(r chi.Router, h *Handler, auth, admin func(http.Handler) http.Handler) {
	r.Get("/health", h.Health)
	r.Get("/openapi.json", h.OpenAPISpec)
	r.Get("/docs", h.Docs)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/auth/login", h.Login)

		r.Group(func(r chi.Router) {
			r.Use(auth)

			// Reads are open to any authenticated principal.
			r.Get("/permissions", h.ListPermissions)
			r.Get("/permissions/{name}", h.GetPermission)
			r.Get("/groups", h.ListGroups)
			r.Get("/groups/{name}", h.GetGroup)
			r.Get("/groups/{name}/effective-permissions", h.GroupEffectivePermissions)
			r.Get("/users", h.ListUsers)
			r.Get("/users/{id}", h.GetUser)
			r.Get("/users/{id}/effective-permissions", h.UserEffectivePermissions)
			r.Get("/check", h.Check)
			r.Post("/users/{id}/password", h.ChangePassword)

			// Store endpoints enforce pos.sale / pos.refund internally.
			r.Route("/store", func(r chi.Router) {
				r.Post("/products", h.AddProduct)
				r.Get("/products", h.ListProducts)
				r.Get("/products/{id}", h.GetProduct)
				r.Post("/products/{id}/stock", h.AdjustStock)
				r.Post("/products/{id}/active", h.SetProductActive)
				r.Delete("/products/{id}", h.RemoveProduct)
				r.Post("/customers", h.AddCustomer)
				r.Get("/customers", h.ListCustomers)
				r.Get("/customers/{id}", h.GetCustomer)
				r.Post("/customers/{id}/loyalty", h.AwardLoyaltyPoints)
				r.Post("/transactions", h.RecordSale)
				r.Get("/transactions", h.ListTransactions)
				r.Get("/transactions/{id}", h.GetTransaction)
				r.Post("/transactions/{id}/refund", h.RefundTransaction)
				r.Get("/transactions/{id}/receipt", h.GetReceipt)
			})

			// Directory mutations and security surfaces are admin-only.
			r.Group(func(r chi.Router) {
				r.Use(admin)

				r.Post("/permissions", h.RegisterPermission)
				r.Delete("/permissions/{name}", h.UnregisterPermission)

				r.Post("/groups", h.RegisterGroup)
				r.Delete("/groups/{name}", h.UnregisterGroup)
				r.Post("/groups/{name}/permissions", h.AddGroupPermission)
				r.Delete("/groups/{name}/permissions/{permission}", h.RemoveGroupPermission)
				r.Post("/groups/{name}/parents", h.AddGroupParent)
				r.Delete("/groups/{name}/parents/{parent}", h.RemoveGroupParent)

				r.Post("/users", h.RegisterUser)
				r.Delete("/users/{id}", h.UnregisterUser)
				r.Post("/users/{id}/lock", h.LockUser)
				r.Post("/users/{id}/unlock", h.UnlockUser)
				r.Post("/users/{id}/activate", h.ActivateUser)
				r.Post("/users/{id}/deactivate", h.DeactivateUser)
				r.Post("/users/{id}/groups", h.AddUserToGroup)
				r.Delete("/users/{id}/groups/{name}", h.RemoveUserFromGroup)
				r.Post("/users/{id}/permissions", h.GrantUserPermission)
				r.Delete("/users/{id}/permissions/{permission}", h.RevokeUserPermission)
				r.Put("/users/{id}/profile", h.UpdateUserProfile)

				r.Post("/apikeys", h.CreateAPIKey)
				r.Get("/apikeys", h.ListAPIKeys)
				r.Delete("/apikeys/{id}", h.DeleteAPIKey)

				r.Get("/audit", h.ListAudit)

				r.Post("/snapshots", h.CreateSnapshot)
			})
		})
	})
}

// pageFromRequest extracts a PageRequest from max_results/page_token params.
func pageFromRequest(r *http.Request) domain.PageRequest {
	p := domain.PageRequest{PageToken: r.URL.Query().Get("page_token")}
	if raw := r.URL.Query().Get("max_results"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			p.MaxResults = parsed
		}
	}
	return p
}

// === Response shapes ===

type permissionView struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Aliases     []string `json:"aliases,omitempty"`
	IsDefault   bool     `json:"is_default,omitempty"`
}

type groupView struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	IsDefault   bool     `json:"is_default,omitempty"`
	Permissions []string `json:"permissions"`
	Parents     []string `json:"parents"`
}

type userView struct {
	ID             string     `json:"id"`
	Username       string     `json:"username"`
	FirstName      string     `json:"first_name,omitempty"`
	LastName       string     `json:"last_name,omitempty"`
	Email          string     `json:"email,omitempty"`
	Active         bool       `json:"active"`
	Locked         bool       `json:"locked"`
	FailedAttempts int        `json:"failed_attempts"`
	CreatedAt      time.Time  `json:"created_at"`
	LastLoginAt    *time.Time `json:"last_login_at,omitempty"`
	Groups         []string   `json:"groups"`
	Permissions    []string   `json:"permissions"`
}

type paginatedList struct {
	Data          interface{} `json:"data"`
	NextPageToken string      `json:"next_page_token,omitempty"`
}

func permissionToAPI(p *domain.Permission) permissionView {
	return permissionView{
		Name:        p.Name(),
		Description: p.Description(),
		Aliases:     p.Aliases(),
		IsDefault:   p.IsDefault(),
	}
}

func groupToAPI(g *domain.Group) groupView {
	perms := g.Permissions()
	names := make([]string, len(perms))
	for i, p := range perms {
		names[i] = p.Name()
	}
	return groupView{
		Name:        g.Name(),
		Description: g.Description(),
		IsDefault:   g.IsDefault(),
		Permissions: names,
		Parents:     g.Parents(),
	}
}

func userToAPI(u *domain.Principal) userView {
	direct := u.DirectPermissions()
	names := make([]string, len(direct))
	for i, p := range direct {
		names[i] = p.Name()
	}
	return userView{
		ID:             u.ID(),
		Username:       u.Username(),
		FirstName:      u.FirstName(),
		LastName:       u.LastName(),
		Email:          u.Email(),
		Active:         u.Active(),
		Locked:         u.Locked(),
		FailedAttempts: u.FailedAttempts(),
		CreatedAt:      u.CreatedAt(),
		LastLoginAt:    u.LastLoginAt(),
		Groups:         u.Groups(),
		Permissions:    names,
	}
}
