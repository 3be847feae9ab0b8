package ui

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"

	"posgate/internal/ui/assets"
)

// MountRoutes mounts the console under the router's prefix. The login
// form is public; everything else runs behind the session check. CSRF
// covers every POST, the login form included.
func MountRoutes(r chi.Router, h *Handler) {
	staticFS, err := fs.Sub(assets.StaticFS(), "static")
	if err == nil {
		r.Handle("/static/*", http.StripPrefix("/ui/static/", http.FileServer(http.FS(staticFS))))
	}

	r.Group(func(r chi.Router) {
		r.Use(h.EnsureCSRFToken)
		r.Use(h.RequireCSRF)

		r.Get("/login", h.LoginPage)
		r.Post("/login", h.LoginSubmit)
		r.Post("/logout", h.Logout)

		r.Group(func(r chi.Router) {
			r.Use(h.RequireSession)

			r.Get("/", h.Overview)
			r.Get("/users", h.UsersList)
			r.Get("/users/{id}", h.UsersDetail)
			r.Post("/users/{id}/lock", h.UserLock)
			r.Post("/users/{id}/unlock", h.UserUnlock)
			r.Post("/users/{id}/activate", h.UserActivate)
			r.Post("/users/{id}/deactivate", h.UserDeactivate)
			r.Get("/groups", h.GroupsList)
			r.Get("/groups/{name}", h.GroupsDetail)
			r.Get("/permissions", h.PermissionsList)
			r.Get("/audit", h.AuditList)
		})
	})
}
