package ui

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Account actions mirror the admin-only API routes. Each one applies a
// single state change and bounces back to the detail page that posted it.

func (h *Handler) UserLock(w http.ResponseWriter, r *http.Request) {
	h.setUserLocked(w, r, true)
}

func (h *Handler) UserUnlock(w http.ResponseWriter, r *http.Request) {
	h.setUserLocked(w, r, false)
}

func (h *Handler) UserActivate(w http.ResponseWriter, r *http.Request) {
	h.setUserActive(w, r, true)
}

func (h *Handler) UserDeactivate(w http.ResponseWriter, r *http.Request) {
	h.setUserActive(w, r, false)
}

func (h *Handler) setUserLocked(w http.ResponseWriter, r *http.Request, locked bool) {
	if err := h.requireAdmin(r); err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	id := chi.URLParam(r, "id")
	if err := h.Directory.SetUserLocked(r.Context(), id, locked); err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	http.Redirect(w, r, "/ui/users/"+id, http.StatusSeeOther)
}

func (h *Handler) setUserActive(w http.ResponseWriter, r *http.Request, active bool) {
	if err := h.requireAdmin(r); err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	id := chi.URLParam(r, "id")
	if err := h.Directory.SetUserActive(r.Context(), id, active); err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	http.Redirect(w, r, "/ui/users/"+id, http.StatusSeeOther)
}
