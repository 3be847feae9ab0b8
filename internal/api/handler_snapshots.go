package api

import "net/http"

// CreateSnapshot exports a directory snapshot to the configured object
// store and returns where it landed.
func (h *Handler) CreateSnapshot(w http.ResponseWriter, r *http.Request) {
	if h.archive == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{
			Code:    http.StatusServiceUnavailable,
			Message: "snapshot archive is not configured",
		})
		return
	}
	result, err := h.archive.Export(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}
