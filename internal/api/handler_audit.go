package api

import (
	"net/http"
	"time"

	"posgate/internal/domain"
)

type auditEntryView struct {
	ID            string    `json:"id"`
	PrincipalName string    `json:"principal_name"`
	Action        string    `json:"action"`
	Target        *string   `json:"target,omitempty"`
	Status        string    `json:"status"`
	ErrorMessage  *string   `json:"error_message,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

func (h *Handler) ListAudit(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.AuditFilter{Page: pageFromRequest(r)}
	if v := q.Get("principal"); v != "" {
		filter.PrincipalName = &v
	}
	if v := q.Get("action"); v != "" {
		filter.Action = &v
	}
	if v := q.Get("status"); v != "" {
		filter.Status = &v
	}
	if v := q.Get("since"); v != "" {
		since, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, domain.ErrValidation("invalid since timestamp: %v", err))
			return
		}
		filter.Since = &since
	}
	entries, total, err := h.audit.List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]auditEntryView, len(entries))
	for i, e := range entries {
		out[i] = auditEntryView{
			ID:            e.ID,
			PrincipalName: e.PrincipalName,
			Action:        e.Action,
			Target:        e.Target,
			Status:        e.Status,
			ErrorMessage:  e.ErrorMessage,
			CreatedAt:     e.CreatedAt,
		}
	}
	writeJSON(w, http.StatusOK, paginatedList{
		Data:          out,
		NextPageToken: domain.NextPageToken(filter.Page.Offset(), filter.Page.Limit(), total),
	})
}
