package ui

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"posgate/internal/domain"
)

func (h *Handler) Overview(w http.ResponseWriter, r *http.Request) {
	d := overviewData{
		Users:       h.Directory.UserCount(),
		Active:      h.Directory.ActiveUserCount(),
		Locked:      h.Directory.LockedUserCount(),
		Groups:      h.Directory.GroupCount(),
		Permissions: h.Directory.PermissionCount(),
	}
	renderHTML(w, http.StatusOK, overviewPage(principalFromContext(r.Context()), d))
}

func (h *Handler) UsersList(w http.ResponseWriter, r *http.Request) {
	pageReq := pageFromRequest(r, 30)
	users := h.Directory.Users()
	total := int64(len(users))
	offset, end := pageSlice(pageReq, len(users))

	rows := make([]userRowData, 0, end-offset)
	for _, u := range users[offset:end] {
		rows = append(rows, userRowData{
			ID:       u.ID(),
			Username: u.Username(),
			FullName: u.FullName(),
			Email:    u.Email(),
			Active:   u.Active(),
			Locked:   u.Locked(),
			Groups:   u.Groups(),
			Filter:   u.Username() + " " + u.FullName() + " " + u.Email(),
		})
	}

	p := principalFromContext(r.Context())
	renderHTML(w, http.StatusOK, usersPage(p, rows, pageReq, total))
}

func (h *Handler) UsersDetail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	u, ok := h.Directory.User(id)
	if !ok {
		h.renderServiceError(w, r, domain.ErrNotFound("user %q not found", id))
		return
	}

	direct := u.DirectPermissions()
	directNames := make([]string, len(direct))
	for i, perm := range direct {
		directNames[i] = perm.Name()
	}

	p := principalFromContext(r.Context())
	d := userDetailData{
		ID:             u.ID(),
		Username:       u.Username(),
		FullName:       u.FullName(),
		Email:          u.Email(),
		Active:         u.Active(),
		Locked:         u.Locked(),
		FailedAttempts: u.FailedAttempts(),
		CreatedAt:      formatTime(u.CreatedAt()),
		LastLoginAt:    formatTimePtr(u.LastLoginAt()),
		Groups:         u.Groups(),
		Direct:         directNames,
		Effective:      h.Directory.EffectivePermissions(u.ID()),
		CanAct:         p.IsAdmin,
	}
	renderHTML(w, http.StatusOK, userDetailPage(p, d, csrfField(r)))
}

func (h *Handler) GroupsList(w http.ResponseWriter, r *http.Request) {
	pageReq := pageFromRequest(r, 30)
	groups := h.Directory.Groups()
	total := int64(len(groups))
	offset, end := pageSlice(pageReq, len(groups))

	rows := make([]groupRowData, 0, end-offset)
	for _, g := range groups[offset:end] {
		rows = append(rows, groupRowData{
			Name:        g.Name(),
			Description: g.Description(),
			IsDefault:   g.IsDefault(),
			Permissions: g.PermissionCount(),
			Parents:     g.Parents(),
			Members:     len(h.Directory.UsersInGroup(g.Name())),
			Filter:      g.Name() + " " + g.Description(),
		})
	}

	p := principalFromContext(r.Context())
	renderHTML(w, http.StatusOK, groupsPage(p, rows, pageReq, total))
}

func (h *Handler) GroupsDetail(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	g, ok := h.Directory.Group(name)
	if !ok {
		h.renderServiceError(w, r, domain.ErrNotFound("group %q not found", name))
		return
	}

	perms := g.Permissions()
	direct := make([]string, len(perms))
	for i, perm := range perms {
		direct[i] = perm.Name()
	}

	members := h.Directory.UsersInGroup(g.Name())
	memberRows := make([]groupMemberData, 0, len(members))
	for _, u := range members {
		memberRows = append(memberRows, groupMemberData{
			ID:       u.ID(),
			Username: u.Username(),
			Active:   u.Active(),
			Locked:   u.Locked(),
		})
	}

	p := principalFromContext(r.Context())
	d := groupDetailData{
		Name:        g.Name(),
		Description: g.Description(),
		IsDefault:   g.IsDefault(),
		Parents:     g.Parents(),
		Direct:      direct,
		Effective:   h.Directory.GroupEffectivePermissions(g.Name()),
		Members:     memberRows,
	}
	renderHTML(w, http.StatusOK, groupDetailPage(p, d))
}

func (h *Handler) PermissionsList(w http.ResponseWriter, r *http.Request) {
	pageReq := pageFromRequest(r, 50)
	perms := h.Directory.Permissions()
	total := int64(len(perms))
	offset, end := pageSlice(pageReq, len(perms))

	rows := make([]permissionRowData, 0, end-offset)
	for _, perm := range perms[offset:end] {
		rows = append(rows, permissionRowData{
			Name:        perm.Name(),
			Description: perm.Description(),
			Aliases:     perm.Aliases(),
			IsDefault:   perm.IsDefault(),
			Filter:      perm.Name() + " " + strings.Join(perm.Aliases(), " "),
		})
	}

	p := principalFromContext(r.Context())
	renderHTML(w, http.StatusOK, permissionsPage(p, rows, pageReq, total))
}

// AuditList is admin-only, matching the API. The status and action query
// params filter server-side; the quick filter narrows the loaded page.
func (h *Handler) AuditList(w http.ResponseWriter, r *http.Request) {
	if err := h.requireAdmin(r); err != nil {
		h.renderServiceError(w, r, err)
		return
	}

	pageReq := pageFromRequest(r, 50)
	filter := domain.AuditFilter{Page: pageReq}
	if v := strings.TrimSpace(r.URL.Query().Get("status")); v != "" {
		filter.Status = &v
	}
	if v := strings.TrimSpace(r.URL.Query().Get("action")); v != "" {
		filter.Action = &v
	}
	if v := strings.TrimSpace(r.URL.Query().Get("principal")); v != "" {
		filter.PrincipalName = &v
	}

	entries, total, err := h.Audit.List(r.Context(), filter)
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}

	rows := make([]auditRowData, 0, len(entries))
	for i := range entries {
		e := entries[i]
		rows = append(rows, auditRowData{
			Time:      formatTime(e.CreatedAt),
			Principal: e.PrincipalName,
			Action:    e.Action,
			Target:    stringPtr(e.Target),
			Status:    e.Status,
			Error:     stringPtr(e.ErrorMessage),
			Filter:    e.PrincipalName + " " + e.Action + " " + stringPtr(e.Target) + " " + e.Status,
		})
	}

	p := principalFromContext(r.Context())
	renderHTML(w, http.StatusOK, auditPage(p, rows, pageReq, total))
}

func (h *Handler) requireAdmin(r *http.Request) error {
	if p := principalFromContext(r.Context()); !p.IsAdmin {
		return domain.ErrAccessDenied("admin access required")
	}
	return nil
}
