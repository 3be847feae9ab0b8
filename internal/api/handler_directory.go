package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"posgate/internal/domain"
	"posgate/internal/service/directory"
)

// === Permissions ===

type registerPermissionRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Aliases     []string `json:"aliases"`
	IsDefault   bool     `json:"is_default"`
}

func (h *Handler) RegisterPermission(w http.ResponseWriter, r *http.Request) {
	var req registerPermissionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	p, err := h.directory.RegisterPermission(r.Context(), domain.PermissionRecord{
		Name:        req.Name,
		Description: req.Description,
		Aliases:     req.Aliases,
		IsDefault:   req.IsDefault,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, permissionToAPI(p))
}

func (h *Handler) ListPermissions(w http.ResponseWriter, _ *http.Request) {
	perms := h.directory.Permissions()
	out := make([]permissionView, len(perms))
	for i, p := range perms {
		out[i] = permissionToAPI(p)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) GetPermission(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	p, ok := h.directory.Permission(name)
	if !ok {
		writeError(w, domain.ErrNotFound("permission %q not found", name))
		return
	}
	writeJSON(w, http.StatusOK, permissionToAPI(p))
}

func (h *Handler) UnregisterPermission(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	removed, err := h.directory.UnregisterPermission(r.Context(), name)
	if err != nil {
		writeError(w, err)
		return
	}
	if !removed {
		writeError(w, domain.ErrNotFound("permission %q not found", name))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// === Groups ===

type registerGroupRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	IsDefault   bool     `json:"is_default"`
	Permissions []string `json:"permissions"`
	Parents     []string `json:"parents"`
}

func (h *Handler) RegisterGroup(w http.ResponseWriter, r *http.Request) {
	var req registerGroupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	g, err := h.directory.RegisterGroup(r.Context(), domain.GroupRecord{
		Name:            req.Name,
		Description:     req.Description,
		IsDefault:       req.IsDefault,
		PermissionNames: req.Permissions,
		ParentNames:     req.Parents,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, groupToAPI(g))
}

func (h *Handler) ListGroups(w http.ResponseWriter, _ *http.Request) {
	groups := h.directory.Groups()
	out := make([]groupView, len(groups))
	for i, g := range groups {
		out[i] = groupToAPI(g)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) GetGroup(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	g, ok := h.directory.Group(name)
	if !ok {
		writeError(w, domain.ErrNotFound("group %q not found", name))
		return
	}
	writeJSON(w, http.StatusOK, groupToAPI(g))
}

func (h *Handler) UnregisterGroup(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	removed, err := h.directory.UnregisterGroup(r.Context(), name)
	if err != nil {
		writeError(w, err)
		return
	}
	if !removed {
		writeError(w, domain.ErrNotFound("group %q not found", name))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GroupEffectivePermissions(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if _, ok := h.directory.Group(name); !ok {
		writeError(w, domain.ErrNotFound("group %q not found", name))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"group":       domain.NormalizeName(name),
		"permissions": h.directory.GroupEffectivePermissions(name),
	})
}

type groupPermissionRequest struct {
	Permission string `json:"permission"`
}

func (h *Handler) AddGroupPermission(w http.ResponseWriter, r *http.Request) {
	var req groupPermissionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.directory.AddGroupPermission(r.Context(), chi.URLParam(r, "name"), req.Permission); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) RemoveGroupPermission(w http.ResponseWriter, r *http.Request) {
	err := h.directory.RemoveGroupPermission(r.Context(), chi.URLParam(r, "name"), chi.URLParam(r, "permission"))
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type groupParentRequest struct {
	Parent string `json:"parent"`
}

func (h *Handler) AddGroupParent(w http.ResponseWriter, r *http.Request) {
	var req groupParentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.directory.AddGroupParent(r.Context(), chi.URLParam(r, "name"), req.Parent); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) RemoveGroupParent(w http.ResponseWriter, r *http.Request) {
	err := h.directory.RemoveGroupParent(r.Context(), chi.URLParam(r, "name"), chi.URLParam(r, "parent"))
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// === Users ===

type registerUserRequest struct {
	Username    string   `json:"username"`
	Password    string   `json:"password"`
	FirstName   string   `json:"first_name"`
	LastName    string   `json:"last_name"`
	Email       string   `json:"email"`
	Groups      []string `json:"groups"`
	Permissions []string `json:"permissions"`
}

func (h *Handler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var req registerUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Password == "" {
		writeError(w, domain.ErrValidation("password is required"))
		return
	}
	u, err := h.directory.RegisterUser(r.Context(), domain.UserRecord{
		Username:        req.Username,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Email:           req.Email,
		CredentialHash:  directory.HashCredential(req.Password),
		Active:          true,
		GroupNames:      req.Groups,
		PermissionNames: req.Permissions,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, userToAPI(u))
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	page := pageFromRequest(r)
	users := h.directory.Users()
	total := int64(len(users))

	offset, limit := page.Offset(), page.Limit()
	if offset > len(users) {
		offset = len(users)
	}
	end := offset + limit
	if end > len(users) {
		end = len(users)
	}

	out := make([]userView, 0, end-offset)
	for _, u := range users[offset:end] {
		out = append(out, userToAPI(u))
	}
	writeJSON(w, http.StatusOK, paginatedList{
		Data:          out,
		NextPageToken: domain.NextPageToken(offset, limit, total),
	})
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	u, ok := h.directory.User(id)
	if !ok {
		writeError(w, domain.ErrNotFound("user %q not found", id))
		return
	}
	writeJSON(w, http.StatusOK, userToAPI(u))
}

func (h *Handler) UnregisterUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	removed, err := h.directory.UnregisterUser(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if !removed {
		writeError(w, domain.ErrNotFound("user %q not found", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) UserEffectivePermissions(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := h.directory.User(id); !ok {
		writeError(w, domain.ErrNotFound("user %q not found", id))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user_id":     id,
		"permissions": h.directory.EffectivePermissions(id),
	})
}

func (h *Handler) LockUser(w http.ResponseWriter, r *http.Request) {
	h.setUserLocked(w, r, true)
}

func (h *Handler) UnlockUser(w http.ResponseWriter, r *http.Request) {
	h.setUserLocked(w, r, false)
}

func (h *Handler) setUserLocked(w http.ResponseWriter, r *http.Request, locked bool) {
	if err := h.directory.SetUserLocked(r.Context(), chi.URLParam(r, "id"), locked); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ActivateUser(w http.ResponseWriter, r *http.Request) {
	h.setUserActive(w, r, true)
}

func (h *Handler) DeactivateUser(w http.ResponseWriter, r *http.Request) {
	h.setUserActive(w, r, false)
}

func (h *Handler) setUserActive(w http.ResponseWriter, r *http.Request, active bool) {
	if err := h.directory.SetUserActive(r.Context(), chi.URLParam(r, "id"), active); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type userGroupRequest struct {
	Group string `json:"group"`
}

func (h *Handler) AddUserToGroup(w http.ResponseWriter, r *http.Request) {
	var req userGroupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.directory.AddUserToGroup(r.Context(), chi.URLParam(r, "id"), req.Group); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) RemoveUserFromGroup(w http.ResponseWriter, r *http.Request) {
	err := h.directory.RemoveUserFromGroup(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type userPermissionRequest struct {
	Permission string `json:"permission"`
}

func (h *Handler) GrantUserPermission(w http.ResponseWriter, r *http.Request) {
	var req userPermissionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.directory.GrantUserPermission(r.Context(), chi.URLParam(r, "id"), req.Permission); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) RevokeUserPermission(w http.ResponseWriter, r *http.Request) {
	err := h.directory.RevokeUserPermission(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "permission"))
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type updateProfileRequest struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

func (h *Handler) UpdateUserProfile(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	id := chi.URLParam(r, "id")
	if req.Username != "" {
		if err := h.directory.RenameUser(r.Context(), id, req.Username); err != nil {
			writeError(w, err)
			return
		}
	}
	if err := h.directory.UpdateUserProfile(r.Context(), id, req.FirstName, req.LastName, req.Email); err != nil {
		writeError(w, err)
		return
	}
	u, ok := h.directory.User(id)
	if !ok {
		writeError(w, domain.ErrNotFound("user %q not found", id))
		return
	}
	writeJSON(w, http.StatusOK, userToAPI(u))
}
