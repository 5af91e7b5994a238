package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"lumina/internal/domain"
	"lumina/internal/service/security"
)

func (h *Handler) getProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.projects.List(r.Context())
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	out := make([]projectPayload, len(projects))
	for i, p := range projects {
		out[i] = projectPayload{ID: p.ID, Name: p.Name}
	}
	writeJSON(w, http.StatusOK, out)
}

type projectPayload struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// getProjectTables lists the live tables of a project's data store, for the
// admin screen's table picker.
func (h *Handler) getProjectTables(w http.ResponseWriter, r *http.Request) {
	project := r.URL.Query().Get("project")
	if project == "" {
		writeError(w, http.StatusBadRequest, "project is required")
		return
	}
	tables, err := h.engine.Tables(r.Context(), project)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tables)
}

type bootstrapResponse struct {
	Projects []projectPayload `json:"projects"`
	Roles    []string         `json:"roles"`
	Users    []userPayload    `json:"users"`
}

type userPayload struct {
	Email   string               `json:"email"`
	Name    string               `json:"name"`
	IsAdmin bool                 `json:"isAdmin"`
	Grants  []projectRolePayload `json:"grants"`
}

func (h *Handler) getBootstrap(w http.ResponseWriter, r *http.Request) {
	b, err := h.admin.GetBootstrap(r.Context())
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	out := bootstrapResponse{
		Projects: make([]projectPayload, len(b.Projects)),
		Roles:    b.Roles,
		Users:    make([]userPayload, len(b.Users)),
	}
	for i, p := range b.Projects {
		out.Projects[i] = projectPayload{ID: p.ID, Name: p.Name}
	}
	for i, u := range b.Users {
		grants := make([]projectRolePayload, len(u.Grants))
		for j, g := range u.Grants {
			grants[j] = projectRolePayload{Project: g.Project, Role: g.Role}
		}
		out.Users[i] = userPayload{Email: u.Email, Name: u.Name, IsAdmin: u.IsAdmin, Grants: grants}
	}
	writeJSON(w, http.StatusOK, out)
}

type permissionPayload struct {
	Table       string `json:"table"`
	CanRead     bool   `json:"canRead"`
	CanReadSelf bool   `json:"canReadSelf"`
}

func (h *Handler) getPermissions(w http.ResponseWriter, r *http.Request) {
	project := r.URL.Query().Get("project")
	role := r.URL.Query().Get("role")
	if project == "" || role == "" {
		writeError(w, http.StatusBadRequest, "project and role are required")
		return
	}
	perms, err := h.admin.PermissionsFor(r.Context(), project, role)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	out := make([]permissionPayload, len(perms))
	for i, p := range perms {
		out[i] = permissionPayload{Table: p.Table, CanRead: p.CanRead, CanReadSelf: p.CanReadSelf}
	}
	writeJSON(w, http.StatusOK, out)
}

type saveAllRequest struct {
	User struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	} `json:"user"`
	Grants []struct {
		Project string `json:"project"`
		Role    string `json:"role"`
	} `json:"grants"`
	Permissions []struct {
		Project     string `json:"project"`
		Role        string `json:"role"`
		Table       string `json:"table"`
		CanRead     bool   `json:"canRead"`
		CanReadSelf bool   `json:"canReadSelf"`
	} `json:"permissions"`
}

func (h *Handler) postSaveAll(w http.ResponseWriter, r *http.Request) {
	var req saveAllRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	svcReq := security.SaveAllRequest{
		User: domain.UpsertUserRequest{Email: req.User.Email, Name: req.User.Name},
	}
	for _, g := range req.Grants {
		svcReq.Grants = append(svcReq.Grants, domain.AssignRoleRequest{
			Email:   req.User.Email,
			Project: g.Project,
			Role:    g.Role,
		})
	}
	for _, p := range req.Permissions {
		svcReq.Permissions = append(svcReq.Permissions, security.PermissionUpdate{
			Project: p.Project,
			Role:    p.Role,
			Permission: domain.TablePermission{
				Table:       p.Table,
				CanRead:     p.CanRead,
				CanReadSelf: p.CanReadSelf,
			},
		})
	}

	if err := h.admin.SaveAll(r.Context(), svcReq); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"saved": true})
}

type syncTablesRequest struct {
	Project string   `json:"project"`
	Tables  []string `json:"tables"`
}

// postSyncTables replaces a project's table directory with the given list.
func (h *Handler) postSyncTables(w http.ResponseWriter, r *http.Request) {
	var req syncTablesRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Project == "" {
		writeError(w, http.StatusBadRequest, "project is required")
		return
	}
	if err := h.admin.SyncDirectory(r.Context(), req.Project, req.Tables); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")
	if email == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}
	if err := h.admin.DeleteUser(r.Context(), email); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type auditPayload struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	Project        string    `json:"project"`
	Action         string    `json:"action"`
	Question       *string   `json:"question,omitempty"`
	OriginalSQL    *string   `json:"originalSql,omitempty"`
	RewrittenSQL   *string   `json:"rewrittenSql,omitempty"`
	TablesAccessed []string  `json:"tablesAccessed"`
	Status         string    `json:"status"`
	ErrorMessage   *string   `json:"errorMessage,omitempty"`
	DurationMs     *int64    `json:"durationMs,omitempty"`
	RowsReturned   *int64    `json:"rowsReturned,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

func (h *Handler) getAudit(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 1000 {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 1000")
			return
		}
		limit = n
	}

	entries, err := h.audit.ListRecent(r.Context(), limit)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	out := make([]auditPayload, len(entries))
	for i, e := range entries {
		out[i] = auditPayload{
			ID:             e.ID,
			Email:          e.Email,
			Project:        e.Project,
			Action:         e.Action,
			Question:       e.Question,
			OriginalSQL:    e.OriginalSQL,
			RewrittenSQL:   e.RewrittenSQL,
			TablesAccessed: e.TablesAccessed,
			Status:         e.Status,
			ErrorMessage:   e.ErrorMessage,
			DurationMs:     e.DurationMs,
			RowsReturned:   e.RowsReturned,
			CreatedAt:      e.CreatedAt,
		}
	}
	writeJSON(w, http.StatusOK, out)
}
