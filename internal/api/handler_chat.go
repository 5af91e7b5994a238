package api

import (
	"net/http"
	"strings"

	"lumina/internal/service/chat"
)

type meResponse struct {
	Email    string               `json:"email"`
	Name     string               `json:"name,omitempty"`
	IsAdmin  bool                 `json:"isAdmin"`
	Projects []projectRolePayload `json:"projects"`
}

type projectRolePayload struct {
	Project string `json:"project"`
	Role    string `json:"role"`
}

func (h *Handler) getMe(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	isAdmin, err := h.users.IsAdmin(r.Context(), id.Email)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	grants, err := h.grants.ProjectsFor(r.Context(), id.Email)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	out := meResponse{
		Email:    id.Email,
		Name:     id.Name,
		IsAdmin:  isAdmin,
		Projects: make([]projectRolePayload, len(grants)),
	}
	for i, g := range grants {
		out.Projects[i] = projectRolePayload{Project: g.Project, Role: g.Role}
	}
	writeJSON(w, http.StatusOK, out)
}

type schemaResponse struct {
	Tables     []string `json:"tables"`
	SchemaText string   `json:"schemaText"`
}

func (h *Handler) getAccessibleSchema(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	project := r.URL.Query().Get("project")
	if project == "" {
		writeError(w, http.StatusBadRequest, "project is required")
		return
	}
	selected := splitParam(r.URL.Query().Get("tables"))

	exp, err := h.chat.AccessibleSchema(r.Context(), id, project, selected)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, schemaResponse{Tables: exp.Tables, SchemaText: exp.SchemaText})
}

type chatRequest struct {
	SessionID      string   `json:"sessionId"`
	Project        string   `json:"project"`
	Question       string   `json:"question"`
	SelectedTables []string `json:"selectedTables"`
}

type chatResponse struct {
	Role      string          `json:"role"`
	SQL       string          `json:"sql,omitempty"`
	Summary   string          `json:"summary"`
	FollowUp  bool            `json:"followUp"`
	Columns   []string        `json:"columns"`
	Rows      [][]interface{} `json:"rows"`
	RowCount  int             `json:"rowCount"`
	Truncated bool            `json:"truncated"`
}

func (h *Handler) postChat(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Project == "" {
		writeError(w, http.StatusBadRequest, "project is required")
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeError(w, http.StatusBadRequest, "question is required")
		return
	}

	answer, err := h.chat.Ask(r.Context(), id, chat.AskRequest{
		SessionID: req.SessionID,
		Project:   req.Project,
		Question:  strings.TrimSpace(req.Question),
		Selected:  req.SelectedTables,
	})
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	out := chatResponse{
		Role:     answer.Role,
		SQL:      answer.SQL,
		Summary:  answer.Summary,
		FollowUp: answer.FollowUp,
	}
	if answer.Result != nil {
		out.Columns = answer.Result.Columns
		out.Rows = answer.Result.Rows
		out.RowCount = answer.Result.RowCount
		out.Truncated = answer.Result.Truncated
	}
	writeJSON(w, http.StatusOK, out)
}

// splitParam parses a comma-separated query parameter, dropping empty parts.
func splitParam(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
