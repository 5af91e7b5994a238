// Package api provides HTTP handlers for the gateway REST API.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"lumina/internal/domain"
	"lumina/internal/service/chat"
	"lumina/internal/service/security"
)

// chatService is the slice of chat.Service the handlers use.
type chatService interface {
	Ask(ctx context.Context, id domain.Identity, req chat.AskRequest) (*chat.Answer, error)
	AccessibleSchema(ctx context.Context, id domain.Identity, project string, selected []string) (*security.Exposure, error)
}

// adminService is the slice of security.AdminService the handlers use.
type adminService interface {
	SaveAll(ctx context.Context, req security.SaveAllRequest) error
	DeleteUser(ctx context.Context, email string) error
	SyncDirectory(ctx context.Context, project string, tables []string) error
	PermissionsFor(ctx context.Context, project, role string) ([]domain.TablePermission, error)
	GetBootstrap(ctx context.Context) (*security.Bootstrap, error)
}

// Handler serves the /api routes.
type Handler struct {
	chat     chatService
	admin    adminService
	users    domain.UserRepository
	grants   domain.GrantRepository
	projects domain.ProjectRepository
	engine   domain.QueryEngine
	audit    domain.AuditRepository
	logger   *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(
	chatSvc chatService,
	adminSvc adminService,
	users domain.UserRepository,
	grants domain.GrantRepository,
	projects domain.ProjectRepository,
	engine domain.QueryEngine,
	audit domain.AuditRepository,
	logger *slog.Logger,
) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		chat:     chatSvc,
		admin:    adminSvc,
		users:    users,
		grants:   grants,
		projects: projects,
		engine:   engine,
		audit:    audit,
		logger:   logger.With("component", "api"),
	}
}

// Routes builds the /api subtree. Callers mount it behind the authentication
// middleware; every route here assumes an identity in the request context.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/me", h.getMe)
	r.Get("/accessible-schema", h.getAccessibleSchema)
	r.Post("/chat", h.postChat)

	r.Route("/admin", func(r chi.Router) {
		r.Use(h.requireAdmin)
		r.Get("/projects", h.getProjects)
		r.Get("/tables", h.getProjectTables)
		r.Get("/bootstrap", h.getBootstrap)
		r.Get("/permissions", h.getPermissions)
		r.Get("/audit", h.getAudit)
		r.Post("/save-all", h.postSaveAll)
		r.Post("/sync-tables", h.postSyncTables)
		r.Delete("/users/{email}", h.deleteUser)

		// Piecemeal writes predate save-all and are kept only to give old
		// clients a pointer at the replacement.
		r.Post("/add-user", h.writeDisabled)
		r.Post("/grant-role", h.writeDisabled)
		r.Post("/set-permissions-bulk", h.writeDisabled)
	})

	return r
}

// requireAdmin rejects callers whose identity is not an administrator.
func (h *Handler) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := domain.IdentityFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		isAdmin, err := h.users.IsAdmin(r.Context(), id.Email)
		if err != nil {
			h.logger.Error("admin check failed", "email", id.Email, "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if !isAdmin {
			writeError(w, http.StatusForbidden, "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) writeDisabled(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusConflict, "this action is disabled; use /api/admin/save-all")
}

// --- helpers ---

type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Code: status, Message: message})
}

// writeDomainError maps the error to a status and serializes it. Unknown
// errors are logged and hidden behind a generic message.
func (h *Handler) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status := httpStatusFromDomainError(err)
	if status != http.StatusInternalServerError {
		writeError(w, status, err.Error())
		return
	}
	h.logger.Error("request failed", "path", r.URL.Path, "error", err)
	var execErr *domain.ExecutionError
	if errors.As(err, &execErr) {
		// ExecutionError carries a fixed message with no engine detail.
		writeError(w, status, execErr.Error())
		return
	}
	writeError(w, status, "internal error")
}

func decodeJSON(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func identity(r *http.Request) (domain.Identity, bool) {
	return domain.IdentityFromContext(r.Context())
}
