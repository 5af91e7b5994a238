package domain

import "context"

// UserRepository provides access to user records in the permission store.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
	Upsert(ctx context.Context, email, name string) (*User, error)
	Delete(ctx context.Context, email string) error
	IsAdmin(ctx context.Context, email string) (bool, error)
	List(ctx context.Context) ([]User, error)
}

// ProjectRepository provides access to project records and the table directory.
type ProjectRepository interface {
	GetByName(ctx context.Context, name string) (*Project, error)
	List(ctx context.Context) ([]Project, error)
	Sync(ctx context.Context, names []string) error
	DirectoryTables(ctx context.Context, project string) ([]string, error)
	SyncDirectory(ctx context.Context, project string, tables []string) error
}

// RoleRepository provides access to the role catalog.
type RoleRepository interface {
	List(ctx context.Context) ([]string, error)
	Sync(ctx context.Context, names []string) error
}

// GrantRepository provides access to (user, project) -> role assignments.
type GrantRepository interface {
	// RoleFor returns the role granted to the user in the project.
	// Returns a NotFoundError when no grant exists.
	RoleFor(ctx context.Context, email, project string) (string, error)
	Assign(ctx context.Context, email, project, role string) error
	ProjectsFor(ctx context.Context, email string) ([]ProjectRole, error)
	// HolderOf returns the email of the user currently holding the role in
	// the project, or "" when unheld. Used for single-holder roles.
	HolderOf(ctx context.Context, project, role string) (string, error)
}

// PermissionRepository provides access to (project, role, table) entitlements.
type PermissionRepository interface {
	MapFor(ctx context.Context, project, role string) (PermissionMap, error)
	ListForRole(ctx context.Context, project, role string) ([]TablePermission, error)
	Upsert(ctx context.Context, project, role string, p TablePermission) error
}

// AuditRepository stores gateway decisions.
type AuditRepository interface {
	Insert(ctx context.Context, entry *AuditEntry) error
	ListRecent(ctx context.Context, limit int) ([]AuditEntry, error)
}

// GenerateRequest is the input contract of the external generation service.
type GenerateRequest struct {
	SchemaText string // "table.column (type)" lines, one per exposed column
	Question   string
	Email      string
	Role       string
}

// SQLGenerator produces free text that may embed a SQL statement inside a
// fenced code block. The gateway extracts and vets the statement afterwards.
type SQLGenerator interface {
	GenerateSQL(ctx context.Context, req GenerateRequest) (string, error)
}

// Summarizer turns result rows into a conversational answer.
type Summarizer interface {
	Summarize(ctx context.Context, question string, result *Result) (string, error)
}

// Result holds the structured output of an executed statement.
type Result struct {
	Columns   []string
	Rows      [][]interface{}
	RowCount  int
	Truncated bool // true when the row cap cut off the result
}

// QueryEngine executes statements against a project's data store and
// introspects its schema. Implementations open short-lived connections per
// call; permission data read elsewhere is a point-in-time snapshot.
type QueryEngine interface {
	Tables(ctx context.Context, project string) ([]string, error)
	Columns(ctx context.Context, project string) ([]ColumnInfo, error)
	Query(ctx context.Context, project, sql string, args ...interface{}) (*Result, error)
}
