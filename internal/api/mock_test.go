package api

import (
	"context"

	"lumina/internal/domain"
	"lumina/internal/service/chat"
	"lumina/internal/service/security"
)

// Function-field mocks. Calls without a configured function panic so tests
// fail loudly on unexpected interactions.

type mockChat struct {
	askFn    func(ctx context.Context, id domain.Identity, req chat.AskRequest) (*chat.Answer, error)
	schemaFn func(ctx context.Context, id domain.Identity, project string, selected []string) (*security.Exposure, error)
}

func (m *mockChat) Ask(ctx context.Context, id domain.Identity, req chat.AskRequest) (*chat.Answer, error) {
	if m.askFn == nil {
		panic("unexpected call to Ask")
	}
	return m.askFn(ctx, id, req)
}

func (m *mockChat) AccessibleSchema(ctx context.Context, id domain.Identity, project string, selected []string) (*security.Exposure, error) {
	if m.schemaFn == nil {
		panic("unexpected call to AccessibleSchema")
	}
	return m.schemaFn(ctx, id, project, selected)
}

type mockAdmin struct {
	saveAllFn       func(ctx context.Context, req security.SaveAllRequest) error
	deleteUserFn    func(ctx context.Context, email string) error
	syncDirectoryFn func(ctx context.Context, project string, tables []string) error
	permissionsFn   func(ctx context.Context, project, role string) ([]domain.TablePermission, error)
	bootstrapFn     func(ctx context.Context) (*security.Bootstrap, error)
}

func (m *mockAdmin) SaveAll(ctx context.Context, req security.SaveAllRequest) error {
	if m.saveAllFn == nil {
		panic("unexpected call to SaveAll")
	}
	return m.saveAllFn(ctx, req)
}

func (m *mockAdmin) DeleteUser(ctx context.Context, email string) error {
	if m.deleteUserFn == nil {
		panic("unexpected call to DeleteUser")
	}
	return m.deleteUserFn(ctx, email)
}

func (m *mockAdmin) SyncDirectory(ctx context.Context, project string, tables []string) error {
	if m.syncDirectoryFn == nil {
		panic("unexpected call to SyncDirectory")
	}
	return m.syncDirectoryFn(ctx, project, tables)
}

func (m *mockAdmin) PermissionsFor(ctx context.Context, project, role string) ([]domain.TablePermission, error) {
	if m.permissionsFn == nil {
		panic("unexpected call to PermissionsFor")
	}
	return m.permissionsFn(ctx, project, role)
}

func (m *mockAdmin) GetBootstrap(ctx context.Context) (*security.Bootstrap, error) {
	if m.bootstrapFn == nil {
		panic("unexpected call to GetBootstrap")
	}
	return m.bootstrapFn(ctx)
}

type mockUserRepo struct {
	isAdminFn func(ctx context.Context, email string) (bool, error)
}

func (m *mockUserRepo) GetByEmail(context.Context, string) (*domain.User, error) {
	panic("unexpected call to GetByEmail")
}

func (m *mockUserRepo) Upsert(context.Context, string, string) (*domain.User, error) {
	panic("unexpected call to Upsert")
}

func (m *mockUserRepo) Delete(context.Context, string) error {
	panic("unexpected call to Delete")
}

func (m *mockUserRepo) IsAdmin(ctx context.Context, email string) (bool, error) {
	if m.isAdminFn == nil {
		panic("unexpected call to IsAdmin")
	}
	return m.isAdminFn(ctx, email)
}

func (m *mockUserRepo) List(context.Context) ([]domain.User, error) {
	panic("unexpected call to List")
}

type mockGrantRepo struct {
	projectsForFn func(ctx context.Context, email string) ([]domain.ProjectRole, error)
}

func (m *mockGrantRepo) RoleFor(context.Context, string, string) (string, error) {
	panic("unexpected call to RoleFor")
}

func (m *mockGrantRepo) Assign(context.Context, string, string, string) error {
	panic("unexpected call to Assign")
}

func (m *mockGrantRepo) ProjectsFor(ctx context.Context, email string) ([]domain.ProjectRole, error) {
	if m.projectsForFn == nil {
		panic("unexpected call to ProjectsFor")
	}
	return m.projectsForFn(ctx, email)
}

func (m *mockGrantRepo) HolderOf(context.Context, string, string) (string, error) {
	panic("unexpected call to HolderOf")
}

type mockProjectRepo struct {
	listFn func(ctx context.Context) ([]domain.Project, error)
}

func (m *mockProjectRepo) GetByName(context.Context, string) (*domain.Project, error) {
	panic("unexpected call to GetByName")
}

func (m *mockProjectRepo) List(ctx context.Context) ([]domain.Project, error) {
	if m.listFn == nil {
		panic("unexpected call to List")
	}
	return m.listFn(ctx)
}

func (m *mockProjectRepo) Sync(context.Context, []string) error {
	panic("unexpected call to Sync")
}

func (m *mockProjectRepo) DirectoryTables(context.Context, string) ([]string, error) {
	panic("unexpected call to DirectoryTables")
}

func (m *mockProjectRepo) SyncDirectory(context.Context, string, []string) error {
	panic("unexpected call to SyncDirectory")
}

type mockEngine struct {
	tablesFn func(ctx context.Context, project string) ([]string, error)
}

func (m *mockEngine) Tables(ctx context.Context, project string) ([]string, error) {
	if m.tablesFn == nil {
		panic("unexpected call to Tables")
	}
	return m.tablesFn(ctx, project)
}

func (m *mockEngine) Columns(context.Context, string) ([]domain.ColumnInfo, error) {
	panic("unexpected call to Columns")
}

func (m *mockEngine) Query(context.Context, string, string, ...interface{}) (*domain.Result, error) {
	panic("unexpected call to Query")
}

type mockAuditRepo struct {
	listRecentFn func(ctx context.Context, limit int) ([]domain.AuditEntry, error)
}

func (m *mockAuditRepo) Insert(context.Context, *domain.AuditEntry) error {
	panic("unexpected call to Insert")
}

func (m *mockAuditRepo) ListRecent(ctx context.Context, limit int) ([]domain.AuditEntry, error) {
	if m.listRecentFn == nil {
		panic("unexpected call to ListRecent")
	}
	return m.listRecentFn(ctx, limit)
}
