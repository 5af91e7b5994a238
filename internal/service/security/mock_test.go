package security

import (
	"context"

	"lumina/internal/domain"
)

// === User Repository Mock ===

type mockUserRepo struct {
	getByEmailFn func(ctx context.Context, email string) (*domain.User, error)
	upsertFn     func(ctx context.Context, email, name string) (*domain.User, error)
	deleteFn     func(ctx context.Context, email string) error
	isAdminFn    func(ctx context.Context, email string) (bool, error)
	listFn       func(ctx context.Context) ([]domain.User, error)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.getByEmailFn != nil {
		return m.getByEmailFn(ctx, email)
	}
	panic("unexpected call to mockUserRepo.GetByEmail")
}

func (m *mockUserRepo) Upsert(ctx context.Context, email, name string) (*domain.User, error) {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, email, name)
	}
	panic("unexpected call to mockUserRepo.Upsert")
}

func (m *mockUserRepo) Delete(ctx context.Context, email string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, email)
	}
	panic("unexpected call to mockUserRepo.Delete")
}

func (m *mockUserRepo) IsAdmin(ctx context.Context, email string) (bool, error) {
	if m.isAdminFn != nil {
		return m.isAdminFn(ctx, email)
	}
	panic("unexpected call to mockUserRepo.IsAdmin")
}

func (m *mockUserRepo) List(ctx context.Context) ([]domain.User, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	panic("unexpected call to mockUserRepo.List")
}

// === Grant Repository Mock ===

type mockGrantRepo struct {
	roleForFn     func(ctx context.Context, email, project string) (string, error)
	assignFn      func(ctx context.Context, email, project, role string) error
	projectsForFn func(ctx context.Context, email string) ([]domain.ProjectRole, error)
	holderOfFn    func(ctx context.Context, project, role string) (string, error)
}

func (m *mockGrantRepo) RoleFor(ctx context.Context, email, project string) (string, error) {
	if m.roleForFn != nil {
		return m.roleForFn(ctx, email, project)
	}
	panic("unexpected call to mockGrantRepo.RoleFor")
}

func (m *mockGrantRepo) Assign(ctx context.Context, email, project, role string) error {
	if m.assignFn != nil {
		return m.assignFn(ctx, email, project, role)
	}
	panic("unexpected call to mockGrantRepo.Assign")
}

func (m *mockGrantRepo) ProjectsFor(ctx context.Context, email string) ([]domain.ProjectRole, error) {
	if m.projectsForFn != nil {
		return m.projectsForFn(ctx, email)
	}
	panic("unexpected call to mockGrantRepo.ProjectsFor")
}

func (m *mockGrantRepo) HolderOf(ctx context.Context, project, role string) (string, error) {
	if m.holderOfFn != nil {
		return m.holderOfFn(ctx, project, role)
	}
	panic("unexpected call to mockGrantRepo.HolderOf")
}

// === Permission Repository Mock ===

type mockPermissionRepo struct {
	mapForFn      func(ctx context.Context, project, role string) (domain.PermissionMap, error)
	listForRoleFn func(ctx context.Context, project, role string) ([]domain.TablePermission, error)
	upsertFn      func(ctx context.Context, project, role string, p domain.TablePermission) error
}

func (m *mockPermissionRepo) MapFor(ctx context.Context, project, role string) (domain.PermissionMap, error) {
	if m.mapForFn != nil {
		return m.mapForFn(ctx, project, role)
	}
	panic("unexpected call to mockPermissionRepo.MapFor")
}

func (m *mockPermissionRepo) ListForRole(ctx context.Context, project, role string) ([]domain.TablePermission, error) {
	if m.listForRoleFn != nil {
		return m.listForRoleFn(ctx, project, role)
	}
	panic("unexpected call to mockPermissionRepo.ListForRole")
}

func (m *mockPermissionRepo) Upsert(ctx context.Context, project, role string, p domain.TablePermission) error {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, project, role, p)
	}
	panic("unexpected call to mockPermissionRepo.Upsert")
}

// === Project Repository Mock ===

type mockProjectRepo struct {
	getByNameFn       func(ctx context.Context, name string) (*domain.Project, error)
	listFn            func(ctx context.Context) ([]domain.Project, error)
	syncFn            func(ctx context.Context, names []string) error
	directoryTablesFn func(ctx context.Context, project string) ([]string, error)
	syncDirectoryFn   func(ctx context.Context, project string, tables []string) error
}

func (m *mockProjectRepo) GetByName(ctx context.Context, name string) (*domain.Project, error) {
	if m.getByNameFn != nil {
		return m.getByNameFn(ctx, name)
	}
	panic("unexpected call to mockProjectRepo.GetByName")
}

func (m *mockProjectRepo) List(ctx context.Context) ([]domain.Project, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	panic("unexpected call to mockProjectRepo.List")
}

func (m *mockProjectRepo) Sync(ctx context.Context, names []string) error {
	if m.syncFn != nil {
		return m.syncFn(ctx, names)
	}
	panic("unexpected call to mockProjectRepo.Sync")
}

func (m *mockProjectRepo) DirectoryTables(ctx context.Context, project string) ([]string, error) {
	if m.directoryTablesFn != nil {
		return m.directoryTablesFn(ctx, project)
	}
	panic("unexpected call to mockProjectRepo.DirectoryTables")
}

func (m *mockProjectRepo) SyncDirectory(ctx context.Context, project string, tables []string) error {
	if m.syncDirectoryFn != nil {
		return m.syncDirectoryFn(ctx, project, tables)
	}
	panic("unexpected call to mockProjectRepo.SyncDirectory")
}

// === Role Repository Mock ===

type mockRoleRepo struct {
	listFn func(ctx context.Context) ([]string, error)
	syncFn func(ctx context.Context, names []string) error
}

func (m *mockRoleRepo) List(ctx context.Context) ([]string, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	panic("unexpected call to mockRoleRepo.List")
}

func (m *mockRoleRepo) Sync(ctx context.Context, names []string) error {
	if m.syncFn != nil {
		return m.syncFn(ctx, names)
	}
	panic("unexpected call to mockRoleRepo.Sync")
}

// === Query Engine Mock ===

type mockQueryEngine struct {
	tablesFn  func(ctx context.Context, project string) ([]string, error)
	columnsFn func(ctx context.Context, project string) ([]domain.ColumnInfo, error)
	queryFn   func(ctx context.Context, project, sql string, args ...interface{}) (*domain.Result, error)
}

func (m *mockQueryEngine) Tables(ctx context.Context, project string) ([]string, error) {
	if m.tablesFn != nil {
		return m.tablesFn(ctx, project)
	}
	panic("unexpected call to mockQueryEngine.Tables")
}

func (m *mockQueryEngine) Columns(ctx context.Context, project string) ([]domain.ColumnInfo, error) {
	if m.columnsFn != nil {
		return m.columnsFn(ctx, project)
	}
	panic("unexpected call to mockQueryEngine.Columns")
}

func (m *mockQueryEngine) Query(ctx context.Context, project, sql string, args ...interface{}) (*domain.Result, error) {
	if m.queryFn != nil {
		return m.queryFn(ctx, project, sql, args...)
	}
	panic("unexpected call to mockQueryEngine.Query")
}
