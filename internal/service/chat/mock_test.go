package chat

import (
	"context"

	"lumina/internal/domain"
	"lumina/internal/service/security"
	"lumina/internal/sqlguard"
)

type mockResolver struct {
	resolveFn func(ctx context.Context, email, project string) (domain.ResolvedRole, error)
}

func (m *mockResolver) Resolve(ctx context.Context, email, project string) (domain.ResolvedRole, error) {
	if m.resolveFn != nil {
		return m.resolveFn(ctx, email, project)
	}
	panic("unexpected call to mockResolver.Resolve")
}

type mockValidator struct {
	exposureFn func(ctx context.Context, project string, role domain.ResolvedRole, selected []string) (*security.Exposure, error)
	checkFn    func(ctx context.Context, project string, role domain.ResolvedRole, selected []string, refs []domain.TableRef) (domain.AccessDecision, error)
}

func (m *mockValidator) Exposure(ctx context.Context, project string, role domain.ResolvedRole, selected []string) (*security.Exposure, error) {
	if m.exposureFn != nil {
		return m.exposureFn(ctx, project, role, selected)
	}
	panic("unexpected call to mockValidator.Exposure")
}

func (m *mockValidator) Check(ctx context.Context, project string, role domain.ResolvedRole, selected []string, refs []domain.TableRef) (domain.AccessDecision, error) {
	if m.checkFn != nil {
		return m.checkFn(ctx, project, role, selected, refs)
	}
	panic("unexpected call to mockValidator.Check")
}

type mockPermissionRepo struct {
	mapForFn func(ctx context.Context, project, role string) (domain.PermissionMap, error)
}

func (m *mockPermissionRepo) MapFor(ctx context.Context, project, role string) (domain.PermissionMap, error) {
	if m.mapForFn != nil {
		return m.mapForFn(ctx, project, role)
	}
	panic("unexpected call to mockPermissionRepo.MapFor")
}

func (m *mockPermissionRepo) ListForRole(context.Context, string, string) ([]domain.TablePermission, error) {
	panic("unexpected call to mockPermissionRepo.ListForRole")
}

func (m *mockPermissionRepo) Upsert(context.Context, string, string, domain.TablePermission) error {
	panic("unexpected call to mockPermissionRepo.Upsert")
}

type mockGenerator struct {
	generateFn func(ctx context.Context, req domain.GenerateRequest) (string, error)
}

func (m *mockGenerator) GenerateSQL(ctx context.Context, req domain.GenerateRequest) (string, error) {
	if m.generateFn != nil {
		return m.generateFn(ctx, req)
	}
	panic("unexpected call to mockGenerator.GenerateSQL")
}

type mockSummarizer struct {
	summarizeFn func(ctx context.Context, question string, result *domain.Result) (string, error)
}

func (m *mockSummarizer) Summarize(ctx context.Context, question string, result *domain.Result) (string, error) {
	if m.summarizeFn != nil {
		return m.summarizeFn(ctx, question, result)
	}
	panic("unexpected call to mockSummarizer.Summarize")
}

type mockEngine struct {
	tablesFn  func(ctx context.Context, project string) ([]string, error)
	columnsFn func(ctx context.Context, project string) ([]domain.ColumnInfo, error)
	queryFn   func(ctx context.Context, project, sql string, args ...interface{}) (*domain.Result, error)
}

func (m *mockEngine) Tables(ctx context.Context, project string) ([]string, error) {
	if m.tablesFn != nil {
		return m.tablesFn(ctx, project)
	}
	panic("unexpected call to mockEngine.Tables")
}

func (m *mockEngine) Columns(ctx context.Context, project string) ([]domain.ColumnInfo, error) {
	if m.columnsFn != nil {
		return m.columnsFn(ctx, project)
	}
	panic("unexpected call to mockEngine.Columns")
}

func (m *mockEngine) Query(ctx context.Context, project, sql string, args ...interface{}) (*domain.Result, error) {
	if m.queryFn != nil {
		return m.queryFn(ctx, project, sql, args...)
	}
	panic("unexpected call to mockEngine.Query")
}

type mockAuditRepo struct {
	entries []*domain.AuditEntry
}

func (m *mockAuditRepo) Insert(_ context.Context, entry *domain.AuditEntry) error {
	m.entries = append(m.entries, entry)
	return nil
}

func (m *mockAuditRepo) ListRecent(context.Context, int) ([]domain.AuditEntry, error) {
	panic("unexpected call to mockAuditRepo.ListRecent")
}

// countingInjector wraps the real injector and counts invocations.
type countingInjector struct {
	inner *sqlguard.Injector
	calls int
}

func (c *countingInjector) Inject(sql string, perms domain.PermissionMap, identity string, role domain.ResolvedRole) sqlguard.Rewrite {
	c.calls++
	return c.inner.Inject(sql, perms, identity, role)
}
