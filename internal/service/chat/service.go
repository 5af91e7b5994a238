// Package chat orchestrates the question-to-answer pipeline over the policy
// gateway: resolve role, validate selection, guard intent, generate, vet,
// rewrite, execute, summarize — auditing every terminal outcome.
package chat

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"lumina/internal/domain"
	"lumina/internal/service/security"
	"lumina/internal/sqlguard"
)

// roleResolver resolves a caller's effective role within a project.
type roleResolver interface {
	Resolve(ctx context.Context, email, project string) (domain.ResolvedRole, error)
}

// accessValidator performs the pre- and post-generation checks.
type accessValidator interface {
	Exposure(ctx context.Context, project string, role domain.ResolvedRole, selected []string) (*security.Exposure, error)
	Check(ctx context.Context, project string, role domain.ResolvedRole, selected []string, refs []domain.TableRef) (domain.AccessDecision, error)
}

// predicateInjector rewrites a statement with ownership predicates.
type predicateInjector interface {
	Inject(sql string, perms domain.PermissionMap, identity string, role domain.ResolvedRole) sqlguard.Rewrite
}

// AskRequest is one natural-language question against a project.
type AskRequest struct {
	SessionID string
	Project   string
	Question  string
	Selected  []string // tables the caller picked for this question
}

// Answer is the pipeline's successful output.
type Answer struct {
	Role     string
	SQL      string // executed statement with identity literals inlined for display
	Summary  string
	Result   *domain.Result
	FollowUp bool // answered from the session's cached result, no SQL generated
}

// Service runs the gateway pipeline.
type Service struct {
	resolver   roleResolver
	validator  accessValidator
	perms      domain.PermissionRepository
	extractor  sqlguard.RefExtractor
	injector   predicateInjector
	generator  domain.SQLGenerator
	summarizer domain.Summarizer
	engine     domain.QueryEngine
	audit      domain.AuditRepository
	sessions   *SessionCache
	logger     *slog.Logger
}

// NewService wires the pipeline. audit and sessions may be nil in tests.
func NewService(
	resolver roleResolver,
	validator accessValidator,
	perms domain.PermissionRepository,
	extractor sqlguard.RefExtractor,
	injector predicateInjector,
	generator domain.SQLGenerator,
	summarizer domain.Summarizer,
	engine domain.QueryEngine,
	audit domain.AuditRepository,
	sessions *SessionCache,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		resolver:   resolver,
		validator:  validator,
		perms:      perms,
		extractor:  extractor,
		injector:   injector,
		generator:  generator,
		summarizer: summarizer,
		engine:     engine,
		audit:      audit,
		sessions:   sessions,
		logger:     logger.With("component", "chat"),
	}
}

// followUpRe marks questions that refer back to the previous result.
var followUpRe = regexp.MustCompile(`(?i)\b(previous|last|above|that|those|these) (result|results|answer|rows|data|list|table|query)\b`)

// Ask runs one question end to end. Every terminal outcome is audited.
func (s *Service) Ask(ctx context.Context, id domain.Identity, req AskRequest) (*Answer, error) {
	start := time.Now()
	rec := &auditRecorder{svc: s, id: id, req: req, start: start}

	role, err := s.resolver.Resolve(ctx, id.Email, req.Project)
	if err != nil {
		return nil, rec.deny(ctx, err)
	}
	rec.role = role.Name

	// Follow-ups reuse the session's cached result: no generation, no
	// execution, and the cached rows already passed this pipeline.
	if s.sessions != nil && followUpRe.MatchString(req.Question) {
		if cached, ok := s.sessions.Get(req.SessionID); ok {
			summary, err := s.summarizer.Summarize(ctx, req.Question, cached)
			if err != nil {
				return nil, rec.fail(ctx, &domain.GenerationError{Err: err})
			}
			rec.allow(ctx, cached, nil)
			return &Answer{Role: role.Name, Summary: summary, Result: cached, FollowUp: true}, nil
		}
	}

	exp, err := s.validator.Exposure(ctx, req.Project, role, req.Selected)
	if err != nil {
		return nil, rec.deny(ctx, err)
	}

	var perms domain.PermissionMap
	if !role.Privileged() {
		perms, err = s.perms.MapFor(ctx, req.Project, role.Name)
		if err != nil {
			return nil, rec.fail(ctx, err)
		}
		restricted := selectedSelfOnly(perms, req.Selected)
		if err := sqlguard.CheckSelfIntent(req.Question, id, restricted); err != nil {
			return nil, rec.deny(ctx, err)
		}
	}

	raw, err := s.generator.GenerateSQL(ctx, domain.GenerateRequest{
		SchemaText: exp.SchemaText,
		Question:   req.Question,
		Email:      id.Email,
		Role:       role.Name,
	})
	if err != nil {
		return nil, rec.fail(ctx, &domain.GenerationError{Err: err})
	}

	stmt := sqlguard.ExtractStatement(raw)
	rec.originalSQL = stmt

	if err := sqlguard.CheckReadOnly(stmt); err != nil {
		return nil, rec.deny(ctx, err)
	}

	refs := s.extractor.Extract(stmt)
	// The selection is non-empty past the exposure step, so a statement the
	// extractor cannot find a single table reference in is unparseable here.
	// It is denied, never executed unchecked.
	if len(refs) == 0 {
		return nil, rec.deny(ctx, domain.ErrValidation(
			"could not identify the tables this statement reads; please rephrase the question"))
	}
	decision, err := s.validator.Check(ctx, req.Project, role, req.Selected, refs)
	if err != nil {
		return nil, rec.fail(ctx, err)
	}
	rec.tables = decision.Permitted
	if !decision.Allowed() {
		return nil, rec.deny(ctx, decision.Err())
	}

	// Exactly one injection per request: re-rewriting already-rewritten SQL
	// is undefined.
	rewrite := s.injector.Inject(stmt, perms, domain.NormalizeEmail(id.Email), role)
	rec.rewrittenSQL = rewrite.Display()

	if rewrite.Changed() {
		if err := s.verifyOwnershipColumns(ctx, req.Project, rewrite.Predicates); err != nil {
			return nil, rec.fail(ctx, err)
		}
	}

	result, err := s.engine.Query(ctx, req.Project, rewrite.SQL, rewrite.Args...)
	if err != nil {
		return nil, rec.fail(ctx, &domain.ExecutionError{Err: err})
	}

	if s.sessions != nil {
		s.sessions.Store(req.SessionID, req.Question, result)
	}

	summary, err := s.summarizer.Summarize(ctx, req.Question, result)
	if err != nil {
		// The rows are already safe to show; degrade to an unsummarized answer.
		s.logger.Warn("summarization failed", "error", err)
		summary = ""
	}

	rec.allow(ctx, result, rewrite.Predicates)
	return &Answer{
		Role:    role.Name,
		SQL:     rewrite.Display(),
		Summary: summary,
		Result:  result,
	}, nil
}

// AccessibleSchema serves the sidebar: the schema slice the caller may see
// for their selection, reusing the pre-generation exposure computation.
func (s *Service) AccessibleSchema(ctx context.Context, id domain.Identity, project string, selected []string) (*security.Exposure, error) {
	role, err := s.resolver.Resolve(ctx, id.Email, project)
	if err != nil {
		return nil, err
	}
	return s.validator.Exposure(ctx, project, role, selected)
}

// verifyOwnershipColumns fails the request before execution when a predicate
// references a column the table does not have, instead of surfacing an opaque
// engine error.
func (s *Service) verifyOwnershipColumns(ctx context.Context, project string, preds []sqlguard.Predicate) error {
	cols, err := s.engine.Columns(ctx, project)
	if err != nil {
		return &domain.ExecutionError{Err: err}
	}
	have := map[string]bool{}
	for _, c := range cols {
		have[strings.ToLower(c.Table)+"."+strings.ToLower(c.Column)] = true
	}
	for _, p := range preds {
		if !have[strings.ToLower(p.Table)+"."+strings.ToLower(p.Column)] {
			s.logger.Error("ownership column missing",
				"table", p.Table, "column", p.Column, "project", project)
			return &domain.ExecutionError{Err: &domain.ValidationError{
				Message: "ownership column " + p.Column + " not present on table " + p.Table,
			}}
		}
	}
	return nil
}

// selectedSelfOnly returns the self-scoped-only tables among the selection.
func selectedSelfOnly(perms domain.PermissionMap, selected []string) []string {
	selfOnly := map[string]bool{}
	for _, t := range perms.SelfOnlyTables() {
		selfOnly[strings.ToLower(t)] = true
	}
	var out []string
	for _, t := range selected {
		if selfOnly[strings.ToLower(t)] {
			out = append(out, t)
		}
	}
	return out
}

// auditRecorder accumulates one request's audit fields and writes a single
// entry at the terminal outcome.
type auditRecorder struct {
	svc          *Service
	id           domain.Identity
	req          AskRequest
	start        time.Time
	role         string
	originalSQL  string
	rewrittenSQL string
	tables       []string
}

func (r *auditRecorder) entry(status string) *domain.AuditEntry {
	duration := time.Since(r.start).Milliseconds()
	e := &domain.AuditEntry{
		Email:          r.id.Email,
		Project:        r.req.Project,
		Action:         "chat_query",
		Question:       &r.req.Question,
		TablesAccessed: r.tables,
		Status:         status,
		DurationMs:     &duration,
	}
	if r.originalSQL != "" {
		e.OriginalSQL = &r.originalSQL
	}
	if r.rewrittenSQL != "" {
		e.RewrittenSQL = &r.rewrittenSQL
	}
	return e
}

func (r *auditRecorder) write(ctx context.Context, e *domain.AuditEntry) {
	if r.svc.audit == nil {
		return
	}
	if err := r.svc.audit.Insert(ctx, e); err != nil {
		r.svc.logger.Error("audit insert failed", "error", err)
	}
}

// deny records a policy rejection and returns err unchanged.
func (r *auditRecorder) deny(ctx context.Context, err error) error {
	e := r.entry("DENIED")
	msg := err.Error()
	e.ErrorMessage = &msg
	r.write(ctx, e)
	return err
}

// fail records an internal or external failure and returns err unchanged.
func (r *auditRecorder) fail(ctx context.Context, err error) error {
	e := r.entry("ERROR")
	msg := err.Error()
	e.ErrorMessage = &msg
	r.write(ctx, e)
	return err
}

// allow records a served answer.
func (r *auditRecorder) allow(ctx context.Context, result *domain.Result, preds []sqlguard.Predicate) {
	e := r.entry("ALLOWED")
	if result != nil {
		rows := int64(result.RowCount)
		e.RowsReturned = &rows
	}
	r.write(ctx, e)
}
