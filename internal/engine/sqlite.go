// Package engine executes vetted statements against per-project data stores.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	internaldb "lumina/internal/db"
	"lumina/internal/domain"
)

var _ domain.QueryEngine = (*SQLiteEngine)(nil)

// SQLiteEngine runs statements against SQLite data files, one per project.
// Connections are opened per call and closed when it returns: permission
// data read elsewhere is a point-in-time snapshot, and no statement ever
// shares a connection with another request.
type SQLiteEngine struct {
	paths       map[string]string // lower-cased project name -> data file
	defaultPath string
	rowLimit    int
	logger      *slog.Logger
}

// NewSQLiteEngine creates an engine. Projects without a registered path fall
// back to defaultPath. rowLimit caps every result (default 500).
func NewSQLiteEngine(defaultPath string, rowLimit int, logger *slog.Logger) *SQLiteEngine {
	if rowLimit <= 0 {
		rowLimit = 500
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SQLiteEngine{
		paths:       map[string]string{},
		defaultPath: defaultPath,
		rowLimit:    rowLimit,
		logger:      logger.With("component", "engine"),
	}
}

// Register maps a project to its data file.
func (e *SQLiteEngine) Register(project, path string) {
	e.paths[strings.ToLower(project)] = path
}

func (e *SQLiteEngine) pathFor(project string) string {
	if p, ok := e.paths[strings.ToLower(project)]; ok {
		return p
	}
	return e.defaultPath
}

// Tables returns the project's table names, excluding SQLite internals.
func (e *SQLiteEngine) Tables(ctx context.Context, project string) ([]string, error) {
	conn, err := internaldb.OpenSQLite(e.pathFor(project), "read", 1)
	if err != nil {
		return nil, fmt.Errorf("open data store for %q: %w", project, err)
	}
	defer conn.Close() //nolint:errcheck

	rows, err := conn.QueryContext(ctx,
		`SELECT name FROM sqlite_master
		 WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		 ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

// Columns returns every column of every project table via PRAGMA table_info.
func (e *SQLiteEngine) Columns(ctx context.Context, project string) ([]domain.ColumnInfo, error) {
	tables, err := e.Tables(ctx, project)
	if err != nil {
		return nil, err
	}

	conn, err := internaldb.OpenSQLite(e.pathFor(project), "read", 1)
	if err != nil {
		return nil, fmt.Errorf("open data store for %q: %w", project, err)
	}
	defer conn.Close() //nolint:errcheck

	var cols []domain.ColumnInfo
	for _, table := range tables {
		rows, err := conn.QueryContext(ctx,
			`SELECT name, type FROM pragma_table_info(?)`, table)
		if err != nil {
			return nil, err
		}
		for rows.Next() {
			var c domain.ColumnInfo
			c.Table = table
			if err := rows.Scan(&c.Column, &c.Type); err != nil {
				rows.Close() //nolint:errcheck
				return nil, err
			}
			cols = append(cols, c)
		}
		if err := rows.Err(); err != nil {
			rows.Close() //nolint:errcheck
			return nil, err
		}
		rows.Close() //nolint:errcheck
	}
	return cols, nil
}

// Query executes one statement with bound args and returns the capped result.
// Statements that return no row set report an empty result; the safety gate
// upstream makes that path unreachable in practice, but the contract does not
// assume it.
func (e *SQLiteEngine) Query(ctx context.Context, project, sql string, args ...interface{}) (*domain.Result, error) {
	conn, err := internaldb.OpenSQLite(e.pathFor(project), "read", 1)
	if err != nil {
		return nil, fmt.Errorf("open data store for %q: %w", project, err)
	}
	defer conn.Close() //nolint:errcheck

	rows, err := conn.QueryContext(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	result := &domain.Result{Columns: cols}
	if len(cols) == 0 {
		return result, rows.Err()
	}

	for rows.Next() {
		if result.RowCount >= e.rowLimit {
			result.Truncated = true
			e.logger.Debug("result truncated", "project", project, "limit", e.rowLimit)
			break
		}
		values := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		result.Rows = append(result.Rows, values)
		result.RowCount++
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
