package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/tools/sqldatabase"
	"github.com/uptrace/bun"
)

// Engine adapts the healthcare database to langchaingo's sqldatabase
// contract so the NL-to-SQL chain can introspect and query it.
type Engine struct {
	db      *bun.DB
	dialect string
}

var _ sqldatabase.Engine = (*Engine)(nil)

// NewEngine builds an engine for the given bun connection. driver is the
// configured database driver name.
func NewEngine(db *bun.DB, driver string) *Engine {
	dialect := "sqlite3"
	if driver == "postgres" {
		dialect = "postgres"
	}
	return &Engine{db: db, dialect: dialect}
}

func (e *Engine) Dialect() string {
	return e.dialect
}

// Query executes the statement and renders every value as a string.
func (e *Engine) Query(ctx context.Context, query string, args ...any) ([]string, [][]string, error) {
	rows, err := e.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}

	var results [][]string
	for rows.Next() {
		values := make([]any, len(cols))
		for i := range values {
			values[i] = new(any)
		}
		if err := rows.Scan(values...); err != nil {
			return nil, nil, err
		}
		row := make([]string, len(cols))
		for i, v := range values {
			row[i] = renderValue(*(v.(*any)))
		}
		results = append(results, row)
	}
	return cols, results, rows.Err()
}

func renderValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(val)
	default:
		return fmt.Sprint(val)
	}
}

func (e *Engine) TableNames(ctx context.Context) ([]string, error) {
	var query string
	if e.dialect == "postgres" {
		query = `SELECT table_name FROM information_schema.tables WHERE table_schema = 'public' ORDER BY table_name`
	} else {
		query = `SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`
	}

	rows, err := e.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// TableInfo returns the DDL for the given table, which is what the SQL
// chain feeds the model as schema context.
func (e *Engine) TableInfo(ctx context.Context, table string) (string, error) {
	return e.tableDDL(ctx, table)
}

func (e *Engine) tableDDL(ctx context.Context, table string) (string, error) {
	if e.dialect == "postgres" {
		rows, err := e.db.QueryContext(ctx,
			`SELECT column_name, data_type FROM information_schema.columns WHERE table_name = ? ORDER BY ordinal_position`, table)
		if err != nil {
			return "", err
		}
		defer rows.Close()

		var cols []string
		for rows.Next() {
			var name, typ string
			if err := rows.Scan(&name, &typ); err != nil {
				return "", err
			}
			cols = append(cols, fmt.Sprintf("%s %s", name, typ))
		}
		if err := rows.Err(); err != nil {
			return "", err
		}
		return fmt.Sprintf("CREATE TABLE %s (%s)", table, strings.Join(cols, ", ")), nil
	}

	var ddl string
	err := e.db.QueryRowContext(ctx,
		`SELECT sql FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&ddl)
	if err != nil {
		return "", fmt.Errorf("table %s: %w", table, err)
	}
	return ddl, nil
}

// Close is part of the engine contract; the underlying connection is shared
// and owned by the caller, so closing here is a no-op.
func (e *Engine) Close() error {
	return nil
}

// RecordingEngine wraps an engine and keeps every statement executed through
// it, so the SQL the chain generated comes back as a first-class value
// instead of being scraped from the chain's text output. One instance is
// created per request.
type RecordingEngine struct {
	inner   sqldatabase.Engine
	queries []string
}

var _ sqldatabase.Engine = (*RecordingEngine)(nil)

func NewRecordingEngine(inner sqldatabase.Engine) *RecordingEngine {
	return &RecordingEngine{inner: inner}
}

func (r *RecordingEngine) Dialect() string {
	return r.inner.Dialect()
}

func (r *RecordingEngine) Query(ctx context.Context, query string, args ...any) ([]string, [][]string, error) {
	r.queries = append(r.queries, query)
	return r.inner.Query(ctx, query, args...)
}

func (r *RecordingEngine) TableNames(ctx context.Context) ([]string, error) {
	return r.inner.TableNames(ctx)
}

func (r *RecordingEngine) TableInfo(ctx context.Context, table string) (string, error) {
	return r.inner.TableInfo(ctx, table)
}

func (r *RecordingEngine) Close() error {
	return r.inner.Close()
}

// LastQuery returns the most recent statement, or "" when none ran.
func (r *RecordingEngine) LastQuery() string {
	if len(r.queries) == 0 {
		return ""
	}
	return r.queries[len(r.queries)-1]
}

// Queries returns every recorded statement in execution order.
func (r *RecordingEngine) Queries() []string {
	return r.queries
}
