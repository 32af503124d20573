package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)
)

// GraphStore holds the function call graph and the file dependency
// graph in SQLite. The C parser populates it; the query side only reads.
type GraphStore struct {
	db *sql.DB
}

const graphSchema = `
CREATE TABLE IF NOT EXISTS functions (
	name       TEXT NOT NULL,
	file_path  TEXT NOT NULL,
	start_line INTEGER NOT NULL DEFAULT 0,
	end_line   INTEGER NOT NULL DEFAULT 0,
	snippet    TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (name, file_path)
);
CREATE TABLE IF NOT EXISTS calls (
	caller TEXT NOT NULL,
	callee TEXT NOT NULL,
	PRIMARY KEY (caller, callee)
);
CREATE INDEX IF NOT EXISTS idx_calls_callee ON calls(callee);
CREATE TABLE IF NOT EXISTS includes (
	src_file TEXT NOT NULL,
	dst_file TEXT NOT NULL,
	PRIMARY KEY (src_file, dst_file)
);
CREATE INDEX IF NOT EXISTS idx_includes_dst ON includes(dst_file);
`

// NewGraphStore opens (or creates) the graph database at path.
func NewGraphStore(path string) (*GraphStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open graph database: %w", err)
	}

	// WAL mode must be set via PRAGMA for modernc.org/sqlite.
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(graphSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create graph schema: %w", err)
	}

	return &GraphStore{db: db}, nil
}

// AddFunction upserts a function node.
func (g *GraphStore) AddFunction(ctx context.Context, fn *Function) error {
	_, err := g.db.ExecContext(ctx,
		`INSERT INTO functions (name, file_path, start_line, end_line, snippet)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(name, file_path) DO UPDATE SET
		   start_line = excluded.start_line,
		   end_line   = excluded.end_line,
		   snippet    = excluded.snippet`,
		fn.Name, fn.FilePath, fn.StartLine, fn.EndLine, fn.Snippet)
	if err != nil {
		return fmt.Errorf("add function %s: %w", fn.Name, err)
	}
	return nil
}

// AddCall inserts a call edge (caller -> callee).
func (g *GraphStore) AddCall(ctx context.Context, caller, callee string) error {
	_, err := g.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO calls (caller, callee) VALUES (?, ?)`, caller, callee)
	if err != nil {
		return fmt.Errorf("add call %s->%s: %w", caller, callee, err)
	}
	return nil
}

// AddInclude inserts a file dependency edge (src includes dst).
func (g *GraphStore) AddInclude(ctx context.Context, src, dst string) error {
	_, err := g.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO includes (src_file, dst_file) VALUES (?, ?)`, src, dst)
	if err != nil {
		return fmt.Errorf("add include %s->%s: %w", src, dst, err)
	}
	return nil
}

// Definition returns the definition node for a function name, or nil if
// the function is unknown.
func (g *GraphStore) Definition(ctx context.Context, name string) (*Function, error) {
	row := g.db.QueryRowContext(ctx,
		`SELECT name, file_path, start_line, end_line, snippet
		 FROM functions WHERE name = ? ORDER BY file_path LIMIT 1`, name)

	fn, err := scanFunction(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query definition of %s: %w", name, err)
	}
	return fn, nil
}

// Callers returns the functions that call name, with relation metadata.
func (g *GraphStore) Callers(ctx context.Context, name string, limit int) ([]*FunctionRelation, error) {
	rows, err := g.db.QueryContext(ctx,
		`SELECT f.name, f.file_path, f.start_line, f.end_line, f.snippet
		 FROM calls c JOIN functions f ON f.name = c.caller
		 WHERE c.callee = ? ORDER BY f.name, f.file_path LIMIT ?`, name, limit)
	if err != nil {
		return nil, fmt.Errorf("query callers of %s: %w", name, err)
	}
	defer func() { _ = rows.Close() }()

	return collectRelations(rows, "caller")
}

// Callees returns the functions called by name, with relation metadata.
func (g *GraphStore) Callees(ctx context.Context, name string, limit int) ([]*FunctionRelation, error) {
	rows, err := g.db.QueryContext(ctx,
		`SELECT f.name, f.file_path, f.start_line, f.end_line, f.snippet
		 FROM calls c JOIN functions f ON f.name = c.callee
		 WHERE c.caller = ? ORDER BY f.name, f.file_path LIMIT ?`, name, limit)
	if err != nil {
		return nil, fmt.Errorf("query callees of %s: %w", name, err)
	}
	defer func() { _ = rows.Close() }()

	return collectRelations(rows, "callee")
}

// FunctionsByKeyword returns functions whose name contains the keyword.
// Used as the call-graph fallback when the query names no function.
func (g *GraphStore) FunctionsByKeyword(ctx context.Context, keyword string, limit int) ([]*Function, error) {
	pattern := "%" + strings.ToLower(keyword) + "%"
	rows, err := g.db.QueryContext(ctx,
		`SELECT name, file_path, start_line, end_line, snippet
		 FROM functions WHERE lower(name) LIKE ?
		 ORDER BY name, file_path LIMIT ?`, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("query functions by keyword %q: %w", keyword, err)
	}
	defer func() { _ = rows.Close() }()

	var fns []*Function
	for rows.Next() {
		fn, err := scanFunction(rows)
		if err != nil {
			return nil, err
		}
		fns = append(fns, fn)
	}
	return fns, rows.Err()
}

// FileDependencies returns the dependency edges touching a file, both
// directions, bounded by limit.
func (g *GraphStore) FileDependencies(ctx context.Context, path string, limit int) ([]*FileDependency, error) {
	rows, err := g.db.QueryContext(ctx,
		`SELECT dst_file, 'includes' FROM includes WHERE src_file = ?
		 UNION ALL
		 SELECT src_file, 'included_by' FROM includes WHERE dst_file = ?
		 ORDER BY 1 LIMIT ?`, path, path, limit)
	if err != nil {
		return nil, fmt.Errorf("query dependencies of %s: %w", path, err)
	}
	defer func() { _ = rows.Close() }()

	var deps []*FileDependency
	for rows.Next() {
		dep := &FileDependency{}
		if err := rows.Scan(&dep.Path, &dep.Direction); err != nil {
			return nil, fmt.Errorf("scan dependency row: %w", err)
		}
		deps = append(deps, dep)
	}
	return deps, rows.Err()
}

// FilesOfFunction returns the file paths defining a function.
func (g *GraphStore) FilesOfFunction(ctx context.Context, name string) ([]string, error) {
	rows, err := g.db.QueryContext(ctx,
		`SELECT file_path FROM functions WHERE name = ? ORDER BY file_path`, name)
	if err != nil {
		return nil, fmt.Errorf("query files of %s: %w", name, err)
	}
	defer func() { _ = rows.Close() }()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

// Stats returns graph store statistics.
func (g *GraphStore) Stats(ctx context.Context) (*GraphStats, error) {
	stats := &GraphStats{}
	if err := g.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM functions`).Scan(&stats.Functions); err != nil {
		return nil, fmt.Errorf("count functions: %w", err)
	}
	if err := g.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM calls`).Scan(&stats.Calls); err != nil {
		return nil, fmt.Errorf("count calls: %w", err)
	}
	if err := g.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM includes`).Scan(&stats.Includes); err != nil {
		return nil, fmt.Errorf("count includes: %w", err)
	}
	return stats, nil
}

// Close closes the database.
func (g *GraphStore) Close() error {
	return g.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFunction(row rowScanner) (*Function, error) {
	fn := &Function{}
	if err := row.Scan(&fn.Name, &fn.FilePath, &fn.StartLine, &fn.EndLine, &fn.Snippet); err != nil {
		return nil, err
	}
	return fn, nil
}

func collectRelations(rows *sql.Rows, relation string) ([]*FunctionRelation, error) {
	var rels []*FunctionRelation
	for rows.Next() {
		fn, err := scanFunction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan function row: %w", err)
		}
		rels = append(rels, &FunctionRelation{Function: fn, Relation: relation, Depth: 1})
	}
	return rels, rows.Err()
}
