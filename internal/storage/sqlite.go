package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"odatadoc/internal/ir"

	_ "github.com/mattn/go-sqlite3"
)

var _ OperationStore = (*SQLiteStore)(nil)

type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates or opens a SQLite database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS operations (
			id TEXT PRIMARY KEY,
			file TEXT,
			operation_name TEXT,
			category TEXT,
			category_slug TEXT,
			is_valid INTEGER,
			payload JSON
		);`,
		`CREATE TABLE IF NOT EXISTS projects (
			path TEXT PRIMARY KEY,
			name TEXT,
			type_name TEXT,
			type TEXT,
			is_test INTEGER
		);`,
		`CREATE INDEX IF NOT EXISTS idx_operations_file ON operations(file);`,
		`CREATE INDEX IF NOT EXISTS idx_operations_category ON operations(category_slug);`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

const upsertOperation = `
	INSERT INTO operations (id, file, operation_name, category, category_slug, is_valid, payload)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		file=excluded.file,
		operation_name=excluded.operation_name,
		category=excluded.category,
		category_slug=excluded.category_slug,
		is_valid=excluded.is_valid,
		payload=excluded.payload
`

const upsertProject = `
	INSERT INTO projects (path, name, type_name, type, is_test)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(path) DO UPDATE SET
		name=excluded.name,
		type_name=excluded.type_name,
		type=excluded.type,
		is_test=excluded.is_test
`

func (s *SQLiteStore) SaveOperations(ctx context.Context, ops []*ir.Operation) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, q := range []string{"DELETE FROM operations", "DELETE FROM projects"} {
		if _, err := tx.ExecContext(ctx, q); err != nil {
			return err
		}
	}
	if err := insertOperations(ctx, tx, ops); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLiteStore) ReplaceFiles(ctx context.Context, files []string, ops []*ir.Operation) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	del, err := tx.PrepareContext(ctx, "DELETE FROM operations WHERE file = ?")
	if err != nil {
		return err
	}
	defer del.Close()
	for _, f := range files {
		if _, err := del.ExecContext(ctx, f); err != nil {
			return fmt.Errorf("delete operations of %s: %w", f, err)
		}
	}

	if err := insertOperations(ctx, tx, ops); err != nil {
		return err
	}
	return tx.Commit()
}

func insertOperations(ctx context.Context, tx *sql.Tx, ops []*ir.Operation) error {
	stmt, err := tx.PrepareContext(ctx, upsertOperation)
	if err != nil {
		return err
	}
	defer stmt.Close()

	projStmt, err := tx.PrepareContext(ctx, upsertProject)
	if err != nil {
		return err
	}
	defer projStmt.Close()

	for _, op := range ops {
		payload, err := json.Marshal(op)
		if err != nil {
			return fmt.Errorf("encode operation %s: %w", op.ID(), err)
		}
		if _, err := stmt.ExecContext(ctx, op.ID(), op.File, op.OperationName, op.Category, op.CategorySlug, op.IsValid, payload); err != nil {
			return fmt.Errorf("save operation %s: %w", op.ID(), err)
		}
		if p := op.Project; p != nil {
			if _, err := projStmt.ExecContext(ctx, p.Path, p.Name, p.TypeName, string(p.Type), p.IsTestProject); err != nil {
				return fmt.Errorf("save project %s: %w", p.Path, err)
			}
		}
	}
	return nil
}

func (s *SQLiteStore) LoadOperations(ctx context.Context) ([]*ir.Operation, error) {
	return s.queryOperations(ctx, "SELECT payload FROM operations ORDER BY file, operation_name, id")
}

func (s *SQLiteStore) FindByCategory(ctx context.Context, slug string) ([]*ir.Operation, error) {
	return s.queryOperations(ctx, "SELECT payload FROM operations WHERE category_slug = ? ORDER BY operation_name, id", slug)
}

func (s *SQLiteStore) queryOperations(ctx context.Context, query string, args ...any) ([]*ir.Operation, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query operations: %w", err)
	}
	defer rows.Close()

	var ops []*ir.Operation
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan operation: %w", err)
		}
		var op ir.Operation
		if err := json.Unmarshal(payload, &op); err != nil {
			return nil, fmt.Errorf("failed to decode operation: %w", err)
		}
		ops = append(ops, &op)
	}
	return ops, rows.Err()
}

func (s *SQLiteStore) Projects(ctx context.Context) ([]ir.Project, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT path, name, type_name, type, is_test FROM projects ORDER BY name, path")
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	defer rows.Close()

	var projects []ir.Project
	for rows.Next() {
		var p ir.Project
		var typ string
		if err := rows.Scan(&p.Path, &p.Name, &p.TypeName, &typ, &p.IsTestProject); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		p.Type = ir.ProjectType(typ)
		projects = append(projects, p)
	}
	return projects, rows.Err()
}
