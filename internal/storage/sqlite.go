package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"ghwiki/internal/reflection"

	_ "github.com/mattn/go-sqlite3"
)

type SQLiteStore struct {
	db *sql.DB
}

var _ ProjectStore = (*SQLiteStore)(nil)

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
		`CREATE TABLE IF NOT EXISTS project (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			name TEXT NOT NULL,
			readme TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS reflections (
			id INTEGER PRIMARY KEY,
			parent_id INTEGER,
			position INTEGER,
			name TEXT,
			kind TEXT,
			comment TEXT,
			signature TEXT,
			type TEXT,
			sources JSON
		);`,
		`CREATE INDEX IF NOT EXISTS idx_reflections_parent ON reflections(parent_id, position);`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

// SaveProject stores p as the current snapshot. Reflection IDs are
// reassigned depth-first before writing.
func (s *SQLiteStore) SaveProject(ctx context.Context, p *reflection.Project) error {
	p.AssignIDs()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Snapshot semantics: the previous tree is dropped as a whole.
	for _, q := range []string{"DELETE FROM reflections", "DELETE FROM project"} {
		if _, err := tx.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("failed to clear snapshot: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, "INSERT INTO project (id, name, readme) VALUES (1, ?, ?)", p.Name(), p.Readme); err != nil {
		return fmt.Errorf("failed to save project: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO reflections (id, parent_id, position, name, kind, comment, signature, type, sources)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	var insertErr error
	p.Root.Walk(func(r *reflection.Reflection) bool {
		if r.Kind == reflection.KindProject {
			return true
		}
		position := 0
		for i, sibling := range r.Parent.Children {
			if sibling == r {
				position = i
				break
			}
		}
		sources, err := json.Marshal(r.Sources)
		if err != nil {
			insertErr = err
			return false
		}
		if _, err := stmt.ExecContext(ctx, r.ID, r.Parent.ID, position, r.Name, r.Kind.String(), r.Comment, r.Signature, r.Type, sources); err != nil {
			insertErr = fmt.Errorf("failed to save reflection %s: %w", r.FullName(), err)
			return false
		}
		return insertErr == nil
	})
	if insertErr != nil {
		return insertErr
	}

	return tx.Commit()
}

// LoadProject rebuilds the saved tree. Children come back in their saved order.
func (s *SQLiteStore) LoadProject(ctx context.Context) (*reflection.Project, error) {
	var name string
	var readme sql.NullString
	err := s.db.QueryRowContext(ctx, "SELECT name, readme FROM project WHERE id = 1").Scan(&name, &readme)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query project: %w", err)
	}

	p := reflection.NewProject(name)
	p.Readme = readme.String

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, parent_id, name, kind, comment, signature, type, sources
		FROM reflections ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query reflections: %w", err)
	}
	defer rows.Close()

	type row struct {
		r        *reflection.Reflection
		parentID int
	}
	byID := map[int]*reflection.Reflection{0: p.Root}
	var loaded []row

	for rows.Next() {
		var (
			r                 reflection.Reflection
			parentID          int
			kind              string
			comment, sig, typ sql.NullString
			sources           []byte
		)
		if err := rows.Scan(&r.ID, &parentID, &r.Name, &kind, &comment, &sig, &typ, &sources); err != nil {
			return nil, fmt.Errorf("failed to scan reflection: %w", err)
		}
		if r.Kind, err = reflection.ParseKind(kind); err != nil {
			return nil, err
		}
		r.Comment, r.Signature, r.Type = comment.String, sig.String, typ.String
		if len(sources) > 0 {
			if err := json.Unmarshal(sources, &r.Sources); err != nil {
				return nil, fmt.Errorf("failed to decode sources of %s: %w", r.Name, err)
			}
		}
		byID[r.ID] = &r
		loaded = append(loaded, row{r: &r, parentID: parentID})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// IDs are depth-first, so ordering by position within a parent is the
	// same as ordering by id.
	for _, l := range loaded {
		parent, ok := byID[l.parentID]
		if !ok {
			return nil, fmt.Errorf("reflection %d has unknown parent %d", l.r.ID, l.parentID)
		}
		parent.AddChild(l.r)
	}

	return p, nil
}
