// Package sqlite provides an ArtifactSink that appends each run to a
// SQLite database, so repeated runs can be compared.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/passel/internal/adapters/driven/sink/sqlite/migrations"
	"github.com/custodia-labs/passel/internal/core/domain"
	"github.com/custodia-labs/passel/internal/core/ports/driven"
)

// Ensure Sink implements the interface.
var _ driven.ArtifactSink = (*Sink)(nil)

// Sink records runs in a SQLite database.
type Sink struct {
	db   *sql.DB
	path string
}

// Run is a stored run with its ordered results.
type Run struct {
	ID        string
	Query     string
	CreatedAt time.Time
	Results   []domain.ScoredCandidate
}

// Open opens (creating if needed) the database at path and applies
// pending migrations.
func Open(path string) (*Sink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Sink{db: db, path: path}
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Sink) Close() error {
	return s.db.Close()
}

// Location returns the database file path.
func (s *Sink) Location() string {
	return s.path
}

// Write stores the run and its results in one transaction. Artifacts
// without a run ID get a fresh one.
func (s *Sink) Write(ctx context.Context, artifact domain.Artifact) error {
	id := artifact.RunID
	if id == "" {
		id = uuid.New().String()
	}
	created := artifact.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, query, created_at) VALUES (?, ?, ?)`,
		id, artifact.Query, created.Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO results (run_id, rank, document, passage, score) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare results: %w", err)
	}
	defer stmt.Close()

	for i, c := range artifact.Results {
		if _, err := stmt.ExecContext(ctx, id, i+1, c.DocumentID, c.Passage, c.Score); err != nil {
			return fmt.Errorf("insert result %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Runs returns the most recent runs first, at most limit of them.
func (s *Sink) Runs(ctx context.Context, limit int) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, query, created_at FROM runs ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run     Run
			created string
		)
		if err := rows.Scan(&run.ID, &run.Query, &created); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range runs {
		results, err := s.results(ctx, runs[i].ID)
		if err != nil {
			return nil, err
		}
		runs[i].Results = results
	}
	return runs, nil
}

func (s *Sink) results(ctx context.Context, runID string) ([]domain.ScoredCandidate, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT document, passage, score FROM results WHERE run_id = ? ORDER BY rank`, runID)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	var results []domain.ScoredCandidate
	for rows.Next() {
		var c domain.ScoredCandidate
		if err := rows.Scan(&c.DocumentID, &c.Passage, &c.Score); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		results = append(results, c)
	}
	return results, rows.Err()
}

// migrate runs all pending migrations.
func (s *Sink) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}
	return nil
}
