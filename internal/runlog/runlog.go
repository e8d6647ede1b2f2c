// Package runlog records scrape and enrich runs in a small SQLite database.
// Course data itself never touches the database; the run log only exists so
// the API can report what background work happened and how it went.
package runlog

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// Status is the lifecycle state of a run.
type Status string

const (
	StatusQueued   Status = "queued"
	StatusRunning  Status = "running"
	StatusComplete Status = "complete"
	StatusFailed   Status = "failed"
)

// Run kinds.
const (
	KindScrape = "scrape"
	KindEnrich = "enrich"
)

// Run is one recorded scrape or enrich invocation.
type Run struct {
	ID        string         `json:"id"`
	Kind      string         `json:"kind"`
	Status    Status         `json:"status"`
	Detail    map[string]any `json:"detail,omitempty"`
	Error     string         `json:"error,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Store persists runs in SQLite.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the run log database at path and configures WAL mode.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "runlog: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "runlog: exec %s", pragma)
		}
	}
	return &Store{db: db}, nil
}

const migration = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	kind       TEXT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'queued',
	detail     TEXT,
	error      TEXT,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE INDEX IF NOT EXISTS idx_runs_kind ON runs(kind);
`

// Migrate creates the schema if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, migration)
	return eris.Wrap(err, "runlog: migrate")
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Create inserts a new queued run of the given kind.
func (s *Store) Create(ctx context.Context, kind string) (*Run, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, kind, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		id, kind, string(StatusQueued), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "runlog: insert run")
	}

	return &Run{
		ID:        id,
		Kind:      kind,
		Status:    StatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// MarkRunning transitions a run to running.
func (s *Store) MarkRunning(ctx context.Context, runID string) error {
	return s.setStatus(ctx, runID, StatusRunning, "")
}

// Complete marks a run complete and stores its detail (counts, durations).
func (s *Store) Complete(ctx context.Context, runID string, detail map[string]any) error {
	detailJSON, err := json.Marshal(detail)
	if err != nil {
		return eris.Wrap(err, "runlog: marshal detail")
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, detail = ?, updated_at = ? WHERE id = ?`,
		string(StatusComplete), string(detailJSON), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "runlog: complete run %s", runID)
	}
	return checkRowsAffected(res, runID)
}

// Fail marks a run failed with the given error message.
func (s *Store) Fail(ctx context.Context, runID string, msg string) error {
	return s.setStatus(ctx, runID, StatusFailed, msg)
}

func (s *Store) setStatus(ctx context.Context, runID string, status Status, errMsg string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, error = ?, updated_at = ? WHERE id = ?`,
		string(status), errMsg, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "runlog: update run %s", runID)
	}
	return checkRowsAffected(res, runID)
}

// Get returns a run by ID, or nil when no such run exists.
func (s *Store) Get(ctx context.Context, runID string) (*Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, kind, status, detail, error, created_at, updated_at FROM runs WHERE id = ?`,
		runID,
	)
	r, err := scanRun(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "runlog: get run %s", runID)
	}
	return r, nil
}

// Filter narrows List results.
type Filter struct {
	Kind   string
	Status Status
	Limit  int
}

// List returns runs newest first.
func (s *Store) List(ctx context.Context, filter Filter) ([]Run, error) {
	query := `SELECT id, kind, status, detail, error, created_at, updated_at FROM runs WHERE 1=1`
	var args []any

	if filter.Kind != "" {
		query += ` AND kind = ?`
		args = append(args, filter.Kind)
	}
	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "runlog: list runs")
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows.Scan)
		if err != nil {
			return nil, eris.Wrap(err, "runlog: scan run")
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "runlog: list runs iterate")
}

func scanRun(scan func(dest ...any) error) (*Run, error) {
	var r Run
	var detail, errMsg sql.NullString
	if err := scan(&r.ID, &r.Kind, &r.Status, &detail, &errMsg, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	if detail.Valid && detail.String != "" {
		if err := json.Unmarshal([]byte(detail.String), &r.Detail); err != nil {
			return nil, eris.Wrap(err, "runlog: unmarshal detail")
		}
	}
	if errMsg.Valid {
		r.Error = errMsg.String
	}
	return &r, nil
}

func checkRowsAffected(res sql.Result, runID string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "runlog: rows affected")
	}
	if n == 0 {
		return eris.Errorf("runlog: run %s not found", runID)
	}
	return nil
}
