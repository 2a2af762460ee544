package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"ct-go/internal/ct"
	"ct-go/internal/database/migrations"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteJournal implements ct.Journal using SQLite.
type SQLiteJournal struct {
	db    *sql.DB
	path  string
	clock ct.Clock
}

var _ ct.Journal = (*SQLiteJournal)(nil)

// NewSQLiteJournal opens the journal at path, creating the file and its
// directory if needed, and migrates the schema to the latest version.
// path can be ":memory:" for a journal that lives as long as the process.
// A nil clock uses the real time.
func NewSQLiteJournal(path string, clock ct.Clock) (*SQLiteJournal, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, fmt.Errorf("creating journal directory: %w", err)
		}
	}

	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}

	if err := migrations.Up(db); err != nil {
		db.Close()
		return nil, err
	}
	if err := migrations.Check(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("journal %s: %w", path, err)
	}

	if clock == nil {
		clock = ct.RealClock{}
	}
	return &SQLiteJournal{db: db, path: path, clock: clock}, nil
}

// OpenConnection opens and configures a SQLite database connection.
// path can be a file path or ":memory:" for in-memory database.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection: ct is a single short-lived process, and each pooled
	// connection to ":memory:" would see its own empty database.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	return db, nil
}

func (j *SQLiteJournal) StartOperation(op *ct.Operation) error {
	if op.StartedAt.IsZero() {
		op.StartedAt = j.clock.Now()
	}
	if op.Status == "" {
		op.Status = ct.StatusRunning
	}

	res, err := j.db.Exec(
		`INSERT INTO operations (run_id, mode, target, destination, item_count, started_at, status, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		op.RunID, string(op.Mode), op.Target, op.Destination, op.ItemCount, op.StartedAt.UTC(), op.Status, op.Error,
	)
	if err != nil {
		return fmt.Errorf("starting operation: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading operation id: %w", err)
	}
	op.ID = id
	return nil
}

func (j *SQLiteJournal) FinishOperation(op *ct.Operation) error {
	if !op.Persisted() {
		return fmt.Errorf("finishing operation: operation was never started")
	}
	if !op.FinishedAt.Valid {
		op.FinishedAt = sql.NullTime{Time: j.clock.Now(), Valid: true}
	}

	res, err := j.db.Exec(
		`UPDATE operations SET destination = ?, finished_at = ?, status = ?, error = ? WHERE id = ?`,
		op.Destination, op.FinishedAt.Time.UTC(), op.Status, op.Error, op.ID,
	)
	if err != nil {
		return fmt.Errorf("finishing operation: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("finishing operation: no operation with id %d", op.ID)
	}
	return nil
}

// ListOperations returns up to limit operations, newest first. A limit of
// zero or less returns all of them.
func (j *SQLiteJournal) ListOperations(limit int) ([]*ct.Operation, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := j.db.Query(
		`SELECT id, run_id, mode, target, destination, item_count, started_at, finished_at, status, error
		 FROM operations ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing operations: %w", err)
	}
	defer rows.Close()

	var ops []*ct.Operation
	for rows.Next() {
		var (
			op   ct.Operation
			mode string
		)
		if err := rows.Scan(&op.ID, &op.RunID, &mode, &op.Target, &op.Destination, &op.ItemCount,
			&op.StartedAt, &op.FinishedAt, &op.Status, &op.Error); err != nil {
			return nil, fmt.Errorf("scanning operation: %w", err)
		}
		op.Mode = ct.Mode(mode)
		ops = append(ops, &op)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing operations: %w", err)
	}
	return ops, nil
}

// Describe summarizes the journal location and schema state for display,
// e.g. "sqlite /home/me/.local/share/ct/db/ct.db (schema 1/1)".
func (j *SQLiteJournal) Describe() (string, error) {
	st, err := migrations.CurrentStatus(j.db)
	if err != nil {
		return "", err
	}

	where := "sqlite " + j.path
	if j.path == ":memory:" {
		where = "memory"
	}
	desc := fmt.Sprintf("%s (schema %d/%d)", where, st.Version, st.Latest)
	if st.Dirty {
		desc += " dirty"
	}
	return desc, nil
}

// Close closes the database connection.
func (j *SQLiteJournal) Close() error {
	if j.db != nil {
		return j.db.Close()
	}
	return nil
}
