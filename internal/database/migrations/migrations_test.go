package migrations

import (
	"database/sql"
	"errors"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func TestUp_FreshDatabase(t *testing.T) {
	db := openTestDB(t)

	if err := Up(db); err != nil {
		t.Fatalf("Up() failed: %v", err)
	}

	for _, table := range []string{"operations", "schema_migrations"} {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("Table %s was not created: %v", table, err)
		}
	}
}

func TestCheck_FreshDatabase(t *testing.T) {
	db := openTestDB(t)

	err := Check(db)
	if !errors.Is(err, ErrNotMigrated) {
		t.Errorf("Check() error = %v, want %v", err, ErrNotMigrated)
	}
}

func TestCheck_AfterMigration(t *testing.T) {
	db := openTestDB(t)

	if err := Up(db); err != nil {
		t.Fatalf("Up() failed: %v", err)
	}
	if err := Check(db); err != nil {
		t.Errorf("Check() after migration returned error: %v", err)
	}

	st, err := CurrentStatus(db)
	if err != nil {
		t.Fatalf("CurrentStatus() error = %v", err)
	}
	if st.Version != st.Latest || st.Dirty {
		t.Errorf("CurrentStatus() = %+v, want clean at latest", st)
	}
}

func TestUp_Idempotent(t *testing.T) {
	db := openTestDB(t)

	if err := Up(db); err != nil {
		t.Fatalf("First Up() failed: %v", err)
	}
	if err := Up(db); err != nil {
		t.Errorf("Second Up() failed: %v (should be idempotent)", err)
	}
	if err := Check(db); err != nil {
		t.Errorf("Check() after double migration returned error: %v", err)
	}
}

func TestSchema_Constraints(t *testing.T) {
	db := openTestDB(t)
	if err := Up(db); err != nil {
		t.Fatalf("Up() failed: %v", err)
	}

	tests := []struct {
		name    string
		query   string
		wantErr bool
	}{
		{
			name:  "valid row",
			query: "INSERT INTO operations (run_id, mode, target, started_at, status) VALUES ('r1', 'crypt', 'a.tar.gz.age', datetime('now'), 'running')",
		},
		{
			name:    "unknown mode",
			query:   "INSERT INTO operations (run_id, mode, target, started_at, status) VALUES ('r1', 'shred', 'a', datetime('now'), 'running')",
			wantErr: true,
		},
		{
			name:    "unknown status",
			query:   "INSERT INTO operations (run_id, mode, target, started_at, status) VALUES ('r1', 'crypt', 'a', datetime('now'), 'pending')",
			wantErr: true,
		},
		{
			name:    "missing start time",
			query:   "INSERT INTO operations (run_id, mode, target, status) VALUES ('r1', 'crypt', 'a', 'running')",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := db.Exec(tt.query)
			if (err != nil) != tt.wantErr {
				t.Errorf("Exec() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLatestVersion(t *testing.T) {
	v, err := LatestVersion()
	if err != nil {
		t.Fatalf("LatestVersion() error = %v", err)
	}
	if v != 1 {
		t.Errorf("LatestVersion() = %d, want 1", v)
	}
}

// openTestDB opens an in-memory SQLite database for testing.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	// every pooled connection would be a separate in-memory database
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	return db
}
