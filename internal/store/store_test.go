package store

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"
	"time"
)

func TestOpen(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		opts    []Option
		wantErr bool
	}{
		{
			name: "in-memory database",
			path: "file::memory:?cache=shared",
		},
		{
			name: "with options",
			path: "file::memory:?cache=shared",
			opts: []Option{
				WithMaxConnections(5),
				WithBusyTimeout(10 * time.Second),
			},
		},
		{
			name: "file database",
			path: filepath.Join(t.TempDir(), "paralegal.db"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, err := Open(tt.path, tt.opts...)
			if (err != nil) != tt.wantErr {
				t.Errorf("Open() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if err == nil {
				defer func() {
					if closeErr := st.Close(); closeErr != nil {
						t.Errorf("Failed to close store: %v", closeErr)
					}
				}()

				// Verify connection is working
				var result int
				err := st.QueryRowContext(context.Background(), "SELECT 1").Scan(&result)
				if err != nil {
					t.Errorf("Failed to query database: %v", err)
				}
				if result != 1 {
					t.Errorf("Expected 1, got %d", result)
				}

				if st.Path() != tt.path {
					t.Errorf("Path() = %s, want %s", st.Path(), tt.path)
				}
			}
		})
	}
}

func TestOpenAutomaticInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "init.db")

	// Test that the schema is created on first open
	st, err := Open(path)
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			t.Errorf("Failed to close store: %v", closeErr)
		}
	}()

	// Verify migrations table exists
	var count int
	err = st.QueryRowContext(context.Background(),
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='migrations'").Scan(&count)
	if err != nil {
		t.Fatalf("Failed to query migrations table: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected migrations table to exist")
	}

	// Verify core tables exist
	tables := []string{"analyses", "issues", "remedies"}
	for _, table := range tables {
		err = st.QueryRowContext(context.Background(),
			"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&count)
		if err != nil {
			t.Fatalf("Failed to query %s table: %v", table, err)
		}
		if count != 1 {
			t.Errorf("Expected %s table to exist", table)
		}
	}
}

func TestInTransaction(t *testing.T) {
	st, err := OpenMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			t.Errorf("Failed to close store: %v", closeErr)
		}
	}()

	ctx := context.Background()

	// Test successful transaction
	err = st.InTransaction(ctx, func(tx *sql.Tx) error {
		_, txErr := tx.ExecContext(ctx, "CREATE TABLE test_table (id INTEGER)")
		return txErr
	})
	if err != nil {
		t.Errorf("InTransaction() error = %v", err)
	}

	// Verify table was created
	var count int
	err = st.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='test_table'").Scan(&count)
	if err != nil || count != 1 {
		t.Errorf("Expected test_table to exist")
	}

	// Test failed transaction (rollback)
	err = st.InTransaction(ctx, func(tx *sql.Tx) error {
		_, txErr := tx.ExecContext(ctx, "CREATE TABLE test_table2 (id INTEGER)")
		if txErr != nil {
			return txErr
		}
		// Force an error
		return fmt.Errorf("forced error")
	})
	if err == nil {
		t.Errorf("Expected error from transaction")
	}

	// Verify table was NOT created due to rollback
	err = st.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='test_table2'").Scan(&count)
	if err != nil || count != 0 {
		t.Errorf("Expected test_table2 to NOT exist due to rollback")
	}
}

func TestForeignKeys(t *testing.T) {
	st, err := OpenMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			t.Errorf("Failed to close store: %v", closeErr)
		}
	}()

	ctx := context.Background()

	// Inserting an issue for a missing analysis should fail
	_, err = st.ExecContext(ctx,
		"INSERT INTO issues (id, analysis_id, type, severity, title, detected_at) VALUES (?, ?, ?, ?, ?, ?)",
		"issue-1", "missing", "contradiction", "high", "test issue", time.Now())
	if err == nil {
		t.Error("Expected error for invalid analysis_id foreign key")
	}

	// Create a valid analysis row
	_, err = st.ExecContext(ctx,
		"INSERT INTO analyses (id, analyzer_name, analyzer_version, status, started_at) VALUES (?, ?, ?, ?, ?)",
		"analysis-1", "document-analyzer", "2.0.0", "running", time.Now())
	if err != nil {
		t.Fatalf("Failed to create analysis: %v", err)
	}

	// This should work
	_, err = st.ExecContext(ctx,
		"INSERT INTO issues (id, analysis_id, type, severity, title, detected_at) VALUES (?, ?, ?, ?, ?, ?)",
		"issue-1", "analysis-1", "contradiction", "high", "test issue", time.Now())
	if err != nil {
		t.Errorf("Failed to insert issue with valid analysis_id: %v", err)
	}
}

func TestStoreOptions(t *testing.T) {
	st := &Store{
		maxConns:    10,
		busyTimeout: 5 * time.Second,
	}

	// Test WithMaxConnections
	opt := WithMaxConnections(20)
	opt(st)
	if st.maxConns != 20 {
		t.Errorf("Expected maxConns=20, got %d", st.maxConns)
	}

	// Test WithBusyTimeout
	opt = WithBusyTimeout(30 * time.Second)
	opt(st)
	if st.busyTimeout != 30*time.Second {
		t.Errorf("Expected busyTimeout=30s, got %v", st.busyTimeout)
	}
}
