package store

import (
	"context"
	"database/sql"
	"testing"
)

func TestMigrations(t *testing.T) {
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

	// Test that migrations have already run (from Open())
	version, err := st.MigrationVersion(ctx)
	if err != nil {
		t.Fatalf("Failed to get migration version: %v", err)
	}
	if version < 1 {
		t.Errorf("Expected migration version >= 1, got %d", version)
	}

	// Verify all expected tables exist
	tables := []struct {
		name    string
		columns []string
	}{
		{
			name: "analyses",
			columns: []string{
				"id", "document_id", "analyzer_name", "analyzer_version", "status",
				"error_message", "document_type", "classification", "confidence_score",
				"tokens_analyzed", "processing_time_ms", "metadata", "started_at", "completed_at",
			},
		},
		{
			name: "issues",
			columns: []string{
				"id", "analysis_id", "type", "severity", "title", "description",
				"confidence", "suggestions", "locations", "metadata", "detected_at",
			},
		},
		{
			name: "remedies",
			columns: []string{
				"id", "analysis_id", "title", "description", "category", "priority",
				"estimated_impact", "applicable_issues", "implementation_steps", "legal_basis", "metadata",
			},
		},
		{
			name:    "migrations",
			columns: []string{"version", "name", "applied_at"},
		},
	}

	for _, table := range tables {
		// Check table exists
		var count int
		err := st.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table.name).Scan(&count)
		if err != nil {
			t.Fatalf("Failed to check table %s: %v", table.name, err)
		}
		if count != 1 {
			t.Errorf("Expected table %s to exist", table.name)
			continue
		}

		// Check columns exist using a function to properly handle defer
		func() {
			rows, err := st.QueryContext(ctx, "PRAGMA table_info("+table.name+")")
			if err != nil {
				t.Fatalf("Failed to get table info for %s: %v", table.name, err)
			}
			defer func() {
				if err := rows.Close(); err != nil {
					t.Errorf("Failed to close rows: %v", err)
				}
			}()

			columnMap := make(map[string]bool)
			for rows.Next() {
				var cid int
				var name, ctype string
				var notnull, pk int
				var dflt sql.NullString

				if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
					t.Fatalf("Failed to scan column info: %v", err)
				}
				columnMap[name] = true
			}

			if err := rows.Err(); err != nil {
				t.Fatalf("Failed to iterate rows: %v", err)
			}

			for _, col := range table.columns {
				if !columnMap[col] {
					t.Errorf("Expected column %s.%s to exist", table.name, col)
				}
			}
		}()
	}

	// Verify indexes exist
	indexes := []struct {
		name  string
		table string
	}{
		{"idx_analyses_status", "analyses"},
		{"idx_analyses_document", "analyses"},
		{"idx_analyses_started", "analyses"},
		{"idx_issues_analysis", "issues"},
		{"idx_issues_severity", "issues"},
		{"idx_remedies_analysis", "remedies"},
	}

	for _, idx := range indexes {
		var count int
		err := st.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM sqlite_master WHERE type='index' AND name=?", idx.name).Scan(&count)
		if err != nil {
			t.Fatalf("Failed to check index %s: %v", idx.name, err)
		}
		if count != 1 {
			t.Errorf("Expected index %s to exist", idx.name)
		}
	}
}

func TestMigrationIdempotency(t *testing.T) {
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

	// Get initial version
	version1, err := st.MigrationVersion(ctx)
	if err != nil {
		t.Fatalf("Failed to get initial version: %v", err)
	}

	// Run migrations again
	err = st.Migrate(ctx)
	if err != nil {
		t.Fatalf("Failed to run migrations again: %v", err)
	}

	// Version should be the same
	version2, err := st.MigrationVersion(ctx)
	if err != nil {
		t.Fatalf("Failed to get version after re-migration: %v", err)
	}

	if version1 != version2 {
		t.Errorf("Migration version changed after re-running: %d -> %d", version1, version2)
	}
}
