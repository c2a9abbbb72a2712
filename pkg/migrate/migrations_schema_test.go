package migrate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const migrationsDir = "migrations"

func TestValidateDirAcceptsShippedMigrations(t *testing.T) {
	if err := ValidateDir(migrationsDir); err != nil {
		t.Fatalf("ValidateDir error: %v", err)
	}
}

func TestInitMigrationCreatesTrackerTables(t *testing.T) {
	entries, err := os.ReadDir(migrationsDir)
	if err != nil {
		t.Fatalf("read migrations dir: %v", err)
	}

	var initSQL string
	for _, e := range entries {
		if strings.Contains(e.Name(), "init_schema") {
			b, err := os.ReadFile(filepath.Join(migrationsDir, e.Name()))
			if err != nil {
				t.Fatalf("read init migration: %v", err)
			}
			initSQL = string(b)
		}
	}
	if initSQL == "" {
		t.Fatal("init_schema migration not found")
	}

	for _, table := range []string{"users", "spools", "spool_states", "spool_events"} {
		if !strings.Contains(initSQL, "CREATE TABLE "+table) {
			t.Fatalf("init migration missing table %q", table)
		}
	}
	if !strings.Contains(initSQL, "idx_spool_events_spool_id") {
		t.Fatal("init migration missing spool_events spool_id index")
	}
	if !strings.Contains(initSQL, "UNIQUE (tag)") {
		t.Fatal("init migration missing unique tag constraint")
	}
}
