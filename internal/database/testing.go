package database

import (
	"context"
	"os"
	"testing"
	"time"
)

// TestDSNEnv names the variable holding the DSN of a disposable test database
const TestDSNEnv = "DERBY_SIM_TEST_DATABASE_DSN"

// SetupTestDB connects to the test database and applies the schema.
// The test is skipped when TestDSNEnv is unset.
func SetupTestDB(t *testing.T) *DB {
	t.Helper()

	dsn := os.Getenv(TestDSNEnv)
	if dsn == "" {
		t.Skipf("integration test - set %s to run", TestDSNEnv)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	db, err := NewDBFromDSN(ctx, dsn)
	if err != nil {
		t.Fatalf("failed to create test database connection: %v", err)
	}

	if err := db.Migrate(ctx); err != nil {
		db.Close()
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// TeardownTestDB truncates the tables and closes the pool
func TeardownTestDB(t *testing.T, db *DB) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := db.Exec(ctx, "TRUNCATE horses, season_state, race_outcomes"); err != nil {
		t.Logf("warning: failed to truncate test database: %v", err)
	}
	db.Close()
}
