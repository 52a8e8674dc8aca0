// internal/storage/database.go
package storage

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // Driver registration

	"github.com/Annany2002/nebula-seeder/internal/logger"
)

var (
	customLog = logger.NewLogger()
)

// ConnectRunDB opens a private in-memory SQLite database for the run ledger
// and ensures the 'runs' table exists. Nothing is written to disk; the ledger
// lives as long as the returned pool.
func ConnectRunDB() (*sql.DB, error) {
	dsn := fmt.Sprintf("file:runs_%s?mode=memory&cache=shared&_busy_timeout=5000", uuid.NewString())
	customLog.Println("Storage: Initializing in-memory run ledger")

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		customLog.Warnf("Storage: Failed to open run ledger: %v", err)
		return nil, fmt.Errorf("failed to open run ledger: %w", err)
	}

	// A memory database disappears with its last connection; keep exactly one.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err = db.Ping(); err != nil {
		db.Close()
		customLog.Warnf("Storage: Failed to ping run ledger: %v", err)
		return nil, fmt.Errorf("failed to connect to run ledger: %w", err)
	}

	createRunsTableSQL := `
	CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY NOT NULL,
		collection_name TEXT NOT NULL,
		logical_name TEXT NOT NULL,
		row_count INTEGER NOT NULL,
		state TEXT NOT NULL,
		status_code INTEGER NOT NULL DEFAULT 0,
		error TEXT NOT NULL DEFAULT '',
		started_at TIMESTAMP NOT NULL,
		finished_at TIMESTAMP
	);`
	if _, err = db.Exec(createRunsTableSQL); err != nil {
		db.Close()
		customLog.Warnf("Storage: Failed to create runs table: %v", err)
		return nil, fmt.Errorf("failed to ensure runs table: %w", err)
	}
	customLog.Println("Storage: Runs table ensured.")

	return db, nil
}
