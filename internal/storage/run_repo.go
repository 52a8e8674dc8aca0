// internal/storage/run_repo.go
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/Annany2002/nebula-seeder/internal/domain"
)

// Specific errors for run ledger operations
var (
	ErrRunNotFound = errors.New("run not found")
	ErrRunExists   = errors.New("run id already exists")
)

// DefaultRunListLimit caps ListRuns when no limit is given.
const DefaultRunListLimit = 50

// RunRepo records run outcomes in the ledger database.
type RunRepo struct {
	DB *sql.DB
}

// NewRunRepo creates a repository over an open ledger pool.
func NewRunRepo(db *sql.DB) *RunRepo {
	return &RunRepo{DB: db}
}

// CreateRun inserts a run in its initial state.
func (r *RunRepo) CreateRun(ctx context.Context, run domain.Run) error {
	sqlStatement := `INSERT INTO runs (run_id, collection_name, logical_name, row_count, state, started_at) VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.DB.ExecContext(ctx, sqlStatement, run.RunID, run.CollectionName, run.LogicalName, run.RowCount, run.State, run.StartedAt.UTC())
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
			return ErrRunExists
		}
		customLog.Warnf("Storage: Failed to insert run %s: %v", run.RunID, err)
		return fmt.Errorf("database error during run creation: %w", err)
	}
	return nil
}

// FinishRun stores the terminal state of a run.
func (r *RunRepo) FinishRun(ctx context.Context, runID, state string, statusCode int, runErr string, finishedAt time.Time) error {
	sqlStatement := `UPDATE runs SET state = ?, status_code = ?, error = ?, finished_at = ? WHERE run_id = ?`
	result, err := r.DB.ExecContext(ctx, sqlStatement, state, statusCode, runErr, finishedAt.UTC(), runID)
	if err != nil {
		customLog.Warnf("Storage: Failed to finish run %s: %v", runID, err)
		return fmt.Errorf("database error during run update: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to confirm run update: %w", err)
	}
	if rowsAffected == 0 {
		return ErrRunNotFound
	}
	return nil
}

// FindRun retrieves a run by id.
func (r *RunRepo) FindRun(ctx context.Context, runID string) (*domain.Run, error) {
	sqlStatement := `SELECT run_id, collection_name, logical_name, row_count, state, status_code, error, started_at, finished_at FROM runs WHERE run_id = ? LIMIT 1`
	run, err := scanRun(r.DB.QueryRowContext(ctx, sqlStatement, runID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRunNotFound
		}
		customLog.Warnf("Storage: Failed to find run %s: %v", runID, err)
		return nil, fmt.Errorf("database error finding run: %w", err)
	}
	return run, nil
}

// ListRuns returns the most recent runs first. limit <= 0 means DefaultRunListLimit.
func (r *RunRepo) ListRuns(ctx context.Context, limit int) ([]domain.Run, error) {
	if limit <= 0 {
		limit = DefaultRunListLimit
	}
	sqlStatement := `SELECT run_id, collection_name, logical_name, row_count, state, status_code, error, started_at, finished_at FROM runs ORDER BY started_at DESC, run_id LIMIT ?`
	rows, err := r.DB.QueryContext(ctx, sqlStatement, limit)
	if err != nil {
		customLog.Warnf("Storage: Failed to list runs: %v", err)
		return nil, fmt.Errorf("database error listing runs: %w", err)
	}
	defer rows.Close()

	runs := []domain.Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	return runs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*domain.Run, error) {
	var run domain.Run
	var finishedAt sql.NullTime
	if err := row.Scan(&run.RunID, &run.CollectionName, &run.LogicalName, &run.RowCount, &run.State, &run.StatusCode, &run.Error, &run.StartedAt, &finishedAt); err != nil {
		return nil, err
	}
	if finishedAt.Valid {
		t := finishedAt.Time
		run.FinishedAt = &t
	}
	return &run, nil
}
