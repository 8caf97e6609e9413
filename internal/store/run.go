package store

import (
	"database/sql"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// Run represents one replay run stored in the database.
type Run struct {
	ID            string
	Recording     string
	Feature       string
	BatchInterval int
	State         string
	Reason        string
	Frames        int
	Flushes       int
	Incomplete    int
	StartedAt     time.Time
	FinishedAt    *time.Time
}

// RunResult holds the counters recorded when a run ends.
type RunResult struct {
	State      string
	Reason     string
	Frames     int
	Flushes    int
	Incomplete int
}

// RunRepository provides CRUD operations for runs.
type RunRepository struct {
	db *sql.DB
}

// Runs returns the run repository for this store.
func (s *Store) Runs() *RunRepository {
	return &RunRepository{db: s.db}
}

const runColumns = `id, recording, feature, batch_interval, state, reason,
	frames, flushes, incomplete, started_at, finished_at`

// Create inserts a new run into the database.
func (r *RunRepository) Create(run *Run) error {
	run.StartedAt = time.Now()
	if run.State == "" {
		run.State = "running"
	}

	_, err := r.db.Exec(
		`INSERT INTO runs (id, recording, feature, batch_interval, state, started_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.Recording, run.Feature, run.BatchInterval, run.State, run.StartedAt,
	)
	return err
}

// Finish records the final state and counters of a run.
func (r *RunRepository) Finish(id string, res RunResult) error {
	result, err := r.db.Exec(
		`UPDATE runs SET state = ?, reason = ?, frames = ?, flushes = ?, incomplete = ?, finished_at = ?
		 WHERE id = ?`,
		res.State, res.Reason, res.Frames, res.Flushes, res.Incomplete, time.Now(), id,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// GetByID retrieves a run by its ID.
func (r *RunRepository) GetByID(id string) (*Run, error) {
	row := r.db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE id = ?`, id)

	run, err := scanRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return run, nil
}

// List retrieves all runs, most recent first.
func (r *RunRepository) List() ([]*Run, error) {
	rows, err := r.db.Query(`SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return runs, nil
}

// Delete removes a run and its batches.
func (r *RunRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*Run, error) {
	run := &Run{}
	var finished sql.NullTime

	err := s.Scan(&run.ID, &run.Recording, &run.Feature, &run.BatchInterval, &run.State, &run.Reason,
		&run.Frames, &run.Flushes, &run.Incomplete, &run.StartedAt, &finished)
	if err != nil {
		return nil, err
	}

	if finished.Valid {
		t := finished.Time
		run.FinishedAt = &t
	}
	return run, nil
}
