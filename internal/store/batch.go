package store

import (
	"database/sql"
	"encoding/json"
	"time"
)

// Batch represents one flushed buffer stored in the database.
type Batch struct {
	ID        int64           `json:"id"`
	RunID     string          `json:"run_id"`
	Frame     int             `json:"frame"`
	Data      json.RawMessage `json:"data"`
	CreatedAt time.Time       `json:"created_at"`
}

// BatchRepository provides operations for flushed batches.
type BatchRepository struct {
	db *sql.DB
}

// Batches returns the batch repository for this store.
func (s *Store) Batches() *BatchRepository {
	return &BatchRepository{db: s.db}
}

// Create inserts a batch for a run and returns its ID.
func (r *BatchRepository) Create(runID string, frame int, data json.RawMessage) (int64, error) {
	result, err := r.db.Exec(
		`INSERT INTO batches (run_id, frame, data, created_at) VALUES (?, ?, ?, ?)`,
		runID, frame, string(data), time.Now(),
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// ListByRun retrieves all batches for a run in frame order.
func (r *BatchRepository) ListByRun(runID string) ([]Batch, error) {
	rows, err := r.db.Query(
		`SELECT id, run_id, frame, data, created_at
		 FROM batches
		 WHERE run_id = ?
		 ORDER BY frame`,
		runID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var batches []Batch
	for rows.Next() {
		var b Batch
		var data string
		if err := rows.Scan(&b.ID, &b.RunID, &b.Frame, &data, &b.CreatedAt); err != nil {
			return nil, err
		}
		b.Data = json.RawMessage(data)
		batches = append(batches, b)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return batches, nil
}

// CountByRun returns the number of batches stored for a run.
func (r *BatchRepository) CountByRun(runID string) (int, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM batches WHERE run_id = ?`, runID).Scan(&n)
	return n, err
}
