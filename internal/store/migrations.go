package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Runs table - one row per replay run
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			recording TEXT NOT NULL,
			feature TEXT NOT NULL CHECK(feature IN ('HAND', 'POSE', 'FACE', 'HOLISTIC')),
			batch_interval INTEGER NOT NULL DEFAULT 1,
			state TEXT NOT NULL DEFAULT 'running',
			reason TEXT NOT NULL DEFAULT '',
			frames INTEGER NOT NULL DEFAULT 0,
			flushes INTEGER NOT NULL DEFAULT 0,
			incomplete INTEGER NOT NULL DEFAULT 0,
			started_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			finished_at DATETIME
		)`,

		// Batches table - smoothed buffers handed to consumers at each flush
		`CREATE TABLE IF NOT EXISTS batches (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			frame INTEGER NOT NULL,
			data TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Indexes for better query performance
		`CREATE INDEX IF NOT EXISTS idx_batches_run_id ON batches(run_id)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
