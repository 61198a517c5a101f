package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Runs table - one row per extraction pass over a video
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			video_path TEXT NOT NULL,
			detector TEXT NOT NULL,
			backend TEXT NOT NULL,
			samples_per_second INTEGER NOT NULL,
			started_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			finished_at DATETIME,
			error TEXT
		)`,

		// Segments table - maximal runs of frames showing the same subtitle
		`CREATE TABLE IF NOT EXISTS segments (
			id TEXT PRIMARY KEY,
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			start_ms INTEGER NOT NULL,
			end_ms INTEGER NOT NULL,
			start_frame INTEGER NOT NULL,
			end_frame INTEGER NOT NULL,
			sample_count INTEGER NOT NULL DEFAULT 1,
			mean_similarity REAL NOT NULL DEFAULT 1.0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Indexes for better query performance
		`CREATE INDEX IF NOT EXISTS idx_segments_run_id ON segments(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_segments_start_ms ON segments(start_ms)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
