package store

import (
	"database/sql"
	"errors"
	"time"
)

// Run represents one extraction pass over a video.
type Run struct {
	ID               string
	VideoPath        string
	Detector         string
	Backend          string
	SamplesPerSecond int
	StartedAt        time.Time
	FinishedAt       *time.Time
	Error            string
}

// RunRepository provides CRUD operations for runs.
type RunRepository struct {
	db *sql.DB
}

// Runs returns the run repository for this store.
func (s *Store) Runs() *RunRepository {
	return &RunRepository{db: s.db}
}

// Create inserts a new run.
func (r *RunRepository) Create(run *Run) error {
	run.StartedAt = time.Now()

	_, err := r.db.Exec(
		`INSERT INTO runs (id, video_path, detector, backend, samples_per_second, started_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.VideoPath, run.Detector, run.Backend, run.SamplesPerSecond, run.StartedAt,
	)
	return err
}

// Finish marks a run complete, recording the terminal error message if any.
func (r *RunRepository) Finish(id string, runErr error) error {
	now := time.Now()
	message := ""
	if runErr != nil {
		message = runErr.Error()
	}

	res, err := r.db.Exec(
		`UPDATE runs SET finished_at = ?, error = ? WHERE id = ?`,
		now, message, id,
	)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID retrieves a run by its ID.
func (r *RunRepository) GetByID(id string) (*Run, error) {
	run := &Run{}
	var finishedAt sql.NullTime
	var errMsg sql.NullString

	err := r.db.QueryRow(
		`SELECT id, video_path, detector, backend, samples_per_second, started_at, finished_at, error
		 FROM runs WHERE id = ?`,
		id,
	).Scan(&run.ID, &run.VideoPath, &run.Detector, &run.Backend, &run.SamplesPerSecond,
		&run.StartedAt, &finishedAt, &errMsg)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if finishedAt.Valid {
		run.FinishedAt = &finishedAt.Time
	}
	run.Error = errMsg.String
	return run, nil
}

// List retrieves all runs, most recent first.
func (r *RunRepository) List() ([]*Run, error) {
	rows, err := r.db.Query(
		`SELECT id, video_path, detector, backend, samples_per_second, started_at, finished_at, error
		 FROM runs ORDER BY started_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run := &Run{}
		var finishedAt sql.NullTime
		var errMsg sql.NullString
		if err := rows.Scan(&run.ID, &run.VideoPath, &run.Detector, &run.Backend,
			&run.SamplesPerSecond, &run.StartedAt, &finishedAt, &errMsg); err != nil {
			return nil, err
		}
		if finishedAt.Valid {
			run.FinishedAt = &finishedAt.Time
		}
		run.Error = errMsg.String
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
