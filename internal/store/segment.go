package store

import (
	"database/sql"
	"time"
)

// Segment represents a maximal run of consecutive sampled frames judged to
// show the same subtitle instance.
type Segment struct {
	ID             string
	RunID          string
	StartMs        int64
	EndMs          int64
	StartFrame     int64
	EndFrame       int64
	SampleCount    int64
	MeanSimilarity float64
	CreatedAt      time.Time
}

// SegmentRepository provides CRUD operations for segments.
type SegmentRepository struct {
	db *sql.DB
}

// Segments returns the segment repository for this store.
func (s *Store) Segments() *SegmentRepository {
	return &SegmentRepository{db: s.db}
}

// Create inserts a new segment.
func (r *SegmentRepository) Create(seg *Segment) error {
	seg.CreatedAt = time.Now()

	_, err := r.db.Exec(
		`INSERT INTO segments (id, run_id, start_ms, end_ms, start_frame, end_frame, sample_count, mean_similarity, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		seg.ID, seg.RunID, seg.StartMs, seg.EndMs, seg.StartFrame, seg.EndFrame,
		seg.SampleCount, seg.MeanSimilarity, seg.CreatedAt,
	)
	return err
}

// ListByRun retrieves all segments of a run in temporal order.
func (r *SegmentRepository) ListByRun(runID string) ([]*Segment, error) {
	rows, err := r.db.Query(
		`SELECT id, run_id, start_ms, end_ms, start_frame, end_frame, sample_count, mean_similarity, created_at
		 FROM segments WHERE run_id = ? ORDER BY start_ms ASC`,
		runID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var segments []*Segment
	for rows.Next() {
		seg := &Segment{}
		if err := rows.Scan(&seg.ID, &seg.RunID, &seg.StartMs, &seg.EndMs,
			&seg.StartFrame, &seg.EndFrame, &seg.SampleCount, &seg.MeanSimilarity,
			&seg.CreatedAt); err != nil {
			return nil, err
		}
		segments = append(segments, seg)
	}
	return segments, rows.Err()
}

// CountByRun returns the number of segments recorded for a run.
func (r *SegmentRepository) CountByRun(runID string) (int64, error) {
	var n int64
	err := r.db.QueryRow(`SELECT COUNT(*) FROM segments WHERE run_id = ?`, runID).Scan(&n)
	return n, err
}
