package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestNewStore_CreatesDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	if _, err := os.Stat(dbPath); !os.IsNotExist(err) {
		t.Fatal("database file should not exist before creating store")
	}

	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Fatal("database file should exist after creating store")
	}
}

func TestRuns_CreateAndGet(t *testing.T) {
	s := newTestStore(t)

	run := &Run{
		ID:               uuid.NewString(),
		VideoPath:        "/videos/episode-01.mkv",
		Detector:         "heuristic",
		Backend:          "bitset-cover",
		SamplesPerSecond: 5,
	}
	if err := s.Runs().Create(run); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := s.Runs().GetByID(run.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.VideoPath != run.VideoPath || got.Backend != run.Backend {
		t.Errorf("GetByID() = %+v, want %+v", got, run)
	}
	if got.FinishedAt != nil {
		t.Error("a fresh run should not be finished")
	}
}

func TestRuns_Finish(t *testing.T) {
	s := newTestStore(t)

	run := &Run{ID: uuid.NewString(), VideoPath: "v.mkv", Detector: "heuristic", Backend: "sparse-chamfer", SamplesPerSecond: 2}
	if err := s.Runs().Create(run); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := s.Runs().Finish(run.ID, errors.New("decoder failed")); err != nil {
		t.Fatalf("Finish() error = %v", err)
	}

	got, err := s.Runs().GetByID(run.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.FinishedAt == nil {
		t.Error("finished run should carry a finish time")
	}
	if got.Error != "decoder failed" {
		t.Errorf("Error = %q, want the terminal message", got.Error)
	}
}

func TestRuns_Finish_NotFound(t *testing.T) {
	s := newTestStore(t)

	err := s.Runs().Finish(uuid.NewString(), nil)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Finish() error = %v, want ErrNotFound", err)
	}
}

func TestSegments_CreateAndList(t *testing.T) {
	s := newTestStore(t)

	run := &Run{ID: uuid.NewString(), VideoPath: "v.mkv", Detector: "heuristic", Backend: "bitset-cover", SamplesPerSecond: 5}
	if err := s.Runs().Create(run); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// Insert out of temporal order; List must return them sorted.
	segments := []*Segment{
		{ID: uuid.NewString(), RunID: run.ID, StartMs: 5000, EndMs: 7000, StartFrame: 125, EndFrame: 175, SampleCount: 10, MeanSimilarity: 0.98},
		{ID: uuid.NewString(), RunID: run.ID, StartMs: 1000, EndMs: 3000, StartFrame: 25, EndFrame: 75, SampleCount: 11, MeanSimilarity: 0.99},
	}
	for _, seg := range segments {
		if err := s.Segments().Create(seg); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	got, err := s.Segments().ListByRun(run.ID)
	if err != nil {
		t.Fatalf("ListByRun() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].StartMs != 1000 || got[1].StartMs != 5000 {
		t.Errorf("segments not in temporal order: %d, %d", got[0].StartMs, got[1].StartMs)
	}

	n, err := s.Segments().CountByRun(run.ID)
	if err != nil {
		t.Fatalf("CountByRun() error = %v", err)
	}
	if n != 2 {
		t.Errorf("CountByRun() = %d, want 2", n)
	}
}

func TestSegments_ForeignKeyEnforced(t *testing.T) {
	s := newTestStore(t)

	seg := &Segment{ID: uuid.NewString(), RunID: "no-such-run", StartMs: 0, EndMs: 1000}
	if err := s.Segments().Create(seg); err == nil {
		t.Error("Create() with an unknown run should violate the foreign key")
	}
}
