// Package api provides HTTP API handlers for the extraction run history.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/weidix/subtitle-fast-sub001/internal/store"
)

// RunHandler handles HTTP requests for run and segment resources.
type RunHandler struct {
	store *store.Store
}

// NewRunHandler creates a new RunHandler with the given store.
func NewRunHandler(s *store.Store) *RunHandler {
	return &RunHandler{store: s}
}

// ServeHTTP implements the http.Handler interface and routes requests to
// the appropriate methods.
func (h *RunHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Expected paths: /api/runs, /api/runs/{id}, /api/runs/{id}/segments
	path := strings.TrimPrefix(r.URL.Path, "/api/runs")
	path = strings.TrimPrefix(path, "/")

	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if path == "" {
		h.list(w, r)
		return
	}

	if rest, ok := strings.CutSuffix(path, "/segments"); ok {
		h.segments(w, r, rest)
		return
	}

	h.get(w, r, path)
}

type runResponse struct {
	ID               string `json:"id"`
	VideoPath        string `json:"video_path"`
	Detector         string `json:"detector"`
	Backend          string `json:"backend"`
	SamplesPerSecond int    `json:"samples_per_second"`
	StartedAt        string `json:"started_at"`
	FinishedAt       string `json:"finished_at,omitempty"`
	Error            string `json:"error,omitempty"`
}

type segmentResponse struct {
	ID             string  `json:"id"`
	StartMs        int64   `json:"start_ms"`
	EndMs          int64   `json:"end_ms"`
	StartFrame     int64   `json:"start_frame"`
	EndFrame       int64   `json:"end_frame"`
	SampleCount    int64   `json:"sample_count"`
	MeanSimilarity float64 `json:"mean_similarity"`
}

func toRunResponse(run *store.Run) runResponse {
	resp := runResponse{
		ID:               run.ID,
		VideoPath:        run.VideoPath,
		Detector:         run.Detector,
		Backend:          run.Backend,
		SamplesPerSecond: run.SamplesPerSecond,
		StartedAt:        run.StartedAt.Format("2006-01-02T15:04:05Z07:00"),
		Error:            run.Error,
	}
	if run.FinishedAt != nil {
		resp.FinishedAt = run.FinishedAt.Format("2006-01-02T15:04:05Z07:00")
	}
	return resp
}

func (h *RunHandler) list(w http.ResponseWriter, _ *http.Request) {
	runs, err := h.store.Runs().List()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	resp := make([]runResponse, 0, len(runs))
	for _, run := range runs {
		resp = append(resp, toRunResponse(run))
	}
	writeJSON(w, resp)
}

func (h *RunHandler) get(w http.ResponseWriter, _ *http.Request, id string) {
	run, err := h.store.Runs().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "Run not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, toRunResponse(run))
}

func (h *RunHandler) segments(w http.ResponseWriter, _ *http.Request, id string) {
	if _, err := h.store.Runs().GetByID(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "Run not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	segments, err := h.store.Segments().ListByRun(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	resp := make([]segmentResponse, 0, len(segments))
	for _, seg := range segments {
		resp = append(resp, segmentResponse{
			ID:             seg.ID,
			StartMs:        seg.StartMs,
			EndMs:          seg.EndMs,
			StartFrame:     seg.StartFrame,
			EndFrame:       seg.EndFrame,
			SampleCount:    seg.SampleCount,
			MeanSimilarity: seg.MeanSimilarity,
		})
	}
	writeJSON(w, resp)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}
