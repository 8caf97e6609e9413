// Package api provides HTTP API handlers for stored replay runs.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/ayusman/mocap-replay/internal/store"
)

// RunHandler handles HTTP requests for run resources.
type RunHandler struct {
	store *store.Store
}

// NewRunHandler creates a new RunHandler with the given store.
func NewRunHandler(s *store.Store) *RunHandler {
	return &RunHandler{store: s}
}

// ServeHTTP implements the http.Handler interface and routes requests to appropriate methods.
func (h *RunHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Expected paths: /api/runs, /api/runs/{id} or /api/runs/{id}/batches
	path := strings.TrimPrefix(r.URL.Path, "/api/runs")
	path = strings.Trim(path, "/")

	if path == "" {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.list(w, r)
		return
	}

	if id, ok := strings.CutSuffix(path, "/batches"); ok {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.batches(w, r, id)
		return
	}

	if strings.Contains(path, "/") {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.get(w, r, path)
	case http.MethodDelete:
		h.delete(w, r, path)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type runResponse struct {
	ID            string `json:"id"`
	Recording     string `json:"recording"`
	Feature       string `json:"feature"`
	BatchInterval int    `json:"batch_interval"`
	State         string `json:"state"`
	Reason        string `json:"reason,omitempty"`
	Frames        int    `json:"frames"`
	Flushes       int    `json:"flushes"`
	Incomplete    int    `json:"incomplete"`
	StartedAt     string `json:"started_at"`
	FinishedAt    string `json:"finished_at,omitempty"`
}

type listRunsResponse struct {
	Runs []runResponse `json:"runs"`
}

type listBatchesResponse struct {
	RunID   string        `json:"run_id"`
	Batches []store.Batch `json:"batches"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// toResponse converts a store.Run to a runResponse.
func toResponse(r *store.Run) runResponse {
	resp := runResponse{
		ID:            r.ID,
		Recording:     r.Recording,
		Feature:       r.Feature,
		BatchInterval: r.BatchInterval,
		State:         r.State,
		Reason:        r.Reason,
		Frames:        r.Frames,
		Flushes:       r.Flushes,
		Incomplete:    r.Incomplete,
		StartedAt:     r.StartedAt.Format(time.RFC3339),
	}
	if r.FinishedAt != nil {
		resp.FinishedAt = r.FinishedAt.Format(time.RFC3339)
	}
	return resp
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// list handles GET /api/runs and returns all runs.
func (h *RunHandler) list(w http.ResponseWriter, r *http.Request) {
	runs, err := h.store.Runs().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list runs")
		return
	}

	response := listRunsResponse{
		Runs: make([]runResponse, 0, len(runs)),
	}
	for _, run := range runs {
		response.Runs = append(response.Runs, toResponse(run))
	}

	writeJSON(w, http.StatusOK, response)
}

// get handles GET /api/runs/{id} and returns a single run.
func (h *RunHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	run, err := h.store.Runs().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Run not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get run")
		return
	}

	writeJSON(w, http.StatusOK, toResponse(run))
}

// batches handles GET /api/runs/{id}/batches and returns the flushed buffers of a run.
func (h *RunHandler) batches(w http.ResponseWriter, r *http.Request, id string) {
	if _, err := h.store.Runs().GetByID(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Run not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get run")
		return
	}

	batches, err := h.store.Batches().ListByRun(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list batches")
		return
	}
	if batches == nil {
		batches = []store.Batch{}
	}

	writeJSON(w, http.StatusOK, listBatchesResponse{RunID: id, Batches: batches})
}

// delete handles DELETE /api/runs/{id} and removes a run with its batches.
func (h *RunHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	err := h.store.Runs().Delete(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Run not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete run")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
