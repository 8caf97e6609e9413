package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/ayusman/mocap-replay/internal/store"
)

// newTestStore creates a new Store with a temporary database for testing.
func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})

	return s
}

func seedRun(t *testing.T, s *store.Store, id string) {
	t.Helper()

	run := &store.Run{ID: id, Recording: "take.json", Feature: "HAND", BatchInterval: 2}
	if err := s.Runs().Create(run); err != nil {
		t.Fatalf("failed to create run: %v", err)
	}
	if _, err := s.Batches().Create(id, 2, json.RawMessage(`[[[[0,[1,1,1]]]],[[]]]`)); err != nil {
		t.Fatalf("failed to create batch: %v", err)
	}
	err := s.Runs().Finish(id, store.RunResult{State: "exhausted", Reason: "exhausted", Frames: 3, Flushes: 1})
	if err != nil {
		t.Fatalf("failed to finish run: %v", err)
	}
}

func TestRunHandler_List(t *testing.T) {
	s := newTestStore(t)
	seedRun(t, s, "run-1")
	handler := NewRunHandler(s)

	req := httptest.NewRequest(http.MethodGet, "/api/runs", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var response listRunsResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if len(response.Runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(response.Runs))
	}

	run := response.Runs[0]
	if run.ID != "run-1" || run.Feature != "HAND" || run.State != "exhausted" {
		t.Errorf("unexpected run: %+v", run)
	}
	if run.Flushes != 1 || run.Frames != 3 {
		t.Errorf("unexpected counters: frames=%d flushes=%d", run.Frames, run.Flushes)
	}
	if run.FinishedAt == "" {
		t.Error("expected finished_at to be set")
	}
}

func TestRunHandler_ListEmpty(t *testing.T) {
	handler := NewRunHandler(newTestStore(t))

	req := httptest.NewRequest(http.MethodGet, "/api/runs", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if body := rec.Body.String(); body != "{\"runs\":[]}\n" {
		t.Errorf("unexpected body %q", body)
	}
}

func TestRunHandler_Get(t *testing.T) {
	s := newTestStore(t)
	seedRun(t, s, "run-1")
	handler := NewRunHandler(s)

	t.Run("existing run", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/runs/run-1", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
		}

		var run runResponse
		if err := json.NewDecoder(rec.Body).Decode(&run); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if run.BatchInterval != 2 {
			t.Errorf("expected batch interval 2, got %d", run.BatchInterval)
		}
	})

	t.Run("missing run", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/runs/nope", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
		}
	})
}

func TestRunHandler_Batches(t *testing.T) {
	s := newTestStore(t)
	seedRun(t, s, "run-1")
	handler := NewRunHandler(s)

	req := httptest.NewRequest(http.MethodGet, "/api/runs/run-1/batches", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var response listBatchesResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if len(response.Batches) != 1 {
		t.Fatalf("expected 1 batch, got %d", len(response.Batches))
	}
	if response.Batches[0].Frame != 2 {
		t.Errorf("expected frame 2, got %d", response.Batches[0].Frame)
	}
	if string(response.Batches[0].Data) != `[[[[0,[1,1,1]]]],[[]]]` {
		t.Errorf("unexpected data %s", response.Batches[0].Data)
	}

	t.Run("unknown run", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/runs/nope/batches", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
		}
	})
}

func TestRunHandler_Delete(t *testing.T) {
	s := newTestStore(t)
	seedRun(t, s, "run-1")
	handler := NewRunHandler(s)

	req := httptest.NewRequest(http.MethodDelete, "/api/runs/run-1", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status %d, got %d", http.StatusNoContent, rec.Code)
	}

	if _, err := s.Runs().GetByID("run-1"); err != store.ErrNotFound {
		t.Errorf("expected run to be deleted, got %v", err)
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/runs/run-1", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete: expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestRunHandler_MethodNotAllowed(t *testing.T) {
	handler := NewRunHandler(newTestStore(t))

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/runs"},
		{http.MethodPut, "/api/runs/run-1"},
		{http.MethodDelete, "/api/runs/run-1/batches"},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, tt.path, nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s %s: expected status %d, got %d", tt.method, tt.path, http.StatusMethodNotAllowed, rec.Code)
		}
	}
}
