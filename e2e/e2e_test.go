package e2e

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/ayusman/mocap-replay/internal/app"
	"github.com/ayusman/mocap-replay/internal/chain"
	"github.com/ayusman/mocap-replay/internal/plugin"
	"github.com/ayusman/mocap-replay/internal/server"
	"github.com/ayusman/mocap-replay/internal/store"
	"github.com/ayusman/mocap-replay/testdata"
)

func TestE2E_SessionReplay(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	tmpDir := t.TempDir()
	s, err := store.New(filepath.Join(tmpDir, "data.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer s.Close()

	recording, err := testdata.WriteRecording(tmpDir, testdata.Holistic)
	if err != nil {
		t.Fatalf("WriteRecording() error = %v", err)
	}

	hub := server.NewHub()
	ts := httptest.NewServer(server.New(server.Config{Store: s, Hub: hub}))
	defer ts.Close()
	client := ts.Client()

	recorder := s.NewRecorder("")
	var runs []string
	cfg := app.Config{
		RecordingPath: recording,
		Feature:       "HOLISTIC",
		BatchInterval: 3,
		Consumers:     []chain.Stage{recorder, hub},
		OnStart: func(sum app.Summary) {
			s.Runs().Create(&store.Run{ID: sum.RunID, Recording: sum.Recording, Feature: sum.Feature, BatchInterval: sum.BatchInterval})
			recorder.SetRunID(sum.RunID)
			hub.SetRunID(sum.RunID)
			runs = append(runs, sum.RunID)
		},
		OnTerminate: func(sum app.Summary) {
			s.Runs().Finish(sum.RunID, store.RunResult{
				State:   sum.State.String(),
				Reason:  sum.Reason.String(),
				Frames:  sum.Frames,
				Flushes: sum.Flushes,
			})
		},
	}
	session := app.NewSession(cfg, time.Millisecond)

	t.Run("ReplayToExhaustion", func(t *testing.T) {
		active, err := session.Toggle(context.Background())
		if err != nil {
			t.Fatalf("Toggle() error = %v", err)
		}
		if !active {
			t.Fatal("expected an active run")
		}

		session.Wait()

		last := session.Last()
		if last.State != app.StateExhausted || last.Flushes != 1 {
			t.Errorf("unexpected summary: %+v", last)
		}
	})

	t.Run("StoppedRun", func(t *testing.T) {
		slow := app.NewSession(cfg, time.Hour)
		if _, err := slow.Toggle(context.Background()); err != nil {
			t.Fatalf("Toggle() error = %v", err)
		}

		active, err := slow.Toggle(context.Background())
		if err != nil || active {
			t.Fatalf("second Toggle() = %v, %v; want stopped", active, err)
		}
		slow.Wait()

		if slow.Last().Reason != app.ReasonStopped {
			t.Errorf("reason = %s, want stopped", slow.Last().Reason)
		}
	})

	t.Run("HistoryAPI", func(t *testing.T) {
		resp, err := client.Get(ts.URL + "/api/runs")
		if err != nil {
			t.Fatalf("GET /api/runs error = %v", err)
		}
		var listed struct {
			Runs []struct {
				ID      string `json:"id"`
				State   string `json:"state"`
				Reason  string `json:"reason"`
				Flushes int    `json:"flushes"`
			} `json:"runs"`
		}
		json.NewDecoder(resp.Body).Decode(&listed)
		resp.Body.Close()

		if len(listed.Runs) != 2 {
			t.Fatalf("len(runs) = %d, want 2", len(listed.Runs))
		}

		states := map[string]string{}
		for _, r := range listed.Runs {
			states[r.ID] = r.State + "/" + r.Reason
		}
		if states[runs[0]] != "exhausted/exhausted" {
			t.Errorf("first run = %s", states[runs[0]])
		}
		if states[runs[1]] != "cancelled/stopped" {
			t.Errorf("second run = %s", states[runs[1]])
		}

		resp, _ = client.Get(ts.URL + "/api/runs/" + runs[0] + "/batches")
		var batches struct {
			Batches []struct {
				Frame int             `json:"frame"`
				Data  json.RawMessage `json:"data"`
			} `json:"batches"`
		}
		json.NewDecoder(resp.Body).Decode(&batches)
		resp.Body.Close()

		if len(batches.Batches) != 1 || batches.Batches[0].Frame != 3 {
			t.Fatalf("unexpected batches: %+v", batches.Batches)
		}

		// Holistic layout: hands, empty face slot, pose
		var layout []json.RawMessage
		if err := json.Unmarshal(batches.Batches[0].Data, &layout); err != nil {
			t.Fatalf("batch data is not an array: %v", err)
		}
		if len(layout) != 3 || string(layout[1]) != "[]" {
			t.Errorf("unexpected holistic layout: %s", batches.Batches[0].Data)
		}
	})

	t.Run("APIStillWorks", func(t *testing.T) {
		resp, _ := client.Get(ts.URL + "/api/health")
		if resp.StatusCode != http.StatusOK {
			t.Errorf("health check failed after replay")
		}
		resp.Body.Close()
	})
}

func TestE2E_PluginConsumer(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}
	if runtime.GOOS == "windows" {
		t.Skip("shell plugins need a POSIX shell")
	}

	tmpDir := t.TempDir()
	recording, err := testdata.WriteRecording(tmpDir, testdata.HandsTwo)
	if err != nil {
		t.Fatalf("WriteRecording() error = %v", err)
	}

	// A plugin that appends each request to a file
	pluginDir := filepath.Join(tmpDir, "plugins", "capture")
	if err := os.MkdirAll(pluginDir, 0o755); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(tmpDir, "received.jsonl")
	script := "#!/bin/sh\ncat >> '" + out + "'\necho >> '" + out + "'\necho '{\"success\":true}'\n"
	if err := os.WriteFile(filepath.Join(pluginDir, "run.sh"), []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	manifest := `{"name": "capture", "executable": "run.sh", "features": ["HAND"]}`
	if err := os.WriteFile(filepath.Join(pluginDir, "plugin.json"), []byte(manifest), 0o644); err != nil {
		t.Fatal(err)
	}

	mgr := plugin.NewManager(filepath.Join(tmpDir, "plugins"))
	if err := mgr.Discover(); err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	plugins, err := mgr.Resolve([]string{"capture"}, "HAND")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	sink := plugin.NewSink(plugin.NewExecutor(5*time.Second), plugins[0])

	c := app.New(app.Config{
		RecordingPath: recording,
		Feature:       "HAND",
		Consumers:     []chain.Stage{sink},
		OnStart:       func(sum app.Summary) { sink.SetRun(sum.RunID, sum.Feature) },
	})
	if err := c.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	app.Drive(context.Background(), c, time.Millisecond, nil)

	if sink.Failed() != 0 {
		t.Fatalf("plugin rejected %d batches", sink.Failed())
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("plugin output missing: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 plugin calls, got %d", len(lines))
	}

	var req plugin.Request
	if err := json.Unmarshal([]byte(lines[1]), &req); err != nil {
		t.Fatalf("invalid request: %v", err)
	}
	if req.Frame != 2 || req.RunID != c.RunID() || req.Feature != "HAND" {
		t.Errorf("unexpected request: %+v", req)
	}
}
