// Package main provides a consumer plugin that appends every flushed batch
// to a JSON Lines file.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Request represents the input from the plugin executor.
type Request struct {
	Action  string          `json:"action"`
	RunID   string          `json:"run_id"`
	Feature string          `json:"feature"`
	Frame   int             `json:"frame"`
	Data    json.RawMessage `json:"data"`
	Config  json.RawMessage `json:"config"`
}

// Response represents the output to the plugin executor.
type Response struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Config selects the output file. Relative paths resolve against the
// plugin directory.
type Config struct {
	Path string `json:"path"`
}

// line is one record of the output file.
type line struct {
	RunID   string          `json:"run_id"`
	Feature string          `json:"feature"`
	Frame   int             `json:"frame"`
	Data    json.RawMessage `json:"data"`
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeResponse(fmt.Errorf("failed to decode request: %w", err))
		return
	}

	if req.Action != "flush" {
		writeResponse(fmt.Errorf("unknown action: %s", req.Action))
		return
	}

	writeResponse(appendBatch(req))
}

func appendBatch(req Request) error {
	cfg := Config{Path: "batches.jsonl"}
	if len(req.Config) > 0 {
		if err := json.Unmarshal(req.Config, &cfg); err != nil {
			return fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return err
	}

	f, err := os.OpenFile(cfg.Path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	return json.NewEncoder(f).Encode(line{
		RunID:   req.RunID,
		Feature: req.Feature,
		Frame:   req.Frame,
		Data:    req.Data,
	})
}

// writeResponse writes the result to stdout.
func writeResponse(err error) {
	resp := Response{Success: err == nil}
	if err != nil {
		resp.Error = err.Error()
	}
	json.NewEncoder(os.Stdout).Encode(resp)
}
