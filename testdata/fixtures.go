// Package testdata provides landmark recordings for tests.
package testdata

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
)

//go:embed recordings/*
var recordingsFS embed.FS

// Recording names.
const (
	PoseSingle = "pose_single.json"
	HandsTwo   = "hands_two.json"
	PoseGap    = "pose_gap.json"
	Holistic   = "holistic.json"
)

// LoadRecording returns the raw JSON of a recording by name.
func LoadRecording(name string) ([]byte, error) {
	data, err := recordingsFS.ReadFile("recordings/" + name)
	if err != nil {
		return nil, fmt.Errorf("load recording %s: %w", name, err)
	}
	return data, nil
}

// WriteRecording copies an embedded recording into dir and returns its path.
func WriteRecording(dir, name string) (string, error) {
	data, err := LoadRecording(name)
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write recording %s: %w", name, err)
	}
	return path, nil
}
