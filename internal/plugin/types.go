// Package plugin runs external consumer programs on flushed batches.
// A plugin lives in its own directory with a plugin.json manifest and an
// executable that reads one Request from stdin and writes one Response.
package plugin

import (
	"encoding/json"
	"slices"
	"strings"
)

// ActionFlush is the action sent with every flushed batch.
const ActionFlush = "flush"

// Manifest describes a plugin's metadata and capabilities.
type Manifest struct {
	Name        string          `json:"name"`
	Version     string          `json:"version"`
	Description string          `json:"description"`
	Executable  string          `json:"executable"`
	Features    []string        `json:"features,omitempty"` // accepted detection types, empty for all
	Config      json.RawMessage `json:"config,omitempty"`   // passed through on every request
}

// Accepts reports whether the plugin consumes batches of the given feature.
func (m Manifest) Accepts(feature string) bool {
	if len(m.Features) == 0 {
		return true
	}
	return slices.ContainsFunc(m.Features, func(f string) bool {
		return strings.EqualFold(f, feature)
	})
}

// Request represents a request sent to a plugin for execution.
type Request struct {
	Action  string          `json:"action"`
	RunID   string          `json:"run_id"`
	Feature string          `json:"feature"`
	Frame   int             `json:"frame"`
	Data    json.RawMessage `json:"data"`
	Config  json.RawMessage `json:"config,omitempty"`
}

// Response represents the response from a plugin execution.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Plugin represents a discovered plugin with its manifest and location.
type Plugin struct {
	Manifest   Manifest
	Path       string
	Executable string
}
