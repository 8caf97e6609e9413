package plugin

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// ErrPluginNotFound is returned when a requested plugin cannot be found.
var ErrPluginNotFound = errors.New("plugin not found")

// Manager discovers plugins under a directory.
type Manager struct {
	pluginDir string
	plugins   map[string]*Plugin
	mu        sync.RWMutex
}

// NewManager creates a new plugin Manager with the given plugin directory.
func NewManager(pluginDir string) *Manager {
	return &Manager{
		pluginDir: pluginDir,
		plugins:   make(map[string]*Plugin),
	}
}

// Discover scans each subdirectory of the plugin directory for a plugin.json
// manifest. A missing directory yields no plugins. Unreadable manifests are
// skipped.
func (m *Manager) Discover() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.plugins = make(map[string]*Plugin)

	entries, err := os.ReadDir(m.pluginDir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		dir := filepath.Join(m.pluginDir, entry.Name())
		data, err := os.ReadFile(filepath.Join(dir, "plugin.json"))
		if err != nil {
			continue
		}

		var manifest Manifest
		if err := json.Unmarshal(data, &manifest); err != nil {
			slog.Warn("plugin: invalid manifest", "dir", dir, "error", err)
			continue
		}
		if manifest.Name == "" || manifest.Executable == "" {
			slog.Warn("plugin: manifest missing name or executable", "dir", dir)
			continue
		}

		m.plugins[manifest.Name] = &Plugin{
			Manifest:   manifest,
			Path:       dir,
			Executable: filepath.Join(dir, manifest.Executable),
		}
	}

	slog.Debug("plugin: discovered", "dir", m.pluginDir, "count", len(m.plugins))
	return nil
}

// Get returns a plugin by name.
// Returns ErrPluginNotFound if the plugin does not exist.
func (m *Manager) Get(name string) (*Plugin, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	plugin, ok := m.plugins[name]
	if !ok {
		return nil, ErrPluginNotFound
	}
	return plugin, nil
}

// List returns all discovered plugins sorted by name.
func (m *Manager) List() []*Plugin {
	m.mu.RLock()
	defer m.mu.RUnlock()

	plugins := make([]*Plugin, 0, len(m.plugins))
	for _, plugin := range m.plugins {
		plugins = append(plugins, plugin)
	}
	sort.Slice(plugins, func(i, j int) bool {
		return plugins[i].Manifest.Name < plugins[j].Manifest.Name
	})
	return plugins
}

// Resolve looks up the named plugins and checks each accepts feature.
func (m *Manager) Resolve(names []string, feature string) ([]*Plugin, error) {
	out := make([]*Plugin, 0, len(names))
	for _, name := range names {
		p, err := m.Get(name)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		if !p.Manifest.Accepts(feature) {
			return nil, fmt.Errorf("plugin %s does not accept %s batches", name, feature)
		}
		out = append(out, p)
	}
	return out, nil
}

// PluginDir returns the plugin directory path.
func (m *Manager) PluginDir() string {
	return m.pluginDir
}
