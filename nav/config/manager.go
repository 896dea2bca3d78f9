package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/MHV33/gridnav/nav/grid"
	"github.com/MHV33/gridnav/nav/service"
)

var (
	ErrMapNotFound = errors.New("map not found")
	ErrInvalidMap  = errors.New("invalid map")
)

// mapExtensions lists recognized map file extensions in lookup order.
var mapExtensions = []string{".json", ".yaml", ".yml"}

// Manager handles map configuration loading and caching.
type Manager struct {
	mapDir     string
	defaultMap *grid.MapConfig
	maps       map[string]*grid.MapConfig
	mu         sync.RWMutex
}

// NewManager creates a new map configuration manager.
func NewManager(mapDir string) (*Manager, error) {
	if _, err := os.Stat(mapDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("map directory does not exist: %s", mapDir)
	}

	m := &Manager{
		mapDir: mapDir,
		maps:   make(map[string]*grid.MapConfig),
	}

	if err := m.loadDefaultMap(); err != nil {
		return nil, fmt.Errorf("failed to load default map: %w", err)
	}

	return m, nil
}

// LoadMap loads a map configuration by name.
func (m *Manager) LoadMap(name string) (*grid.MapConfig, error) {
	m.mu.RLock()
	if cfg, exists := m.maps[name]; exists {
		m.mu.RUnlock()
		return cfg, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if cfg, exists := m.maps[name]; exists {
		return cfg, nil
	}

	path, err := m.resolve(name)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrMapNotFound
		}
		return nil, fmt.Errorf("failed to read map file: %w", err)
	}

	var cfg grid.MapConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		err = json.Unmarshal(data, &cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse map: %w", err)
	}

	cfg.ApplyDefaults()
	if err := grid.ValidateMapConfig(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMap, err)
	}

	m.maps[name] = &cfg
	return &cfg, nil
}

// resolve returns the file path for a map name, trying each recognized
// extension. Names given with an extension are used as-is.
func (m *Manager) resolve(name string) (string, error) {
	for _, ext := range mapExtensions {
		if strings.HasSuffix(name, ext) {
			return filepath.Join(m.mapDir, name), nil
		}
	}
	for _, ext := range mapExtensions {
		path := filepath.Join(m.mapDir, name+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", ErrMapNotFound
}

// ListMaps returns information about all available maps.
func (m *Manager) ListMaps() ([]*service.MapInfo, error) {
	entries, err := os.ReadDir(m.mapDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read map directory: %w", err)
	}

	var maps []*service.MapInfo

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		recognized := false
		for _, known := range mapExtensions {
			if ext == known {
				recognized = true
				break
			}
		}
		if !recognized {
			continue
		}

		name := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))

		cfg, err := m.LoadMap(name)
		if err != nil {
			// Skip invalid maps
			continue
		}

		maps = append(maps, &service.MapInfo{
			Filename:    entry.Name(),
			MapID:       name,
			Name:        cfg.Name,
			Description: cfg.Description,
			Width:       cfg.Width,
			Height:      cfg.Height,
		})
	}

	return maps, nil
}

// GetDefault returns the default map configuration.
func (m *Manager) GetDefault() *grid.MapConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultMap
}

// SetDefault sets the default map by name.
func (m *Manager) SetDefault(name string) error {
	cfg, err := m.LoadMap(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultMap = cfg
	return nil
}

// RefreshCache drops all cached maps and reloads the default.
func (m *Manager) RefreshCache() error {
	m.mu.Lock()
	m.maps = make(map[string]*grid.MapConfig)
	m.mu.Unlock()

	return m.loadDefaultMap()
}

// loadDefaultMap prefers courtyard, then the first available map, then
// the built-in default.
func (m *Manager) loadDefaultMap() error {
	cfg, err := m.LoadMap("courtyard")
	if err != nil {
		maps, listErr := m.ListMaps()
		if listErr != nil || len(maps) == 0 {
			m.mu.Lock()
			m.defaultMap = grid.DefaultMapConfig()
			m.mu.Unlock()
			return nil
		}

		cfg, err = m.LoadMap(maps[0].MapID)
		if err != nil {
			m.mu.Lock()
			m.defaultMap = grid.DefaultMapConfig()
			m.mu.Unlock()
			return nil
		}
	}

	m.mu.Lock()
	m.defaultMap = cfg
	m.mu.Unlock()
	return nil
}

// SaveMap validates and writes a map configuration to disk as JSON.
func (m *Manager) SaveMap(name string, cfg *grid.MapConfig) error {
	if err := grid.ValidateMapConfig(cfg); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidMap, err)
	}

	filename := name
	if !strings.HasSuffix(filename, ".json") {
		filename = name + ".json"
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal map: %w", err)
	}

	if err := os.WriteFile(filepath.Join(m.mapDir, filename), data, 0644); err != nil {
		return fmt.Errorf("failed to write map file: %w", err)
	}

	m.mu.Lock()
	m.maps[name] = cfg
	m.mu.Unlock()

	return nil
}
