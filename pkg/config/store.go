package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Store provides keyed access to one layer of configuration.
//
// Keys are dotted paths into nested maps: "browser.headless" reads the
// "headless" entry of the top-level "browser" map.
type Store interface {
	// Load (re)reads the backing data
	Load() error

	// Save persists the data, if the store has a backing file
	Save() error

	// Lookup returns the value stored at a dotted key
	Lookup(key string) (interface{}, bool)

	// Set stores a value at a dotted key, creating intermediate maps
	Set(key string, value interface{}) error

	// GetSection returns a copy of the top-level map named sectionID
	GetSection(sectionID string) (map[string]interface{}, error)

	// SetSection replaces the top-level map named sectionID
	SetSection(sectionID string, data map[string]interface{}) error
}

// tree is the shared in-memory representation behind FileStore and MapStore.
type tree struct {
	data     map[string]interface{}
	mu       sync.RWMutex
	modified bool
}

func (t *tree) Lookup(key string) (interface{}, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return lookup(t.data, key)
}

func (t *tree) Set(key string, value interface{}) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := assign(t.data, key, value); err != nil {
		return err
	}
	t.modified = true
	return nil
}

func (t *tree) GetSection(sectionID string) (map[string]interface{}, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	raw, exists := t.data[sectionID]
	if !exists {
		return make(map[string]interface{}), nil
	}
	section, ok := raw.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("config key %q is a %T, not a section", sectionID, raw)
	}
	return copyMap(section), nil
}

func (t *tree) SetSection(sectionID string, data map[string]interface{}) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.data[sectionID] = copyMap(data)
	t.modified = true
	return nil
}

// IsModified returns true if the store has unsaved changes.
func (t *tree) IsModified() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.modified
}

// FileStore implements Store using a YAML file.
type FileStore struct {
	tree
	path string
}

// NewFileStore creates a store backed by the YAML file at path.
// A missing file yields an empty store; Save creates it.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("config file path is required")
	}

	store := &FileStore{
		tree: tree{data: make(map[string]interface{})},
		path: path,
	}
	if err := store.Load(); err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}
	return store, nil
}

// Load loads the configuration from disk.
func (s *FileStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.data = make(map[string]interface{})
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	data := make(map[string]interface{})
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("failed to decode config file: %w", err)
	}

	s.data = data
	s.modified = false
	return nil
}

// Save writes the configuration to disk atomically.
func (s *FileStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	out, err := yaml.Marshal(s.data)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	tempPath := s.path + ".tmp"
	if err := os.WriteFile(tempPath, out, 0600); err != nil {
		return fmt.Errorf("failed to write temp config file: %w", err)
	}
	if err := os.Rename(tempPath, s.path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	s.modified = false
	return nil
}

// Path returns the file path of the store.
func (s *FileStore) Path() string {
	return s.path
}

// MapStore is an in-memory Store, used to inject settings from code or tests.
type MapStore struct {
	tree
}

// NewMapStore creates a store holding a copy of data. Nested maps may be
// used directly or flattened into dotted keys.
func NewMapStore(data map[string]interface{}) *MapStore {
	s := &MapStore{tree: tree{data: make(map[string]interface{})}}
	for key, value := range data {
		// assign only fails on a scalar/map conflict, which the caller owns
		_ = assign(s.data, key, value)
	}
	return s
}

// Load is a no-op for in-memory stores.
func (s *MapStore) Load() error { return nil }

// Save is a no-op for in-memory stores.
func (s *MapStore) Save() error {
	s.mu.Lock()
	s.modified = false
	s.mu.Unlock()
	return nil
}

func lookup(data map[string]interface{}, key string) (interface{}, bool) {
	parts := strings.Split(key, ".")
	var current interface{} = data
	for _, part := range parts {
		m, ok := current.(map[string]interface{})
		if !ok {
			return nil, false
		}
		current, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

func assign(data map[string]interface{}, key string, value interface{}) error {
	if key == "" {
		return fmt.Errorf("config key cannot be empty")
	}

	parts := strings.Split(key, ".")
	current := data
	for _, part := range parts[:len(parts)-1] {
		next, exists := current[part]
		if !exists {
			child := make(map[string]interface{})
			current[part] = child
			current = child
			continue
		}
		child, ok := next.(map[string]interface{})
		if !ok {
			return fmt.Errorf("config key %q: %q holds a %T, not a section", key, part, next)
		}
		current = child
	}

	if nested, ok := value.(map[string]interface{}); ok {
		value = copyMap(nested)
	}
	current[parts[len(parts)-1]] = value
	return nil
}

func copyMap(data map[string]interface{}) map[string]interface{} {
	dataCopy := make(map[string]interface{}, len(data))
	for k, v := range data {
		if nested, ok := v.(map[string]interface{}); ok {
			v = copyMap(nested)
		}
		dataCopy[k] = v
	}
	return dataCopy
}
