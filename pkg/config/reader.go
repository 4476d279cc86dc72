package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	// EnvPrefix prefixes environment overrides: browser.headless is read
	// from WTF_BROWSER_HEADLESS.
	EnvPrefix = "WTF_"

	// EnvConfigNames lists config file names (without extension), highest
	// precedence first, e.g. WTF_ENV=ci,default.
	EnvConfigNames = "WTF_ENV"

	// EnvConfigDir is the directory holding the named config files.
	EnvConfigDir = "WTF_CONFIG_DIR"

	defaultConfigDir  = "configs"
	defaultConfigName = "default"
)

// Reader answers typed configuration lookups with a caller-supplied default.
//
// Precedence for every key: environment override, then each store in the
// order given (first store wins), then the default.
type Reader struct {
	stores []Store
	getenv func(string) (string, bool)
}

// NewReader creates a reader over stores, highest precedence first.
func NewReader(stores ...Store) *Reader {
	return &Reader{
		stores: stores,
		getenv: os.LookupEnv,
	}
}

// Load creates a reader over YAML files, highest precedence first.
// Unlike NewFileStore, every listed file must exist.
func Load(paths ...string) (*Reader, error) {
	stores := make([]Store, 0, len(paths))
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
		store, err := NewFileStore(path)
		if err != nil {
			return nil, err
		}
		stores = append(stores, store)
	}
	return NewReader(stores...), nil
}

// LoadFromEnv resolves the config files named by WTF_ENV inside
// WTF_CONFIG_DIR (default "configs"). Without WTF_ENV it reads
// default.yaml when present and otherwise returns an empty reader, so
// lookups fall through to their defaults.
func LoadFromEnv() (*Reader, error) {
	dir := os.Getenv(EnvConfigDir)
	if dir == "" {
		dir = defaultConfigDir
	}

	names := os.Getenv(EnvConfigNames)
	if names == "" {
		path := filepath.Join(dir, defaultConfigName+".yaml")
		if _, err := os.Stat(path); err != nil {
			return NewReader(), nil
		}
		return Load(path)
	}

	var paths []string
	for _, name := range strings.Split(names, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		paths = append(paths, filepath.Join(dir, name+".yaml"))
	}
	return Load(paths...)
}

// EnvKey returns the environment variable that overrides key.
func EnvKey(key string) string {
	return EnvPrefix + strings.ToUpper(strings.NewReplacer(".", "_", "-", "_").Replace(key))
}

// Lookup returns the raw value for key and whether any layer defines it.
func (r *Reader) Lookup(key string) (interface{}, bool) {
	if r.getenv != nil {
		if value, ok := r.getenv(EnvKey(key)); ok {
			return value, true
		}
	}
	for _, store := range r.stores {
		if value, ok := store.Lookup(key); ok {
			return value, true
		}
	}
	return nil, false
}

// Get returns the raw value for key, or def when absent.
func (r *Reader) Get(key string, def interface{}) interface{} {
	if value, ok := r.Lookup(key); ok {
		return value
	}
	return def
}

// GetString returns key as a string, or def when absent.
func (r *Reader) GetString(key, def string) string {
	value, ok := r.Lookup(key)
	if !ok {
		return def
	}
	s, err := toString(value)
	if err != nil {
		return def
	}
	return s
}

// GetBool returns key as a bool, or def when absent or unparsable.
func (r *Reader) GetBool(key string, def bool) bool {
	value, ok := r.Lookup(key)
	if !ok {
		return def
	}
	b, err := toBool(value)
	if err != nil {
		return def
	}
	return b
}

// GetInt returns key as an int, or def when absent or unparsable.
func (r *Reader) GetInt(key string, def int) int {
	value, ok := r.Lookup(key)
	if !ok {
		return def
	}
	i, err := toInt(value)
	if err != nil {
		return def
	}
	return i
}

// GetDuration returns key as a duration, or def when absent or unparsable.
// Strings use time.ParseDuration syntax; bare numbers are seconds.
func (r *Reader) GetDuration(key string, def time.Duration) time.Duration {
	value, ok := r.Lookup(key)
	if !ok {
		return def
	}
	d, err := toDuration(value)
	if err != nil {
		return def
	}
	return d
}

// LoadSection fills s from the keys "<id>.<field>" for every field s
// reports in Data, then validates it. Absent keys keep their defaults.
func (r *Reader) LoadSection(s Section) error {
	data := make(map[string]interface{})
	for field := range s.Data() {
		if value, ok := r.Lookup(s.ID() + "." + field); ok {
			data[field] = value
		}
	}
	if err := s.SetData(data); err != nil {
		return fmt.Errorf("config section %s: %w", s.ID(), err)
	}
	if err := s.Validate(); err != nil {
		return fmt.Errorf("config section %s: %w", s.ID(), err)
	}
	return nil
}

func toString(value interface{}) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case bool, int, int64, float64:
		return fmt.Sprint(v), nil
	default:
		return "", fmt.Errorf("expected string, got %T", value)
	}
}

func toBool(value interface{}) (bool, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		return strconv.ParseBool(strings.TrimSpace(v))
	default:
		return false, fmt.Errorf("expected bool, got %T", value)
	}
}

func toInt(value interface{}) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	case string:
		return strconv.Atoi(strings.TrimSpace(v))
	default:
		return 0, fmt.Errorf("expected integer, got %T", value)
	}
}

func toDuration(value interface{}) (time.Duration, error) {
	switch v := value.(type) {
	case time.Duration:
		return v, nil
	case int:
		return time.Duration(v) * time.Second, nil
	case int64:
		return time.Duration(v) * time.Second, nil
	case float64:
		return time.Duration(v * float64(time.Second)), nil
	case string:
		v = strings.TrimSpace(v)
		if secs, err := strconv.ParseFloat(v, 64); err == nil {
			return time.Duration(secs * float64(time.Second)), nil
		}
		return time.ParseDuration(v)
	default:
		return 0, fmt.Errorf("expected duration, got %T", value)
	}
}
