package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestReader(env map[string]string, stores ...Store) *Reader {
	r := NewReader(stores...)
	r.getenv = func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
	return r
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "WTF_BROWSER_HEADLESS", EnvKey("browser.headless"))
	assert.Equal(t, "WTF_SEARCH_PROVIDER", EnvKey("search_provider"))
	assert.Equal(t, "WTF_BROWSER_REMOTE_URL", EnvKey("browser.remote-url"))
}

func TestReader_Precedence(t *testing.T) {
	first := NewMapStore(map[string]interface{}{"search_provider": "http://first.example"})
	second := NewMapStore(map[string]interface{}{
		"search_provider": "http://second.example",
		"only_second":     "yes",
	})

	tests := []struct {
		name string
		env  map[string]string
		key  string
		want string
	}{
		{name: "first store wins", key: "search_provider", want: "http://first.example"},
		{name: "falls through to later store", key: "only_second", want: "yes"},
		{name: "default when absent", key: "missing", want: "fallback"},
		{
			name: "environment overrides stores",
			env:  map[string]string{"WTF_SEARCH_PROVIDER": "http://env.example"},
			key:  "search_provider",
			want: "http://env.example",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestReader(tt.env, first, second)
			assert.Equal(t, tt.want, r.GetString(tt.key, "fallback"))
		})
	}
}

func TestReader_TypedGetters(t *testing.T) {
	store := NewMapStore(map[string]interface{}{
		"browser": map[string]interface{}{
			"headless":       false,
			"viewport_width": 1024,
			"timeout":        "45s",
			"retry_after":    5,
		},
		"bad_bool": "perhaps",
	})
	r := newTestReader(map[string]string{"WTF_BROWSER_VIEWPORT_HEIGHT": "900"}, store)

	assert.False(t, r.GetBool("browser.headless", true))
	assert.True(t, r.GetBool("missing", true))
	assert.True(t, r.GetBool("bad_bool", true), "unparsable value falls back to default")

	assert.Equal(t, 1024, r.GetInt("browser.viewport_width", 0))
	assert.Equal(t, 900, r.GetInt("browser.viewport_height", 0))

	assert.Equal(t, 45*time.Second, r.GetDuration("browser.timeout", time.Second))
	assert.Equal(t, 5*time.Second, r.GetDuration("browser.retry_after", time.Second))
	assert.Equal(t, time.Second, r.GetDuration("missing", time.Second))

	assert.Equal(t, "1024", r.GetString("browser.viewport_width", ""))
	assert.Equal(t, "def", r.GetString("browser", "def"), "sections are not strings")

	assert.Equal(t, "raw", r.Get("missing", "raw"))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	ci := filepath.Join(dir, "ci.yaml")
	def := filepath.Join(dir, "default.yaml")
	require.NoError(t, os.WriteFile(ci, []byte("browser:\n  headless: true\n"), 0600))
	require.NoError(t, os.WriteFile(def, []byte("browser:\n  headless: false\n  type: firefox\n"), 0600))

	r, err := Load(ci, def)
	require.NoError(t, err)
	r.getenv = nil

	assert.True(t, r.GetBool("browser.headless", false))
	assert.Equal(t, "firefox", r.GetString("browser.type", ""))

	_, err = Load(filepath.Join(dir, "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadFromEnv(t *testing.T) {
	t.Run("named files in config dir", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "ci.yaml"), []byte("search_provider: http://ci.example\n"), 0600))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "default.yaml"), []byte("search_provider: http://default.example\nother: x\n"), 0600))
		t.Setenv(EnvConfigDir, dir)
		t.Setenv(EnvConfigNames, "ci, default")

		r, err := LoadFromEnv()
		require.NoError(t, err)
		assert.Equal(t, "http://ci.example", r.GetString("search_provider", ""))
		assert.Equal(t, "x", r.GetString("other", ""))
	})

	t.Run("no default file gives empty reader", func(t *testing.T) {
		t.Setenv(EnvConfigDir, t.TempDir())
		t.Setenv(EnvConfigNames, "")

		r, err := LoadFromEnv()
		require.NoError(t, err)
		assert.Equal(t, "def", r.GetString("search_provider", "def"))
	})

	t.Run("missing named file fails", func(t *testing.T) {
		t.Setenv(EnvConfigDir, t.TempDir())
		t.Setenv(EnvConfigNames, "nope")

		_, err := LoadFromEnv()
		assert.Error(t, err)
	})
}
