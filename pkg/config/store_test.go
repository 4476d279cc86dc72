package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFileStore(t *testing.T) {
	t.Run("missing file yields empty store", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "default.yaml")

		store, err := NewFileStore(configPath)
		require.NoError(t, err)
		assert.Equal(t, configPath, store.Path())
		assert.False(t, store.IsModified())

		_, ok := store.Lookup("browser.headless")
		assert.False(t, ok)
	})

	t.Run("empty path is rejected", func(t *testing.T) {
		_, err := NewFileStore("")
		assert.Error(t, err)
	})

	t.Run("loads nested and top-level keys", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "default.yaml")
		content := `
search_provider: http://www.yahoo.com
browser:
  type: firefox
  headless: false
  viewport_width: 1024
`
		require.NoError(t, os.WriteFile(configPath, []byte(content), 0600))

		store, err := NewFileStore(configPath)
		require.NoError(t, err)

		value, ok := store.Lookup("search_provider")
		require.True(t, ok)
		assert.Equal(t, "http://www.yahoo.com", value)

		value, ok = store.Lookup("browser.headless")
		require.True(t, ok)
		assert.Equal(t, false, value)

		value, ok = store.Lookup("browser.viewport_width")
		require.True(t, ok)
		assert.Equal(t, 1024, value)

		section, err := store.GetSection("browser")
		require.NoError(t, err)
		assert.Equal(t, "firefox", section["type"])
	})

	t.Run("invalid yaml fails", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "broken.yaml")
		require.NoError(t, os.WriteFile(configPath, []byte("browser: [unclosed"), 0600))

		_, err := NewFileStore(configPath)
		assert.Error(t, err)
	})
}

func TestFileStore_SaveRoundTrip(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nested", "ci.yaml")

	store, err := NewFileStore(configPath)
	require.NoError(t, err)

	require.NoError(t, store.Set("browser.headless", true))
	require.NoError(t, store.Set("search_provider", "http://www.google.com"))
	assert.True(t, store.IsModified())

	require.NoError(t, store.Save())
	assert.False(t, store.IsModified())
	_, err = os.Stat(configPath + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file should be renamed away")

	reloaded, err := NewFileStore(configPath)
	require.NoError(t, err)
	value, ok := reloaded.Lookup("browser.headless")
	require.True(t, ok)
	assert.Equal(t, true, value)
}

func TestStore_SectionCopies(t *testing.T) {
	store := NewMapStore(map[string]interface{}{
		"browser": map[string]interface{}{"type": "webkit"},
	})

	section, err := store.GetSection("browser")
	require.NoError(t, err)
	section["type"] = "mutated"

	value, _ := store.Lookup("browser.type")
	assert.Equal(t, "webkit", value, "GetSection must return a copy")

	require.NoError(t, store.SetSection("browser", map[string]interface{}{"type": "firefox"}))
	value, _ = store.Lookup("browser.type")
	assert.Equal(t, "firefox", value)

	missing, err := store.GetSection("absent")
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestStore_SetConflicts(t *testing.T) {
	store := NewMapStore(map[string]interface{}{"search_provider": "http://www.google.com"})

	err := store.Set("search_provider.url", "x")
	assert.Error(t, err)

	err = store.Set("", "x")
	assert.Error(t, err)

	_, err = store.GetSection("search_provider")
	assert.Error(t, err)
}

func TestNewMapStore_DottedKeys(t *testing.T) {
	store := NewMapStore(map[string]interface{}{
		"browser.remote_url": "ws://grid:4444",
	})

	value, ok := store.Lookup("browser.remote_url")
	require.True(t, ok)
	assert.Equal(t, "ws://grid:4444", value)
	assert.NoError(t, store.Load())
	assert.NoError(t, store.Save())
}
