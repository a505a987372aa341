package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"sitesearch/internal/eventbus"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()

	require.Equal(t, 1, cfg.Version)
	require.Equal(t, 2, cfg.Search.MinQueryLength)
	require.Equal(t, 8, cfg.Search.MaxResults)
	require.Equal(t, 2.0, cfg.Search.TitleBoost)
	require.Equal(t, 1.0, cfg.Search.BodyBoost)
	require.Equal(t, "OR", cfg.Search.Bool)
	require.Equal(t, []time.Duration{100 * time.Millisecond, time.Second}, cfg.Init.RetryDelays())
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	svc := NewConfigServiceAt(path, nil)

	cfg := DefaultConfig()
	cfg.IndexPath = "/srv/site/search_index.en.json"
	cfg.URLs.ProductionOrigin = "https://example.org"
	require.NoError(t, svc.Save(cfg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "version = 1")
	require.Contains(t, string(data), "/srv/site/search_index.en.json")

	loaded, err := svc.Load()
	require.NoError(t, err)
	require.Equal(t, cfg, loaded)
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `version = 1
index_path = "idx.json"

[search]
max_results = 5
bool = "XOR"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := NewConfigServiceAt(path, nil).LoadFromPath(path)
	require.NoError(t, err)
	require.Equal(t, "idx.json", cfg.IndexPath)
	require.Equal(t, 5, cfg.Search.MaxResults)
	require.Equal(t, 2, cfg.Search.MinQueryLength)
	require.Equal(t, "OR", cfg.Search.Bool, "unknown bool mode falls back to OR")
	require.Equal(t, "https://blog.clexp.net", cfg.URLs.ProductionOrigin)
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	t.Parallel()
	bus := eventbus.New()
	defer bus.Close()

	loadedCh := make(chan eventbus.DomainEvent, 1)
	bus.Subscribe(eventbus.EventConfigLoaded, func(e eventbus.DomainEvent) { loadedCh <- e })

	svc := NewConfigServiceAt(filepath.Join(t.TempDir(), "absent.toml"), bus)
	cfg, err := svc.Load()
	require.NoError(t, err)
	require.Equal(t, DefaultConfig(), cfg)

	select {
	case e := <-loadedCh:
		require.Equal(t, cfg.IndexPath, e.(eventbus.ConfigLoadedEvent).IndexPath)
	case <-time.After(time.Second):
		t.Fatal("ConfigLoaded was not published")
	}
}

func TestLoadFromPathErrors(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	svc := NewConfigServiceAt(filepath.Join(dir, "config.toml"), nil)

	_, err := svc.LoadFromPath(filepath.Join(dir, "missing.toml"))
	require.Error(t, err)

	bad := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("version = [unterminated"), 0644))
	_, err = svc.LoadFromPath(bad)
	require.ErrorContains(t, err, "failed to parse config")
}
