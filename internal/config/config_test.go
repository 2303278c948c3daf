package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"greptui/internal/domain"
	"greptui/internal/eventbus"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	bus := eventbus.New()
	defer bus.Close()

	loaded := make(chan eventbus.ConfigLoadedEvent, 1)
	bus.Subscribe(eventbus.EventConfigLoaded, func(e eventbus.DomainEvent) {
		loaded <- e.(eventbus.ConfigLoadedEvent)
	})

	path := filepath.Join(t.TempDir(), "config.toml")
	cfg, err := NewConfigServiceWithBus(bus, path).Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	select {
	case ev := <-loaded:
		assert.True(t, ev.Default)
		assert.Equal(t, path, ev.Path)
	case <-time.After(2 * time.Second):
		t.Fatal("ConfigLoadedEvent not published")
	}
}

func TestLoadMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[search]
ignore_case = true
max_results = 50

[ui]
show_legend = false

[keys]
commit = ["ctrl+s"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := NewConfigService(path).Load()
	require.NoError(t, err)

	assert.True(t, cfg.Search.IgnoreCase)
	assert.Equal(t, 50, cfg.Search.MaxResults)
	assert.Equal(t, "git", cfg.Search.GitBinary)
	assert.False(t, cfg.UISettings.ShowLegend)
	assert.Equal(t, 5, cfg.UISettings.PreviewContext)
	assert.Equal(t, []string{"ctrl+s"}, cfg.Keys["commit"])
	assert.Equal(t, domain.Flags(0).With(domain.IgnoreCase), cfg.Search.DefaultFlags())
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[search]\ncolour = true\n"), 0644))

	_, err := NewConfigService(path).Load()
	assert.Error(t, err)
}

func TestLoadRejectsConflictingEngines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[search]\nfixed_strings = true\nperl_regexp = true\n"), 0644))

	_, err := NewConfigService(path).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "only one of")
}

func TestLoadReportsSyntaxPosition(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[search\n"), 0644))

	_, err := NewConfigService(path).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), path+":1:")
}

func TestLoadFromPathMissingFile(t *testing.T) {
	_, err := NewConfigService("").LoadFromPath(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config file not found")
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cs := NewConfigService(path)

	cfg := DefaultConfig()
	cfg.Search.WordRegexp = true
	cfg.Keys["quit"] = []string{"ctrl+q"}
	require.NoError(t, cs.Save(cfg))

	got, err := cs.Load()
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	cfg.Search.GitBinary = ""
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Search.MaxResults = -1
	assert.Error(t, cfg.Validate())
}
