package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"greptui/internal/domain"
	"greptui/internal/eventbus"
)

// CurrentVersion is written to new config files
const CurrentVersion = 1

// Config represents the application configuration
type Config struct {
	Version    int                 `toml:"version"`
	Search     SearchSettings      `toml:"search"`
	UISettings UISettings          `toml:"ui"`
	Log        LogSettings         `toml:"log"`
	History    HistorySettings     `toml:"history"`
	Keys       map[string][]string `toml:"keys,omitempty"` // action name -> keys
}

// SearchSettings control how git grep is invoked and which flags start on
type SearchSettings struct {
	GitBinary      string `toml:"git_binary"`
	MaxResults     int    `toml:"max_results"` // 0 means unlimited
	IgnoreCase     bool   `toml:"ignore_case"`
	FixedStrings   bool   `toml:"fixed_strings"`
	WordRegexp     bool   `toml:"word_regexp"`
	InvertMatch    bool   `toml:"invert_match"`
	ExtendedRegexp bool   `toml:"extended_regexp"`
	PerlRegexp     bool   `toml:"perl_regexp"`
	Untracked      bool   `toml:"untracked"`
	NoIndex        bool   `toml:"no_index"`
	NoRecursive    bool   `toml:"no_recursive"`
}

// UISettings represents UI-related configuration
type UISettings struct {
	ShowLegend     bool `toml:"show_legend"`
	PreviewContext int  `toml:"preview_context"` // lines shown above the match in the preview
}

// LogSettings configure the log file
type LogSettings struct {
	Level string `toml:"level"`
	File  string `toml:"file,omitempty"`
}

// HistorySettings configure the search history file
type HistorySettings struct {
	Enabled bool   `toml:"enabled"`
	Limit   int    `toml:"limit"`
	File    string `toml:"file,omitempty"`
}

// DefaultFlags returns the flags enabled by the [search] section
func (s SearchSettings) DefaultFlags() domain.Flags {
	var fs domain.Flags
	set := map[domain.Flag]bool{
		domain.IgnoreCase:     s.IgnoreCase,
		domain.FixedStrings:   s.FixedStrings,
		domain.WordRegexp:     s.WordRegexp,
		domain.InvertMatch:    s.InvertMatch,
		domain.ExtendedRegexp: s.ExtendedRegexp,
		domain.PerlRegexp:     s.PerlRegexp,
		domain.Untracked:      s.Untracked,
		domain.NoIndex:        s.NoIndex,
		domain.NoRecursive:    s.NoRecursive,
	}
	for f, on := range set {
		if on {
			fs = fs.With(f)
		}
	}
	return fs
}

// Validate checks values the rest of the program relies on
func (c *Config) Validate() error {
	if c.Search.GitBinary == "" {
		return errors.New("search.git_binary must not be empty")
	}
	if c.Search.MaxResults < 0 {
		return fmt.Errorf("search.max_results must be >= 0, got %d", c.Search.MaxResults)
	}
	engines := 0
	for _, on := range []bool{c.Search.FixedStrings, c.Search.ExtendedRegexp, c.Search.PerlRegexp} {
		if on {
			engines++
		}
	}
	if engines > 1 {
		return errors.New("search: only one of fixed_strings, extended_regexp, perl_regexp may be set")
	}
	if c.UISettings.PreviewContext < 0 {
		return fmt.Errorf("ui.preview_context must be >= 0, got %d", c.UISettings.PreviewContext)
	}
	if c.History.Limit < 0 {
		return fmt.Errorf("history.limit must be >= 0, got %d", c.History.Limit)
	}
	return nil
}

// ConfigService handles configuration management
type ConfigService interface {
	Load() (*Config, error)
	Save(config *Config) error
	LoadFromPath(path string) (*Config, error)
	SaveToPath(config *Config, path string) error
	Path() string
}

// configService is the concrete implementation
type configService struct {
	bus      eventbus.EventBus
	filePath string
}

// NewConfigService creates a config service for path, or for DefaultPath()
// when path is empty
func NewConfigService(path string) ConfigService {
	if path == "" {
		path = DefaultPath()
	}
	return &configService{
		bus:      eventbus.NullBus{},
		filePath: path,
	}
}

// NewConfigServiceWithBus creates a config service with event bus support
func NewConfigServiceWithBus(bus eventbus.EventBus, path string) ConfigService {
	cs := NewConfigService(path).(*configService)
	cs.bus = bus
	return cs
}

// DefaultPath returns $XDG_CONFIG_HOME/greptui/config.toml
func DefaultPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		home, herr := os.UserHomeDir()
		if herr != nil {
			home = "."
		}
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, "greptui", "config.toml")
}

// Path returns the file the service reads and writes
func (cs *configService) Path() string {
	return cs.filePath
}

// Load loads the configuration from file, falling back to defaults when the
// file does not exist
func (cs *configService) Load() (*Config, error) {
	if _, err := os.Stat(cs.filePath); errors.Is(err, os.ErrNotExist) {
		cfg := DefaultConfig()
		cs.bus.Publish(eventbus.ConfigLoadedEvent{Path: cs.filePath, Default: true})
		return cfg, nil
	}

	cfg, err := cs.LoadFromPath(cs.filePath)
	if err != nil {
		return nil, err
	}
	cs.bus.Publish(eventbus.ConfigLoadedEvent{Path: cs.filePath})
	return cfg, nil
}

// Save saves the configuration to file
func (cs *configService) Save(config *Config) error {
	if err := cs.SaveToPath(config, cs.filePath); err != nil {
		return err
	}
	cs.bus.Publish(eventbus.ConfigSavedEvent{Path: cs.filePath})
	return nil
}

// LoadFromPath loads configuration from a specific path. Keys missing from
// the file keep their default values; unknown keys are an error.
func (cs *configService) LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return nil, fmt.Errorf("failed to parse config %s:%d:%d: %w", path, row, col, err)
		}
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if cfg.Keys == nil {
		cfg.Keys = make(map[string][]string)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// SaveToPath saves configuration to a specific path
func (cs *configService) SaveToPath(config *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentVersion,
		Search: SearchSettings{
			GitBinary:  "git",
			MaxResults: 10000,
		},
		UISettings: UISettings{
			ShowLegend:     true,
			PreviewContext: 5,
		},
		Log: LogSettings{
			Level: "info",
		},
		History: HistorySettings{
			Enabled: true,
			Limit:   100,
		},
		Keys: make(map[string][]string),
	}
}
