package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"sitesearch/internal/eventbus"
)

// Config represents the application configuration
type Config struct {
	Version   int            `toml:"version"`
	IndexPath string         `toml:"index_path"`
	LogFile   string         `toml:"log_file"`
	Search    SearchSettings `toml:"search"`
	URLs      URLSettings    `toml:"urls"`
	Init      InitSettings   `toml:"init"`
	UI        UISettings     `toml:"ui"`
}

// SearchSettings controls how queries are sent to the index
type SearchSettings struct {
	MinQueryLength int     `toml:"min_query_length"`
	MaxResults     int     `toml:"max_results"`
	TitleBoost     float64 `toml:"title_boost"`
	BodyBoost      float64 `toml:"body_boost"`
	Bool           string  `toml:"bool"` // "OR" or "AND"
}

// URLSettings controls how result refs are turned into site paths
type URLSettings struct {
	ProductionOrigin string `toml:"production_origin"`
	StripLocalhost   bool   `toml:"strip_localhost"`
}

// InitSettings controls the fallback initialization schedule used when the
// index source cannot signal readiness
type InitSettings struct {
	RetryDelaysMs []int `toml:"retry_delays_ms"`
}

// UISettings represents UI-related configuration
type UISettings struct {
	OpenPager  bool `toml:"open_pager"`
	ShowScores bool `toml:"show_scores"`
}

// RetryDelays returns the fallback schedule as durations
func (s InitSettings) RetryDelays() []time.Duration {
	delays := make([]time.Duration, 0, len(s.RetryDelaysMs))
	for _, ms := range s.RetryDelaysMs {
		if ms < 0 {
			ms = 0
		}
		delays = append(delays, time.Duration(ms)*time.Millisecond)
	}
	return delays
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

// NewConfigService creates a new config service
func NewConfigService() ConfigService {
	configDir, err := os.UserConfigDir()
	if err != nil {
		// Fallback to home directory
		configDir, err = os.UserHomeDir()
		if err != nil {
			configDir = "."
		}
		configDir = filepath.Join(configDir, ".config")
	}

	return &configService{
		filePath: filepath.Join(configDir, "sitesearch", "config.toml"),
	}
}

// NewConfigServiceAt creates a config service bound to an explicit file
func NewConfigServiceAt(path string, bus eventbus.EventBus) ConfigService {
	return &configService{bus: bus, filePath: path}
}

// NewConfigServiceWithBus creates a config service with event bus support
func NewConfigServiceWithBus(bus eventbus.EventBus) ConfigService {
	cs := NewConfigService().(*configService)
	cs.bus = bus
	return cs
}

// Path returns the file the service loads from and saves to
func (cs *configService) Path() string {
	return cs.filePath
}

// Load loads the configuration from file, falling back to defaults when
// the file does not exist yet
func (cs *configService) Load() (*Config, error) {
	var cfg *Config
	if _, err := os.Stat(cs.filePath); os.IsNotExist(err) {
		cfg = DefaultConfig()
	} else {
		cfg, err = cs.LoadFromPath(cs.filePath)
		if err != nil {
			return nil, err
		}
	}

	if cs.bus != nil {
		cs.bus.Publish(eventbus.ConfigLoadedEvent{IndexPath: cfg.IndexPath})
	}

	return cfg, nil
}

// Save saves the configuration to file
func (cs *configService) Save(config *Config) error {
	if err := cs.SaveToPath(config, cs.filePath); err != nil {
		return err
	}

	if cs.bus != nil {
		cs.bus.Publish(eventbus.ConfigSavedEvent{})
	}

	return nil
}

// LoadFromPath loads configuration from a specific path
func (cs *configService) LoadFromPath(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start from defaults so partial files keep sane values
	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.normalize()
	return cfg, nil
}

// SaveToPath saves configuration to a specific path
func (cs *configService) SaveToPath(config *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
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

// normalize replaces out-of-range values with their defaults
func (c *Config) normalize() {
	def := DefaultConfig()
	if c.Search.MinQueryLength <= 0 {
		c.Search.MinQueryLength = def.Search.MinQueryLength
	}
	if c.Search.MaxResults <= 0 {
		c.Search.MaxResults = def.Search.MaxResults
	}
	if c.Search.TitleBoost <= 0 {
		c.Search.TitleBoost = def.Search.TitleBoost
	}
	if c.Search.BodyBoost <= 0 {
		c.Search.BodyBoost = def.Search.BodyBoost
	}
	if c.Search.Bool != "OR" && c.Search.Bool != "AND" {
		c.Search.Bool = def.Search.Bool
	}
	if c.LogFile == "" {
		c.LogFile = def.LogFile
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version:   1,
		IndexPath: filepath.Join("public", "search_index.en.json"),
		LogFile:   "sitesearch.log",
		Search: SearchSettings{
			MinQueryLength: 2,
			MaxResults:     8,
			TitleBoost:     2,
			BodyBoost:      1,
			Bool:           "OR",
		},
		URLs: URLSettings{
			ProductionOrigin: "https://blog.clexp.net",
			StripLocalhost:   true,
		},
		Init: InitSettings{
			RetryDelaysMs: []int{100, 1000},
		},
		UI: UISettings{
			OpenPager:  true,
			ShowScores: false,
		},
	}
}
