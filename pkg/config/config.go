package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	DB       DBConfig       `yaml:"db"`
	Template TemplateConfig `yaml:"template"`
	Scanner  ScannerConfig  `yaml:"scanner"`
	Renderer RendererConfig `yaml:"renderer"`
	Tiles    TilesConfig    `yaml:"tiles"`
	Request  RequestConfig  `yaml:"request"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Address string `yaml:"address"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Server   LogSettings `yaml:"server"`
	Requests LogSettings `yaml:"requests"`
}

// LogSettings holds settings for a specific logger.
type LogSettings struct {
	Path  string `yaml:"path"`
	Level string `yaml:"level"`
}

// DBConfig holds database settings.
type DBConfig struct {
	Path string `yaml:"path"`
}

// TemplateConfig holds poster template settings.
type TemplateConfig struct {
	Path string `yaml:"path"`
}

// ScannerConfig holds the placeholder-region scanner tuning.
// The window sizes are template-specific heuristics, deliberately exposed
// here instead of being hardcoded.
type ScannerConfig struct {
	MapWindow     int                   `yaml:"map_window"`     // chars scanned back for the map placeholder
	DefaultWindow int                   `yaml:"default_window"` // chars scanned back for all others
	Defaults      map[string]RegionSpec `yaml:"defaults"`       // placeholder name -> fallback size
}

// RegionSpec is a width/height pair in template units.
type RegionSpec struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// RendererConfig holds chart renderer proportions.
type RendererConfig struct {
	MinBarFraction   float64 `yaml:"min_bar_fraction"`   // min bar height as a fraction of chart height
	BarCapFraction   float64 `yaml:"bar_cap_fraction"`   // max bar width as a fraction of chart width
	MapMarginFrac    float64 `yaml:"map_margin_frac"`    // track margin as a fraction of the smaller region dimension
	PaceCeilingMin   float64 `yaml:"pace_ceiling_min"`   // splits at or above this pace (min/km) are discarded
	TrackSimplifyDeg float64 `yaml:"track_simplify_deg"` // Douglas-Peucker tolerance in degrees, 0 disables
}

// TilesConfig holds settings for the optional tile-backed map renderer.
type TilesConfig struct {
	Enabled   bool     `yaml:"enabled"`
	URL       string   `yaml:"url"` // {z}/{x}/{y} pattern
	MaxTiles  int      `yaml:"max_tiles"`
	MaxZoom   int      `yaml:"max_zoom"`
	Timeout   Duration `yaml:"timeout"` // per-tile fetch timeout
	UserAgent string   `yaml:"user_agent"`
}

// RequestConfig holds HTTP request settings.
type RequestConfig struct {
	Retries     int           `yaml:"retries"`
	Timeout     Duration      `yaml:"timeout"`
	Concurrency int           `yaml:"concurrency"` // parallel requests per provider
	Backoff     BackoffConfig `yaml:"backoff"`
}

// BackoffConfig holds exponential backoff settings.
type BackoffConfig struct {
	BaseDelay Duration `yaml:"base_delay"`
	MaxDelay  Duration `yaml:"max_delay"`
}

// Placeholder names used throughout the template.
const (
	PlaceholderHistogram = "CUSTOM_GRAPH"
	PlaceholderTrack     = "GPX_TRACK"
	PlaceholderElevation = "ELEVATION_PROFILE"
)

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Address: "localhost:1926",
		},
		Log: LogConfig{
			Server: LogSettings{
				Path:  "./logs/server.log",
				Level: "INFO",
			},
			Requests: LogSettings{
				Path:  "./logs/requests.log",
				Level: "INFO",
			},
		},
		DB: DBConfig{
			Path: "./data/postergo.db",
		},
		Template: TemplateConfig{
			Path: "templates/poster_framework.svg",
		},
		Scanner: ScannerConfig{
			MapWindow:     800,
			DefaultWindow: 300,
			Defaults: map[string]RegionSpec{
				PlaceholderHistogram: {Width: 95, Height: 48},
				PlaceholderTrack:     {Width: 170, Height: 120},
				PlaceholderElevation: {Width: 95, Height: 48},
			},
		},
		Renderer: RendererConfig{
			MinBarFraction:   0.08,
			BarCapFraction:   0.10,
			MapMarginFrac:    0.08,
			PaceCeilingMin:   20,
			TrackSimplifyDeg: 0,
		},
		Tiles: TilesConfig{
			Enabled:   false,
			URL:       "https://tile.openstreetmap.org/{z}/{x}/{y}.png",
			MaxTiles:  16,
			MaxZoom:   17,
			Timeout:   Duration(5 * time.Second),
			UserAgent: "",
		},
		Request: RequestConfig{
			Retries:     3,
			Timeout:     Duration(30 * time.Second),
			Concurrency: 4,
			Backoff: BackoffConfig{
				BaseDelay: Duration(500 * time.Millisecond),
				MaxDelay:  Duration(10 * time.Second),
			},
		},
	}
}

// Load loads the configuration from the given path.
// If the file does not exist, it creates it with default values.
// If the file exists, it merges defaults with existing values but does NOT
// save back to disk (to preserve user formatting and comments).
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if err := Save(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to save config file: %w", err)
	}

	// Fall back to the environment for the tile contact header.
	if cfg.Tiles.UserAgent == "" {
		if ua := os.Getenv("POSTERGO_TILE_USER_AGENT"); ua != "" {
			cfg.Tiles.UserAgent = ua
		}
	}

	return cfg, nil
}

// Save writes the configuration to the path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# PosterGo Configuration
# ---------------------
# Supported Duration units: ns, us (or µs), ms, s, m, h, d (day), w (week)
# Scanner windows are template-specific tuning; re-derive them if you swap
# in a template with a different layout.

`)
	data = append(header, data...)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GenerateDefault creates a default config file at the given path.
// Returns nil if the file already exists.
func GenerateDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil // File exists, do nothing
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return Save(path, DefaultConfig())
}
