package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds runtime configuration for the annotator.
// Fields may be loaded from a JSON or YAML file and overridden by command-line flags.
type Config struct {
	Debug bool `json:"debug" yaml:"debug"`

	// Backend
	BackendURL            string `json:"backend_url" yaml:"backend_url"`
	RequestTimeoutSeconds int    `json:"request_timeout_seconds" yaml:"request_timeout_seconds"`
	FrameCacheSize        int    `json:"frame_cache_size" yaml:"frame_cache_size"`

	// Viewport
	ZoomIntensity          float64 `json:"zoom_intensity" yaml:"zoom_intensity"`
	MinScale               float64 `json:"min_scale" yaml:"min_scale"`
	MaxScale               float64 `json:"max_scale" yaml:"max_scale"`
	ResetViewOnFrameChange bool    `json:"reset_view_on_frame_change" yaml:"reset_view_on_frame_change"`

	// Window
	CanvasWidth  int  `json:"canvas_width" yaml:"canvas_width"`
	CanvasHeight int  `json:"canvas_height" yaml:"canvas_height"`
	TickMillis   int  `json:"tick_millis" yaml:"tick_millis"`
	DarkMode     bool `json:"dark_mode" yaml:"dark_mode"`

	// Videos offered in the selector in addition to the image gallery.
	Videos []string `json:"videos" yaml:"videos"`
}

// DefaultConfig returns a Config populated with standard defaults.
func DefaultConfig() *Config {
	return &Config{
		Debug:                  false,
		BackendURL:             "http://127.0.0.1:5695",
		RequestTimeoutSeconds:  10,
		FrameCacheSize:         64,
		ZoomIntensity:          0.1,
		MinScale:               0.02,
		MaxScale:               64,
		ResetViewOnFrameChange: false,
		CanvasWidth:            960,
		CanvasHeight:           600,
		TickMillis:             30,
		DarkMode:               false,
	}
}

// Validate clamps/normalizes values to safe ranges.
func (c *Config) Validate() error {
	c.BackendURL = strings.TrimRight(strings.TrimSpace(c.BackendURL), "/")
	if c.BackendURL == "" {
		c.BackendURL = "http://127.0.0.1:5695"
	}
	if c.RequestTimeoutSeconds <= 0 {
		c.RequestTimeoutSeconds = 10
	}
	if c.FrameCacheSize <= 0 {
		c.FrameCacheSize = 64
	}
	if c.ZoomIntensity <= 0 || c.ZoomIntensity > 1 {
		c.ZoomIntensity = 0.1
	}
	if c.MinScale <= 0 {
		c.MinScale = 0.02
	}
	if c.MaxScale <= c.MinScale {
		c.MaxScale = c.MinScale * 100
	}
	if c.CanvasWidth < 200 {
		c.CanvasWidth = 200
	}
	if c.CanvasHeight < 150 {
		c.CanvasHeight = 150
	}
	if c.TickMillis < 10 {
		c.TickMillis = 10
	}
	videos := c.Videos[:0]
	for _, v := range c.Videos {
		if v = strings.TrimSpace(v); v != "" {
			videos = append(videos, v)
		}
	}
	c.Videos = videos
	return nil
}

// RequestTimeout returns the per-request deadline.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// Tick returns the UI update loop interval.
func (c *Config) Tick() time.Duration {
	return time.Duration(c.TickMillis) * time.Millisecond
}

// Load attempts to read configuration from the given path. Files ending in
// .yaml or .yml are parsed as YAML, anything else as JSON. If the file does
// not exist it returns DefaultConfig(). On decode error it returns defaults
// with the error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	if isYAML(path) {
		err = yaml.Unmarshal(data, cfg)
	} else {
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return DefaultConfig(), err
	}
	_ = cfg.Validate()
	return cfg, nil
}

// Save writes the configuration to the given path, as YAML or JSON depending
// on the extension.
func (c *Config) Save(path string) error {
	_ = c.Validate()
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
