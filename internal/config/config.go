package config

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultWidth   = 300
	DefaultHeight  = 200
	DefaultQuality = 85

	DefaultLogLevel = "INFO"
	DefaultEngine   = "imaging"

	StatsFileName = "last-run-stats.json"
)

// Config is built once at startup and treated as read-only afterwards.
type Config struct {
	SourceDir        string   `yaml:"source_dir" json:"sourceDir"`
	ThumbnailsDir    string   `yaml:"thumbnails_dir" json:"thumbnailsDir"`
	LogsDir          string   `yaml:"logs_dir" json:"logsDir"`
	Width            int      `yaml:"width" json:"width"`
	Height           int      `yaml:"height" json:"height"`
	Quality          int      `yaml:"quality" json:"quality"`
	SupportedFormats []string `yaml:"supported_formats" json:"supportedFormats"`
	ExcludePatterns  []string `yaml:"exclude_patterns" json:"excludePatterns"`
	LogLevel         string   `yaml:"log_level" json:"logLevel"`
	LogToFile        bool     `yaml:"log_to_file" json:"logToFile"`
	LogToConsole     bool     `yaml:"log_to_console" json:"logToConsole"`
	Engine           string   `yaml:"engine" json:"engine"`
}

// DefaultConfig returns the defaults for a docs site rooted at root.
func DefaultConfig(root string) *Config {
	if root == "" {
		root = "."
	}
	sourceDir := filepath.Join(root, "static", "images")

	return &Config{
		SourceDir:     sourceDir,
		ThumbnailsDir: filepath.Join(sourceDir, "thumbnails"),
		LogsDir:       filepath.Join(root, "tools", "logs"),
		Width:         DefaultWidth,
		Height:        DefaultHeight,
		Quality:       DefaultQuality,
		SupportedFormats: []string{
			".jpg", ".jpeg", ".png", ".gif", ".webp", ".tiff", ".bmp",
		},
		ExcludePatterns: []string{"-thumb.", "thumbnails", ".svg"},
		LogLevel:        DefaultLogLevel,
		LogToFile:       true,
		LogToConsole:    true,
		Engine:          DefaultEngine,
	}
}

// LoadFromFile reads YAML overrides on top of the defaults for root.
func LoadFromFile(path, root string) (*Config, error) {
	cfg := DefaultConfig(root)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Overrides carries command-line values. Zero values leave the config untouched.
type Overrides struct {
	Debug   bool `json:"debug"`
	Width   int  `json:"width"`
	Height  int  `json:"height"`
	Quality int  `json:"quality"`
}

func (c *Config) Apply(o Overrides) {
	if o.Debug {
		c.LogLevel = "DEBUG"
	}
	if o.Width != 0 {
		c.Width = o.Width
	}
	if o.Height != 0 {
		c.Height = o.Height
	}
	if o.Quality != 0 {
		c.Quality = o.Quality
	}
}

// Clone returns a deep copy so callers can apply overrides without touching c.
func (c *Config) Clone() *Config {
	cp := *c
	cp.SupportedFormats = append([]string(nil), c.SupportedFormats...)
	cp.ExcludePatterns = append([]string(nil), c.ExcludePatterns...)
	return &cp
}

func (c *Config) Validate() error {
	if c.SourceDir == "" {
		return &ValidationError{Field: "source_dir", Message: "source directory is required"}
	}
	if c.ThumbnailsDir == "" {
		c.ThumbnailsDir = filepath.Join(c.SourceDir, "thumbnails")
	}
	if c.LogsDir == "" {
		return &ValidationError{Field: "logs_dir", Message: "logs directory is required"}
	}
	if c.Width <= 0 {
		return &ValidationError{Field: "width", Message: "width must be a positive number of pixels"}
	}
	if c.Height <= 0 {
		return &ValidationError{Field: "height", Message: "height must be a positive number of pixels"}
	}
	if c.Quality < 1 || c.Quality > 100 {
		return &ValidationError{Field: "quality", Message: "quality must be between 1 and 100"}
	}
	if len(c.SupportedFormats) == 0 {
		return &ValidationError{Field: "supported_formats", Message: "at least one format is required"}
	}
	for i, ext := range c.SupportedFormats {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		c.SupportedFormats[i] = ext
	}

	c.LogLevel = strings.ToUpper(c.LogLevel)
	switch c.LogLevel {
	case "":
		c.LogLevel = DefaultLogLevel
	case "DEBUG", "INFO", "WARN", "ERROR":
	default:
		return &ValidationError{Field: "log_level", Message: "unknown log level " + c.LogLevel}
	}

	if c.Engine == "" {
		c.Engine = DefaultEngine
	}

	return nil
}

// StatsFile is the fixed path of the run summary.
func (c *Config) StatsFile() string {
	return filepath.Join(c.LogsDir, StatsFileName)
}

type ValidationError struct {
	Field   string
	Message string
	// Err is the underlying cause, if any.
	Err error
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
