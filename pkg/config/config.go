package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	DefaultBaseURL        = "http://localhost:1800"
	DefaultUploadPath     = "/api/v1/upload"
	DefaultTimeoutSeconds = 60
	DefaultThumbnailWidth = 32
)

// EnvPrefix is prepended to every environment override (IMGDROP_BASE_URL, ...)
const EnvPrefix = "IMGDROP"

type Config struct {
	// Upload endpoint
	BaseURL               string `yaml:"base_url"`
	UploadPath            string `yaml:"upload_path"`
	RequestTimeoutSeconds int    `yaml:"request_timeout_seconds"`

	// Selection
	DropDir    string `yaml:"drop_dir"`
	WatchDrop  bool   `yaml:"watch_drop"`
	BrowseRoot string `yaml:"browse_root"`

	// UI Settings
	ColorTheme     string `yaml:"color_theme"`
	ThumbnailWidth int    `yaml:"thumbnail_width"`

	// Logging
	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file"`
}

// DefaultConfig returns a Config struct with default values
func DefaultConfig() *Config {
	return &Config{
		BaseURL:               DefaultBaseURL,
		UploadPath:            DefaultUploadPath,
		RequestTimeoutSeconds: DefaultTimeoutSeconds,
		DropDir:               "",
		WatchDrop:             false,
		BrowseRoot:            "",
		ColorTheme:            "auto",
		ThumbnailWidth:        DefaultThumbnailWidth,
		LogLevel:              "info",
		LogFile:               "",
	}
}

// Load reads configuration from the specified file path
func Load(path string) (*Config, error) {
	// Start with default config
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		// If file doesn't exist, return default config (not an error)
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

// LoadWithEnv reads the file at path and then applies environment overrides
func LoadWithEnv(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overlays values from the environment. IMGDROP_BASE_URL wins over
// REACT_APP_BASE_URL, which is still honoured so an existing .env of the web
// front end keeps working.
func (c *Config) ApplyEnv() error {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)

	bindings := map[string][]string{
		"base_url":                {"IMGDROP_BASE_URL", "REACT_APP_BASE_URL"},
		"upload_path":             {"IMGDROP_UPLOAD_PATH"},
		"request_timeout_seconds": {"IMGDROP_REQUEST_TIMEOUT_SECONDS"},
		"drop_dir":                {"IMGDROP_DROP_DIR"},
		"color_theme":             {"IMGDROP_COLOR_THEME"},
		"log_level":               {"IMGDROP_LOG_LEVEL"},
		"log_file":                {"IMGDROP_LOG_FILE"},
	}
	for key, envs := range bindings {
		args := append([]string{key}, envs...)
		if err := v.BindEnv(args...); err != nil {
			return fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	if s := v.GetString("base_url"); s != "" {
		c.BaseURL = s
	}
	if s := v.GetString("upload_path"); s != "" {
		c.UploadPath = s
	}
	if v.IsSet("request_timeout_seconds") {
		c.RequestTimeoutSeconds = v.GetInt("request_timeout_seconds")
	}
	if s := v.GetString("drop_dir"); s != "" {
		c.DropDir = s
		c.WatchDrop = true
	}
	if s := v.GetString("color_theme"); s != "" {
		c.ColorTheme = s
	}
	if s := v.GetString("log_level"); s != "" {
		c.LogLevel = s
	}
	if s := v.GetString("log_file"); s != "" {
		c.LogFile = s
	}

	c.applyDefaults()
	return nil
}

// Validate checks configuration for errors
func (c *Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("base_url is not a valid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base_url must start with http:// or https://, got %q", c.BaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("base_url has no host: %q", c.BaseURL)
	}
	if c.RequestTimeoutSeconds < 0 {
		return fmt.Errorf("request_timeout_seconds must be non-negative")
	}
	if !isValidTheme(c.ColorTheme) {
		return fmt.Errorf("color_theme must be auto, dark or light, got %q", c.ColorTheme)
	}
	return nil
}

// RequestTimeout returns the client timeout; zero disables it
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// Save persists the current configuration to the specified file path
func (c *Config) Save(path string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func (c *Config) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.UploadPath == "" {
		c.UploadPath = DefaultUploadPath
	}
	if c.ThumbnailWidth <= 0 {
		c.ThumbnailWidth = DefaultThumbnailWidth
	}
	if c.ColorTheme == "" {
		c.ColorTheme = "auto"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

func isValidTheme(theme string) bool {
	switch theme {
	case "auto", "dark", "light":
		return true
	}
	return false
}
