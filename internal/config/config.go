// Package config loads the imagestudio settings file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mhpenta/imagestudio"
	"github.com/mhpenta/imagestudio/gallery"
	"github.com/mhpenta/imagestudio/session"
)

// Backend names accepted in the config file.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// API key environment variables, in lookup order.
var apiKeyEnv = []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"}

// ErrMissingAPIKey is returned by RequireAPIKey when no key was configured.
var ErrMissingAPIKey = errors.New("no API key: set GEMINI_API_KEY or api_key in the config file")

// Config holds the application configuration.
type Config struct {
	APIKey  string `yaml:"api_key,omitempty"`
	BaseURL string `yaml:"base_url,omitempty"`

	DataDir     string `yaml:"data_dir"`
	Backend     string `yaml:"backend"`
	GalleryKey  string `yaml:"gallery_key"`
	QuotaBytes  int64  `yaml:"quota_bytes,omitempty"` // 0 = unlimited
	DownloadDir string `yaml:"download_dir"`

	// RateLimitWait lets a call wait for the local rate limiter; 0 fails fast.
	RateLimitWait time.Duration `yaml:"rate_limit_wait,omitempty"`

	Defaults Defaults `yaml:"defaults"`

	LogFile       string `yaml:"log_file,omitempty"`
	Debug         bool   `yaml:"debug,omitempty"`
	Notifications bool   `yaml:"notifications"`

	path string
}

// Defaults are the generation settings a new session starts with.
type Defaults struct {
	Model       string `yaml:"model"`
	Style       string `yaml:"style"`
	AspectRatio string `yaml:"aspect_ratio"`
	Count       int    `yaml:"count"`
	Faceless    *bool  `yaml:"faceless,omitempty"`
}

// Dir returns the directory holding the config file.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "imagestudio"), nil
}

// DefaultPath returns the config file location.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Default returns the built-in configuration rooted at dir.
func Default(dir string) *Config {
	opts := session.DefaultOptions()
	faceless := opts.Faceless
	home, err := os.UserHomeDir()
	downloads := filepath.Join(dir, "downloads")
	if err == nil {
		downloads = filepath.Join(home, "Downloads")
	}
	return &Config{
		DataDir:       filepath.Join(dir, "data"),
		Backend:       BackendFile,
		GalleryKey:    gallery.DefaultKey,
		DownloadDir:   downloads,
		Notifications: true,
		Defaults: Defaults{
			Model:       string(opts.Model),
			Style:       string(opts.Style.ID),
			AspectRatio: string(opts.AspectRatio),
			Count:       opts.NumberOfImages,
			Faceless:    &faceless,
		},
	}
}

// Load reads the config at path over the defaults. A missing file yields
// the defaults. An empty path means DefaultPath. API keys from the
// environment override the file.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg := Default(filepath.Dir(path))
	cfg.path = path

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	for _, name := range apiKeyEnv {
		if v := os.Getenv(name); v != "" {
			c.APIKey = v
			return
		}
	}
}

// Validate checks every enumerated field.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendFile, BackendSQLite, BackendMemory:
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	if c.GalleryKey == "" {
		return errors.New("gallery_key must not be empty")
	}
	if c.QuotaBytes < 0 {
		return errors.New("quota_bytes must not be negative")
	}
	if c.RateLimitWait < 0 {
		return errors.New("rate_limit_wait must not be negative")
	}
	_, err := c.SessionOptions()
	return err
}

// SessionOptions converts the defaults into session options.
func (c *Config) SessionOptions() (session.Options, error) {
	opts := session.DefaultOptions()

	if c.Defaults.Model != "" {
		if _, ok := imagestudio.LookupModelOption(imagestudio.Model(c.Defaults.Model)); !ok {
			return opts, fmt.Errorf("unknown model %q", c.Defaults.Model)
		}
		opts.Model = imagestudio.Model(c.Defaults.Model)
	}
	if c.Defaults.Style != "" {
		style, ok := imagestudio.LookupStyle(imagestudio.StyleID(c.Defaults.Style))
		if !ok {
			return opts, fmt.Errorf("unknown style %q", c.Defaults.Style)
		}
		opts.Style = style
	}
	if c.Defaults.AspectRatio != "" {
		ar, ok := imagestudio.ParseAspectRatio(c.Defaults.AspectRatio)
		if !ok {
			return opts, fmt.Errorf("unknown aspect ratio %q", c.Defaults.AspectRatio)
		}
		opts.AspectRatio = ar
	}
	if c.Defaults.Count != 0 {
		if err := imagestudio.ValidateImageCount(c.Defaults.Count); err != nil {
			return opts, err
		}
		opts.NumberOfImages = c.Defaults.Count
	}
	if c.Defaults.Faceless != nil {
		opts.Faceless = *c.Defaults.Faceless
	}
	return opts, nil
}

// RequireAPIKey returns the key or ErrMissingAPIKey.
func (c *Config) RequireAPIKey() (string, error) {
	if c.APIKey == "" {
		return "", ErrMissingAPIKey
	}
	return c.APIKey, nil
}

// Path returns the file the config was loaded from.
func (c *Config) Path() string {
	return c.path
}

// Save writes the config back to its file. The API key is only written if
// it was not taken from the environment.
func (c *Config) Save() error {
	if c.path == "" {
		return errors.New("config has no file path")
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	out := *c
	for _, name := range apiKeyEnv {
		if v := os.Getenv(name); v != "" && v == c.APIKey {
			out.APIKey = ""
		}
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&out); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return err
	}
	return os.WriteFile(c.path, buf.Bytes(), 0o600)
}
