// Package config loads ~/.crowlands/config.yaml, creating it with defaults
// on first run.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// FileName is the config file inside the state directory.
const FileName = "config.yaml"

// Environment overrides.
const (
	EnvAPIURL = "CROWLANDS_API_URL"
	EnvWebURL = "CROWLANDS_WEB_URL"
)

var validate = validator.New()

// Config is the client configuration.
type Config struct {
	APIURL          string        `yaml:"api_url" validate:"required,url"`
	WebURL          string        `yaml:"web_url" validate:"required,url"`
	RequestTimeout  time.Duration `yaml:"request_timeout" validate:"gte=0"`
	GenerateTimeout time.Duration `yaml:"generate_timeout" validate:"gte=0"`
	UpgradeDelay    time.Duration `yaml:"upgrade_delay" validate:"gte=0"`
	Export          ExportConfig  `yaml:"export"`
	Log             LogConfig     `yaml:"log"`
}

// ExportConfig controls PDF export.
type ExportConfig struct {
	Headless   bool   `yaml:"headless"`
	BrowserBin string `yaml:"browser_bin,omitempty"`
	OutputDir  string `yaml:"output_dir,omitempty"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level string `yaml:"level" validate:"oneof=debug info warn error"`
}

// Default returns the configuration written on first run.
func Default() Config {
	return Config{
		APIURL:          "https://api.wherethecrowlands.com",
		WebURL:          "https://wherethecrowlands.com",
		RequestTimeout:  30 * time.Second,
		GenerateTimeout: 90 * time.Second,
		UpgradeDelay:    2 * time.Second,
		Export:          ExportConfig{Headless: true},
		Log:             LogConfig{Level: "info"},
	}
}

// Load reads dir/config.yaml, creating it with defaults if it is missing,
// then applies environment overrides.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := createDefault(path); err != nil {
			return nil, err
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults, applies environment overrides and
// validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	cfg.applyEnv()
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")
	cfg.WebURL = strings.TrimRight(cfg.WebURL, "/")
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvAPIURL); v != "" {
		c.APIURL = v
	}
	if v := os.Getenv(EnvWebURL); v != "" {
		c.WebURL = v
	}
}

// UpgradeURL is where tier-restricted actions send the user.
func (c *Config) UpgradeURL() string { return c.WebURL + "/pricing" }

// PageURL returns the public web page for about, faq or privacy.
func (c *Config) PageURL(page string) string { return c.WebURL + "/" + page }

func createDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(Default())
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
