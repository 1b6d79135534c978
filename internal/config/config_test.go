package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadCreatesDefault(t *testing.T) {
	t.Setenv(EnvAPIURL, "")
	t.Setenv(EnvWebURL, "")
	dir := filepath.Join(t.TempDir(), "state")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, FileName)); err != nil {
		t.Fatalf("config file was not created: %v", err)
	}
	want := Default()
	if cfg.APIURL != want.APIURL {
		t.Errorf("APIURL = %q, want %q", cfg.APIURL, want.APIURL)
	}
	if cfg.GenerateTimeout != 90*time.Second {
		t.Errorf("GenerateTimeout = %v", cfg.GenerateTimeout)
	}
	if !cfg.Export.Headless {
		t.Error("Export.Headless should default to true")
	}
}

func TestParseOverridesDefaults(t *testing.T) {
	t.Setenv(EnvAPIURL, "")
	t.Setenv(EnvWebURL, "")
	data := []byte(`
api_url: http://localhost:8000/
generate_timeout: 2m
upgrade_delay: 500ms
export:
  headless: false
  output_dir: /tmp/spells
log:
  level: debug
`)
	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if cfg.APIURL != "http://localhost:8000" {
		t.Errorf("APIURL = %q", cfg.APIURL)
	}
	if cfg.WebURL != Default().WebURL {
		t.Errorf("WebURL = %q, want default", cfg.WebURL)
	}
	if cfg.GenerateTimeout != 2*time.Minute {
		t.Errorf("GenerateTimeout = %v", cfg.GenerateTimeout)
	}
	if cfg.UpgradeDelay != 500*time.Millisecond {
		t.Errorf("UpgradeDelay = %v", cfg.UpgradeDelay)
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Errorf("RequestTimeout = %v, want default", cfg.RequestTimeout)
	}
	if cfg.Export.Headless || cfg.Export.OutputDir != "/tmp/spells" {
		t.Errorf("Export = %+v", cfg.Export)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q", cfg.Log.Level)
	}
}

func TestParseEnvOverride(t *testing.T) {
	t.Setenv(EnvAPIURL, "http://127.0.0.1:9000")
	t.Setenv(EnvWebURL, "http://127.0.0.1:3000")
	cfg, err := Parse([]byte("api_url: https://ignored.example\n"))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if cfg.APIURL != "http://127.0.0.1:9000" {
		t.Errorf("APIURL = %q", cfg.APIURL)
	}
	if got := cfg.UpgradeURL(); got != "http://127.0.0.1:3000/pricing" {
		t.Errorf("UpgradeURL() = %q", got)
	}
	if got := cfg.PageURL("faq"); got != "http://127.0.0.1:3000/faq" {
		t.Errorf("PageURL(faq) = %q", got)
	}
}

func TestParseInvalid(t *testing.T) {
	t.Setenv(EnvAPIURL, "")
	t.Setenv(EnvWebURL, "")
	tests := []struct {
		name string
		data string
	}{
		{"bad yaml", "api_url: [unterminated"},
		{"bad url", "api_url: not a url"},
		{"bad level", "log:\n  level: loud"},
		{"negative timeout", "request_timeout: -1s"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.data)); err == nil {
				t.Errorf("Parse(%q) expected error", tt.data)
			}
		})
	}
}
