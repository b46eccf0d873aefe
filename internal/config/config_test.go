package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadExplicitFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
defaults:
  format: png
  quality: 70
  concurrency: 3
history:
  enabled: false
publish:
  host: img.example.com
  user: uploads
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Defaults.Format != "png" || cfg.Defaults.Quality != 70 || cfg.Defaults.Concurrency != 3 {
		t.Errorf("defaults not parsed: %+v", cfg.Defaults)
	}
	if cfg.History.Enabled {
		t.Error("history.enabled should be false")
	}
	if cfg.Publish.Host != "img.example.com" || cfg.Publish.Port != 22 {
		t.Errorf("publish section wrong: %+v", cfg.Publish)
	}
}

func TestLoadExplicitMissingFileFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for explicitly named missing file")
	}
}

func TestLoadMissingDefaultFileYieldsDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Defaults.Format != "jpeg" || cfg.Defaults.Quality != 85 {
		t.Errorf("expected built-in defaults, got %+v", cfg.Defaults)
	}
}

func TestEnvOverridesPublishCredentials(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("IMGX_PUBLISH_HOST", "override.example.com")
	t.Setenv("IMGX_PUBLISH_USER", "ci")
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Publish.Host != "override.example.com" || cfg.Publish.User != "ci" {
		t.Errorf("env overrides not applied: %+v", cfg.Publish)
	}
}

func TestSecretsEnvMerge(t *testing.T) {
	base := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", base)
	dir := filepath.Join(base, "imgx")
	if err := os.MkdirAll(dir, 0700); err != nil {
		t.Fatal(err)
	}
	secrets := "# comment\nIMGX_PUBLISH_USER = fromfile\n\nIGNORED LINE\n"
	if err := os.WriteFile(filepath.Join(dir, "secrets.env"), []byte(secrets), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Publish.User != "fromfile" {
		t.Errorf("secrets.env not merged: %+v", cfg.Publish)
	}
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "imgx", "config.yaml")
	wrote, err := WriteDefault(path)
	if err != nil {
		t.Fatal(err)
	}
	if !wrote {
		t.Fatal("expected file to be written")
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Defaults.Format != "jpeg" {
		t.Errorf("written defaults unreadable: %+v", cfg.Defaults)
	}
	wrote, err = WriteDefault(path)
	if err != nil || wrote {
		t.Errorf("second write should be a no-op, got wrote=%v err=%v", wrote, err)
	}
}
