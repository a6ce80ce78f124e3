package internal

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Log.Level != "info" {
		t.Errorf("expected level 'info', got %q", cfg.Log.Level)
	}
	if !cfg.UpdateRef {
		t.Error("expected update_ref to default to true")
	}
	if cfg.MaxChainDepth != 1000 {
		t.Errorf("expected max chain depth 1000, got %d", cfg.MaxChainDepth)
	}
	if cfg.PreviewContext != 3 {
		t.Errorf("expected preview context 3, got %d", cfg.PreviewContext)
	}
}

func TestConfigSaveAndLoad(t *testing.T) {
	gitDir := t.TempDir()
	scope := Scope{GitDir: gitDir}

	cfg := DefaultConfig()
	cfg.Log.Format = "json"
	cfg.UpdateRef = false
	cfg.MaxChainDepth = 50

	if err := SaveConfig(scope, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := LoadConfig(scope)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if loaded.Log.Format != "json" {
		t.Errorf("format = %q, want %q", loaded.Log.Format, "json")
	}
	if loaded.UpdateRef {
		t.Error("expected update_ref false after round trip")
	}
	if loaded.MaxChainDepth != 50 {
		t.Errorf("max chain depth = %d, want 50", loaded.MaxChainDepth)
	}
}

func TestLoadConfigMissingFileGivesDefaults(t *testing.T) {
	scope := Scope{GitDir: t.TempDir()}

	cfg, err := LoadConfig(scope)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.MaxChainDepth != DefaultConfig().MaxChainDepth {
		t.Errorf("expected default max chain depth, got %d", cfg.MaxChainDepth)
	}
}

func TestLoadConfigPartialFile(t *testing.T) {
	gitDir := t.TempDir()
	scope := Scope{GitDir: gitDir}

	content := "log:\n  level: debug\npreview_context: -4\n"
	if err := os.WriteFile(filepath.Join(gitDir, ConfigFilename), []byte(content), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := LoadConfig(scope)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Log.Level != "debug" {
		t.Errorf("level = %q, want debug", cfg.Log.Level)
	}
	if cfg.Log.Format != "text" {
		t.Errorf("format = %q, want default text", cfg.Log.Format)
	}
	if !cfg.UpdateRef {
		t.Error("expected update_ref to keep its default")
	}
	if cfg.PreviewContext != 0 {
		t.Errorf("negative preview context should clamp to 0, got %d", cfg.PreviewContext)
	}
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	gitDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(gitDir, ConfigFilename), []byte("log: [\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := LoadConfig(Scope{GitDir: gitDir}); err == nil {
		t.Error("expected parse error")
	}
}
