package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfigInitCmd(t *testing.T) {
	dir, _ := setupRepo(t, []fileChange{{"a.txt", "1"}})
	a := newTestApp(t, dir)

	out, err := runCmd(t, a, "config", "init")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	path := filepath.Join(dir, ".git", "carve.yaml")
	if !strings.Contains(out, path) {
		t.Errorf("expected output to name %s, got %q", path, out)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	if !strings.Contains(string(data), "update_ref: true") {
		t.Errorf("unexpected config content:\n%s", data)
	}

	if _, err := runCmd(t, a, "config", "init"); err == nil {
		t.Error("expected error when config exists")
	}
	if _, err := runCmd(t, a, "config", "init", "--force"); err != nil {
		t.Errorf("force: %v", err)
	}
}
