package config

import (
	"os"
	"testing"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 12345 {
		t.Errorf("default port = %d, want 12345", cfg.Port)
	}
	if cfg.DBPath != "chat.db" {
		t.Errorf("default db_path = %q, want chat.db", cfg.DBPath)
	}
	if cfg.ReadLimit != 65536 {
		t.Errorf("default read_limit = %d, want 65536", cfg.ReadLimit)
	}
	if cfg.Mode != "release" {
		t.Errorf("default mode = %q, want release", cfg.Mode)
	}
}
