package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Port != "8086" {
		t.Fatalf("port = %q", cfg.Port)
	}
	if cfg.Model != "gemini-2.0-flash" {
		t.Fatalf("model = %q", cfg.Model)
	}
	if cfg.EventRetentionDays != 30 {
		t.Fatalf("event_retention_days = %d", cfg.EventRetentionDays)
	}
}

func TestLoadConfig_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ink.yaml")
	data := "port: \"9090\"\nrecords_db: /tmp/ink.db\nmax_svg_bytes: 1048576\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Port != "9090" {
		t.Fatalf("port = %q", cfg.Port)
	}
	if cfg.RecordsDB != "/tmp/ink.db" {
		t.Fatalf("records_db = %q", cfg.RecordsDB)
	}
	if cfg.MaxSVGBytes != 1048576 {
		t.Fatalf("max_svg_bytes = %d", cfg.MaxSVGBytes)
	}
	// Unset fields still get defaults.
	if cfg.Model != "gemini-2.0-flash" {
		t.Fatalf("model = %q", cfg.Model)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := loadConfig("/nonexistent/ink.yaml"); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestEnv(t *testing.T) {
	t.Setenv("INKD_TEST_KEY", "set")
	if v := env("INKD_TEST_KEY", "fallback"); v != "set" {
		t.Fatalf("env = %q", v)
	}
	if v := env("INKD_TEST_MISSING", "fallback"); v != "fallback" {
		t.Fatalf("env = %q", v)
	}
}
