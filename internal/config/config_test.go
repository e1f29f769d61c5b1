package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if cfg.ListenAddr != ":8080" {
		t.Errorf("listen addr = %q", cfg.ListenAddr)
	}
	if cfg.MemoryCap != 30 {
		t.Errorf("memory cap = %d", cfg.MemoryCap)
	}
	if cfg.MemoryStaleness != 2*time.Hour {
		t.Errorf("staleness = %s", cfg.MemoryStaleness)
	}
	if cfg.MemorySweepPeriod != 10*time.Minute {
		t.Errorf("sweep period = %s", cfg.MemorySweepPeriod)
	}
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("listen_addr: \":9090\"\nai_model: gpt-4o\nmemory_cap: 50\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ListenAddr != ":9090" {
		t.Errorf("listen addr = %q", cfg.ListenAddr)
	}
	if cfg.AIModel != "gpt-4o" {
		t.Errorf("model = %q", cfg.AIModel)
	}
	if cfg.MemoryCap != 50 {
		t.Errorf("memory cap = %d", cfg.MemoryCap)
	}
	// Unset fields keep their defaults.
	if cfg.DatabasePath != "state/skema.db" {
		t.Errorf("database path = %q", cfg.DatabasePath)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("ai_model: from-file\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("AI_MODEL", "from-env")
	t.Setenv("MEMORY_STALENESS", "45m")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.AIModel != "from-env" {
		t.Errorf("env should win over file, got %q", cfg.AIModel)
	}
	if cfg.MemoryStaleness != 45*time.Minute {
		t.Errorf("staleness = %s", cfg.MemoryStaleness)
	}
}

func TestLoadRejectsBadConfig(t *testing.T) {
	t.Setenv("MEMORY_CAP", "1")
	if _, err := Load(""); err == nil {
		t.Error("memory cap below 2 should be rejected")
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("listen_addr: [:::"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Error("malformed yaml should be rejected")
	}
}
