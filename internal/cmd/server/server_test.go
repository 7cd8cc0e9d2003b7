package server

import (
	"flag"
	"testing"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Port != 8080 {
		t.Fatalf("expected default port 8080, got %d", cfg.Port)
	}
	if cfg.StoragePath != "" {
		t.Fatalf("expected empty storage path default, got %q", cfg.StoragePath)
	}
}

func TestParseConfigEnvOverrides(t *testing.T) {
	t.Setenv("DIAGNOSTIC_GATE_PORT", "9002")
	t.Setenv("DIAGNOSTIC_GATE_STORAGE_PATH", "/tmp/gate.db")
	t.Setenv("DIAGNOSTIC_GATE_RULES_DIR", "/etc/gate/rules")

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Port != 9002 {
		t.Fatalf("expected env port 9002, got %d", cfg.Port)
	}
	if cfg.StoragePath != "/tmp/gate.db" {
		t.Fatalf("storage path = %q", cfg.StoragePath)
	}
	if cfg.RulesDir != "/etc/gate/rules" {
		t.Fatalf("rules dir = %q", cfg.RulesDir)
	}
}

func TestParseConfigFlagsWinOverEnv(t *testing.T) {
	t.Setenv("DIAGNOSTIC_GATE_PORT", "9002")

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-port", "9010", "-storage-path", "data/override.db"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Port != 9010 {
		t.Fatalf("expected flag override 9010, got %d", cfg.Port)
	}
	if cfg.StoragePath != "data/override.db" {
		t.Fatalf("storage path = %q", cfg.StoragePath)
	}
}
