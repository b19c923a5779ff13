package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Chart.Stride != 2 || cfg.Appearance.Theme != "flexoki-dark" || cfg.Serve.Addr == "" {
		t.Errorf("defaults = %+v", cfg)
	}
	if Exists() {
		t.Error("Exists = true with no file")
	}
}

func TestSaveLoad(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := DefaultConfig()
	cfg.General.DefaultYear = 2027
	cfg.General.DefaultInitialBalance = "250.75"
	cfg.Appearance.Currency = "$"
	if err := Save(cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !Exists() {
		t.Fatal("Exists = false after Save")
	}

	got, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != cfg {
		t.Errorf("Load = %+v, want %+v", got, cfg)
	}
}

func TestSave_OverwritesAndReportsErrors(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	long := DefaultConfig()
	long.Appearance.Currency = "CHF CHF CHF CHF CHF CHF"
	if err := Save(long); err != nil {
		t.Fatalf("Save: %v", err)
	}
	short := DefaultConfig()
	if err := Save(short); err != nil {
		t.Fatalf("second Save: %v", err)
	}
	got, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != short {
		t.Errorf("Load = %+v, want %+v", got, short)
	}

	// A directory where the file should be makes the write fail.
	if err := os.Remove(ConfigPath()); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(ConfigPath(), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := Save(short); err == nil {
		t.Error("Save onto a directory succeeded")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	if err := os.MkdirAll(filepath.Join(dir, "fincast"), 0o755); err != nil {
		t.Fatal(err)
	}
	toml := "[general]\ndefault_year = 2020\n[appearance]\ntheme = \"nord\"\n"
	if err := os.WriteFile(filepath.Join(dir, "fincast", "config.toml"), []byte(toml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("FINCAST_YEAR", "2030")
	t.Setenv("FINCAST_STORE", "/tmp/x.db")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.General.DefaultYear != 2030 {
		t.Errorf("year = %d, want env value 2030", cfg.General.DefaultYear)
	}
	if cfg.Appearance.Theme != "nord" {
		t.Errorf("theme = %q, want file value nord", cfg.Appearance.Theme)
	}
	if cfg.StorePath() != "/tmp/x.db" {
		t.Errorf("StorePath = %q", cfg.StorePath())
	}
}

func TestLoad_BadTOML(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	_ = os.MkdirAll(filepath.Join(dir, "fincast"), 0o755)
	_ = os.WriteFile(filepath.Join(dir, "fincast", "config.toml"), []byte("[general\n"), 0o600)

	if _, err := Load(); err == nil {
		t.Error("Load accepted malformed TOML")
	}
}

func TestDerivedValues(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/data")
	cfg := DefaultConfig()

	if got := cfg.StorePath(); got != filepath.Join("/data", "fincast", "fincast.db") {
		t.Errorf("StorePath = %q", got)
	}
	now := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	if got := cfg.Year(now); got != 2026 {
		t.Errorf("Year = %d, want 2026", got)
	}
	if b, err := cfg.InitialBalance(); err != nil || !b.IsZero() {
		t.Errorf("InitialBalance = %s, %v", b, err)
	}

	cfg.General.DefaultInitialBalance = "abc"
	if _, err := cfg.InitialBalance(); err == nil {
		t.Error("InitialBalance accepted abc")
	}

	cfg.Serve.PollIntervalSec = 0
	if got := cfg.PollInterval(); got != 100*time.Millisecond {
		t.Errorf("PollInterval = %s", got)
	}
}
