package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.SyncSchedule != "*/30 * * * *" {
		t.Errorf("unexpected default schedule %q", cfg.SyncSchedule)
	}
	if cfg.DefaultList != "" || cfg.Timezone != "" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadReadsFileAndEnvWins(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".config", "quacktask")
	if err := os.MkdirAll(dir, 0700); err != nil {
		t.Fatal(err)
	}
	yaml := "default_list: school\nsync_schedule: \"0 7 * * *\"\ntimezone: America/New_York\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("QUACKTASK_DEFAULT_LIST", "overridden")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.DefaultList != "overridden" {
		t.Errorf("env override lost: %q", cfg.DefaultList)
	}
	if cfg.SyncSchedule != "0 7 * * *" || cfg.Timezone != "America/New_York" {
		t.Errorf("file values lost: %+v", cfg)
	}
}

func TestStoreLocationOverride(t *testing.T) {
	want := filepath.Join(t.TempDir(), "nested", "cache.db")
	cfg := &Config{StorePath: want}

	got, err := cfg.StoreLocation()
	if err != nil {
		t.Fatalf("StoreLocation failed: %v", err)
	}
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if _, err := os.Stat(filepath.Dir(got)); err != nil {
		t.Errorf("parent directory not created: %v", err)
	}
}
