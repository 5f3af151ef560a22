package models

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestLoadConfig(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
branch_id: "branch-1"
tax_rate: 0.1
poll_interval: 30s
storage: "postgres"
postgres:
  host: "localhost"
  port: "5432"
  user: "pos"
  password: "pos"
  dbname: "tablepos"
  sslmode: "disable"
archive:
  enabled: true
  bucket: "pos-archive"
  region: "eu-west-1"
  interval: 1h
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.BranchID != "branch-1" || cfg.Storage != "postgres" {
		t.Errorf("got %+v", cfg)
	}
	if cfg.TaxRate != 0.1 {
		t.Errorf("tax_rate = %v, want 0.1", cfg.TaxRate)
	}
	if cfg.PollInterval != 30*time.Second {
		t.Errorf("poll_interval = %v, want 30s", cfg.PollInterval)
	}
	if cfg.Archive.Interval != time.Hour {
		t.Errorf("archive interval = %v, want 1h", cfg.Archive.Interval)
	}
	want := "host=localhost port=5432 user=pos password=pos dbname=tablepos sslmode=disable"
	if got := cfg.Postgres.ConnString(); got != want {
		t.Errorf("ConnString() = %q, want %q", got, want)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cwd, _ := os.Getwd()
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(cwd) })

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.TaxRate != 0.08 {
		t.Errorf("default tax_rate = %v, want 0.08", cfg.TaxRate)
	}
	if cfg.PollInterval != 10*time.Second {
		t.Errorf("default poll_interval = %v, want 10s", cfg.PollInterval)
	}
	if cfg.Storage != "file" {
		t.Errorf("default storage = %q, want file", cfg.Storage)
	}
	if cfg.Seed.Tables != 20 || cfg.Seed.MenuItems != 40 {
		t.Errorf("seed defaults = %+v", cfg.Seed)
	}
}
