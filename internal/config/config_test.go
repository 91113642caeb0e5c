package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	wd, _ := os.Getwd()
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { os.Chdir(wd) })
	t.Setenv("DB_PATH", "/tmp/procurement-test.db")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8001 || cfg.Database.Driver != "sqlite" {
		t.Fatalf("unexpected defaults %+v", cfg.Server)
	}
	if cfg.Database.Path != "/tmp/procurement-test.db" {
		t.Fatalf("expected DB_PATH override, got %q", cfg.Database.Path)
	}
	if cfg.Attachment.MaxSize != 10<<20 {
		t.Fatalf("unexpected attachment cap %d", cfg.Attachment.MaxSize)
	}
	if cfg.Scheduler.OrphanGrace != 24*time.Hour {
		t.Fatalf("unexpected orphan grace %v", cfg.Scheduler.OrphanGrace)
	}
	if cfg.Redis.Enabled || cfg.MinIO.Enabled {
		t.Fatalf("optional backends must default to off")
	}
}

func TestProcurementLocation(t *testing.T) {
	if loc := (ProcurementConfig{Timezone: "Asia/Manila"}).Location(); loc.String() != "Asia/Manila" {
		t.Fatalf("expected Asia/Manila, got %s", loc)
	}
	if loc := (ProcurementConfig{Timezone: "Not/AZone"}).Location(); loc != time.Local {
		t.Fatalf("expected fallback to local time, got %s", loc)
	}
}
