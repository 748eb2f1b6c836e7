package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	if cfg.PollIntervalSec != 10 || cfg.SnoozeMinutes != 5 {
		t.Fatalf("unexpected timing defaults: %+v", cfg)
	}
	if cfg.Ringtone != "chime" || cfg.Volume != 1.0 || cfg.AlarmPolicy != "queue" {
		t.Fatalf("unexpected alarm defaults: %+v", cfg)
	}
	if cfg.Storage != StorageSQLite || cfg.EventBuffer != 64 || cfg.DefaultFilter != "all" {
		t.Fatalf("unexpected runtime defaults: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
	if cfg.PollInterval() != 10*time.Second {
		t.Fatalf("unexpected poll interval: %v", cfg.PollInterval())
	}
}

func TestLoadOrCreateWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", DefaultConfigFileName)
	cfg, err := LoadOrCreate(path)
	if err != nil {
		t.Fatalf("load or create: %v", err)
	}
	if cfg != Default() {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected config file written: %v", err)
	}

	again, err := LoadOrCreate(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if again != cfg {
		t.Fatalf("reloaded config differs: %+v", again)
	}
}

func TestLoadOrCreateReadsPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultConfigFileName)
	body := "storage = \"file\"\nsnooze_minutes = 10\nalarm_policy = \"latest\"\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := LoadOrCreate(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Storage != StorageFile || cfg.SnoozeMinutes != 10 || cfg.AlarmPolicy != "latest" {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.PollIntervalSec != 10 || cfg.Ringtone != "chime" {
		t.Fatalf("missing keys lost defaults: %+v", cfg)
	}
}

func TestLoadOrCreateRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultConfigFileName)
	if err := os.WriteFile(path, []byte("alarm_policy = \"loudest\"\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadOrCreate(path); err == nil {
		t.Fatal("expected invalid policy error")
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("CHRONOPLAN_STORAGE", "memory")
	t.Setenv("CHRONOPLAN_POLL_INTERVAL_SEC", "3")
	t.Setenv("CHRONOPLAN_SNOOZE_MINUTES", "15")
	t.Setenv("CHRONOPLAN_VOLUME", "0.25")
	t.Setenv("CHRONOPLAN_DESKTOP_NOTIFICATIONS", "yes")
	t.Setenv("CHRONOPLAN_EVENT_BUFFER", "not-a-number")
	t.Setenv("CHRONOPLAN_TIMEZONE", "UTC")

	cfg := FromEnv(Default())
	if cfg.Storage != StorageMemory || cfg.PollIntervalSec != 3 || cfg.SnoozeMinutes != 15 {
		t.Fatalf("unexpected overrides: %+v", cfg)
	}
	if cfg.Volume != 0.25 || !cfg.DesktopNotifications {
		t.Fatalf("unexpected alarm overrides: %+v", cfg)
	}
	if cfg.EventBuffer != 64 {
		t.Fatalf("invalid int must be ignored, got %d", cfg.EventBuffer)
	}
	loc, err := cfg.Location()
	if err != nil || loc != time.UTC {
		t.Fatalf("expected UTC location, got %v, %v", loc, err)
	}
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	if err := os.WriteFile(envFile, []byte("CHRONOPLAN_RINGTONE=digital\n"), 0o644); err != nil {
		t.Fatalf("write env: %v", err)
	}
	t.Setenv("CHRONOPLAN_RINGTONE", "")
	os.Unsetenv("CHRONOPLAN_RINGTONE")

	cfg, err := Load(filepath.Join(dir, DefaultConfigFileName), envFile)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Ringtone != "digital" {
		t.Fatalf("expected ringtone from .env, got %q", cfg.Ringtone)
	}

	if _, err := Load(filepath.Join(dir, DefaultConfigFileName), filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("missing .env must be ignored: %v", err)
	}
}

func TestLocationRejectsUnknownZone(t *testing.T) {
	cfg := Default()
	cfg.Timezone = "Mars/Olympus"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected unknown timezone error")
	}
}
