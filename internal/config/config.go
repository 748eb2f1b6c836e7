// Package config resolves runtime settings from defaults, a TOML file, a
// .env file and CHRONOPLAN_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

const (
	DefaultConfigFileName = "config.toml"
	DefaultDBName         = "chronoplan.db"
	DefaultStateName      = "chronoplan.json"
)

const (
	StorageSQLite = "sqlite"
	StorageFile   = "file"
	StorageMemory = "memory"
)

type Config struct {
	Storage              string  `toml:"storage"`
	DBPath               string  `toml:"db_path"`
	StatePath            string  `toml:"state_path"`
	PollIntervalSec      int     `toml:"poll_interval_sec"`
	SnoozeMinutes        int     `toml:"snooze_minutes"`
	Ringtone             string  `toml:"ringtone"`
	Volume               float64 `toml:"volume"`
	SoundCommand         string  `toml:"sound_command"`
	DesktopNotifications bool    `toml:"desktop_notifications"`
	AlarmPolicy          string  `toml:"alarm_policy"`
	EventBuffer          int     `toml:"event_buffer"`
	Timezone             string  `toml:"timezone"`
	DefaultFilter        string  `toml:"default_filter"`
}

func Default() Config {
	return Config{
		Storage:         StorageSQLite,
		DBPath:          DefaultDBName,
		StatePath:       DefaultStateName,
		PollIntervalSec: 10,
		SnoozeMinutes:   5,
		Ringtone:        "chime",
		Volume:          1.0,
		AlarmPolicy:     "queue",
		EventBuffer:     64,
		Timezone:        "Local",
		DefaultFilter:   "all",
	}
}

// LoadOrCreate reads the TOML file at path, writing the defaults there first
// when the file does not exist. Keys missing from the file keep their
// defaults.
func LoadOrCreate(path string) (Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Load resolves the full chain. A missing .env file is not an error.
func Load(path, envFile string) (Config, error) {
	cfg, err := LoadOrCreate(path)
	if err != nil {
		return cfg, err
	}
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	cfg = FromEnv(cfg)
	return cfg, cfg.Validate()
}

func FromEnv(base Config) Config {
	cfg := base
	if v, ok := getEnvString("CHRONOPLAN_STORAGE"); ok {
		cfg.Storage = v
	}
	if v, ok := getEnvString("CHRONOPLAN_DB_PATH"); ok {
		cfg.DBPath = v
	}
	if v, ok := getEnvString("CHRONOPLAN_STATE_PATH"); ok {
		cfg.StatePath = v
	}
	if v, ok := getEnvInt("CHRONOPLAN_POLL_INTERVAL_SEC"); ok && v > 0 {
		cfg.PollIntervalSec = v
	}
	if v, ok := getEnvInt("CHRONOPLAN_SNOOZE_MINUTES"); ok && v > 0 {
		cfg.SnoozeMinutes = v
	}
	if v, ok := getEnvString("CHRONOPLAN_RINGTONE"); ok {
		cfg.Ringtone = v
	}
	if v, ok := getEnvFloat("CHRONOPLAN_VOLUME"); ok && v >= 0 && v <= 1 {
		cfg.Volume = v
	}
	if v, ok := getEnvString("CHRONOPLAN_SOUND_COMMAND"); ok {
		cfg.SoundCommand = v
	}
	if v, ok := getEnvBool("CHRONOPLAN_DESKTOP_NOTIFICATIONS"); ok {
		cfg.DesktopNotifications = v
	}
	if v, ok := getEnvString("CHRONOPLAN_ALARM_POLICY"); ok {
		cfg.AlarmPolicy = v
	}
	if v, ok := getEnvInt("CHRONOPLAN_EVENT_BUFFER"); ok && v > 0 {
		cfg.EventBuffer = v
	}
	if v, ok := getEnvString("CHRONOPLAN_TIMEZONE"); ok {
		cfg.Timezone = v
	}
	if v, ok := getEnvString("CHRONOPLAN_DEFAULT_FILTER"); ok {
		cfg.DefaultFilter = v
	}
	return cfg
}

func (c Config) Validate() error {
	switch c.Storage {
	case StorageSQLite, StorageFile, StorageMemory:
	default:
		return fmt.Errorf("config: unknown storage %q", c.Storage)
	}
	switch c.AlarmPolicy {
	case "queue", "latest":
	default:
		return fmt.Errorf("config: unknown alarm policy %q", c.AlarmPolicy)
	}
	if c.PollIntervalSec <= 0 {
		return fmt.Errorf("config: poll_interval_sec must be positive, got %d", c.PollIntervalSec)
	}
	if c.SnoozeMinutes <= 0 {
		return fmt.Errorf("config: snooze_minutes must be positive, got %d", c.SnoozeMinutes)
	}
	if c.Volume < 0 || c.Volume > 1 {
		return fmt.Errorf("config: volume must be within [0, 1], got %v", c.Volume)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

func (c Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSec) * time.Second
}

// Location resolves the timezone used to derive the current date and minute.
func (c Config) Location() (*time.Location, error) {
	switch strings.TrimSpace(c.Timezone) {
	case "", "Local":
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func write(path string, cfg Config) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func getEnvString(name string) (string, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	return raw, raw != ""
}

func getEnvInt(name string) (int, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func getEnvFloat(name string) (float64, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func getEnvBool(name string) (bool, bool) {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return false, false
	}
	switch raw {
	case "1", "true", "yes", "y", "on":
		return true, true
	case "0", "false", "no", "n", "off":
		return false, true
	default:
		return false, false
	}
}
