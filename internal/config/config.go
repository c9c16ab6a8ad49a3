package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	DefaultLogLevel      = "warn"
	DefaultTimezone      = "Local"
	DefaultSweepInterval = "1m"
	DefaultDBFileName    = "gamelife.db"

	configFileName = ".gamelife.toml"
	appDirName     = "gamelife"

	configDirEnvKey = "GAMELIFE_CONFIG_DIR"
	dbPathEnvKey    = "GAMELIFE_DB"
	logLevelEnvKey  = "GAMELIFE_LOG_LEVEL"
	timezoneEnvKey  = "GAMELIFE_TZ"
)

// Config defines runtime configuration for gamelife.
type Config struct {
	DBPath        string  `toml:"db_path"`
	LogLevel      string  `toml:"log_level"`
	Timezone      string  `toml:"timezone"`
	SweepInterval string  `toml:"sweep_interval"`
	Economy       Economy `toml:"economy"`
}

// Default returns default configuration values.
func Default() Config {
	return Config{
		DBPath:        "",
		LogLevel:      DefaultLogLevel,
		Timezone:      DefaultTimezone,
		SweepInterval: DefaultSweepInterval,
		Economy:       DefaultEconomy(),
	}
}

// Location resolves the configured timezone used for calendar dates.
func (c *Config) Location() (*time.Location, error) {
	name := strings.TrimSpace(c.Timezone)
	if name == "" || strings.EqualFold(name, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", name, err)
	}
	return loc, nil
}

// SweepEvery parses the overdue sweep interval.
func (c *Config) SweepEvery() (time.Duration, error) {
	raw := strings.TrimSpace(c.SweepInterval)
	if raw == "" {
		raw = DefaultSweepInterval
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid sweep_interval %q: %w", raw, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("sweep_interval must be positive, got %s", d)
	}
	return d, nil
}

func loadFile(path string, cfg *Config) error {
	_, err := loadFileIfExists(path, cfg)
	return err
}

func loadFileIfExists(path string, cfg *Config) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if info.IsDir() {
		return false, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return false, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return true, nil
}

var allowedKeys = []string{
	"db_path",
	"log_level",
	"timezone",
	"sweep_interval",
	"economy.xp_per_level",
	"economy.xp_floor",
	"economy.repeat_achievement_rewards",
}

// AllowedKeys returns the set of valid config keys.
func AllowedKeys() []string {
	return allowedKeys
}

// IsAllowedKey checks if a key is a valid config key.
func IsAllowedKey(key string) bool {
	for _, k := range allowedKeys {
		if k == key {
			return true
		}
	}
	return false
}

// Get returns the value of a config key.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "db_path":
		return c.DBPath, nil
	case "log_level":
		return c.LogLevel, nil
	case "timezone":
		return c.Timezone, nil
	case "sweep_interval":
		return c.SweepInterval, nil
	case "economy.xp_per_level":
		return strconv.Itoa(c.Economy.XPPerLevel), nil
	case "economy.xp_floor":
		return strconv.Itoa(c.Economy.XPFloor), nil
	case "economy.repeat_achievement_rewards":
		return strconv.FormatBool(c.Economy.RepeatAchievementRewards), nil
	default:
		return "", fmt.Errorf("unknown key: %s", key)
	}
}

// GlobalPath returns the path to the config file.
func GlobalPath() (string, error) {
	if dir := strings.TrimSpace(os.Getenv(configDirEnvKey)); dir != "" {
		return filepath.Join(dir, configFileName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, configFileName), nil
}

// DefaultDBPath returns the database location used when none is configured.
func DefaultDBPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appDirName, DefaultDBFileName), nil
}

// SetKey reads the TOML file at path, sets key=value, and writes it back.
func SetKey(path, key, value string) error {
	if !IsAllowedKey(key) {
		return fmt.Errorf("unknown key: %s", key)
	}

	data := make(map[string]any)
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &data); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	}

	parsedValue, err := parseSetValue(key, value)
	if err != nil {
		return err
	}
	if err := setNestedKey(data, strings.Split(key, "."), parsedValue); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(data)
}

// Load reads the config file and applies env overrides.
func Load() (*Config, error) {
	cfg := Default()

	path, err := GlobalPath()
	if err == nil {
		if err := loadFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	if dbPath := strings.TrimSpace(os.Getenv(dbPathEnvKey)); dbPath != "" {
		cfg.DBPath = dbPath
	}
	if level := strings.TrimSpace(os.Getenv(logLevelEnvKey)); level != "" {
		cfg.LogLevel = level
	}
	if tz := strings.TrimSpace(os.Getenv(timezoneEnvKey)); tz != "" {
		cfg.Timezone = tz
	}

	if cfg.DBPath == "" {
		dbPath, err := DefaultDBPath()
		if err != nil {
			return nil, fmt.Errorf("resolve db path: %w", err)
		}
		cfg.DBPath = dbPath
	}

	if err := cfg.Economy.normalize(); err != nil {
		return nil, err
	}
	if err := cfg.Economy.Validate(); err != nil {
		return nil, fmt.Errorf("invalid economy in %s: %w", path, err)
	}
	if _, err := cfg.Location(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func parseSetValue(key, value string) (any, error) {
	value = strings.TrimSpace(value)
	switch key {
	case "economy.xp_per_level":
		parsed, err := strconv.Atoi(value)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("%s must be a positive integer", key)
		}
		return int64(parsed), nil
	case "economy.xp_floor":
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("%s must be an integer", key)
		}
		return int64(parsed), nil
	case "economy.repeat_achievement_rewards":
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("%s must be true or false", key)
		}
		return parsed, nil
	case "sweep_interval":
		d, err := time.ParseDuration(value)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("%s must be a positive duration", key)
		}
		return value, nil
	case "timezone":
		if !strings.EqualFold(value, "local") {
			if _, err := time.LoadLocation(value); err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
		}
		return value, nil
	default:
		return value, nil
	}
}

func setNestedKey(data map[string]any, parts []string, value any) error {
	if len(parts) == 0 {
		return fmt.Errorf("invalid config key")
	}
	if len(parts) == 1 {
		data[parts[0]] = value
		return nil
	}
	childRaw, ok := data[parts[0]]
	if !ok {
		child := map[string]any{}
		data[parts[0]] = child
		return setNestedKey(child, parts[1:], value)
	}
	child, ok := childRaw.(map[string]any)
	if !ok {
		return fmt.Errorf("cannot set nested key %q", strings.Join(parts, "."))
	}
	return setNestedKey(child, parts[1:], value)
}
