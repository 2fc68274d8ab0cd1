// Package config loads the server settings from YAML with environment
// overrides.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Game     GameConfig     `yaml:"game" json:"game"`
	Cooldown CooldownConfig `yaml:"cooldown" json:"cooldown"`
	Storage  StorageConfig  `yaml:"storage" json:"storage"`
	API      APIConfig      `yaml:"api" json:"api"`
	Log      LogConfig      `yaml:"log" json:"log"`
}

type GameConfig struct {
	Seed          int64         `yaml:"seed" json:"seed"` // 0 draws a fresh seed per run
	Background    string        `yaml:"background" json:"background"`
	SiteAmplitude float64       `yaml:"site_amplitude" json:"site_amplitude"` // negative disables
	DayInterval   time.Duration `yaml:"day_interval" json:"day_interval"`
	Autoplay      float64       `yaml:"autoplay_speed" json:"autoplay_speed"` // 0 waits for players
}

type CooldownConfig struct {
	Base           time.Duration `yaml:"base" json:"base"`
	PerConsequence time.Duration `yaml:"per_consequence" json:"per_consequence"`
}

type StorageConfig struct {
	DBPath      string `yaml:"db_path" json:"db_path"`
	SnapshotDir string `yaml:"snapshot_dir" json:"snapshot_dir"`
}

type APIConfig struct {
	Port       int           `yaml:"port" json:"port"`
	AdminKey   string        `yaml:"admin_key" json:"-"`
	CORSOrigin string        `yaml:"cors_origin" json:"cors_origin"`
	RateLimit  int           `yaml:"rate_limit" json:"rate_limit"` // POSTs per IP per window
	RateWindow time.Duration `yaml:"rate_window" json:"rate_window"`
}

type LogConfig struct {
	Level string `yaml:"level" json:"level"`
}

// Default is the configuration used when no file is given.
func Default() *Config {
	c := &Config{}
	c.ApplyDefaults()
	return c
}

func (g *GameConfig) ApplyDefaults() {
	if g.SiteAmplitude == 0 {
		g.SiteAmplitude = 3
	}
	if g.DayInterval == 0 {
		g.DayInterval = 30 * time.Second
	}
}

func (c *CooldownConfig) ApplyDefaults() {
	if c.Base == 0 {
		c.Base = 1000 * time.Millisecond
	}
	if c.PerConsequence == 0 {
		c.PerConsequence = 800 * time.Millisecond
	}
}

func (s *StorageConfig) ApplyDefaults() {
	if s.DBPath == "" {
		s.DBPath = "data/lasthope.db"
	}
	if s.SnapshotDir == "" {
		s.SnapshotDir = "data/snapshots"
	}
}

func (a *APIConfig) ApplyDefaults() {
	if a.Port == 0 {
		a.Port = 8080
	}
	if a.CORSOrigin == "" {
		a.CORSOrigin = "*"
	}
	if a.RateLimit == 0 {
		a.RateLimit = 30
	}
	if a.RateWindow == 0 {
		a.RateWindow = time.Minute
	}
}

func (c *Config) ApplyDefaults() {
	c.Game.ApplyDefaults()
	c.Cooldown.ApplyDefaults()
	c.Storage.ApplyDefaults()
	c.API.ApplyDefaults()
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Load reads path. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, err
	}
	var r Config
	if err := yaml.Unmarshal(b, &r); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	r.ApplyDefaults()
	return &r, nil
}

// FromEnv overrides settings from LASTHOPE_* variables.
func (c *Config) FromEnv() {
	if v := getEnvInt64("LASTHOPE_SEED"); v != 0 {
		c.Game.Seed = v
	}
	if v := os.Getenv("LASTHOPE_BACKGROUND"); v != "" {
		c.Game.Background = v
	}
	if v := getEnvDuration("LASTHOPE_DAY_INTERVAL"); v > 0 {
		c.Game.DayInterval = v
	}
	if v, ok := getEnvFloat("LASTHOPE_AUTOPLAY"); ok && v >= 0 {
		c.Game.Autoplay = v
	}
	if v := os.Getenv("LASTHOPE_DB"); v != "" {
		c.Storage.DBPath = v
	}
	if v := os.Getenv("LASTHOPE_SNAPSHOT_DIR"); v != "" {
		c.Storage.SnapshotDir = v
	}
	if v := getEnvInt64("LASTHOPE_PORT"); v > 0 {
		c.API.Port = int(v)
	}
	if v := os.Getenv("LASTHOPE_ADMIN_KEY"); v != "" {
		c.API.AdminKey = v
	}
	if v := os.Getenv("LASTHOPE_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

// SlogLevel maps the configured level name, defaulting to info.
func (l LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func getEnvInt64(key string) int64 {
	v, err := strconv.ParseInt(os.Getenv(key), 10, 64)
	if err != nil {
		return 0
	}
	return v
}

func getEnvFloat(key string) (float64, bool) {
	s := os.Getenv(key)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	return v, err == nil
}

func getEnvDuration(key string) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return 0
	}
	return v
}
