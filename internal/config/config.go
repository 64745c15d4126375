package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is built from the environment, optionally layered over a YAML file.
// Environment variables always win over the file.
type Config struct {
	Port        string        `yaml:"port"`
	HTTPTimeout time.Duration `yaml:"http_timeout"`
	LogLevel    slog.Level    `yaml:"-"`
	LogLevelRaw string        `yaml:"log_level"`

	MetaCurrentFile  string `yaml:"meta_current_file"`
	MetaPreviousFile string `yaml:"meta_previous_file"`
	MetaCurrentURL   string `yaml:"meta_current_url"`
	MetaPreviousURL  string `yaml:"meta_previous_url"`
	SearchConsoleDir string `yaml:"search_console_dir"`
	StoryFile        string `yaml:"story_file"`

	LeadSubmissionType string `yaml:"lead_submission_type"`

	AccessCode   string `yaml:"access_code"`
	SecureCookie bool   `yaml:"secure_cookie"`

	SinkURL    string `yaml:"sink_url"`
	SinkSecret string `yaml:"sink_secret"`
}

func Defaults() Config {
	return Config{
		Port:             "8080",
		HTTPTimeout:      15 * time.Second,
		LogLevel:         slog.LevelInfo,
		MetaCurrentFile:  "data/meta/meta-report-Jan-1-2025-to-Jan-31-2026.xlsx",
		MetaPreviousFile: "data/meta/Meta-report-Jan-1-2024-to-Jan-31-2025-Comparision.xlsx",
		StoryFile:        "data/report.yaml",
		AccessCode:       "0424",
	}
}

func FromEnv() Config {
	cfg := Defaults()
	cfg.applyEnv()
	return cfg
}

// Load reads the YAML file at path (if any) and then applies the environment.
func Load(path string) (Config, error) {
	if path == "" {
		return FromEnv(), nil
	}
	cfg := Defaults()
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.LogLevelRaw != "" {
		cfg.LogLevel = parseLevel(cfg.LogLevelRaw)
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("HTTP_TIMEOUT_SECONDS"); v != "" {
		if d, err := time.ParseDuration(v + "s"); err == nil {
			c.HTTPTimeout = d
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevelRaw = v
		c.LogLevel = parseLevel(v)
	}
	if os.Getenv("APP_ENV") == "production" {
		c.SecureCookie = true
	}
	c.Port = envOr("PORT", c.Port)
	c.MetaCurrentFile = envOr("META_CURRENT_FILE", c.MetaCurrentFile)
	c.MetaPreviousFile = envOr("META_PREVIOUS_FILE", c.MetaPreviousFile)
	c.MetaCurrentURL = envOr("META_CURRENT_URL", c.MetaCurrentURL)
	c.MetaPreviousURL = envOr("META_PREVIOUS_URL", c.MetaPreviousURL)
	c.SearchConsoleDir = envOr("SEARCH_CONSOLE_DIR", c.SearchConsoleDir)
	c.StoryFile = envOr("STORY_FILE", c.StoryFile)
	c.LeadSubmissionType = envOr("LEAD_SUBMISSION_TYPE", c.LeadSubmissionType)
	c.AccessCode = envOr("ACCESS_CODE", c.AccessCode)
	c.SinkURL = envOr("SINK_URL", c.SinkURL)
	c.SinkSecret = envOr("SINK_SECRET", c.SinkSecret)
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}
