package config

import (
	"os"
	"path/filepath"
	"time"

	appLog "github.com/chris-regnier/daybook/internal/log"
	"github.com/spf13/viper"
)

// ShellConfig holds shell integration configuration.
type ShellConfig struct {
	CacheTTL    string `mapstructure:"cache_ttl"`
	TodayIcon   string `mapstructure:"today_icon"`
	NoTodayIcon string `mapstructure:"no_today_icon"`
	StreakIcon  string `mapstructure:"streak_icon"`
	ShowItems   bool   `mapstructure:"show_items"`
	ShowBackend bool   `mapstructure:"show_backend"`
}

// ThemeConfig selects a color preset and optional per-color overrides.
type ThemeConfig struct {
	Preset        string `mapstructure:"preset"`
	Primary       string `mapstructure:"primary"`
	Secondary     string `mapstructure:"secondary"`
	Accent        string `mapstructure:"accent"`
	Muted         string `mapstructure:"muted"`
	Danger        string `mapstructure:"danger"`
	Background    string `mapstructure:"background"`
	MarkdownStyle string `mapstructure:"markdown_style"`
}

// BasicAuthConfig enables HTTP Basic Auth when both fields are set.
type BasicAuthConfig struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// WebConfig holds HTTP server configuration.
type WebConfig struct {
	Listen           string          `mapstructure:"listen"`
	UserHeader       string          `mapstructure:"user_header"`
	BasicAuth        BasicAuthConfig `mapstructure:"basic_auth"`
	ExportPastDays   int             `mapstructure:"export_past_days"`
	ExportFutureDays int             `mapstructure:"export_future_days"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Config holds the application configuration.
type Config struct {
	Storage  string      `mapstructure:"storage"`
	DataDir  string      `mapstructure:"data_dir"`
	Timezone string      `mapstructure:"timezone"`
	Owner    string      `mapstructure:"owner"`
	Editor   string      `mapstructure:"editor"`
	MaxWidth int         `mapstructure:"max_width"`
	Theme    ThemeConfig `mapstructure:"theme"`
	Web      WebConfig   `mapstructure:"web"`
	Log      LogConfig   `mapstructure:"log"`
	Shell    ShellConfig `mapstructure:"shell"`
}

// DefaultDataDir returns the default data directory (~/.daybook/).
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".daybook")
	}
	return filepath.Join(home, ".daybook")
}

// Load reads configuration from file, environment variables, and defaults.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("storage", "markdown")
	v.SetDefault("data_dir", DefaultDataDir())
	v.SetDefault("timezone", "")
	v.SetDefault("owner", "")
	v.SetDefault("editor", "")
	v.SetDefault("max_width", 100)
	v.SetDefault("theme.preset", "default-dark")
	v.SetDefault("theme.markdown_style", "")
	v.SetDefault("web.listen", "127.0.0.1:8080")
	v.SetDefault("web.user_header", "")
	v.SetDefault("web.basic_auth.username", "")
	v.SetDefault("web.basic_auth.password", "")
	v.SetDefault("web.export_past_days", 90)
	v.SetDefault("web.export_future_days", 365)
	v.SetDefault("log.level", "info")
	v.SetDefault("shell.cache_ttl", "5m")
	v.SetDefault("shell.today_icon", "✓")
	v.SetDefault("shell.no_today_icon", "✗")
	v.SetDefault("shell.streak_icon", "🔥")
	v.SetDefault("shell.show_items", true)
	v.SetDefault("shell.show_backend", false)

	// Config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// XDG support
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			v.AddConfigPath(filepath.Join(xdg, "daybook"))
		}
		v.AddConfigPath(filepath.Join(DefaultDataDir()))
		v.SetConfigName("config")
		v.SetConfigType("toml")
	}

	// Environment variables: DAYBOOK_STORAGE, DAYBOOK_DATA_DIR, DAYBOOK_TIMEZONE, etc.
	v.SetEnvPrefix("DAYBOOK")
	v.AutomaticEnv()

	// Read config file (ignore not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Only return error if it's not a "file not found" error
			if configPath != "" {
				return nil, err
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Location resolves the configured timezone. An empty or unknown zone
// falls back to time.Local.
func (c *Config) Location() *time.Location {
	if c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		appLog.Error("unknown timezone, using local", err, "timezone", c.Timezone)
		return time.Local
	}
	return loc
}

// CacheTTL parses shell.cache_ttl, defaulting to five minutes.
func (c *Config) CacheTTL() time.Duration {
	ttl, err := time.ParseDuration(c.Shell.CacheTTL)
	if err != nil || ttl <= 0 {
		return 5 * time.Minute
	}
	return ttl
}
