package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

var (
	ErrConfigFileNotFound    = errors.New("could not find config file in any config path")
	ErrConfigVersionMissing  = errors.New("config file is missing version field")
	ErrConfigVersionMismatch = errors.New("config file version mismatch")
	ErrTokenMissing          = errors.New("bot token is not set")
)

// Current version of the config file.
const CurrentVersion = 1

const (
	defaultConfirmTimeout = 60
	defaultRateLimit      = 300
	defaultDatabasePath   = "data/warden.db"
	defaultLogLevel       = "info"
)

// Config represents the entire application configuration.
type Config struct {
	Version    int              `koanf:"version"`
	Bot        BotConfig        `koanf:"bot"`
	Debug      Debug            `koanf:"debug"`
	Database   Database         `koanf:"database"`
	Moderation ModerationConfig `koanf:"moderation"`
	Confession ConfessionConfig `koanf:"confession"`
}

// BotConfig contains Discord connection configuration.
type BotConfig struct {
	Token   string `koanf:"token"`    // Discord bot token for authentication
	GuildID uint64 `koanf:"guild_id"` // Guild for per-guild command registration (0 for global)
}

// Debug contains debug-related configuration.
type Debug struct {
	LogLevel string `koanf:"log_level"` // Log level (debug, info, warn, error)
}

// Database contains the embedded database configuration.
type Database struct {
	Path string `koanf:"path"` // SQLite database file path
}

// ModerationConfig contains moderation command configuration.
type ModerationConfig struct {
	ModRoleID             uint64 `koanf:"mod_role_id"`             // Role that may use moderation commands
	LogChannelID          uint64 `koanf:"log_channel_id"`          // Channel mirroring the audit log (0 to disable)
	ConfirmTimeoutSeconds int    `koanf:"confirm_timeout_seconds"` // Seconds before a confirmation expires
}

// ConfirmTimeout returns the confirmation expiry as a duration.
func (m ModerationConfig) ConfirmTimeout() time.Duration {
	if m.ConfirmTimeoutSeconds <= 0 {
		return defaultConfirmTimeout * time.Second
	}

	return time.Duration(m.ConfirmTimeoutSeconds) * time.Second
}

// ConfessionConfig contains confession relay configuration.
type ConfessionConfig struct {
	ChannelID        uint64 `koanf:"channel_id"`         // Channel confessions are posted to (0 to disable)
	RateLimitSeconds int    `koanf:"rate_limit_seconds"` // Per-user window between submissions
}

// RateLimitWindow returns the per-user submission window as a duration.
func (c ConfessionConfig) RateLimitWindow() time.Duration {
	if c.RateLimitSeconds <= 0 {
		return defaultRateLimit * time.Second
	}

	return time.Duration(c.RateLimitSeconds) * time.Second
}

// LoadConfig loads bot.toml from the given directory, or from the default
// search paths when dir is empty. Returns the config along with the used
// config directory.
func LoadConfig(dir string) (*Config, string, error) {
	k := koanf.New(".")

	configPaths := []string{dir}
	if dir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, "", fmt.Errorf("failed to get home directory: %w", err)
		}

		configPaths = []string{
			".warden",
			homeDir + "/.warden/config",
			"/etc/warden/config",
			"config",
			".",
		}
	}

	var usedConfigPath string

	for _, path := range configPaths {
		configPath := fmt.Sprintf("%s/bot.toml", path)
		if err := k.Load(file.Provider(configPath), toml.Parser()); err == nil {
			usedConfigPath = path
			break
		}
	}

	if usedConfigPath == "" {
		return nil, "", fmt.Errorf("%w: bot.toml", ErrConfigFileNotFound)
	}

	var config Config
	if err := k.Unmarshal("", &config); err != nil {
		return nil, "", fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := checkConfigVersion(config.Version); err != nil {
		return nil, "", err
	}

	if config.Bot.Token == "" {
		return nil, "", ErrTokenMissing
	}

	applyDefaults(&config)

	return &config, usedConfigPath, nil
}

func applyDefaults(config *Config) {
	if config.Database.Path == "" {
		config.Database.Path = defaultDatabasePath
	}

	if config.Debug.LogLevel == "" {
		config.Debug.LogLevel = defaultLogLevel
	}
}

// checkConfigVersion checks if the config file version is correct.
func checkConfigVersion(current int) error {
	if current == 0 {
		return fmt.Errorf("%w: bot.toml", ErrConfigVersionMissing)
	}

	if current != CurrentVersion {
		return fmt.Errorf("%w: bot.toml (got: %d, expected: %d)",
			ErrConfigVersionMismatch, current, CurrentVersion)
	}

	return nil
}
