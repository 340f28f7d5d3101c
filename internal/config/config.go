package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"tempest-bot/internal/triggers"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

type Config struct {
	DiscordToken   string           `yaml:"discord_token"`
	OwnerID        string           `yaml:"owner_id"`
	DatabaseURL    string           `yaml:"database_url"`
	LogLevel       string           `yaml:"log_level"`
	CommandPrefix  string           `yaml:"command_prefix"`
	WelcomeChannel string           `yaml:"welcome_channel"`
	Health         HealthConfig     `yaml:"health"`
	Moderation     ModerationConfig `yaml:"moderation"`
	Broadcast      BroadcastConfig  `yaml:"broadcast"`
	Triggers       []TriggerConfig  `yaml:"triggers"`
	EmbedColors    EmbedColors      `yaml:"embed_colors"`
}

type HealthConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

type ModerationConfig struct {
	DefaultReason string `yaml:"default_reason"`
	BanDeleteDays int    `yaml:"ban_delete_days"`
}

type BroadcastConfig struct {
	PacingMS int `yaml:"pacing_ms"`
}

func (b BroadcastConfig) Pacing() time.Duration {
	return time.Duration(b.PacingMS) * time.Millisecond
}

type TriggerConfig struct {
	Phrase string `yaml:"phrase"`
	Reply  string `yaml:"reply"`
}

type EmbedColors struct {
	Info    int `yaml:"info"`
	Success int `yaml:"success"`
	Warning int `yaml:"warning"`
	Error   int `yaml:"error"`
}

func DefaultConfig() Config {
	return Config{
		LogLevel:       "info",
		CommandPrefix:  "!",
		WelcomeChannel: "welcome",
		Health:         HealthConfig{Enabled: true, Addr: ":8080"},
		Moderation:     ModerationConfig{DefaultReason: "No reason provided", BanDeleteDays: 0},
		Broadcast:      BroadcastConfig{PacingMS: 500},
		EmbedColors: EmbedColors{
			Info:    0x3B82F6,
			Success: 0x22C55E,
			Warning: 0xF59E0B,
			Error:   0xEF4444,
		},
	}
}

// Load reads defaults, then .env, then the YAML file, then environment
// overrides. An empty path falls back to CONFIG_PATH and then config.yaml.
// Missing .env and YAML files are not errors.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	_ = godotenv.Load()

	if path == "" {
		path = envString("CONFIG_PATH", "config.yaml")
	}
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, err
		}
	}

	applyEnv(&cfg)
	if cfg.DiscordToken == "" {
		return Config{}, errors.New("DISCORD_TOKEN is required")
	}

	normalize(&cfg)
	if _, err := triggers.NewTable(cfg.TriggerEntries()); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// TriggerEntries returns the configured trigger list in file order, or the
// built-in list when none is configured.
func (c Config) TriggerEntries() []triggers.Entry {
	if len(c.Triggers) == 0 {
		return triggers.DefaultEntries()
	}
	entries := make([]triggers.Entry, 0, len(c.Triggers))
	for _, t := range c.Triggers {
		entries = append(entries, triggers.Entry{Phrase: t.Phrase, Reply: t.Reply})
	}
	return entries
}

func applyEnv(cfg *Config) {
	cfg.DiscordToken = envString("DISCORD_TOKEN", cfg.DiscordToken)
	cfg.OwnerID = envString("OWNER_ID", cfg.OwnerID)
	cfg.DatabaseURL = envString("DATABASE_URL", cfg.DatabaseURL)
	cfg.LogLevel = envString("LOG_LEVEL", cfg.LogLevel)
	cfg.CommandPrefix = envString("COMMAND_PREFIX", cfg.CommandPrefix)
	cfg.WelcomeChannel = envString("WELCOME_CHANNEL", cfg.WelcomeChannel)
	cfg.Health.Enabled = envBool("HEALTH_ENABLED", cfg.Health.Enabled)
	cfg.Health.Addr = envString("HEALTH_ADDR", cfg.Health.Addr)
	cfg.Broadcast.PacingMS = envInt("BROADCAST_PACING_MS", cfg.Broadcast.PacingMS)
	cfg.Moderation.DefaultReason = envString("DEFAULT_REASON", cfg.Moderation.DefaultReason)
	cfg.Moderation.BanDeleteDays = envInt("BAN_DELETE_DAYS", cfg.Moderation.BanDeleteDays)
}

func normalize(cfg *Config) {
	defaults := DefaultConfig()
	cfg.CommandPrefix = strings.TrimSpace(cfg.CommandPrefix)
	if cfg.CommandPrefix == "" {
		cfg.CommandPrefix = defaults.CommandPrefix
	}
	cfg.WelcomeChannel = strings.TrimPrefix(strings.TrimSpace(cfg.WelcomeChannel), "#")
	if cfg.WelcomeChannel == "" {
		cfg.WelcomeChannel = defaults.WelcomeChannel
	}
	if strings.TrimSpace(cfg.Moderation.DefaultReason) == "" {
		cfg.Moderation.DefaultReason = defaults.Moderation.DefaultReason
	}
	// the platform accepts 0..7 days of message deletion on ban
	switch {
	case cfg.Moderation.BanDeleteDays < 0:
		cfg.Moderation.BanDeleteDays = 0
	case cfg.Moderation.BanDeleteDays > 7:
		cfg.Moderation.BanDeleteDays = 7
	}
	if cfg.Broadcast.PacingMS < 0 {
		cfg.Broadcast.PacingMS = 0
	}
	if cfg.Health.Addr == "" {
		cfg.Health.Addr = defaults.Health.Addr
	}
}

func BuildLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "json"
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.MessageKey = "message"
	cfg.EncoderConfig.LevelKey = "level"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.Level = zap.NewAtomicLevelAt(parseLevel(strings.ToLower(level)))

	return cfg.Build()
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func envString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		lower := strings.ToLower(value)
		return lower == "1" || lower == "true" || lower == "yes"
	}
	return fallback
}
