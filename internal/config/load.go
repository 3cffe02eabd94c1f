package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

var ErrMissingToken = errors.New("discord token missing or too short")

// Config is read from config.json, then environment variables win.
type Config struct {
	Bot      BotConfig      `json:"bot"`
	AI       AIConfig       `json:"ai"`
	Storage  StorageConfig  `json:"storage"`
	Cooldown CooldownConfig `json:"cooldown"`
	Builder  BuilderConfig  `json:"builder"`
	Network  NetworkConfig  `json:"network"`
	Logging  LoggingConfig  `json:"logging"`
}

type BotConfig struct {
	Token    string `json:"token" envconfig:"DISCORD_TOKEN"`
	ClientID string `json:"client_id" envconfig:"CLIENT_ID"`
	// DevGuildID registers commands on one guild instead of globally.
	DevGuildID string `json:"dev_guild_id" envconfig:"DEV_GUILD_ID"`
	WelcomeDM  bool   `json:"welcome_dm" envconfig:"WELCOME_DM"`
}

type AIConfig struct {
	GatewayURL     string `json:"gateway_url" envconfig:"AI_GATEWAY_URL"`
	GatewayKey     string `json:"gateway_key" envconfig:"AI_GATEWAY_KEY"`
	Model          string `json:"model" envconfig:"AI_MODEL"`
	MaxTokens      int    `json:"max_tokens" envconfig:"AI_MAX_TOKENS"`
	TimeoutSeconds int    `json:"timeout_seconds" envconfig:"AI_TIMEOUT_SECONDS"`
}

type StorageConfig struct {
	DatabasePath string `json:"database_path" envconfig:"DATABASE_PATH"`
	// RedisAddr switches cooldowns to Redis when set.
	RedisAddr   string `json:"redis_addr" envconfig:"REDIS_ADDR"`
	RedisPrefix string `json:"redis_prefix" envconfig:"REDIS_PREFIX"`
}

type CooldownConfig struct {
	ServerSeconds int `json:"server_seconds" envconfig:"COOLDOWN_SERVER_SECONDS"`
	UserSeconds   int `json:"user_seconds" envconfig:"COOLDOWN_USER_SECONDS"`
}

func (c CooldownConfig) Server() time.Duration { return time.Duration(c.ServerSeconds) * time.Second }
func (c CooldownConfig) User() time.Duration   { return time.Duration(c.UserSeconds) * time.Second }

type BuilderConfig struct {
	// RequestsPerSecond and Burst shape the Discord REST limiter.
	RequestsPerSecond float64 `json:"requests_per_second" envconfig:"BUILDER_RPS"`
	Burst             int     `json:"burst" envconfig:"BUILDER_BURST"`
	MaxImportBytes    int     `json:"max_import_bytes" envconfig:"MAX_IMPORT_BYTES"`
}

type NetworkConfig struct {
	HTTPPoolSize int `json:"http_pool_size" envconfig:"HTTP_POOL_SIZE"`
}

type LoggingConfig struct {
	Level string `json:"level" envconfig:"LOG_LEVEL"`
	File  string `json:"file" envconfig:"LOG_FILE"`
}

var GlobalConfig *Config

// Load starts from DefaultConfig, overlays the JSON file when it exists and
// applies environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment: %w", err)
	}
	cfg.Bot.Token = strings.TrimSpace(cfg.Bot.Token)

	GlobalConfig = cfg
	return cfg, nil
}

func LoadOrDefault(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		return DefaultConfig()
	}
	return cfg
}

func DefaultConfig() *Config {
	return &Config{
		Bot: BotConfig{
			WelcomeDM: true,
		},
		AI: AIConfig{
			Model:          "gpt-4o-mini",
			MaxTokens:      2048,
			TimeoutSeconds: 60,
		},
		Storage: StorageConfig{
			DatabasePath: "data/guildbuilder.db",
			RedisPrefix:  "guildbuilder:",
		},
		Cooldown: CooldownConfig{
			ServerSeconds: 300,
			UserSeconds:   120,
		},
		Builder: BuilderConfig{
			RequestsPerSecond: 5,
			Burst:             5,
			MaxImportBytes:    256 * 1024,
		},
		Network: NetworkConfig{
			HTTPPoolSize: 4,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "logs/guildbuilder.log",
		},
	}
}

// Validate reports configuration the bot cannot start with. The CLI
// commands that never connect to Discord skip it.
func (c *Config) Validate() error {
	if len(c.Bot.Token) < 10 {
		return ErrMissingToken
	}
	if c.Builder.RequestsPerSecond <= 0 || c.Builder.Burst < 1 {
		return fmt.Errorf("builder rate limit must be positive (rps=%v burst=%d)", c.Builder.RequestsPerSecond, c.Builder.Burst)
	}
	if c.Cooldown.ServerSeconds < 0 || c.Cooldown.UserSeconds < 0 {
		return errors.New("cooldowns cannot be negative")
	}
	return nil
}

// MaskedToken shows enough of the token to tell two apart in logs.
func (c *Config) MaskedToken() string {
	t := c.Bot.Token
	if len(t) < 10 {
		return "<unset>"
	}
	return t[:6] + "..." + t[len(t)-4:]
}

func Get() *Config {
	if GlobalConfig == nil {
		return DefaultConfig()
	}
	return GlobalConfig
}
