package bootstrap

import (
	"context"
	"fmt"
	"time"

	"go-guildbuilder/internal/ai"
	"go-guildbuilder/internal/bot"
	"go-guildbuilder/internal/builder"
	"go-guildbuilder/internal/commands"
	"go-guildbuilder/internal/config"
	"go-guildbuilder/internal/cooldown"
	"go-guildbuilder/internal/dispatcher"
	"go-guildbuilder/internal/guild"
	"go-guildbuilder/internal/logging"
	"go-guildbuilder/internal/metrics"
	"go-guildbuilder/internal/storage"
)

func Wire(b *Bootstrap) error {
	logging.Info("Wiring components...")
	cfg := b.Config

	if err := ensureParentDirectory(cfg.Storage.DatabasePath); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	store, err := storage.OpenSQLite(cfg.Storage.DatabasePath)
	if err != nil {
		return err
	}
	logging.Info("Database opened at %s", cfg.Storage.DatabasePath)

	components, err := WireWithStore(cfg, store)
	if err != nil {
		store.Close()
		return err
	}

	if err := bot.Initialize(cfg.Bot.Token); err != nil {
		Shutdown(components)
		return err
	}
	components.Session = bot.GetSession()

	b.Components = components
	logging.Info("Component wiring complete")
	return nil
}

// WireWithStore builds everything except the Discord session on top of an
// already opened store.
func WireWithStore(cfg *config.Config, store storage.Store) (*Components, error) {
	cooldowns := newCooldownStore(cfg)

	timeout := time.Duration(cfg.AI.TimeoutSeconds) * time.Second
	httpPool := dispatcher.NewHTTPPool(cfg.Network.HTTPPoolSize, dispatcher.PoolOptions{Timeout: timeout})
	rateLimiter := dispatcher.NewRateLimitMonitor()
	httpClient := dispatcher.NewClient(httpPool, rateLimiter)

	gateway := ai.NewGateway(httpClient, cfg.AI.GatewayURL, cfg.AI.GatewayKey, cfg.AI.Model)
	designer := ai.NewDesigner(gateway, ai.Options{Model: cfg.AI.Model, MaxTokens: cfg.AI.MaxTokens})
	if cfg.AI.GatewayKey == "" {
		logging.Warn("AI_GATEWAY_KEY not set: /setup build will fail until it is configured")
	}

	configCache := storage.NewConfigCache(store)
	blueprintBuilder := builder.New(store)

	setup := &commands.Setup{
		Store:          store,
		Config:         configCache,
		Cooldowns:      cooldown.NewGuard(cooldowns, cfg.Cooldown.Server(), cfg.Cooldown.User()),
		Designer:       designer,
		Builder:        blueprintBuilder,
		Fetcher:        httpClient,
		MaxImportBytes: cfg.Builder.MaxImportBytes,
		Metrics:        metrics.GetRegistry(),
	}

	return &Components{
		Store:       store,
		ConfigCache: configCache,
		Cooldowns:   cooldowns,
		HTTPPool:    httpPool,
		RateLimiter: rateLimiter,
		HTTP:        httpClient,
		Gateway:     gateway,
		Designer:    designer,
		Limiter:     guild.NewLimiter(cfg.Builder.RequestsPerSecond, cfg.Builder.Burst),
		Builder:     blueprintBuilder,
		Setup:       setup,
	}, nil
}

// newCooldownStore prefers Redis so several processes share windows, and
// falls back to process memory when Redis is unset or unreachable.
func newCooldownStore(cfg *config.Config) cooldown.Store {
	if cfg.Storage.RedisAddr == "" {
		logging.Info("Cooldowns kept in memory")
		return cooldown.NewMemory()
	}
	rdb, err := cooldown.NewRedis(context.Background(), cfg.Storage.RedisAddr, cfg.Storage.RedisPrefix)
	if err != nil {
		logging.Warn("Redis unavailable at %s, cooldowns kept in memory: %v", cfg.Storage.RedisAddr, err)
		return cooldown.NewMemory()
	}
	logging.Info("Cooldowns stored in Redis at %s", cfg.Storage.RedisAddr)
	return rdb
}

func StartAll(cfg *config.Config, c *Components) error {
	logging.Info("Starting components...")

	if c.Session == nil {
		return fmt.Errorf("discord session not wired")
	}

	c.Session.SetupEventHandlers(c.ConfigCache, cfg.Bot.WelcomeDM)

	if err := c.Session.Connect(); err != nil {
		return err
	}

	if err := commands.Initialize(c.Session, c.Setup, c.Limiter, cfg.Bot.ClientID, cfg.Bot.DevGuildID); err != nil {
		return err
	}
	if cfg.Bot.DevGuildID != "" {
		logging.Info("Commands registered on dev guild %s", cfg.Bot.DevGuildID)
	}

	logging.Info("All components started")
	return nil
}
