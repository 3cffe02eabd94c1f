package bootstrap

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/time/rate"

	"go-guildbuilder/internal/ai"
	"go-guildbuilder/internal/bot"
	"go-guildbuilder/internal/builder"
	"go-guildbuilder/internal/commands"
	"go-guildbuilder/internal/config"
	"go-guildbuilder/internal/cooldown"
	"go-guildbuilder/internal/dispatcher"
	"go-guildbuilder/internal/logging"
	"go-guildbuilder/internal/storage"
)

type Bootstrap struct {
	ConfigPath  string
	Config      *config.Config
	Components  *Components
	initialized bool
}

type Components struct {
	// Persistence
	Store       storage.Store
	ConfigCache *storage.ConfigCache
	Cooldowns   cooldown.Store

	// Outbound HTTP and AI
	HTTPPool    *dispatcher.HTTPPool
	RateLimiter *dispatcher.RateLimitMonitor
	HTTP        *dispatcher.Client
	Gateway     *ai.Gateway
	Designer    *ai.Designer

	// Discord
	Limiter *rate.Limiter
	Builder *builder.Builder
	Setup   *commands.Setup
	Session *bot.Session
}

func New(configPath string) *Bootstrap {
	return &Bootstrap{
		ConfigPath:  configPath,
		initialized: false,
	}
}

func (b *Bootstrap) Initialize() error {
	if err := b.loadConfig(); err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}

	if err := b.initializeLogging(); err != nil {
		return fmt.Errorf("logging init failed: %w", err)
	}

	if err := b.wireComponents(); err != nil {
		return fmt.Errorf("component wiring failed: %w", err)
	}

	b.initialized = true
	logging.Info("Bootstrap complete")
	return nil
}

func (b *Bootstrap) loadConfig() error {
	cfg, err := config.Load(b.ConfigPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	b.Config = cfg
	return nil
}

func (b *Bootstrap) initializeLogging() error {
	if err := logging.InitGlobalLogger(logging.ParseLevel(b.Config.Logging.Level), b.Config.Logging.File); err != nil {
		return err
	}
	logging.Info("Config loaded (token %s, model %s)", b.Config.MaskedToken(), b.Config.AI.Model)
	return nil
}

// ensureParentDirectory creates the directory holding path.
func ensureParentDirectory(path string) error {
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	_, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return os.MkdirAll(dir, 0755)
	}
	return err
}

func (b *Bootstrap) wireComponents() error {
	return Wire(b)
}

func (b *Bootstrap) Start() error {
	if !b.initialized {
		return fmt.Errorf("bootstrap not initialized")
	}

	return StartAll(b.Config, b.Components)
}

func (b *Bootstrap) Shutdown() error {
	if b.Components == nil {
		return nil
	}
	return Shutdown(b.Components)
}
