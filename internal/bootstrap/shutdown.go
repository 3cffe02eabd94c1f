package bootstrap

import (
	"io"

	"go-guildbuilder/internal/logging"
)

func Shutdown(c *Components) error {
	logging.Info("Starting graceful shutdown...")

	if c.Setup != nil && c.Setup.Metrics != nil {
		logging.Info("Process metrics:\n%s", c.Setup.Metrics.Snapshot().Export())
	}

	if c.Session != nil {
		logging.Info("Closing Discord session...")
		if err := c.Session.Close(); err != nil {
			logging.Warn("Discord close failed: %v", err)
		}
	}

	if closer, ok := c.Cooldowns.(io.Closer); ok {
		logging.Info("Closing cooldown store...")
		if err := closer.Close(); err != nil {
			logging.Warn("Cooldown store close failed: %v", err)
		}
	}

	if c.Store != nil {
		logging.Info("Closing database...")
		if err := c.Store.Close(); err != nil {
			logging.Error("Database close failed: %v", err)
			return err
		}
	}

	logging.Info("Graceful shutdown complete")
	if logging.GlobalLogger != nil {
		return logging.GlobalLogger.Close()
	}
	return nil
}
