package config

import (
	"errors"
	"fmt"
)

// Validate checks that all required fields are set and values are valid.
// An unset bot GUID is not an error here; the bot refuses to run and logs it.
func (c *Config) Validate() error {
	if c.Bot.ItemsPerCycle < 1 {
		return errors.New("bot.items_per_cycle must be >= 1")
	}
	if c.Bot.TickInterval <= 0 {
		return errors.New("bot.tick_interval must be positive")
	}

	if c.Database.Path == "" {
		return errors.New("database.path is required")
	}

	if c.API.Enabled {
		if c.API.Port < 1 || c.API.Port > 65535 {
			return fmt.Errorf("api.port must be between 1 and 65535, got %d", c.API.Port)
		}
		if c.API.RateLimit < 1 {
			return errors.New("api.rate_limit must be >= 1")
		}
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}

	return nil
}
