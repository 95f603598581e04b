package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultItemsPerCycle    = 200
	DefaultTickInterval     = 10 * time.Second
	DefaultExpirySweepTicks = 6
	DefaultDatabasePath     = "ahbot.db"
	DefaultAPIPort          = 8080
	DefaultRateLimit        = 30
	DefaultLogLevel         = "info"
	DefaultLogMaxSizeMB     = 10
	DefaultLogMaxBackups    = 3
	DefaultLogMaxAgeDays    = 28
)

func (c *Config) applyDefaults() {
	if c.Bot.ItemsPerCycle == 0 {
		c.Bot.ItemsPerCycle = DefaultItemsPerCycle
	}
	if c.Bot.TickInterval == 0 {
		c.Bot.TickInterval = DefaultTickInterval
	}
	if c.Bot.ExpirySweepTicks == 0 {
		c.Bot.ExpirySweepTicks = DefaultExpirySweepTicks
	}

	if c.Database.Path == "" {
		c.Database.Path = DefaultDatabasePath
	}

	if c.API.Port == 0 {
		c.API.Port = DefaultAPIPort
	}
	if c.API.RateLimit == 0 {
		c.API.RateLimit = DefaultRateLimit
	}

	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.Logging.MaxSizeMB == 0 {
		c.Logging.MaxSizeMB = DefaultLogMaxSizeMB
	}
	if c.Logging.MaxBackups == 0 {
		c.Logging.MaxBackups = DefaultLogMaxBackups
	}
	if c.Logging.MaxAgeDays == 0 {
		c.Logging.MaxAgeDays = DefaultLogMaxAgeDays
	}
}
