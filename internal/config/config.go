// Package config handles YAML configuration loading with environment
// variable substitution. Files support ${VAR} syntax.
package config

import "time"

// Config is the root configuration of the bot.
type Config struct {
	Bot      BotConfig      `yaml:"bot"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Database DatabaseConfig `yaml:"database"`
	API      APIConfig      `yaml:"api"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// BotConfig holds the engine switches and the synthetic participant.
type BotConfig struct {
	EnableSeller            bool          `yaml:"enable_seller"`
	EnableBuyer             bool          `yaml:"enable_buyer"`
	UseBuyPriceForSeller    bool          `yaml:"use_buy_price_for_seller"`
	UseBuyPriceForBuyer     bool          `yaml:"use_buy_price_for_buyer"`
	Account                 uint32        `yaml:"account"`
	GUID                    uint64        `yaml:"guid"`
	ItemsPerCycle           uint32        `yaml:"items_per_cycle"`
	AllowTwoSideInteraction bool          `yaml:"allow_two_side_interaction"`
	TickInterval            time.Duration `yaml:"tick_interval"`
	ExpirySweepTicks        uint64        `yaml:"expiry_sweep_ticks"` // ticks between expiry sweeps
	Seed                    int64         `yaml:"seed"`               // 0 seeds from crypto/rand
}

// CatalogConfig points at optional item data imported at startup.
type CatalogConfig struct {
	SeedFile string `yaml:"seed_file"`
}

// DatabaseConfig holds the SQLite location.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// APIConfig holds the admin HTTP server settings.
type APIConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Port      int    `yaml:"port"`
	AdminKey  string `yaml:"admin_key"`
	RateLimit int    `yaml:"rate_limit"` // admin requests per minute per IP
}

// LoggingConfig holds log level and rotation settings.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"` // empty logs to stdout only
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}
