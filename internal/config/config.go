package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for the data-dex gateway.
type Config struct {
	Server     ServerConfig      `toml:"server"`
	Database   DatabaseConfig    `toml:"database"`
	P2P        P2PConfig         `toml:"p2p"`
	Market     MarketConfig      `toml:"market"`
	Milestones []MilestoneConfig `toml:"milestones"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	ReadTimeout  int    `toml:"read_timeout"`
	WriteTimeout int    `toml:"write_timeout"`
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Database string `toml:"database"`
	SSLMode  string `toml:"ssl_mode"`
}

// P2PConfig holds libp2p configuration for the announce node.
type P2PConfig struct {
	Enabled         bool     `toml:"enabled"`
	ListenAddresses []string `toml:"listen_addresses"`
	BootstrapPeers  []string `toml:"bootstrap_peers"`
}

// MarketConfig holds marketplace ledger settings. Accounts registered with an
// email in AdminEmails act for AdminAddress on pool operations. FeePercent is
// a pointer so an explicit 0 survives defaulting; nil means unset.
type MarketConfig struct {
	FeePercent         *int64   `toml:"fee_percent"`
	PlatformAddress    string   `toml:"platform_address"`
	AdminAddress       string   `toml:"admin_address"`
	AdminEmails        []string `toml:"admin_emails"`
	InitialPoolBalance int64    `toml:"initial_pool_balance"`
}

// MilestoneConfig describes a milestone seeded into the pool at startup.
type MilestoneConfig struct {
	Name         string `toml:"name"`
	Description  string `toml:"description"`
	Requirement  int64  `toml:"requirement"`
	RewardAmount int64  `toml:"reward_amount"`
}

// Load loads configuration from a TOML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.SetDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// DefaultConfig returns a default configuration.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.SetDefaults()
	return cfg
}

// DatabaseURL returns the PostgreSQL connection URL.
func (c *DatabaseConfig) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode)
}

// Validate rejects settings the ledger cannot run with.
func (c *Config) Validate() error {
	if fee := c.Market.FeePercent; fee != nil && (*fee < 0 || *fee > 20) {
		return fmt.Errorf("market.fee_percent must be in [0,20], got %d", *fee)
	}
	if c.Market.InitialPoolBalance < 0 {
		return fmt.Errorf("market.initial_pool_balance cannot be negative")
	}
	for i, m := range c.Milestones {
		if m.Name == "" {
			return fmt.Errorf("milestones[%d]: name is required", i)
		}
		if m.Requirement <= 0 || m.RewardAmount <= 0 {
			return fmt.Errorf("milestones[%d]: requirement and reward_amount must be positive", i)
		}
	}
	return nil
}

// SetDefaults sets default values for config.
func (c *Config) SetDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 30
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 30
	}
	if c.Database.Host == "" {
		c.Database.Host = "localhost"
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.User == "" {
		c.Database.User = "postgres"
	}
	if c.Database.Database == "" {
		c.Database.Database = "datadex"
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Market.FeePercent == nil {
		fee := int64(5)
		c.Market.FeePercent = &fee
	}
	if c.Market.PlatformAddress == "" {
		c.Market.PlatformAddress = "platform:fees"
	}
	if c.Market.AdminAddress == "" {
		c.Market.AdminAddress = "platform:admin"
	}
}
