package config

import "time"

// Config holds runtime settings for the ledger CLI.
type Config struct {
	ServerEndpointAddr string
	SyncInterval       time.Duration
	RemoteTimeout      time.Duration
	DatabasePath       string
	LogFile            string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.SyncInterval = 30 * time.Second
	c.RemoteTimeout = 10 * time.Second
	c.DatabasePath = "ledger.db"
	c.LogFile = "ledger.log"
}

// LoadConfig applies defaults, then JSON, then flags. Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
