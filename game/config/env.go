package config

import (
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/caarlos0/env/v11"
)

// Save backends
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// ServerConfig holds the process settings read from the environment
type ServerConfig struct {
	Host        string `env:"FOODCHAIN_HOST" envDefault:"localhost"`
	Port        int    `env:"FOODCHAIN_PORT" envDefault:"8080"`
	DataDir     string `env:"FOODCHAIN_DATA_DIR" envDefault:"data"`
	SaveDir     string `env:"FOODCHAIN_SAVE_DIR" envDefault:"saves"`
	SaveBackend string `env:"FOODCHAIN_SAVE_BACKEND" envDefault:"file"`
	SQLitePath  string `env:"FOODCHAIN_SQLITE_PATH" envDefault:"saves/foodchain.db"`
	EventLog    string `env:"FOODCHAIN_EVENT_LOG" envDefault:"data/log.txt"` // empty disables
	Seed        uint64 `env:"FOODCHAIN_SEED" envDefault:"0"`
}

// envEventLog set to an empty value disables the event log
const envEventLog = "FOODCHAIN_EVENT_LOG"

// LoadServerConfig parses ServerConfig from the environment
func LoadServerConfig() (ServerConfig, error) {
	var cfg ServerConfig
	if err := ParseEnv(&cfg); err != nil {
		return ServerConfig{}, err
	}
	// envDefault also fills variables that are set but empty
	if v, ok := os.LookupEnv(envEventLog); ok && v == "" {
		cfg.EventLog = ""
	}
	if err := cfg.Validate(); err != nil {
		return ServerConfig{}, err
	}
	return cfg, nil
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate checks values the environment parser cannot
func (c ServerConfig) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	switch c.SaveBackend {
	case BackendFile, BackendSQLite:
	default:
		return fmt.Errorf("unknown save backend %q (want %s or %s)", c.SaveBackend, BackendFile, BackendSQLite)
	}
	return nil
}

// Addr returns host:port for the HTTP listener
func (c ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
