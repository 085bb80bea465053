package database

import (
	"fmt"
	"time"
)

// Config holds PostgreSQL pool configuration.
type Config struct {
	// DSN is the PostgreSQL connection string.
	DSN string `yaml:"dsn" mapstructure:"dsn"`

	// MaxConns is the maximum number of connections in the pool.
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`

	// MinConns is the number of connections kept open when idle.
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`

	// MaxConnLifetime is the maximum time a connection may be reused (e.g. "1h").
	MaxConnLifetime string `yaml:"max_conn_lifetime" mapstructure:"max_conn_lifetime"`

	// ConnectTimeout bounds each connection attempt (e.g. "5s").
	ConnectTimeout string `yaml:"connect_timeout" mapstructure:"connect_timeout"`

	// MaxRetries is the number of connection attempts before giving up.
	MaxRetries int `yaml:"max_retries" mapstructure:"max_retries"`
}

// ApplyDefaults sets defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.MaxConns <= 0 {
		c.MaxConns = 25
	}
	if c.MaxConnLifetime == "" {
		c.MaxConnLifetime = "1h"
	}
	if c.ConnectTimeout == "" {
		c.ConnectTimeout = "5s"
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 5
	}
}

// Validate checks that required fields are present and parseable.
func (c *Config) Validate() error {
	if c.DSN == "" {
		return fmt.Errorf("database.dsn is required")
	}
	if c.MaxConns <= 0 {
		return fmt.Errorf("database.max_conns must be > 0")
	}
	if c.MinConns < 0 || c.MinConns > c.MaxConns {
		return fmt.Errorf("database.min_conns (%d) must be between 0 and max_conns (%d)", c.MinConns, c.MaxConns)
	}
	if _, err := time.ParseDuration(c.MaxConnLifetime); err != nil {
		return fmt.Errorf("invalid database.max_conn_lifetime %q: %w", c.MaxConnLifetime, err)
	}
	if _, err := time.ParseDuration(c.ConnectTimeout); err != nil {
		return fmt.Errorf("invalid database.connect_timeout %q: %w", c.ConnectTimeout, err)
	}
	if c.MaxRetries <= 0 {
		return fmt.Errorf("database.max_retries must be > 0")
	}
	return nil
}
