package server

import "fmt"

// Config holds HTTP server configuration.
type Config struct {
	Host         string `yaml:"host" mapstructure:"host"`
	Port         int    `yaml:"port" mapstructure:"port"`
	ReadTimeout  int    `yaml:"read_timeout" mapstructure:"read_timeout"`   // seconds
	WriteTimeout int    `yaml:"write_timeout" mapstructure:"write_timeout"` // seconds
	IdleTimeout  int    `yaml:"idle_timeout" mapstructure:"idle_timeout"`   // seconds
}

// ApplyDefaults sets default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.Port == 0 {
		c.Port = 8080
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 15
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 15
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = 60
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("server.port must be between 0 and 65535 (got: %d)", c.Port)
	}
	if c.ReadTimeout < 0 || c.WriteTimeout < 0 || c.IdleTimeout < 0 {
		return fmt.Errorf("server timeouts must be non-negative")
	}
	return nil
}
