// Package app assembles the account service from its configuration.
package app

import (
	"fmt"

	"github.com/kbukum/apierr/auth/jwt"
	"github.com/kbukum/apierr/auth/password"
	"github.com/kbukum/apierr/config"
	"github.com/kbukum/apierr/database"
	"github.com/kbukum/apierr/server"
)

// Config is the full accountd configuration.
type Config struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Server   server.Config   `yaml:"server" mapstructure:"server"`
	Database database.Config `yaml:"database" mapstructure:"database"`
	JWT      jwt.Config      `yaml:"jwt" mapstructure:"jwt"`
	Password password.Config `yaml:"password" mapstructure:"password"`
}

// ApplyDefaults applies defaults to every section.
func (c *Config) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Database.ApplyDefaults()
	c.JWT.ApplyDefaults()
	c.Password.ApplyDefaults()
}

// Validate validates every section.
func (c *Config) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("config.server: %w", err)
	}
	if err := c.Database.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := c.JWT.Validate(); err != nil {
		return fmt.Errorf("config.jwt: %w", err)
	}
	if err := c.Password.Validate(); err != nil {
		return fmt.Errorf("config.password: %w", err)
	}
	return nil
}
