package jwt

import (
	"fmt"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

// SigningMethod names a supported HMAC signing algorithm.
type SigningMethod string

const (
	HS256 SigningMethod = "HS256"
	HS384 SigningMethod = "HS384"
	HS512 SigningMethod = "HS512"
)

// Config configures the JWT token service.
type Config struct {
	// Secret is the HMAC signing key.
	Secret string `yaml:"secret" mapstructure:"secret"`

	// Method is the signing algorithm (default: HS256).
	Method SigningMethod `yaml:"method" mapstructure:"method"`

	// Issuer is the "iss" claim (optional).
	Issuer string `yaml:"issuer" mapstructure:"issuer"`

	// Audience is the "aud" claim (optional).
	Audience string `yaml:"audience" mapstructure:"audience"`

	// AccessTokenTTL is the lifetime of access tokens (default: 15m).
	AccessTokenTTL time.Duration `yaml:"access_token_ttl" mapstructure:"access_token_ttl"`
}

// ApplyDefaults fills in zero-value fields.
func (c *Config) ApplyDefaults() {
	if c.Method == "" {
		c.Method = HS256
	}
	if c.AccessTokenTTL == 0 {
		c.AccessTokenTTL = 15 * time.Minute
	}
}

// Validate checks required fields.
func (c *Config) Validate() error {
	switch c.Method {
	case HS256, HS384, HS512:
	default:
		return fmt.Errorf("jwt.method must be one of [HS256, HS384, HS512] (got: %s)", c.Method)
	}
	if c.Secret == "" {
		return fmt.Errorf("jwt.secret is required")
	}
	if c.AccessTokenTTL < 0 {
		return fmt.Errorf("jwt.access_token_ttl must be non-negative (got: %s)", c.AccessTokenTTL)
	}
	return nil
}

func (c *Config) signingMethod() gojwt.SigningMethod {
	switch c.Method {
	case HS384:
		return gojwt.SigningMethodHS384
	case HS512:
		return gojwt.SigningMethodHS512
	default:
		return gojwt.SigningMethodHS256
	}
}
