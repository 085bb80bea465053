package password

import "fmt"

// Algorithm represents supported password hashing algorithms.
type Algorithm string

const (
	// AlgorithmBcrypt is bcrypt hashing.
	AlgorithmBcrypt Algorithm = "bcrypt"

	// AlgorithmArgon2id is argon2id hashing.
	AlgorithmArgon2id Algorithm = "argon2id"
)

// Config configures password hashing behavior.
// Loadable from YAML/env via mapstructure tags.
type Config struct {
	// Algorithm selects the hashing algorithm (default: "argon2id").
	Algorithm Algorithm `yaml:"algorithm" mapstructure:"algorithm"`

	// BcryptCost is the bcrypt cost parameter (default: 12, range: 4-31).
	BcryptCost int `yaml:"bcrypt_cost" mapstructure:"bcrypt_cost"`

	// Argon2Time is the number of iterations for argon2id (default: 1).
	Argon2Time uint32 `yaml:"argon2_time" mapstructure:"argon2_time"`

	// Argon2Memory is the memory usage in KiB for argon2id (default: 65536).
	Argon2Memory uint32 `yaml:"argon2_memory" mapstructure:"argon2_memory"`

	// Argon2Threads is the parallelism for argon2id (default: 4).
	Argon2Threads uint8 `yaml:"argon2_threads" mapstructure:"argon2_threads"`

	// MinLength is the minimum password length (default: 8).
	MinLength int `yaml:"min_length" mapstructure:"min_length"`
}

// ApplyDefaults sets defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Algorithm == "" {
		c.Algorithm = AlgorithmArgon2id
	}
	if c.BcryptCost == 0 {
		c.BcryptCost = 12
	}
	if c.Argon2Time == 0 {
		c.Argon2Time = 1
	}
	if c.Argon2Memory == 0 {
		c.Argon2Memory = 64 * 1024
	}
	if c.Argon2Threads == 0 {
		c.Argon2Threads = 4
	}
	if c.MinLength == 0 {
		c.MinLength = 8
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	switch c.Algorithm {
	case AlgorithmBcrypt, AlgorithmArgon2id:
	default:
		return fmt.Errorf("password.algorithm must be bcrypt or argon2id (got: %s)", c.Algorithm)
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("password.bcrypt_cost must be between 4 and 31 (got: %d)", c.BcryptCost)
	}
	if c.MinLength < 1 {
		return fmt.Errorf("password.min_length must be >= 1 (got: %d)", c.MinLength)
	}
	return nil
}

// NewHasher creates a Hasher from configuration.
func NewHasher(cfg Config) Hasher {
	cfg.ApplyDefaults()
	switch cfg.Algorithm {
	case AlgorithmBcrypt:
		return NewBcryptHasher(WithCost(cfg.BcryptCost), WithBcryptMinLength(cfg.MinLength))
	default:
		return NewArgon2Hasher(
			WithArgon2Time(cfg.Argon2Time),
			WithArgon2Memory(cfg.Argon2Memory),
			WithArgon2Threads(cfg.Argon2Threads),
			WithArgon2MinLength(cfg.MinLength),
		)
	}
}
