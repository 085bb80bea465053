package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// FileSystem abstracts file lookups so resolution can be tested.
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
}

// OSFileSystem implements FileSystem on the real file system.
type OSFileSystem struct{}

func (OSFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (OSFileSystem) LoadEnv(path string) error {
	return godotenv.Load(path)
}

// LoaderConfig holds loader dependencies and optional overrides.
type LoaderConfig struct {
	FileSystem FileSystem
	ConfigFile string
	EnvFile    string
	EnvPrefix  string
}

// LoaderOption is a functional option for LoadConfig.
type LoaderOption func(*LoaderConfig)

// WithFileSystem sets a custom filesystem for the loader.
func WithFileSystem(fs FileSystem) LoaderOption {
	return func(lc *LoaderConfig) { lc.FileSystem = fs }
}

// WithConfigFile sets an explicit config file path.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// WithEnvPrefix overrides the environment prefix (default: upper-cased
// service name with dashes replaced by underscores).
func WithEnvPrefix(prefix string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvPrefix = prefix }
}

// ResolveFiles returns the config and .env files to load for serviceName.
// Explicit paths win; otherwise the standard locations are searched.
func ResolveFiles(serviceName string, lc LoaderConfig) (configFile, envFile string) {
	configFile, envFile = lc.ConfigFile, lc.EnvFile
	if configFile == "" {
		configFile = firstExisting(lc.FileSystem,
			fmt.Sprintf("./cmd/%s/config.yml", serviceName),
			"./config/config.yml",
			"./config.yml",
		)
	}
	if envFile == "" {
		envFile = firstExisting(lc.FileSystem,
			fmt.Sprintf("./cmd/%s/.env", serviceName),
			fmt.Sprintf(".env.%s", serviceName),
			".env",
		)
	}
	return configFile, envFile
}

func firstExisting(fs FileSystem, paths ...string) string {
	for _, p := range paths {
		if fs.Exists(p) {
			return p
		}
	}
	return ""
}

// LoadConfig loads configuration for a service into cfg: the YAML file
// first, then the .env file, then environment variables named
// <PREFIX>_<SECTION>_<KEY>, e.g. ACCOUNTD_DATABASE_DSN.
func LoadConfig(serviceName string, cfg interface{}, opts ...LoaderOption) error {
	lc := LoaderConfig{FileSystem: OSFileSystem{}}
	for _, opt := range opts {
		opt(&lc)
	}
	if lc.EnvPrefix == "" {
		lc.EnvPrefix = strings.ToUpper(strings.ReplaceAll(serviceName, "-", "_"))
	}

	configFile, envFile := ResolveFiles(serviceName, lc)
	v := viper.New()

	if configFile != "" && lc.FileSystem.Exists(configFile) {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("config: read %s: %w", configFile, err)
		}
	}

	if envFile != "" && lc.FileSystem.Exists(envFile) {
		if err := lc.FileSystem.LoadEnv(envFile); err != nil {
			return fmt.Errorf("config: load %s: %w", envFile, err)
		}
	}

	if err := bindEnv(v, lc.EnvPrefix); err != nil {
		return err
	}

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("config: unmarshal for service %s: %w", serviceName, err)
	}
	return nil
}

// bindEnv binds every prefixed environment variable under each plausible
// key nesting, since underscores separate both sections and words.
func bindEnv(v *viper.Viper, prefix string) error {
	for _, kv := range os.Environ() {
		name, _, _ := strings.Cut(kv, "=")
		rest, ok := strings.CutPrefix(name, prefix+"_")
		if !ok || rest == "" {
			continue
		}
		for _, key := range envKeyVariants(rest) {
			if err := v.BindEnv(key, name); err != nil {
				return fmt.Errorf("config: bind %s: %w", name, err)
			}
		}
	}
	return nil
}

// envKeyVariants maps DATABASE_MAX_CONNS to
// [database_max_conns, database.max_conns, database.max.conns].
func envKeyVariants(envKey string) []string {
	lower := strings.ToLower(envKey)
	parts := strings.Split(lower, "_")
	variants := []string{lower}
	for i := 1; i < len(parts); i++ {
		variants = append(variants, strings.Join(parts[:i], ".")+"."+strings.Join(parts[i:], "_"))
	}
	if len(parts) > 2 {
		variants = append(variants, strings.Join(parts, "."))
	}
	return variants
}
