package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the entlink service configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Batch    BatchConfig    `yaml:"batch"`
	Cache    CacheConfig    `yaml:"cache"`
	Storage  StorageConfig  `yaml:"storage"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver"` // valkey, redis (default: valkey)
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
	Standalone       bool     `yaml:"standalone"`
}

// PipelineConfig selects the stages and strategies.
type PipelineConfig struct {
	Stages   []string   `yaml:"stages"`   // subject_index, disambiguation, rating
	Resolver string     `yaml:"resolver"` // degree, flow, authority, classification
	Rating   string     `yaml:"rating"`   // hub, idf, position, term_frequency
	HITS     HITSConfig `yaml:"hits"`
}

// HITSConfig bounds the HITS iteration.
type HITSConfig struct {
	MaxIterations int     `yaml:"max_iterations"`
	Tolerance     float64 `yaml:"tolerance"`
}

// BatchConfig holds batch processing limits.
type BatchConfig struct {
	MaxBatchSize int `yaml:"max_batch_size"`
	Workers      int `yaml:"workers"`
}

// CacheConfig holds the knowledge-base cache settings.
type CacheConfig struct {
	Disabled   bool `yaml:"disabled"`
	MaxEntries int  `yaml:"max_entries"`
}

// StorageConfig holds storage settings.
type StorageConfig struct {
	KeyPrefix string `yaml:"key_prefix"`
	// SeedFile is an optional YAML knowledge-base dump loaded at startup.
	SeedFile string `yaml:"seed_file"`
}

// Stage names accepted in pipeline.stages.
const (
	StageSubjectIndex   = "subject_index"
	StageDisambiguation = "disambiguation"
	StageRating         = "rating"
)

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse decodes YAML, expands env variables, applies defaults and validates.
func Parse(data []byte) (Config, error) {
	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "valkey"
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if len(c.Pipeline.Stages) == 0 {
		c.Pipeline.Stages = []string{StageSubjectIndex, StageDisambiguation, StageRating}
	}
	if c.Pipeline.Resolver == "" {
		c.Pipeline.Resolver = "degree"
	}
	if c.Pipeline.Rating == "" {
		c.Pipeline.Rating = "position"
	}
	if c.Pipeline.HITS.MaxIterations <= 0 {
		c.Pipeline.HITS.MaxIterations = 50
	}
	if c.Pipeline.HITS.Tolerance <= 0 {
		c.Pipeline.HITS.Tolerance = 1e-9
	}
	if c.Batch.MaxBatchSize <= 0 {
		c.Batch.MaxBatchSize = 100
	}
	if c.Batch.Workers <= 0 {
		c.Batch.Workers = 4
	}
	if c.Cache.MaxEntries <= 0 {
		c.Cache.MaxEntries = 100_000
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "entlink:"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	switch c.Database.Driver {
	case "valkey", "redis":
	default:
		return fmt.Errorf("database.driver must be \"valkey\" or \"redis\", got %q", c.Database.Driver)
	}
	for i, s := range c.Pipeline.Stages {
		switch s {
		case StageSubjectIndex, StageDisambiguation, StageRating:
		default:
			return fmt.Errorf("pipeline.stages[%d]: unknown stage %q", i, s)
		}
	}
	switch c.Pipeline.Resolver {
	case "degree", "flow", "authority", "classification":
	default:
		return fmt.Errorf("pipeline.resolver: unknown strategy %q", c.Pipeline.Resolver)
	}
	switch c.Pipeline.Rating {
	case "hub", "idf", "position", "term_frequency":
	default:
		return fmt.Errorf("pipeline.rating: unknown strategy %q", c.Pipeline.Rating)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
