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

// Cache drivers.
const (
	CacheFile   = "file"
	CacheRedis  = "redis"
	CacheValkey = "valkey"
	CacheNone   = "none"
)

// Config holds the snowball application configuration.
type Config struct {
	Run        RunConfig        `yaml:"run"`
	Cache      CacheConfig      `yaml:"cache"`
	Extraction ExtractionConfig `yaml:"extraction"`
	HTTP       HTTPConfig       `yaml:"http"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// Default thresholds, used when the config file omits them.
const (
	DefaultThresholdSimilarity = 0.6
	DefaultInstanceConfidence  = 0.7
)

// RunConfig names the input files and thresholds of a bootstrapping run.
// Thresholds are pointers so that an explicit 0 is kept.
type RunConfig struct {
	Parameters          string   `yaml:"parameters"`
	Seeds               string   `yaml:"seeds"`
	NegativeSeeds       string   `yaml:"negative_seeds"`
	Sentences           string   `yaml:"sentences"`
	ThresholdSimilarity *float64 `yaml:"threshold_similarity"`
	InstanceConfidence  *float64 `yaml:"instance_confidence"`
}

// Similarity returns the similarity threshold or its default.
func (r RunConfig) Similarity() float64 {
	return valueOr(r.ThresholdSimilarity, DefaultThresholdSimilarity)
}

// Confidence returns the instance confidence threshold or its default.
func (r RunConfig) Confidence() float64 {
	return valueOr(r.InstanceConfidence, DefaultInstanceConfidence)
}

func valueOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

// Float returns a pointer to v, for setting thresholds in code.
func Float(v float64) *float64 { return &v }

// CacheConfig holds vector space model cache settings.
type CacheConfig struct {
	Driver           string   `yaml:"driver"` // file, redis, valkey, none (default: file)
	Dir              string   `yaml:"dir"`
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	TTLSec           int      `yaml:"ttl_sec"` // 0 = no expiry
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// ExtractionConfig holds tuple extraction settings.
type ExtractionConfig struct {
	Workers int `yaml:"workers"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
	MaxBodyBytes    int `yaml:"max_body_bytes"`
	// APIKeys enables Bearer authentication when non-empty.
	APIKeys []string `yaml:"api_keys"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit path.
func LoadFile(configPath string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

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

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.Run.ThresholdSimilarity == nil {
		c.Run.ThresholdSimilarity = Float(DefaultThresholdSimilarity)
	}
	if c.Run.InstanceConfidence == nil {
		c.Run.InstanceConfidence = Float(DefaultInstanceConfidence)
	}
	if c.Cache.Driver == "" {
		c.Cache.Driver = CacheFile
	}
	if c.Cache.Dir == "" {
		c.Cache.Dir = ".snowball-cache"
	}
	if c.Cache.ReadinessTimeout <= 0 {
		c.Cache.ReadinessTimeout = 10
	}
	if c.Extraction.Workers <= 0 {
		c.Extraction.Workers = runtime.GOMAXPROCS(0)
	}
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.HTTP.MaxBodyBytes <= 0 {
		c.HTTP.MaxBodyBytes = 1 << 20
	}
}

// Validate checks the configuration for correctness. Run files may come from
// the command line, so their presence is checked by RunConfig.Validate.
func (c *Config) Validate() error {
	if v := c.Run.Similarity(); v < 0 || v > 1 {
		return fmt.Errorf("run.threshold_similarity must be within [0, 1], got %v", v)
	}
	if v := c.Run.Confidence(); v < 0 || v > 1 {
		return fmt.Errorf("run.instance_confidence must be within [0, 1], got %v", v)
	}
	switch c.Cache.Driver {
	case CacheFile, CacheNone:
	case CacheRedis, CacheValkey:
		if len(c.Cache.Addrs) == 0 {
			return fmt.Errorf("cache.addrs is required for driver %q", c.Cache.Driver)
		}
	default:
		return fmt.Errorf("cache.driver must be one of file, redis, valkey, none, got %q", c.Cache.Driver)
	}
	if c.Cache.TTLSec < 0 {
		return fmt.Errorf("cache.ttl_sec must not be negative, got %d", c.Cache.TTLSec)
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	return nil
}

// Validate checks that every required run file is named.
func (r RunConfig) Validate() error {
	if r.Parameters == "" {
		return fmt.Errorf("run.parameters is required")
	}
	if r.Seeds == "" {
		return fmt.Errorf("run.seeds is required")
	}
	if r.Sentences == "" {
		return fmt.Errorf("run.sentences is required")
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
