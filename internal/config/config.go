package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the datadesk API configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Search    SearchConfig    `yaml:"search"`
	Aggregate AggregateConfig `yaml:"aggregate"`
	Predictor PredictorConfig `yaml:"predictor"`
	Sessions  SessionsConfig  `yaml:"sessions"`
	Storage   StorageConfig   `yaml:"storage"`
	Auth      AuthConfig      `yaml:"auth"`
	Logging   LoggingConfig   `yaml:"logging"`
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
	Driver           string   `yaml:"driver"` // redis, memory (default: redis)
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// CatalogConfig holds the remote record service settings.
type CatalogConfig struct {
	BaseURL    string `yaml:"base_url"`
	Token      string `yaml:"token"`
	TimeoutSec int    `yaml:"timeout_sec"`
	// Kinds lists the record kinds served (asset, application, timeline). Default: all.
	Kinds []string `yaml:"kinds"`
	// Paths overrides the collection path per kind.
	Paths map[string]string `yaml:"paths"`
}

// SearchConfig holds search defaults.
type SearchConfig struct {
	DefaultLimit int `yaml:"default_limit"`
}

// AggregateConfig holds dashboard summary settings.
type AggregateConfig struct {
	MaxRecords    int   `yaml:"max_records"`
	AgeBoundaries []int `yaml:"age_boundaries"`
}

// PredictorConfig holds the completion provider settings. Disabled when APIKey is empty.
type PredictorConfig struct {
	APIKey      string       `yaml:"api_key"`
	BaseURL     string       `yaml:"base_url"`
	Model       string       `yaml:"model"`
	Instruction string       `yaml:"instruction"`
	MaxTokens   int          `yaml:"max_tokens"`
	Temperature float32      `yaml:"temperature"`
	CacheTTLSec int          `yaml:"cache_ttl_sec"`
	Budget      BudgetConfig `yaml:"budget"`
}

// BudgetConfig holds completion token budget settings. Zero limits mean unlimited.
type BudgetConfig struct {
	DailyTokenLimit   int64  `yaml:"daily_token_limit"`
	MonthlyTokenLimit int64  `yaml:"monthly_token_limit"`
	Action            string `yaml:"action"` // "warn" or "reject"
}

// Limited reports whether any budget cap is configured.
func (b BudgetConfig) Limited() bool { return b.DailyTokenLimit > 0 || b.MonthlyTokenLimit > 0 }

// Enabled reports whether predictive suggestions are configured.
func (p PredictorConfig) Enabled() bool { return p.APIKey != "" }

// SessionsConfig holds view session settings.
type SessionsConfig struct {
	IdleTimeoutSec  int `yaml:"idle_timeout_sec"`
	MaxSessions     int `yaml:"max_sessions"`
	FetchDelayMs    int `yaml:"fetch_delay_ms"`
	SuggestDelayMs  int `yaml:"suggest_delay_ms"`
	FetchTimeoutSec int `yaml:"fetch_timeout_sec"`
}

// StorageConfig holds local persistence settings.
type StorageConfig struct {
	// SnapshotMaxAgeSec hides fallback snapshots older than this. 0 keeps them forever.
	SnapshotMaxAgeSec int `yaml:"snapshot_max_age_sec"`
}

var knownKinds = []string{"asset", "application", "timeline"}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse decodes, defaults and validates a YAML document.
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
		c.Database.Driver = "redis"
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Catalog.TimeoutSec <= 0 {
		c.Catalog.TimeoutSec = 10
	}
	if len(c.Catalog.Kinds) == 0 {
		c.Catalog.Kinds = slices.Clone(knownKinds)
	}
	if c.Search.DefaultLimit <= 0 {
		c.Search.DefaultLimit = 20
	}
	if c.Aggregate.MaxRecords <= 0 {
		c.Aggregate.MaxRecords = 5000
	}
	if c.Predictor.CacheTTLSec <= 0 {
		c.Predictor.CacheTTLSec = 86400
	}
	if c.Predictor.Budget.Action == "" {
		c.Predictor.Budget.Action = "warn"
	}
	if c.Sessions.IdleTimeoutSec <= 0 {
		c.Sessions.IdleTimeoutSec = 1800
	}
	if c.Sessions.MaxSessions <= 0 {
		c.Sessions.MaxSessions = 1000
	}
	if c.Sessions.FetchDelayMs <= 0 {
		c.Sessions.FetchDelayMs = 500
	}
	if c.Sessions.SuggestDelayMs <= 0 {
		c.Sessions.SuggestDelayMs = 200
	}
	if c.Sessions.FetchTimeoutSec <= 0 {
		c.Sessions.FetchTimeoutSec = 10
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Database.Driver {
	case "redis":
		if len(c.Database.Addrs) == 0 {
			return fmt.Errorf("database.addrs is required")
		}
	case "memory":
	default:
		return fmt.Errorf("database.driver must be \"redis\" or \"memory\", got %q", c.Database.Driver)
	}
	if c.Catalog.BaseURL == "" {
		return fmt.Errorf("catalog.base_url is required")
	}
	if u, err := url.Parse(c.Catalog.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("catalog.base_url must be an http(s) url, got %q", c.Catalog.BaseURL)
	}
	for _, k := range c.Catalog.Kinds {
		if !slices.Contains(knownKinds, k) {
			return fmt.Errorf("catalog.kinds: unknown kind %q", k)
		}
	}
	for k := range c.Catalog.Paths {
		if !slices.Contains(knownKinds, k) {
			return fmt.Errorf("catalog.paths: unknown kind %q", k)
		}
	}
	if c.Search.DefaultLimit > 100 {
		return fmt.Errorf("search.default_limit must be at most 100, got %d", c.Search.DefaultLimit)
	}
	for i, b := range c.Aggregate.AgeBoundaries {
		if b < 0 || (i > 0 && b <= c.Aggregate.AgeBoundaries[i-1]) {
			return fmt.Errorf("aggregate.age_boundaries must be non-negative and strictly ascending")
		}
	}
	if c.Predictor.Temperature < 0 || c.Predictor.Temperature > 2 {
		return fmt.Errorf("predictor.temperature must be between 0 and 2, got %v", c.Predictor.Temperature)
	}
	b := c.Predictor.Budget
	if b.DailyTokenLimit < 0 || b.MonthlyTokenLimit < 0 {
		return fmt.Errorf("predictor.budget token limits must not be negative")
	}
	switch b.Action {
	case "", "warn", "reject":
	default:
		return fmt.Errorf("predictor.budget.action must be \"warn\" or \"reject\", got %q", b.Action)
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
