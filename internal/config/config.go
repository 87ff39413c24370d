// Package config handles configuration loading for tickerpulse.
// It supports YAML config files with environment variable and .env overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/seenimoa/tickerpulse/internal/sentiment"
)

// EnvPrefix prefixes every environment override, e.g. TICKERPULSE_LLM_OLLAMA_URL.
const EnvPrefix = "TICKERPULSE"

// Environment variables read directly for secrets.
const (
	EnvNewsAPIKey       = "TICKERPULSE_INGEST_NEWSAPI_KEY"
	EnvNewsAPIKeyLegacy = "NEWSAPI_API_KEY"
)

// Config represents the complete application configuration.
type Config struct {
	Knowledge KnowledgeConfig `mapstructure:"knowledge" yaml:"knowledge"`
	Sentiment SentimentConfig `mapstructure:"sentiment" yaml:"sentiment"`
	LLM       LLMConfig       `mapstructure:"llm"       yaml:"llm"`
	Ingest    IngestConfig    `mapstructure:"ingest"    yaml:"ingest"`
	Data      DataConfig      `mapstructure:"data"      yaml:"data"`
	Storage   StorageConfig   `mapstructure:"storage"   yaml:"storage"`
	API       APIConfig       `mapstructure:"api"       yaml:"api"`
	Logging   LoggingConfig   `mapstructure:"logging"   yaml:"logging"`
}

// KnowledgeConfig locates the knowledge base files.
type KnowledgeConfig struct {
	GlobalPath       string `mapstructure:"global_path"       yaml:"global_path"`
	RelationshipsDir string `mapstructure:"relationships_dir" yaml:"relationships_dir"`
}

// SentimentConfig selects and tunes the scoring backends.
type SentimentConfig struct {
	Backends    []string            `mapstructure:"backends"    yaml:"backends"`
	Registry    []sentiment.Backend `mapstructure:"registry"    yaml:"registry"` // extends the built-in registry
	Concurrency int                 `mapstructure:"concurrency" yaml:"concurrency"`
	UseContext  bool                `mapstructure:"use_context" yaml:"use_context"`
}

// LLMConfig holds the Ollama backend settings.
type LLMConfig struct {
	OllamaURL   string  `mapstructure:"ollama_url"  yaml:"ollama_url"`
	TimeoutSec  int     `mapstructure:"timeout_sec" yaml:"timeout_sec"`
	DelayMS     int     `mapstructure:"delay_ms"    yaml:"delay_ms"` // pause after each answered call
	Temperature float64 `mapstructure:"temperature" yaml:"temperature"`
}

// Timeout returns the per-call timeout.
func (c LLMConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// Delay returns the pause inserted after each call.
func (c LLMConfig) Delay() time.Duration {
	return time.Duration(c.DelayMS) * time.Millisecond
}

// IngestConfig holds headline source settings.
type IngestConfig struct {
	LimitPerSource    int     `mapstructure:"limit_per_source"    yaml:"limit_per_source"`
	NewsAPIKey        string  `mapstructure:"newsapi_key"         yaml:"newsapi_key"`
	NewsAPICountry    string  `mapstructure:"newsapi_country"     yaml:"newsapi_country"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second" yaml:"requests_per_second"`
}

// DataConfig locates the line-delimited data files.
type DataConfig struct {
	RawDir       string `mapstructure:"raw_dir"       yaml:"raw_dir"`
	ProcessedDir string `mapstructure:"processed_dir" yaml:"processed_dir"`
	MasterPath   string `mapstructure:"master_path"   yaml:"master_path"`
}

// StorageConfig holds the SQLite store settings.
type StorageConfig struct {
	Path    string `mapstructure:"path"    yaml:"path"`
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
}

// APIConfig holds HTTP API server settings.
type APIConfig struct {
	Host        string   `mapstructure:"host"         yaml:"host"`
	Port        int      `mapstructure:"port"         yaml:"port"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
	CacheTTL    int      `mapstructure:"cache_ttl"    yaml:"cache_ttl"` // seconds
}

// Addr returns host:port.
func (c APIConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "text" or "json"
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.tickerpulse/config.yaml (home directory)
//  3. /etc/tickerpulse/config.yaml (system)
//
// A .env file in the working directory is loaded first; variables already
// set in the environment win. Environment variables override config file
// values. Format: TICKERPULSE_<SECTION>_<KEY>, e.g. TICKERPULSE_LLM_OLLAMA_URL
func Load() (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".tickerpulse"))
	v.AddConfigPath("/etc/tickerpulse")

	// Read config file (not required to exist)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return decode(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}
	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	overrideFromEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadDotEnv loads the given .env files if they exist.
func loadDotEnv(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// Knowledge base
	v.SetDefault("knowledge.global_path", "config/entities_global.yaml")
	v.SetDefault("knowledge.relationships_dir", "config/relationships")

	// Sentiment
	v.SetDefault("sentiment.backends", []string{"vader", "phi3", "llama3.2:3b", "deepseek-r1:1.5b"})
	v.SetDefault("sentiment.concurrency", 1)
	v.SetDefault("sentiment.use_context", true)

	// LLM
	v.SetDefault("llm.ollama_url", "http://localhost:11434")
	v.SetDefault("llm.timeout_sec", 60)
	v.SetDefault("llm.delay_ms", 500)
	v.SetDefault("llm.temperature", 0.0)

	// Ingest
	v.SetDefault("ingest.limit_per_source", 100)
	v.SetDefault("ingest.newsapi_country", "us")
	v.SetDefault("ingest.requests_per_second", 1.0)

	// Data files
	v.SetDefault("data.raw_dir", "data/raw")
	v.SetDefault("data.processed_dir", "data/processed")
	v.SetDefault("data.master_path", "data/cleaned/headlines_master_orig.jsonl")

	// Storage
	v.SetDefault("storage.path", "data/sentiment.db")
	v.SetDefault("storage.enabled", false)

	// API
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.cors_origins", []string{"http://localhost:3000"})
	v.SetDefault("api.cache_ttl", 60) // 1 minute

	// Logging
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// overrideFromEnv explicitly reads secrets from environment variables.
// The prefixed variable wins over the bare NEWSAPI_API_KEY.
func overrideFromEnv(cfg *Config) {
	if key := os.Getenv(EnvNewsAPIKey); key != "" {
		cfg.Ingest.NewsAPIKey = key
	} else if key := os.Getenv(EnvNewsAPIKeyLegacy); key != "" && cfg.Ingest.NewsAPIKey == "" {
		cfg.Ingest.NewsAPIKey = key
	}
}

// Validate rejects values the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.Knowledge.GlobalPath == "" {
		return errors.New("config: knowledge.global_path is required")
	}
	if c.Sentiment.Concurrency < 1 {
		return fmt.Errorf("config: sentiment.concurrency must be >= 1, got %d", c.Sentiment.Concurrency)
	}
	if c.LLM.TimeoutSec < 0 || c.LLM.DelayMS < 0 {
		return errors.New("config: llm.timeout_sec and llm.delay_ms must not be negative")
	}
	if c.API.Port < 0 || c.API.Port > 65535 {
		return fmt.Errorf("config: api.port out of range: %d", c.API.Port)
	}
	return nil
}

// SentimentRegistry returns the built-in registry extended with the
// configured backends.
func (c *Config) SentimentRegistry() (*sentiment.Registry, error) {
	if len(c.Sentiment.Registry) == 0 {
		return sentiment.DefaultRegistry(), nil
	}
	reg, err := sentiment.DefaultRegistry().Extend(c.Sentiment.Registry...)
	if err != nil {
		return nil, fmt.Errorf("config: sentiment.registry: %w", err)
	}
	return reg, nil
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
