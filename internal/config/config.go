// Package config provides configuration loading and validation for Paralegal.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/harwood/paralegal/pkg/pathutil"
)

// Config represents the complete configuration for the paralegal CLI.
type Config struct {
	Analyzer AnalyzerConfig `yaml:"analyzer"`
	Cache    CacheConfig    `yaml:"cache"`
	Store    StoreConfig    `yaml:"store"`
	Logging  LoggingConfig  `yaml:"logging"`
	Source   string         `yaml:"-"`
}

// AnalyzerConfig controls which pipeline components run and their limits.
type AnalyzerConfig struct {
	RulesFile                    string        `yaml:"rules_file,omitempty"`
	MaxDocumentBytes             int           `yaml:"max_document_bytes"`
	AnalysisTimeout              time.Duration `yaml:"analysis_timeout"`
	EnableClassification         bool          `yaml:"enable_classification"`
	EnableContradictionDetection bool          `yaml:"enable_contradiction_detection"`
	EnableRemedyGeneration       bool          `yaml:"enable_remedy_generation"`
	ParallelProcessing           bool          `yaml:"parallel_processing"`
	EnableCaching                bool          `yaml:"enable_caching"`
}

// CacheConfig bounds the in-memory result cache.
type CacheConfig struct {
	MaxEntries int           `yaml:"max_entries"`
	TTL        time.Duration `yaml:"ttl"`
}

// StoreConfig locates the analysis archive.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Format string `yaml:"format"`
	Debug  bool   `yaml:"debug"`
}

// DefaultConfig returns the built-in configuration: every component
// enabled, parallel scheduling, a bounded cache, and a database in the
// working directory.
func DefaultConfig() *Config {
	return &Config{
		Analyzer: AnalyzerConfig{
			MaxDocumentBytes:             10 * 1024 * 1024,
			AnalysisTimeout:              2 * time.Minute,
			EnableClassification:         true,
			EnableContradictionDetection: true,
			EnableRemedyGeneration:       true,
			ParallelProcessing:           true,
			EnableCaching:                true,
		},
		Cache: CacheConfig{
			MaxEntries: 256,
			TTL:        time.Hour,
		},
		Store: StoreConfig{
			Path: "paralegal.db",
		},
		Logging: LoggingConfig{
			Format: "text",
		},
	}
}

// Load resolves the effective configuration: defaults, then the config
// file (an explicit path, or paralegal.yaml discovered in the working
// directory or ~/.config/paralegal/), then PARALEGAL_* environment
// variables.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if cfgFile != "" {
		absPath, err := pathutil.ValidateConfigPath(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		v.SetConfigFile(absPath)
	} else {
		v.SetConfigName("paralegal")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "paralegal"))
		}
	}

	v.SetEnvPrefix("PARALEGAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A discovered file is optional; an explicit one must load.
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	config := &Config{}
	if err := v.Unmarshal(config, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "yaml"
	}); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}
	config.Source = v.ConfigFileUsed()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults seeds viper with the built-in configuration. Registering
// every key also makes it visible to AutomaticEnv.
func setDefaults(v *viper.Viper) {
	defaults := DefaultConfig()

	v.SetDefault("analyzer.rules_file", defaults.Analyzer.RulesFile)
	v.SetDefault("analyzer.max_document_bytes", defaults.Analyzer.MaxDocumentBytes)
	v.SetDefault("analyzer.analysis_timeout", defaults.Analyzer.AnalysisTimeout)
	v.SetDefault("analyzer.enable_classification", defaults.Analyzer.EnableClassification)
	v.SetDefault("analyzer.enable_contradiction_detection", defaults.Analyzer.EnableContradictionDetection)
	v.SetDefault("analyzer.enable_remedy_generation", defaults.Analyzer.EnableRemedyGeneration)
	v.SetDefault("analyzer.parallel_processing", defaults.Analyzer.ParallelProcessing)
	v.SetDefault("analyzer.enable_caching", defaults.Analyzer.EnableCaching)
	v.SetDefault("cache.max_entries", defaults.Cache.MaxEntries)
	v.SetDefault("cache.ttl", defaults.Cache.TTL)
	v.SetDefault("store.path", defaults.Store.Path)
	v.SetDefault("logging.format", defaults.Logging.Format)
	v.SetDefault("logging.debug", defaults.Logging.Debug)
}

// Validate ensures the configuration is valid.
func (c *Config) Validate() error {
	if c.Analyzer.MaxDocumentBytes <= 0 {
		return fmt.Errorf("analyzer.max_document_bytes must be positive")
	}

	if c.Analyzer.AnalysisTimeout <= 0 {
		return fmt.Errorf("analyzer.analysis_timeout must be positive")
	}

	// Validate at least one analysis component is enabled
	hasComponent := c.Analyzer.EnableClassification ||
		c.Analyzer.EnableContradictionDetection ||
		c.Analyzer.EnableRemedyGeneration
	if !hasComponent {
		return fmt.Errorf("at least one analysis component must be enabled (classification, contradiction detection, or remedy generation)")
	}

	if c.Analyzer.EnableCaching {
		if c.Cache.MaxEntries <= 0 {
			return fmt.Errorf("cache.max_entries must be positive when caching is enabled")
		}
		if c.Cache.TTL <= 0 {
			return fmt.Errorf("cache.ttl must be positive when caching is enabled")
		}
	}

	if c.Store.Path == "" {
		return fmt.Errorf("store.path is required")
	}

	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		return fmt.Errorf("logging.format must be \"text\" or \"json\", got %q", c.Logging.Format)
	}

	return nil
}
