// Package config handles configuration loading and management for Helmsman.
// It supports XDG config paths, project-level overrides, and environment variables.
package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/helmsman-ai/helmsman/internal/router"
	"github.com/helmsman-ai/helmsman/internal/scoring"
)

// Config holds all configuration for Helmsman.
type Config struct {
	Anthropic  AnthropicConfig    `mapstructure:"anthropic"`
	Catalog    CatalogConfig      `mapstructure:"catalog"`
	Scoring    scoring.Weights    `mapstructure:"scoring"`
	Selection  scoring.Thresholds `mapstructure:"selection"`
	Routing    router.Config      `mapstructure:"routing"`
	Ledger     LedgerConfig       `mapstructure:"ledger"`
	Telemetry  TelemetryConfig    `mapstructure:"telemetry"`
	DebugLog   string             `mapstructure:"debug_log"`
	JudgeModel string             `mapstructure:"judge_model"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	APIKey string `mapstructure:"api_key"`
	// UseAWSBedrock routes calls through AWS Bedrock instead of the
	// direct API.
	UseAWSBedrock bool   `mapstructure:"use_aws_bedrock"`
	AWSRegion     string `mapstructure:"aws_region"`
	AWSProfile    string `mapstructure:"aws_profile"`
}

// CatalogConfig holds benchmark catalog settings.
type CatalogConfig struct {
	// Path is the catalog YAML file location.
	Path string `mapstructure:"path"`
	// Watch enables hot-reload of the catalog on file change.
	Watch bool `mapstructure:"watch"`
}

// LedgerConfig holds usage ledger persistence settings.
type LedgerConfig struct {
	// DBPath is the SQLite file for persisted usage entries; empty
	// disables persistence.
	DBPath string `mapstructure:"db_path"`
}

// TelemetryConfig holds the Prometheus endpoint settings.
type TelemetryConfig struct {
	// MetricsAddr is the listen address for the /metrics endpoint;
	// empty disables the endpoint.
	MetricsAddr string `mapstructure:"metrics_addr"`
}

// Load loads configuration from XDG paths, project overrides, and environment variables.
// Precedence (highest to lowest):
//  1. Environment variables (ANTHROPIC_API_KEY)
//  2. Project config (.helmsman.yaml in current directory or parent)
//  3. User config (~/.config/helmsman/config.yaml)
//  4. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	userConfigDir := getUserConfigDir()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(userConfigDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	// Load project config if present
	projectConfig := findProjectConfig()
	if projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err == nil {
			// Merge project config (takes precedence)
			if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
				return nil, fmt.Errorf("merging project config: %w", err)
			}
		}
	}

	// Environment variable overrides
	v.AutomaticEnv()
	v.BindEnv("anthropic.api_key", "ANTHROPIC_API_KEY")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// Expand ${VAR} references
	cfg.Anthropic.APIKey = os.ExpandEnv(cfg.Anthropic.APIKey)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromPath loads configuration from a specific path (for testing).
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Anthropic.APIKey = os.ExpandEnv(cfg.Anthropic.APIKey)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the structural invariants of the loaded configuration.
// A configuration the selection policy cannot run on is rejected at load
// time rather than surfacing as a routing failure later.
func (c *Config) Validate() error {
	if math.Abs(c.Scoring.Sum()-1.0) > 1e-9 {
		return fmt.Errorf("scoring weights sum to %v, want 1.0", c.Scoring.Sum())
	}
	if c.Selection.BalancedCostCeiling <= 0 {
		return fmt.Errorf("selection.balanced_cost_ceiling must be positive")
	}
	if c.Selection.PremiumCostCeiling <= c.Selection.BalancedCostCeiling {
		return fmt.Errorf("selection.premium_cost_ceiling must exceed the balanced ceiling")
	}
	if c.Routing.MaxAttempts < 1 {
		return fmt.Errorf("routing.max_attempts must be at least 1")
	}
	if c.Routing.QualityFloor < 1 || c.Routing.QualityFloor > 10 {
		return fmt.Errorf("routing.quality_floor must be in [1,10]")
	}
	if c.Routing.CallTimeout <= 0 {
		return fmt.Errorf("routing.call_timeout must be positive")
	}
	return nil
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("anthropic.api_key", "")
	v.SetDefault("anthropic.use_aws_bedrock", false)

	v.SetDefault("catalog.path", filepath.Join(getUserConfigDir(), "catalog.yaml"))
	v.SetDefault("catalog.watch", false)

	weights := scoring.DefaultWeights()
	v.SetDefault("scoring.mmlu", weights.MMLU)
	v.SetDefault("scoring.humaneval", weights.HumanEval)
	v.SetDefault("scoring.gsm8k", weights.GSM8K)
	v.SetDefault("scoring.mt_bench", weights.MTBench)

	thresholds := scoring.DefaultThresholds()
	v.SetDefault("selection.balanced_cost_ceiling", thresholds.BalancedCostCeiling)
	v.SetDefault("selection.premium_cost_ceiling", thresholds.PremiumCostCeiling)
	v.SetDefault("selection.minimum_value_floor", thresholds.MinimumValueFloor)
	v.SetDefault("selection.default_value_floor", thresholds.DefaultValueFloor)
	v.SetDefault("selection.maximum_overall_floor", thresholds.MaximumOverallFloor)

	routing := router.DefaultConfig()
	v.SetDefault("routing.max_attempts", routing.MaxAttempts)
	v.SetDefault("routing.backoff_base", routing.BackoffBase.String())
	v.SetDefault("routing.quality_floor", routing.QualityFloor)
	v.SetDefault("routing.call_timeout", routing.CallTimeout.String())
	v.SetDefault("routing.max_tokens", routing.MaxTokens)

	v.SetDefault("ledger.db_path", "")
	v.SetDefault("telemetry.metrics_addr", "")
	v.SetDefault("debug_log", "")
	v.SetDefault("judge_model", "")
}

// getUserConfigDir returns the XDG config directory for Helmsman.
func getUserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "helmsman")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "helmsman")
	}
	return filepath.Join(home, ".config", "helmsman")
}

// findProjectConfig searches for .helmsman.yaml in the current directory and parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, ".helmsman.yaml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}

	return ""
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Catalog:   CatalogConfig{Path: filepath.Join(getUserConfigDir(), "catalog.yaml")},
		Scoring:   scoring.DefaultWeights(),
		Selection: scoring.DefaultThresholds(),
		Routing:   router.DefaultConfig(),
	}
}
