package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// DefaultFile is the conventional config file name.
const DefaultFile = "ledgerflow.yaml"

// EnvPrefix prefixes environment overrides, e.g. LEDGERFLOW_PROCESSING_WORKERS.
const EnvPrefix = "LEDGERFLOW"

const maxScale = 12

// Config represents the top-level ledgerflow.yaml configuration.
type Config struct {
	Engine     EngineConfig     `yaml:"engine" mapstructure:"engine"`
	Processing ProcessingConfig `yaml:"processing" mapstructure:"processing"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
	Output     OutputConfig     `yaml:"output" mapstructure:"output"`
}

// EngineConfig controls ledger semantics.
type EngineConfig struct {
	Scale              int32 `yaml:"scale" mapstructure:"scale"`
	DisputeWithdrawals bool  `yaml:"dispute_withdrawals" mapstructure:"dispute_withdrawals"`
}

// ProcessingConfig controls throughput.
type ProcessingConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// LogConfig controls diagnostic logging on stderr.
type LogConfig struct {
	Level       string `yaml:"level" mapstructure:"level"`
	Environment string `yaml:"environment" mapstructure:"environment"` // production | development
}

// OutputConfig controls side outputs.
type OutputConfig struct {
	Rejections string `yaml:"rejections" mapstructure:"rejections"` // rejection report path, empty to disable
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			Scale:              4,
			DisputeWithdrawals: true,
		},
		Processing: ProcessingConfig{
			Workers: 1,
		},
		Log: LogConfig{
			Level:       "info",
			Environment: "production",
		},
	}
}

// Load reads a config file and applies LEDGERFLOW_* environment overrides.
// An empty path yields the defaults plus environment overrides.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("engine.scale", d.Engine.Scale)
	v.SetDefault("engine.dispute_withdrawals", d.Engine.DisputeWithdrawals)
	v.SetDefault("processing.workers", d.Processing.Workers)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.environment", d.Log.Environment)
	v.SetDefault("output.rejections", d.Output.Rejections)
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Engine.Scale < 0 || c.Engine.Scale > maxScale {
		return fmt.Errorf("engine.scale must be between 0 and %d, got %d", maxScale, c.Engine.Scale)
	}
	if c.Processing.Workers < 1 {
		return fmt.Errorf("processing.workers must be at least 1, got %d", c.Processing.Workers)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.Log.Level)
	}
	switch c.Log.Environment {
	case "production", "development":
	default:
		return fmt.Errorf("log.environment %q is not one of production, development", c.Log.Environment)
	}
	return nil
}
