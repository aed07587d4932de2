package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

// EnvPrefix prefixes environment overrides, e.g. CLAUSES_LOG_LEVEL
const EnvPrefix = "CLAUSES"

// Config represents the clauses CLI configuration
type Config struct {
	Rules   string    `mapstructure:"rules"`
	Format  string    `mapstructure:"format"`
	NoColor bool      `mapstructure:"no_color"`
	Log     LogConfig `mapstructure:"log"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// Formats lists the supported output formats
var Formats = []string{"table", "json", "yaml"}

// Load loads the configuration from clauses.yaml in the working directory
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile loads the configuration from path, or from clauses.yaml in the
// working directory when path is empty. A missing clauses.yaml is not an
// error; a missing explicit path is.
func LoadFile(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("rules", "rules.yaml")
	v.SetDefault("format", "table")
	v.SetDefault("no_color", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("clauses")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// LogLevel returns the parsed log level
func (cfg *Config) LogLevel() zapcore.Level {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
		return zapcore.InfoLevel
	}
	return level
}

// Validate checks the configuration values
func (cfg *Config) Validate() error {
	if cfg.Rules == "" {
		return fmt.Errorf("rules must name a rule file")
	}

	if !validFormat(cfg.Format) {
		return fmt.Errorf("format must be one of %s, got: %s", strings.Join(Formats, ", "), cfg.Format)
	}

	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
		return fmt.Errorf("log.level is not a valid level: %s", cfg.Log.Level)
	}
	return nil
}

func validFormat(format string) bool {
	for _, f := range Formats {
		if f == format {
			return true
		}
	}
	return false
}
