// Package config provides Viper-based hierarchical configuration: defaults,
// then an optional YAML config file, then environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/rafaelvasco/dindinho/internal/logging"
)

var loadEnvOnce sync.Once

// Config is the complete application configuration.
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	Data struct {
		Directory string `mapstructure:"directory" yaml:"directory"`
	} `mapstructure:"data" yaml:"data"`

	Import struct {
		// ToleranceDays is the subscription matching window around one period.
		ToleranceDays int `mapstructure:"tolerance_days" yaml:"tolerance_days"`
	} `mapstructure:"import" yaml:"import"`

	AI struct {
		Enabled     bool   `mapstructure:"enabled" yaml:"enabled"`
		Model       string `mapstructure:"model" yaml:"model"`
		BatchSize   int    `mapstructure:"batch_size" yaml:"batch_size"`
		Concurrency int    `mapstructure:"concurrency" yaml:"concurrency"`
		MaxAttempts int    `mapstructure:"max_attempts" yaml:"max_attempts"`
		APIKey      string `mapstructure:"api_key" yaml:"-"` // Never serialize the API key
	} `mapstructure:"ai" yaml:"ai"`
}

// LoadEnv loads variables from a .env file if one exists next to the
// binary or in the parent directory. Missing files are not an error.
func LoadEnv(logger logging.Logger) {
	loadEnvOnce.Do(func() {
		if logger == nil {
			logger = logging.GetLogger()
		}
		for _, envFile := range []string{".env", filepath.Join("..", ".env")} {
			if _, err := os.Stat(envFile); err != nil {
				continue
			}
			if err := godotenv.Load(envFile); err != nil {
				logger.WithError(err).Warn("Could not load .env file",
					logging.Field{Key: "file", Value: envFile})
				return
			}
			logger.Debug("Loaded environment variables",
				logging.Field{Key: "file", Value: envFile})
			return
		}
	})
}

// InitializeConfig builds the configuration from defaults, an optional
// config.yaml and DINDINHO_* environment variables. GEMINI_API_KEY is bound
// unprefixed so the same variable works across tools.
func InitializeConfig() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("$HOME/.dindinho")
	v.AddConfigPath(".dindinho")
	v.AddConfigPath(".")

	v.SetEnvPrefix("DINDINHO")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file %s: %w", v.ConfigFileUsed(), err)
		}
	}

	if err := v.BindEnv("ai.api_key", "GEMINI_API_KEY"); err != nil {
		return nil, fmt.Errorf("binding GEMINI_API_KEY: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("data.directory", defaultDataDir())

	v.SetDefault("import.tolerance_days", 5)

	v.SetDefault("ai.enabled", false)
	v.SetDefault("ai.model", "gemini-1.5-flash")
	v.SetDefault("ai.batch_size", 20)
	v.SetDefault("ai.concurrency", 3)
	v.SetDefault("ai.max_attempts", 3)
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".dindinho/data"
	}
	return filepath.Join(home, ".dindinho", "data")
}

func validateConfig(config *Config) error {
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}
	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}
	if config.Data.Directory == "" {
		return fmt.Errorf("data.directory must not be empty")
	}
	if config.Import.ToleranceDays < 0 || config.Import.ToleranceDays > 30 {
		return fmt.Errorf("import.tolerance_days must be between 0 and 30, got: %d", config.Import.ToleranceDays)
	}
	if config.AI.Enabled {
		if config.AI.APIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY required when AI is enabled")
		}
		if config.AI.BatchSize < 1 || config.AI.BatchSize > 100 {
			return fmt.Errorf("ai.batch_size must be between 1 and 100, got: %d", config.AI.BatchSize)
		}
		if config.AI.Concurrency < 1 || config.AI.Concurrency > 16 {
			return fmt.Errorf("ai.concurrency must be between 1 and 16, got: %d", config.AI.Concurrency)
		}
		if config.AI.MaxAttempts < 1 || config.AI.MaxAttempts > 10 {
			return fmt.Errorf("ai.max_attempts must be between 1 and 10, got: %d", config.AI.MaxAttempts)
		}
	}
	return nil
}
