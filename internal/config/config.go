// Package config loads run configuration from file, environment and
// defaults via viper. File settings lose to environment variables, which
// lose to explicit CLI flags.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// RunConfig is everything an evaluation run needs beyond the CLI flags.
type RunConfig struct {
	Model       string        `mapstructure:"model"`
	BaseURL     string        `mapstructure:"base_url"`
	APIKeyEnv   string        `mapstructure:"api_key_env"`
	Temperature float32       `mapstructure:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Concurrency int           `mapstructure:"concurrency"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Seed        int64         `mapstructure:"seed"`
	OutputDir   string        `mapstructure:"output_dir"`
}

// APIKey resolves the configured key environment variable.
func (c *RunConfig) APIKey() string {
	if c.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(c.APIKeyEnv)
}

// Load reads arena-config.{yaml,json} from the working directory or $HOME,
// then applies ARENA_* environment overrides. A missing config file is not
// an error; defaults apply.
func Load(path string) (*RunConfig, error) {
	v := viper.New()
	v.SetDefault("api_key_env", "OPENAI_API_KEY")
	v.SetDefault("temperature", 0.0)
	v.SetDefault("max_tokens", 1024)
	v.SetDefault("concurrency", 4)
	v.SetDefault("timeout", 120*time.Second)
	v.SetDefault("output_dir", "results")

	v.SetEnvPrefix("ARENA")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("arena-config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg RunConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}
