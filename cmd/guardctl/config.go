package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// cliConfig is the merged configuration from file, environment and
// defaults. Flags override these per invocation.
type cliConfig struct {
	// Locale of the text rules: "de" or "en"
	Locale string `mapstructure:"locale"`

	// MinTextLength below which text analysis reports below-threshold
	MinTextLength int `mapstructure:"min_text_length"`

	// WarningThreshold is the score at which text is no longer safe
	WarningThreshold int `mapstructure:"warning_threshold"`

	// CatalogPath loads a YAML rule catalog instead of the built-in one
	CatalogPath string `mapstructure:"catalog_path"`

	// StoreDir persists settings and stats; empty keeps them in memory
	StoreDir string `mapstructure:"store_dir"`

	// ActivityLog is the JSONL activity file; empty disables it
	ActivityLog string `mapstructure:"activity_log"`

	// Backend holds the hosted analysis API settings
	Backend backendConfig `mapstructure:"backend"`
}

type backendConfig struct {
	URL     string `mapstructure:"url"`
	APIKey  string `mapstructure:"api_key"`
	Timeout string `mapstructure:"timeout"`
}

// loadConfig merges guardctl.yaml (working directory or ~/.config/guardctl)
// with GUARD_-prefixed environment variables.
func loadConfig() (cliConfig, error) {
	v := viper.New()

	configFile := locateConfigFile()
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("guardctl")
	}

	v.SetEnvPrefix("GUARD")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AllowEmptyEnv(true)

	v.SetDefault("locale", "de")
	v.SetDefault("min_text_length", 10)
	v.SetDefault("warning_threshold", 30)

	if configFile != "" {
		if err := v.ReadInConfig(); err != nil {
			return cliConfig{}, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}

	var cfg cliConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return cliConfig{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

func locateConfigFile() string {
	candidates := []string{"guardctl.yaml", "guardctl.yml"}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates,
			filepath.Join(home, ".config", "guardctl", "guardctl.yaml"),
			filepath.Join(home, ".config", "guardctl", "guardctl.yml"),
		)
	}
	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}
