// Package config loads the backend configuration from the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	envPrefix = "TASKDESK"
	envFile   = ".env"
	appDir    = "taskdesk"
	dbFile    = "taskdesk.db"
)

// Load reads configuration from the process environment. Values from an
// optional .env file fill in variables that are not already set.
func Load() (*Config, error) {
	return load(envFile)
}

func load(dotenvPath string) (*Config, error) {
	v := viper.New()
	if envMap, err := godotenv.Read(dotenvPath); err == nil {
		for k, value := range envMap {
			if _, exists := os.LookupEnv(k); !exists {
				_ = os.Setenv(k, value)
			}
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	bindEnvs(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.resolvePaths(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", "")
	v.SetDefault("db_path", "")
	v.SetDefault("secret_key", "")
	v.SetDefault("session_ttl", 12*time.Hour)
	v.SetDefault("bcrypt_cost", 10)
	v.SetDefault("log_level", "info")
	v.SetDefault("language", "en")

	v.SetDefault("bridge.host", "127.0.0.1")
	v.SetDefault("bridge.port", 4250)

	v.SetDefault("http.enabled", false)
	v.SetDefault("http.host", "127.0.0.1")
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.shutdown_timeout", 5*time.Second)
}

func bindEnvs(v *viper.Viper) {
	keys := []string{
		"data_dir",
		"db_path",
		"secret_key",
		"session_ttl",
		"bcrypt_cost",
		"log_level",
		"language",
		"bridge.host",
		"bridge.port",
		"http.enabled",
		"http.host",
		"http.port",
		"http.shutdown_timeout",
	}

	for _, k := range keys {
		_ = v.BindEnv(k)
	}
}

// resolvePaths places the database in the per-user application data
// directory unless an explicit location was configured.
func (c *Config) resolvePaths() error {
	if strings.TrimSpace(c.DataDir) == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return fmt.Errorf("resolve user data directory: %w", err)
		}
		c.DataDir = filepath.Join(base, appDir)
	}
	if strings.TrimSpace(c.DBPath) == "" {
		c.DBPath = filepath.Join(c.DataDir, dbFile)
	}
	return nil
}
