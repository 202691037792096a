package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"
)

const minSecretKeyLength = 32

var insecureSecretKeys = map[string]struct{}{
	"change_me_in_production":                    {},
	"replace_with_at_least_32_random_characters": {},
}

// Config holds application configuration.
type Config struct {
	DataDir    string        `mapstructure:"data_dir"`
	DBPath     string        `mapstructure:"db_path"`
	SecretKey  string        `mapstructure:"secret_key"`
	SessionTTL time.Duration `mapstructure:"session_ttl"`
	BcryptCost int           `mapstructure:"bcrypt_cost"`
	LogLevel   string        `mapstructure:"log_level"`
	Language   string        `mapstructure:"language"`
	Bridge     BridgeConfig  `mapstructure:"bridge"`
	HTTP       HTTPConfig    `mapstructure:"http"`
}

// BridgeConfig is the loopback message broker the desktop UI talks to.
type BridgeConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// HTTPConfig contains the optional HTTP transport settings.
type HTTPConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Validate rejects values the backend cannot start with. An empty secret key
// is allowed; the process then uses a key stored in the data directory.
func (c Config) Validate() error {
	if strings.TrimSpace(c.DBPath) == "" {
		return errors.New("db_path is required")
	}
	if secret := strings.TrimSpace(c.SecretKey); secret != "" {
		if _, insecure := insecureSecretKeys[strings.ToLower(secret)]; insecure {
			return errors.New("secret_key uses an insecure placeholder value")
		}
		if len(secret) < minSecretKeyLength {
			return fmt.Errorf("secret_key must be at least %d characters", minSecretKeyLength)
		}
	}
	if c.SessionTTL <= 0 {
		return errors.New("session_ttl must be positive")
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("bcrypt_cost must be between 4 and 31, got %d", c.BcryptCost)
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	if c.Bridge.Host == "" {
		return errors.New("bridge.host is required")
	}
	if c.Bridge.Port < 1 || c.Bridge.Port > 65535 {
		return fmt.Errorf("bridge.port must be between 1 and 65535, got %d", c.Bridge.Port)
	}
	if c.HTTP.Enabled && (c.HTTP.Port < 1 || c.HTTP.Port > 65535) {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	return nil
}

// HTTPAddr returns host:port for the HTTP listener.
func (c Config) HTTPAddr() string {
	return fmt.Sprintf("%s:%d", c.HTTP.Host, c.HTTP.Port)
}
