package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/terraincognita07/taskdesk/internal/security"
)

const (
	secretFile     = "session.key"
	secretAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// SessionSecret returns the configured secret key, or the one persisted in the
// data directory, creating it on first use.
func (c Config) SessionSecret() ([]byte, error) {
	if secret := strings.TrimSpace(c.SecretKey); secret != "" {
		return []byte(secret), nil
	}

	path := filepath.Join(c.DataDir, secretFile)
	content, err := os.ReadFile(path)
	if err == nil {
		secret := strings.TrimSpace(string(content))
		if len(secret) < minSecretKeyLength {
			return nil, fmt.Errorf("stored secret in %s is too short", path)
		}
		return []byte(secret), nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read session secret: %w", err)
	}

	secret, err := security.RandomString(64, secretAlphabet)
	if err != nil {
		return nil, fmt.Errorf("generate session secret: %w", err)
	}
	if err := os.MkdirAll(c.DataDir, 0o700); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(secret+"\n"), 0o600); err != nil {
		return nil, fmt.Errorf("write session secret: %w", err)
	}
	return []byte(secret), nil
}
