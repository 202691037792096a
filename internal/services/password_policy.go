package services

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"unicode/utf8"

	"github.com/terraincognita07/taskdesk/internal/models"
	"golang.org/x/crypto/bcrypt"
)

const DefaultBcryptCost = 10

func ValidatePasswordStrength(password string) error {
	length := utf8.RuneCountInString(password)
	if length < models.MinPasswordLength || length > models.MaxPasswordLength {
		return ErrWeakPassword
	}
	return nil
}

// PasswordHasher turns secrets into salted one-way hashes. bcrypt draws a
// fresh salt for every call, so hashing the same password twice never
// yields the same value.
type PasswordHasher struct {
	cost int
}

func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	return &PasswordHasher{cost: cost}
}

func (hasher *PasswordHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(bcryptInput(password), hasher.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func (hasher *PasswordHasher) Matches(hash string, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), bcryptInput(password)) == nil
}

// bcryptInput keeps long passphrases under bcrypt's 72 byte input limit.
func bcryptInput(password string) []byte {
	if len(password) <= 72 {
		return []byte(password)
	}
	digest := sha256.Sum256([]byte(password))
	return []byte(base64.StdEncoding.EncodeToString(digest[:]))
}
