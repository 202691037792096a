package services

import (
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/terraincognita07/taskdesk/internal/models"
)

var usernamePattern = regexp.MustCompile(`^[\p{L}\p{N}._-]+$`)

func NormalizeUsername(raw string) (string, error) {
	username := strings.TrimSpace(raw)
	length := utf8.RuneCountInString(username)
	if length < models.MinUsernameLength || length > models.MaxUsernameLength {
		return "", ErrUsernameLength
	}
	if !usernamePattern.MatchString(username) {
		return "", ErrUsernameCharacters
	}
	return username, nil
}

// NormalizeEmail lower-cases and validates an optional address. An empty
// input is allowed and stays empty.
func NormalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", nil
	}
	parsed, err := mail.ParseAddress(email)
	if err != nil || parsed.Address != email || !strings.Contains(email[strings.LastIndex(email, "@")+1:], ".") {
		return "", ErrInvalidEmail
	}
	return email, nil
}

func NormalizeFullName(raw string) (string, error) {
	fullName := strings.TrimSpace(raw)
	if utf8.RuneCountInString(fullName) > models.MaxFullNameLength {
		return "", ErrFullNameTooLong
	}
	return fullName, nil
}

func ValidateRole(role string) error {
	if !models.IsKnownRole(role) {
		return ErrUnknownRole
	}
	return nil
}
