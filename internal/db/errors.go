package db

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// normalizeWriteError maps driver-specific unique violations onto
// gorm.ErrDuplicatedKey so callers only need errors.Is.
func normalizeWriteError(err error) error {
	if err == nil || errors.Is(err, gorm.ErrDuplicatedKey) {
		return err
	}
	if strings.Contains(strings.ToLower(err.Error()), "unique constraint failed") {
		return fmt.Errorf("%w: %v", gorm.ErrDuplicatedKey, err)
	}
	return err
}
