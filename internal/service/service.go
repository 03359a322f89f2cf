// Package service holds the business logic for identity, groups and contacts.
// Every mutating operation runs in its own transaction; expected failures are
// returned as apperror sentinels, never as raw storage errors.
package service

import (
	"errors"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

// isUniqueViolation reports whether err is a uniqueness-constraint rejection.
// TranslateError covers postgres; the message checks backstop sqlite.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}
