package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Sentinel errors returned by the services. Controllers map them to HTTP
// statuses with errors.Is.
var (
	ErrUnauthorized           = errors.New("unauthorized")
	ErrForbidden              = errors.New("forbidden")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrInvalidCurrentPassword = errors.New("invalid current password")
	ErrInvalidOrExpiredToken  = errors.New("invalid or expired reset token")
	ErrCaptchaFailed          = errors.New("captcha verification failed")
	ErrNotFound               = errors.New("not found")
	ErrDuplicateNationalID    = errors.New("duplicate national id")
	ErrDuplicateAssociation   = errors.New("individual already associated with case")
	ErrDuplicateCatalogEntry  = errors.New("catalog entry already exists")
	ErrMissingQuery           = errors.New("missing query")
	ErrValidation             = errors.New("validation failure")
)

// validationError wraps ErrValidation with a human readable detail.
func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// storageError wraps a database failure, translating the GORM errors that
// have a domain meaning.
func storageError(op string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
