package service

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthenticated    = errors.New("caller is not authenticated")
	ErrClaimNotFound      = errors.New("claim not found")
	ErrDocumentNotFound   = errors.New("document not found")
	ErrInvalidDocumentKey = errors.New("document key does not belong to claim")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
)

// ValidationError reports a rejected submission field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// IsValidationError reports whether err wraps a *ValidationError.
func IsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
