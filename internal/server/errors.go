// Package server provides the HTTP REST API for interview-coach.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/jonathan/interview-coach/internal/interview"
)

// ErrUserAlreadyExists indicates the username or email is already registered.
type ErrUserAlreadyExists struct {
	Field string
	Value string
}

func (e *ErrUserAlreadyExists) Error() string {
	return fmt.Sprintf("%s already registered: %s", e.Field, e.Value)
}

// ErrInvalidCredentials indicates invalid login credentials.
type ErrInvalidCredentials struct{}

func (e *ErrInvalidCredentials) Error() string {
	return "invalid username or password"
}

// ErrUserNotFound indicates user was not found
type ErrUserNotFound struct {
	UserID uuid.UUID
}

func (e *ErrUserNotFound) Error() string {
	return fmt.Sprintf("user not found: %s", e.UserID)
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error, looking through
// wrapped errors.
func HTTPStatus(err error) int {
	var (
		exists        *ErrUserAlreadyExists
		creds         *ErrInvalidCredentials
		userNotFound  *ErrUserNotFound
		validation    *ErrValidation
		notFound      *interview.NotFoundError
		resumeMissing *interview.ResumeMissingError
		invalidIndex  *interview.InvalidIndexError
	)
	switch {
	case errors.As(err, &exists), errors.As(err, &resumeMissing):
		return http.StatusConflict
	case errors.As(err, &creds):
		return http.StatusUnauthorized
	case errors.As(err, &userNotFound), errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &validation), errors.As(err, &invalidIndex):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
