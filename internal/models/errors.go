package models

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("link not found")
	ErrExpired         = errors.New("link has expired")
	ErrAlreadyAnswered = errors.New("link has already been answered")
)

// ValidationError reports malformed or missing caller input.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// DeliveryError wraps a failure of the outbound email transport.
type DeliveryError struct {
	Err error
}

func (e *DeliveryError) Error() string {
	return "failed to send notification: " + e.Err.Error()
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}
