package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by repositories and services.
var (
	ErrNotFound = errors.New("not found")

	// ErrEventNotFound and ErrUserNotFound wrap ErrNotFound so callers can match either.
	ErrEventNotFound = fmt.Errorf("event %w", ErrNotFound)
	ErrUserNotFound  = fmt.Errorf("user %w", ErrNotFound)

	// ErrInvalidInput is returned when a request fails validation inside a service.
	ErrInvalidInput = errors.New("invalid input")

	// ErrPDFRender is returned when an existing event could not be rendered.
	ErrPDFRender = errors.New("pdf render failed")
)
