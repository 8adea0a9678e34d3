package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")
)

// Password reset failures. All of them are client errors.
var (
	ErrInvalidCode           = fmt.Errorf("invalid code: %w", ErrBadRequest)
	ErrExpiredCode           = fmt.Errorf("expired code: %w", ErrBadRequest)
	ErrWeakPassword          = fmt.Errorf("password must be at least %d characters: %w", MinPasswordLength, ErrBadRequest)
	ErrInvalidOrExpiredToken = fmt.Errorf("invalid or expired reset token: %w", ErrBadRequest)
)
