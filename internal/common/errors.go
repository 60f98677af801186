// Package common defines shared constants and sentinel errors used across
// the sync engine components. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Remote source errors, mapped from HTTP responses.
	ErrTokenExpired = errors.New("session token expired")
	ErrForbidden    = errors.New("access forbidden")
	ErrNotConnected = errors.New("no server connection")
	ErrServerError  = errors.New("server error")
	ErrDecoding     = errors.New("response decoding failed")

	// Store-level errors.
	ErrNotFound = errors.New("not found")
)
