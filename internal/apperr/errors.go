// Package apperr holds the sentinel errors shared across layers.
package apperr

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrNoCredentials  = errors.New("credentials not configured")
	ErrUnauthorized   = errors.New("upstream rejected credentials")
	ErrUpstream       = errors.New("upstream request failed")
	ErrInvalidPayload = errors.New("invalid upstream payload")
	ErrInvalidKind    = errors.New("invalid ingredient kind")
)
