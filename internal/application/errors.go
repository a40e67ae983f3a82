package application

import "errors"

// Client errors: the caller's input was invalid and nothing upstream was called.
var (
	ErrMissingCode      = errors.New("authorization code is required")
	ErrMissingUserID    = errors.New("user ID is required")
	ErrMissingParameter = errors.New("missing required parameter")
	ErrInvalidParameter = errors.New("invalid parameter")
)

// ErrUpstream wraps every failure reported by GitHub (token exchange,
// identity lookup, revocation, relayed reads). It is never retried.
var ErrUpstream = errors.New("github request failed")

// ErrNotImplemented is returned by relay operations that exist in the API
// surface but are not built.
var ErrNotImplemented = errors.New("not implemented")
