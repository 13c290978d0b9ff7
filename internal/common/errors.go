// Package common defines shared constants and sentinel errors used across
// AccountKeeper components. Callers should use errors.Is to match these
// values, since most of them reach the caller wrapped.
package common

import "errors"

var (
	// Storage-level errors. Load and persist failures wrap ErrStorage.
	ErrStorage = errors.New("storage error")

	// Directory-level errors.
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEmail = errors.New("email already in use")

	// Authentication errors. ErrInvalidCredentials is returned both for an
	// unknown email and for a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInactiveAccount    = errors.New("account is inactive")

	// Token errors (invalid or malformed token, expiry).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Input that fails the core's own defensive checks.
	ErrValidation = errors.New("validation error")

	// Service-level errors (generic/internal flow control).
	ErrInternal = errors.New("internal error")
)

// AccessTokenHeaderName is the gRPC metadata key used to carry the access
// token on inbound requests.
const AccessTokenHeaderName = "access_token"
