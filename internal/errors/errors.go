package errors

import (
	"errors"
	"fmt"
)

// Common error types for the OAuth subsystem. Internal code distinguishes
// causes (not-found vs revoked vs expired); the HTTP layer collapses them
// to uniform OAuth error codes before anything reaches a caller.
var (
	// Client errors
	ErrClientNotFound = errors.New("client not found")
	ErrClientRevoked  = errors.New("client revoked")
	ErrInvalidClient  = errors.New("invalid client")

	// Token errors
	ErrInvalidToken         = errors.New("invalid token")
	ErrTokenExpired         = errors.New("token expired")
	ErrTokenMalformed       = errors.New("malformed token")
	ErrBadSignature         = errors.New("bad token signature")
	ErrRefreshTokenConsumed = errors.New("refresh token already used")

	// Authorization errors
	ErrInvalidGrant       = errors.New("invalid grant")
	ErrInvalidCode        = errors.New("invalid authorization code")
	ErrCodeConsumed       = errors.New("authorization code already used")
	ErrPKCEMismatch       = errors.New("code verifier does not match challenge")
	ErrInvalidRedirectURI = errors.New("redirect uri not allowed")

	// Session errors
	ErrSessionNotFound = errors.New("authorization session not found")
	ErrSessionExpired  = errors.New("authorization session expired")

	// Persistence errors
	ErrStorage = errors.New("storage failure")

	// General errors
	ErrNotFound    = errors.New("not found")
	ErrInternal    = errors.New("internal error")
	ErrUnsupported = errors.New("unsupported operation")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
