package errors

import (
	"errors"
	"fmt"
)

// Common error types for the OAuth session layer
var (
	// Session errors
	ErrNoSession      = errors.New("no session")
	ErrCookieDecode   = errors.New("session cookie could not be decoded")
	ErrSessionExpired = errors.New("session expired")

	// Token errors
	ErrInvalidToken     = errors.New("invalid token")
	ErrNoRefreshToken   = errors.New("no refresh token")
	ErrTokenExchange    = errors.New("token exchange failed")
	ErrTokenRefresh     = errors.New("token refresh failed")
	ErrProviderRejected = errors.New("provider rejected the request")

	// Flow errors
	ErrInvalidState = errors.New("invalid state parameter")
	ErrMissingCode  = errors.New("missing authorization code")
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
