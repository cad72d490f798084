package auth

import "errors"

// Error kinds returned by Service. Messages that could reveal whether an
// account exists are deliberately shared between causes.
var (
	ErrValidation            = errors.New("validation failed")
	ErrConflict              = errors.New("user already exists with this email")
	ErrInvalidCredentials    = errors.New("incorrect email or password")
	ErrInvalidOrExpiredToken = errors.New("invalid or expired token")
	ErrInvalidIdentityToken  = errors.New("invalid identity token")
	ErrUnauthenticated       = errors.New("unauthenticated")
	ErrNotFound              = errors.New("user doesn't exist")
	ErrNotificationFailed    = errors.New("notification delivery failed")
	ErrStoreUnavailable      = errors.New("user store unavailable")
	ErrInvalidConfig         = errors.New("invalid auth configuration")
)
