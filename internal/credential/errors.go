package credential

import "errors"

var (
	ErrInvalidConfig       = errors.New("invalid credential config")
	ErrInvalidSessionToken = errors.New("invalid session token")
	ErrRandomSource        = errors.New("random source failed")
)
