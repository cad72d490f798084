package delivery

import "errors"

var (
	// ErrDeliveryExhausted means every provider and transport failed. It is
	// joined with the last attempt's error.
	ErrDeliveryExhausted = errors.New("email delivery exhausted")
	ErrNoTransports      = errors.New("no delivery transports configured")
	ErrInvalidConfig     = errors.New("invalid delivery configuration")
)
