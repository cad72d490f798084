package federated

import "errors"

var (
	ErrNotConfigured = errors.New("federated login is not configured")
	ErrInvalidToken  = errors.New("invalid identity token")
	ErrKeyFetch      = errors.New("failed to fetch signing keys")
)
