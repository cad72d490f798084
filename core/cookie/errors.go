package cookie

import "errors"

var (
	ErrCookieNotFound = errors.New("cookie not found in request")
	ErrEmptyName      = errors.New("cookie name is required")
)
