package binder

import "net/http"

// Binder binds request data to v.
type Binder func(r *http.Request, v any) error
