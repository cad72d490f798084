package health

import (
	"github.com/dmitrymomot/cravecorner/core/handler"
	"github.com/dmitrymomot/cravecorner/core/response"
)

// Liveness reports that the process is up. No dependency checks.
func Liveness[C handler.Context](C) handler.Response {
	return response.String("ALIVE")
}
