package health

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/cravecorner/core/handler"
	"github.com/dmitrymomot/cravecorner/core/logger"
	"github.com/dmitrymomot/cravecorner/core/response"
)

// Check is a dependency probe.
type Check func(context.Context) error

// Readiness returns "READY" when every check passes and 503 otherwise.
// Nil checks are skipped so optional dependencies can be passed as-is.
func Readiness[C handler.Context](log *slog.Logger, checks ...Check) handler.HandlerFunc[C] {
	return func(ctx C) handler.Response {
		for _, check := range checks {
			if check == nil {
				continue
			}
			if err := check(ctx); err != nil {
				log.ErrorContext(ctx, "readiness check failed", logger.Component("health"), logger.Error(err))
				return response.Error(response.ErrServiceUnavailable)
			}
		}

		return response.String("READY")
	}
}
