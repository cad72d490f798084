package response

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/cravecorner/core/handler"
)

type statusCode interface {
	StatusCode() int
}

// ErrorMapper translates domain errors into HTTP errors. It reports false
// when it does not recognise err.
type ErrorMapper func(err error) (HTTPError, bool)

// convertToHTTPError never copies the original error text into the result
// unless err is already an HTTPError.
func convertToHTTPError(err error) HTTPError {
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	status := http.StatusInternalServerError
	var sc statusCode
	if errors.As(err, &sc) {
		status = sc.StatusCode()
	}

	if base, ok := httpErrorsByStatus[status]; ok {
		return base
	}
	return ErrInternalServerError
}

// ErrorHandler renders errors as plain text.
func ErrorHandler[C handler.Context](ctx C, err error) {
	httpErr := convertToHTTPError(err)
	Render(ctx, StringWithStatus(httpErr.Error(), httpErr.Status))
}

// JSONErrorHandler renders errors as JSON HTTPError bodies.
func JSONErrorHandler[C handler.Context](ctx C, err error) {
	httpErr := convertToHTTPError(err)
	Render(ctx, JSONWithStatus(httpErr, httpErr.Status))
}

// JSONErrorHandlerWith consults mappers in order before falling back to
// the default conversion. onUnmapped, when set, sees every error that
// ends up as a 5xx so it can be logged.
func JSONErrorHandlerWith[C handler.Context](onUnmapped func(ctx C, err error), mappers ...ErrorMapper) handler.ErrorHandler[C] {
	return func(ctx C, err error) {
		for _, m := range mappers {
			if httpErr, ok := m(err); ok {
				if httpErr.Status >= http.StatusInternalServerError && onUnmapped != nil {
					onUnmapped(ctx, err)
				}
				Render(ctx, JSONWithStatus(httpErr, httpErr.Status))
				return
			}
		}

		httpErr := convertToHTTPError(err)
		if httpErr.Status >= http.StatusInternalServerError && onUnmapped != nil {
			onUnmapped(ctx, err)
		}
		Render(ctx, JSONWithStatus(httpErr, httpErr.Status))
	}
}
