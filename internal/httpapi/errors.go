package httpapi

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/cravecorner/core/binder"
	"github.com/dmitrymomot/cravecorner/core/handler"
	"github.com/dmitrymomot/cravecorner/core/logger"
	"github.com/dmitrymomot/cravecorner/core/response"
	"github.com/dmitrymomot/cravecorner/core/router"
	"github.com/dmitrymomot/cravecorner/core/validator"
	"github.com/dmitrymomot/cravecorner/internal/auth"
)

// Client-facing errors. Messages keep the wording existing clients match on.
var (
	errValidation        = response.ErrBadRequest.WithCode("validation_error").WithMessage("Invalid request data")
	errBadBody           = response.ErrBadRequest.WithCode("invalid_body").WithMessage("Invalid request body")
	errConflict          = response.ErrBadRequest.WithCode("conflict").WithMessage("User already exist with this email")
	errCredentials       = response.ErrBadRequest.WithCode("invalid_credentials").WithMessage("Incorrect email or password")
	errVerificationToken = response.ErrBadRequest.WithCode("invalid_or_expired_token").WithMessage("Invalid or expired verification token")
	errResetOTP          = response.ErrBadRequest.WithCode("invalid_or_expired_token").WithMessage("Invalid or expired OTP")
	errIdentityToken     = response.ErrBadRequest.WithCode("invalid_identity_token").WithMessage("Invalid Google token")
	errUnauthenticated   = response.ErrUnauthorized.WithCode("unauthenticated").WithMessage("User not authenticated")
	errUserNotFound      = response.ErrBadRequest.WithCode("not_found").WithMessage("User doesn't exist")
	errNotification      = response.ErrBadGateway.WithCode("notification_failed").WithMessage("Failed to send email, please try again later")
	errStoreUnavailable  = response.ErrServiceUnavailable.WithCode("store_unavailable").WithMessage("Service temporarily unavailable")
	errInternal          = response.ErrInternalServerError.WithMessage("Internal server error")
)

// MapError translates auth and binder errors. It never copies err's text
// into the response.
func MapError(err error) (response.HTTPError, bool) {
	switch {
	case errors.Is(err, auth.ErrValidation):
		e := errValidation
		if ve := validator.ExtractValidationErrors(err); ve != nil {
			e = e.WithDetails(ve.Fields())
		}
		return e, true
	case errors.Is(err, binder.ErrUnsupportedMediaType), errors.Is(err, binder.ErrMissingContentType):
		return response.ErrUnsupportedMedia.WithMessage("Content-Type must be application/json"), true
	case errors.Is(err, binder.ErrBodyTooLarge):
		return response.ErrEntityTooLarge, true
	case errors.Is(err, binder.ErrFailedToParseJSON):
		return errBadBody, true
	case errors.Is(err, auth.ErrConflict):
		return errConflict, true
	case errors.Is(err, auth.ErrInvalidCredentials):
		return errCredentials, true
	case errors.Is(err, auth.ErrInvalidOrExpiredToken):
		return errVerificationToken, true
	case errors.Is(err, auth.ErrInvalidIdentityToken):
		return errIdentityToken, true
	case errors.Is(err, auth.ErrUnauthenticated):
		return errUnauthenticated, true
	case errors.Is(err, auth.ErrNotFound):
		return errUserNotFound, true
	case errors.Is(err, auth.ErrNotificationFailed):
		return errNotification, true
	case errors.Is(err, auth.ErrStoreUnavailable):
		return errStoreUnavailable, true
	}

	var httpErr response.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr, true
	}
	var sc interface{ StatusCode() int }
	if errors.As(err, &sc) && sc.StatusCode() < http.StatusInternalServerError {
		return response.HTTPError{}, false
	}
	return errInternal, true
}

// ErrorHandler renders errors as JSON and logs every 5xx with the request
// context.
func ErrorHandler(log *slog.Logger) handler.ErrorHandler[*router.Context] {
	return response.JSONErrorHandlerWith(func(ctx *router.Context, err error) {
		r := ctx.Request()
		log.ErrorContext(r.Context(), "request failed",
			logger.Method(r.Method),
			logger.Path(r.URL.Path),
			logger.Error(err),
		)
	}, MapError)
}
