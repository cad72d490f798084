package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dmitrymomot/cravecorner/core/handler"
	"github.com/dmitrymomot/cravecorner/core/response"
)

// ErrNoToken is returned by a TokenExtractor when the request carries no
// session token.
var ErrNoToken = errors.New("session token not found")

type sessionKey struct{}

// TokenExtractor pulls the raw session token out of a request.
type TokenExtractor func(r *http.Request) (string, error)

// TokenFromCookie reads the token from the named cookie.
func TokenFromCookie(name string) TokenExtractor {
	return func(r *http.Request) (string, error) {
		c, err := r.Cookie(name)
		if err != nil || c.Value == "" {
			return "", ErrNoToken
		}
		return c.Value, nil
	}
}

// TokenFromAuthHeader reads a "Bearer <token>" Authorization header.
func TokenFromAuthHeader() TokenExtractor {
	return func(r *http.Request) (string, error) {
		scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			return "", ErrNoToken
		}
		return strings.TrimSpace(token), nil
	}
}

// TokenFromMultiple returns the first token found by extractors.
func TokenFromMultiple(extractors ...TokenExtractor) TokenExtractor {
	return func(r *http.Request) (string, error) {
		for _, extract := range extractors {
			if token, err := extract(r); err == nil {
				return token, nil
			}
		}
		return "", ErrNoToken
	}
}

// SessionConfig configures RequireSession.
type SessionConfig[C handler.Context, T any] struct {
	// Authenticate resolves a token to the session value stored in the
	// request context.
	Authenticate func(ctx context.Context, token string) (T, error)
	// Extract finds the token. Required.
	Extract TokenExtractor
	// OnError builds the response for a missing or rejected token.
	// Default: response.Error(response.ErrUnauthorized).
	OnError func(ctx C, err error) handler.Response
}

// RequireSession rejects requests without a valid session token and
// stores the authenticated value for Session to read.
//
//	r.With(middleware.RequireSession[*router.Context](svc.Authenticate,
//		middleware.TokenFromCookie("token"))).Get("/me", me)
func RequireSession[C handler.Context, T any](authenticate func(ctx context.Context, token string) (T, error), extract TokenExtractor) handler.Middleware[C] {
	return RequireSessionWithConfig(SessionConfig[C, T]{
		Authenticate: authenticate,
		Extract:      extract,
	})
}

// RequireSessionWithConfig is RequireSession with a custom error response.
func RequireSessionWithConfig[C handler.Context, T any](cfg SessionConfig[C, T]) handler.Middleware[C] {
	if cfg.Authenticate == nil || cfg.Extract == nil {
		panic("session middleware: authenticate and extract are required")
	}
	if cfg.OnError == nil {
		cfg.OnError = func(C, error) handler.Response {
			return response.Error(response.ErrUnauthorized)
		}
	}

	return func(next handler.HandlerFunc[C]) handler.HandlerFunc[C] {
		return func(ctx C) handler.Response {
			token, err := cfg.Extract(ctx.Request())
			if err != nil {
				return cfg.OnError(ctx, err)
			}
			value, err := cfg.Authenticate(ctx, token)
			if err != nil {
				return cfg.OnError(ctx, err)
			}
			ctx.SetValue(sessionKey{}, value)
			return next(ctx)
		}
	}
}

// Session returns the value stored by RequireSession.
func Session[T any](ctx handler.Context) (T, bool) {
	v, ok := ctx.Value(sessionKey{}).(T)
	return v, ok
}
