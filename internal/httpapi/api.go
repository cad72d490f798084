package httpapi

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/dmitrymomot/cravecorner/core/binder"
	"github.com/dmitrymomot/cravecorner/core/cookie"
	"github.com/dmitrymomot/cravecorner/core/handler"
	"github.com/dmitrymomot/cravecorner/core/response"
	"github.com/dmitrymomot/cravecorner/core/router"
	"github.com/dmitrymomot/cravecorner/core/sanitizer"
	"github.com/dmitrymomot/cravecorner/core/validator"
	"github.com/dmitrymomot/cravecorner/internal/auth"
	"github.com/dmitrymomot/cravecorner/internal/user"
	"github.com/dmitrymomot/cravecorner/middleware"
)

// Prefix is where Mount registers the account routes.
const Prefix = "/api/v1/user"

// Gateway is the account service behind the routes.
type Gateway interface {
	Register(ctx context.Context, in auth.RegisterInput) (user.Public, error)
	Login(ctx context.Context, email, password string) (auth.Session, error)
	VerifyEmail(ctx context.Context, code string) (user.Public, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	FederatedLogin(ctx context.Context, idToken string) (auth.Session, error)
	CheckAuth(ctx context.Context, token string) (user.Public, error)
	UpdateProfile(ctx context.Context, userID string, in auth.ProfileInput) (user.Public, error)
	Authenticate(token string) (string, error)
}

// Handler serves the account API.
type Handler struct {
	svc     Gateway
	cookies *cookie.SessionPolicy
	bind    binder.Binder
	token   middleware.TokenExtractor
	log     *slog.Logger
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(h *Handler) {
		if log != nil {
			h.log = log
		}
	}
}

// WithBinder replaces the JSON body binder.
func WithBinder(b binder.Binder) Option {
	return func(h *Handler) {
		if b != nil {
			h.bind = b
		}
	}
}

// New creates a Handler. The session token is read from the policy's
// cookie first and from an Authorization: Bearer header otherwise.
func New(svc Gateway, cookies *cookie.SessionPolicy, opts ...Option) *Handler {
	h := &Handler{
		svc:     svc,
		cookies: cookies,
		bind:    binder.JSON(),
		token: middleware.TokenFromMultiple(
			middleware.TokenFromCookie(cookies.Name()),
			middleware.TokenFromAuthHeader(),
		),
		log: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Mount registers the routes under Prefix.
func (h *Handler) Mount(r router.Router[*router.Context]) {
	session := middleware.RequireSessionWithConfig(middleware.SessionConfig[*router.Context, string]{
		Authenticate: func(_ context.Context, token string) (string, error) {
			return h.svc.Authenticate(token)
		},
		Extract: h.token,
		OnError: func(*router.Context, error) handler.Response {
			return response.Error(auth.ErrUnauthenticated)
		},
	})

	r.Route(Prefix, func(r router.Router[*router.Context]) {
		r.Post("/signup", h.signup)
		r.Post("/login", h.login)
		r.Post("/logout", h.logout)
		r.Post("/verify-email", h.verifyEmail)
		r.Post("/forgot-password", h.forgotPassword)
		r.Post("/reset-password/{token}", h.resetPassword)
		r.Post("/google-auth", h.googleAuth)

		authed := r.With(session)
		authed.Put("/profile/update", h.updateProfile)
		authed.Get("/check-auth", h.checkAuth)
	})
}

// decode binds the JSON body into v, then sanitizes and validates it.
func (h *Handler) decode(ctx *router.Context, v any) error {
	if err := h.bind(ctx.Request(), v); err != nil {
		return err
	}
	if err := sanitizer.SanitizeStruct(v); err != nil {
		return err
	}
	if err := validator.ValidateStruct(v); err != nil {
		return errors.Join(auth.ErrValidation, err)
	}
	return nil
}
