package auth

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/cravecorner/core/logger"
	"github.com/dmitrymomot/cravecorner/internal/credential"
	"github.com/dmitrymomot/cravecorner/internal/delivery"
	"github.com/dmitrymomot/cravecorner/internal/federated"
	"github.com/dmitrymomot/cravecorner/internal/user"
	"github.com/dmitrymomot/cravecorner/pkg/async"
)

// Sender delivers a rendered email. *delivery.Dispatcher implements it.
type Sender interface {
	Send(ctx context.Context, msg delivery.Message) (delivery.Report, error)
}

// Verifier checks a federated identity token. *federated.GoogleVerifier
// implements it.
type Verifier interface {
	Verify(ctx context.Context, idToken string) (federated.Identity, error)
}

// ImageStore persists uploaded profile pictures and returns their public
// URL. *s3.ImageStore implements it.
type ImageStore interface {
	Upload(ctx context.Context, name string, data []byte, contentType string) (string, error)
}

// Session is the result of a successful login.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      user.Public
}

// Service drives the account state machine: registration, password and
// federated login, email verification and password reset.
type Service struct {
	cfg      Config
	users    user.Store
	issuer   *credential.Issuer
	sender   Sender
	verifier Verifier
	images   ImageStore
	log      *slog.Logger
	now      func() time.Time

	dummyOnce sync.Once
	dummyHash []byte

	mu      sync.Mutex
	pending []*async.ExecFuture
}

// Option configures a Service.
type Option func(*Service)

// WithVerifier enables FederatedLogin.
func WithVerifier(v Verifier) Option {
	return func(s *Service) { s.verifier = v }
}

// WithImageStore enables data URI profile picture uploads.
func WithImageStore(store ImageStore) Option {
	return func(s *Service) { s.images = store }
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithClock overrides the clock used for token expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a Service.
func New(cfg Config, users user.Store, issuer *credential.Issuer, sender Sender, opts ...Option) (*Service, error) {
	if users == nil || issuer == nil || sender == nil {
		return nil, fmt.Errorf("%w: store, issuer and sender are required", ErrInvalidConfig)
	}
	if cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
		return nil, fmt.Errorf("%w: bcrypt cost must be between %d and %d", ErrInvalidConfig, bcrypt.MinCost, bcrypt.MaxCost)
	}

	s := &Service{
		cfg:    cfg,
		users:  users,
		issuer: issuer,
		sender: sender,
		log:    slog.New(slog.DiscardHandler),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(logger.Component("auth"))
	return s, nil
}

// MustNew is New that panics on error.
func MustNew(cfg Config, users user.Store, issuer *credential.Issuer, sender Sender, opts ...Option) *Service {
	s, err := New(cfg, users, issuer, sender, opts...)
	if err != nil {
		panic(err)
	}
	return s
}

// storeError logs a backend failure and hides it behind ErrStoreUnavailable.
func (s *Service) storeError(ctx context.Context, op string, err error) error {
	s.log.ErrorContext(ctx, "user store failure", logger.Action(op), logger.Error(err))
	return fmt.Errorf("%w: %s", ErrStoreUnavailable, op)
}

// startSession issues a session token and stamps LastLogin. Only the
// login time is written; u may be a stale copy of the record.
func (s *Service) startSession(ctx context.Context, u *user.User) (Session, error) {
	token, expiresAt, err := s.issuer.IssueSessionToken(u.ID)
	if err != nil {
		return Session{}, fmt.Errorf("issue session token: %w", err)
	}

	u.LastLogin = s.now()
	if err := s.users.RecordLogin(ctx, u.ID, u.LastLogin); err != nil {
		return Session{}, s.storeError(ctx, "record login", err)
	}
	return Session{Token: token, ExpiresAt: expiresAt, User: u.Public()}, nil
}
