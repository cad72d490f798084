package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrymomot/cravecorner/core/logger"
	"github.com/dmitrymomot/cravecorner/core/validator"
	"github.com/dmitrymomot/cravecorner/internal/message"
	"github.com/dmitrymomot/cravecorner/internal/user"
)

// RegisterInput is a password signup.
type RegisterInput struct {
	Fullname string
	Email    string
	Password string
	Contact  int64
}

// Register creates a password account. Accounts are verified on creation.
func (s *Service) Register(ctx context.Context, in RegisterInput) (user.Public, error) {
	email := user.NormalizeEmail(in.Email)
	if err := validator.Apply(
		validator.Required("fullname", in.Fullname),
		validator.Required("email", email),
		validator.ValidEmail("email", email),
	); err != nil {
		return user.Public{}, errors.Join(ErrValidation, err)
	}
	if err := validatePassword("password", in.Password); err != nil {
		return user.Public{}, err
	}

	switch _, err := s.users.GetByEmail(ctx, email); {
	case err == nil:
		return user.Public{}, ErrConflict
	case !errors.Is(err, user.ErrNotFound):
		return user.Public{}, s.storeError(ctx, "lookup email", err)
	}

	hash, err := s.hashPassword(ctx, in.Password)
	if err != nil {
		return user.Public{}, err
	}

	u := &user.User{
		Fullname:     strings.TrimSpace(in.Fullname),
		Email:        email,
		PasswordHash: hash,
		Contact:      in.Contact,
		IsVerified:   true,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, user.ErrDuplicateEmail) {
			return user.Public{}, ErrConflict
		}
		return user.Public{}, s.storeError(ctx, "create user", err)
	}

	s.log.InfoContext(ctx, "account created", logger.UserID(u.ID))
	if s.cfg.SendWelcomeEmail {
		s.notifyLater(ctx, u.Email, message.KindWelcome, message.Params{Name: u.Fullname})
	}
	return u.Public(), nil
}

// Login authenticates with email and password. Unknown email, wrong
// password and accounts without a password all fail the same way.
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	u, err := s.users.GetByEmail(ctx, user.NormalizeEmail(email))
	switch {
	case errors.Is(err, user.ErrNotFound):
		u = &user.User{}
	case err != nil:
		return Session{}, s.storeError(ctx, "lookup email", err)
	}

	ok, err := s.passwordMatches(ctx, u.PasswordHash, password)
	if err != nil {
		return Session{}, err
	}
	if !ok {
		return Session{}, ErrInvalidCredentials
	}

	sess, err := s.startSession(ctx, u)
	if err != nil {
		return Session{}, err
	}
	s.log.InfoContext(ctx, "login", logger.UserID(u.ID))
	return sess, nil
}

// Authenticate validates a session token and returns its subject. It does
// not touch the store.
func (s *Service) Authenticate(token string) (string, error) {
	if strings.TrimSpace(token) == "" {
		return "", ErrUnauthenticated
	}
	id, err := s.issuer.ParseSessionToken(token)
	if err != nil {
		return "", ErrUnauthenticated
	}
	return id, nil
}

// CheckAuth resolves a session token to the current account.
func (s *Service) CheckAuth(ctx context.Context, token string) (user.Public, error) {
	id, err := s.Authenticate(token)
	if err != nil {
		return user.Public{}, err
	}
	u, err := s.users.GetByID(ctx, id)
	switch {
	case errors.Is(err, user.ErrNotFound):
		return user.Public{}, ErrUnauthenticated
	case err != nil:
		return user.Public{}, s.storeError(ctx, "lookup session user", err)
	}
	return u.Public(), nil
}
