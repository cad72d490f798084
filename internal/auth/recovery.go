package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrymomot/cravecorner/core/logger"
	"github.com/dmitrymomot/cravecorner/core/validator"
	"github.com/dmitrymomot/cravecorner/internal/message"
	"github.com/dmitrymomot/cravecorner/internal/user"
)

// VerifyEmail marks the account holding an unexpired code as verified and
// clears the code. Unknown and expired codes are indistinguishable.
func (s *Service) VerifyEmail(ctx context.Context, code string) (user.Public, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return user.Public{}, ErrInvalidOrExpiredToken
	}

	u, err := s.users.ConsumeVerificationToken(ctx, code, s.now())
	switch {
	case errors.Is(err, user.ErrNotFound):
		return user.Public{}, ErrInvalidOrExpiredToken
	case err != nil:
		return user.Public{}, s.storeError(ctx, "verify email", err)
	}

	s.log.InfoContext(ctx, "email verified", logger.UserID(u.ID))
	return u.Public(), nil
}

// SendVerification issues a fresh verification code for userID, replacing
// any outstanding one, and emails it.
func (s *Service) SendVerification(ctx context.Context, userID string) error {
	u, err := s.users.GetByID(ctx, userID)
	switch {
	case errors.Is(err, user.ErrNotFound):
		return ErrNotFound
	case err != nil:
		return s.storeError(ctx, "lookup user", err)
	}

	cred, err := s.issuer.IssueVerificationCode()
	if err != nil {
		return fmt.Errorf("issue verification code: %w", err)
	}
	if err := s.users.SetVerificationToken(ctx, u.ID, cred.Value, cred.ExpiresAt); err != nil {
		return s.storeError(ctx, "store verification code", err)
	}

	return s.notify(ctx, u.Email, message.KindVerification, message.Params{Code: cred.Value})
}

// ForgotPassword stores a new reset code for email and delivers it. Unlike
// Login it reports unknown accounts with ErrNotFound.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	email = user.NormalizeEmail(email)
	if err := validator.Apply(
		validator.Required("email", email),
		validator.ValidEmail("email", email),
	); err != nil {
		return errors.Join(ErrValidation, err)
	}

	u, err := s.users.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, user.ErrNotFound):
		return ErrNotFound
	case err != nil:
		return s.storeError(ctx, "lookup email", err)
	}

	cred, err := s.issuer.IssueResetOTP()
	if err != nil {
		return fmt.Errorf("issue reset code: %w", err)
	}
	if err := s.users.SetResetToken(ctx, u.ID, cred.Value, cred.ExpiresAt); err != nil {
		return s.storeError(ctx, "store reset code", err)
	}

	s.log.InfoContext(ctx, "password reset requested", logger.UserID(u.ID))
	return s.notify(ctx, u.Email, message.KindResetOTP, message.Params{OTP: cred.Value})
}

// ResetPassword replaces the password of the account holding an unexpired
// reset code. The code is consumed atomically with the password change,
// so concurrent calls with one code succeed at most once. The
// confirmation email is best effort.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	if err := validatePassword("newPassword", newPassword); err != nil {
		return err
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrInvalidOrExpiredToken
	}

	// Reject unknown codes before hashing.
	switch _, err := s.users.GetByResetToken(ctx, token, s.now()); {
	case errors.Is(err, user.ErrNotFound):
		return ErrInvalidOrExpiredToken
	case err != nil:
		return s.storeError(ctx, "lookup reset code", err)
	}

	hash, err := s.hashPassword(ctx, newPassword)
	if err != nil {
		return err
	}
	u, err := s.users.ConsumeResetToken(ctx, token, s.now(), hash)
	switch {
	case errors.Is(err, user.ErrNotFound):
		return ErrInvalidOrExpiredToken
	case err != nil:
		return s.storeError(ctx, "reset password", err)
	}

	s.log.InfoContext(ctx, "password reset", logger.UserID(u.ID))
	s.notifyLater(ctx, u.Email, message.KindResetSuccess, message.Params{})
	return nil
}
