package auth

import (
	"context"
	"crypto/rand"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/cravecorner/core/validator"
	"github.com/dmitrymomot/cravecorner/pkg/async"
)

// maxPasswordBytes is the bcrypt input limit.
const maxPasswordBytes = 72

func validatePassword(field, password string) error {
	if err := validator.Apply(validator.Required(field, password)); err != nil {
		return errors.Join(ErrValidation, err)
	}
	if len(password) > maxPasswordBytes {
		return errors.Join(ErrValidation, validator.ValidationErrors{
			{Field: field, Message: "must be at most 72 bytes long"},
		})
	}
	return nil
}

// hashPassword runs bcrypt off the calling goroutine so a cancelled request
// stops waiting for it.
func (s *Service) hashPassword(ctx context.Context, password string) (string, error) {
	f := async.Async(ctx, password, func(_ context.Context, pw string) (string, error) {
		hash, err := bcrypt.GenerateFromPassword([]byte(pw), s.cfg.BcryptCost)
		return string(hash), err
	})
	return f.AwaitContext(ctx)
}

// passwordMatches compares in the background as well. An empty hash is
// compared against a throwaway hash so unknown accounts and accounts
// without a password take as long as a wrong password.
func (s *Service) passwordMatches(ctx context.Context, hash, password string) (bool, error) {
	target := []byte(hash)
	if hash == "" {
		target = s.dummy()
	}

	f := async.Async(ctx, password, func(_ context.Context, pw string) (bool, error) {
		// Malformed stored hashes never authenticate.
		return bcrypt.CompareHashAndPassword(target, []byte(pw)) == nil && hash != "", nil
	})
	return f.AwaitContext(ctx)
}

func (s *Service) dummy() []byte {
	s.dummyOnce.Do(func() {
		b := make([]byte, 24)
		_, _ = rand.Read(b)
		s.dummyHash, _ = bcrypt.GenerateFromPassword(b, s.cfg.BcryptCost)
	})
	return s.dummyHash
}
