package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrymomot/cravecorner/core/logger"
	"github.com/dmitrymomot/cravecorner/internal/user"
)

// FederatedLogin signs in with an identity provider token. Unknown emails
// get a new verified account without a password; existing accounts only
// have a missing profile picture filled in.
func (s *Service) FederatedLogin(ctx context.Context, idToken string) (Session, error) {
	if s.verifier == nil || strings.TrimSpace(idToken) == "" {
		return Session{}, ErrInvalidIdentityToken
	}

	id, err := s.verifier.Verify(ctx, idToken)
	if err != nil {
		s.log.WarnContext(ctx, "identity token rejected", logger.Error(err))
		return Session{}, ErrInvalidIdentityToken
	}
	email := user.NormalizeEmail(id.Email)

	u, err := s.users.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, user.ErrNotFound):
		u, err = s.createFederated(ctx, email, id.Name, id.Picture)
		if err != nil {
			return Session{}, err
		}
	case err != nil:
		return Session{}, s.storeError(ctx, "lookup email", err)
	default:
		if u.ProfilePicture == "" && id.Picture != "" {
			u, err = s.users.UpdateProfile(ctx, u.ID, user.ProfileChanges{ProfilePicture: &id.Picture})
			if err != nil {
				return Session{}, s.storeError(ctx, "fill profile picture", err)
			}
		}
	}

	return s.startSession(ctx, u)
}

func (s *Service) createFederated(ctx context.Context, email, name, picture string) (*user.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name, _, _ = strings.Cut(email, "@")
	}

	u := &user.User{
		Fullname:       name,
		Email:          email,
		ProfilePicture: picture,
		GoogleAuth:     true,
		IsVerified:     true,
	}
	err := s.users.Create(ctx, u)
	if errors.Is(err, user.ErrDuplicateEmail) {
		// Lost a race with a concurrent signup for the same address.
		u, err = s.users.GetByEmail(ctx, email)
	}
	if err != nil {
		return nil, s.storeError(ctx, "create federated user", err)
	}

	s.log.InfoContext(ctx, "federated account created", logger.UserID(u.ID))
	return u, nil
}
