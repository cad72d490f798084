package auth

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrymomot/cravecorner/core/logger"
	"github.com/dmitrymomot/cravecorner/core/validator"
	"github.com/dmitrymomot/cravecorner/internal/user"
)

// ProfileInput is a partial profile update; nil fields are left unchanged.
// ProfilePicture may be a URL or a base64 data URI, which is uploaded to
// the image store.
type ProfileInput struct {
	Fullname       *string
	Email          *string
	Address        *string
	City           *string
	Country        *string
	ProfilePicture *string
}

// UpdateProfile applies in to the account userID.
func (s *Service) UpdateProfile(ctx context.Context, userID string, in ProfileInput) (user.Public, error) {
	var rules []validator.Rule
	if in.Fullname != nil {
		rules = append(rules, validator.Required("fullname", *in.Fullname))
	}
	if in.Email != nil {
		email := user.NormalizeEmail(*in.Email)
		rules = append(rules, validator.Required("email", email), validator.ValidEmail("email", email))
	}
	if err := validator.Apply(rules...); err != nil {
		return user.Public{}, errors.Join(ErrValidation, err)
	}

	trim := func(v *string) *string {
		if v == nil {
			return nil
		}
		t := strings.TrimSpace(*v)
		return &t
	}
	changes := user.ProfileChanges{
		Fullname: trim(in.Fullname),
		Email:    trim(in.Email),
		Address:  trim(in.Address),
		City:     trim(in.City),
		Country:  trim(in.Country),
	}
	if in.ProfilePicture != nil {
		picture, err := s.resolvePicture(ctx, strings.TrimSpace(*in.ProfilePicture))
		if err != nil {
			return user.Public{}, err
		}
		changes.ProfilePicture = &picture
	}

	var (
		u   *user.User
		err error
	)
	if changes.IsEmpty() {
		u, err = s.users.GetByID(ctx, userID)
	} else {
		u, err = s.users.UpdateProfile(ctx, userID, changes)
	}
	switch {
	case errors.Is(err, user.ErrNotFound):
		return user.Public{}, ErrUnauthenticated
	case errors.Is(err, user.ErrDuplicateEmail):
		return user.Public{}, ErrConflict
	case err != nil:
		return user.Public{}, s.storeError(ctx, "update profile", err)
	}

	s.log.InfoContext(ctx, "profile updated", logger.UserID(u.ID))
	return u.Public(), nil
}

// resolvePicture uploads data URIs and passes URLs through.
func (s *Service) resolvePicture(ctx context.Context, picture string) (string, error) {
	if !strings.HasPrefix(picture, "data:") {
		if err := validator.Apply(validator.ValidURL("profilePicture", picture)); err != nil {
			return "", errors.Join(ErrValidation, err)
		}
		return picture, nil
	}

	invalid := func(msg string) error {
		return errors.Join(ErrValidation, validator.ValidationErrors{{Field: "profilePicture", Message: msg}})
	}
	if s.images == nil {
		return "", invalid("image uploads are not enabled")
	}

	contentType, data, err := decodeDataURI(picture)
	if err != nil {
		return "", invalid("must be a base64 encoded image")
	}
	if !strings.HasPrefix(contentType, "image/") {
		return "", invalid("must be an image")
	}
	if s.cfg.MaxPictureBytes > 0 && len(data) > s.cfg.MaxPictureBytes {
		return "", invalid(fmt.Sprintf("must be at most %d bytes", s.cfg.MaxPictureBytes))
	}

	url, err := s.images.Upload(ctx, "", data, contentType)
	if err != nil {
		s.log.ErrorContext(ctx, "profile picture upload failed", logger.Error(err))
		return "", fmt.Errorf("%w: upload picture", ErrStoreUnavailable)
	}
	return url, nil
}

// decodeDataURI parses data:<type>;base64,<payload>.
func decodeDataURI(uri string) (string, []byte, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok {
		return "", nil, errors.New("missing payload")
	}
	contentType, encoding, _ := strings.Cut(meta, ";")
	if encoding != "base64" {
		return "", nil, errors.New("payload is not base64")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, err
	}
	return strings.ToLower(contentType), data, nil
}
