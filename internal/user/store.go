package user

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound       = errors.New("user not found")
	ErrDuplicateEmail = errors.New("user with this email already exists")
)

// Store is the durable user record boundary. Implementations normalize
// emails, return ErrNotFound for missing records and ErrDuplicateEmail
// when a write would reuse another account's email. Any other error
// means the backend is unavailable.
//
// Writes after Create only touch the fields they name. A caller holding
// a stale copy of the record can never write back fields another request
// changed in the meantime.
type Store interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	// GetByResetToken only matches a token whose expiry is after now.
	GetByResetToken(ctx context.Context, token string, now time.Time) (*User, error)

	RecordLogin(ctx context.Context, id string, at time.Time) error
	UpdateProfile(ctx context.Context, id string, p ProfileChanges) (*User, error)

	SetVerificationToken(ctx context.Context, id, token string, expiresAt time.Time) error
	SetResetToken(ctx context.Context, id, token string, expiresAt time.Time) error

	// ConsumeVerificationToken and ConsumeResetToken match an unexpired
	// token and clear it in one atomic step, so each token value succeeds
	// at most once. They return the updated record, or ErrNotFound.
	ConsumeVerificationToken(ctx context.Context, token string, now time.Time) (*User, error)
	ConsumeResetToken(ctx context.Context, token string, now time.Time, passwordHash string) (*User, error)
}

// ProfileChanges lists the profile fields to overwrite. Nil fields keep
// their stored value.
type ProfileChanges struct {
	Fullname       *string
	Email          *string
	Address        *string
	City           *string
	Country        *string
	ProfilePicture *string
}

// IsEmpty reports whether p changes nothing.
func (p ProfileChanges) IsEmpty() bool {
	return p.Fullname == nil && p.Email == nil && p.Address == nil &&
		p.City == nil && p.Country == nil && p.ProfilePicture == nil
}

func (p ProfileChanges) apply(u *User) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&u.Fullname, p.Fullname)
	set(&u.Address, p.Address)
	set(&u.City, p.City)
	set(&u.Country, p.Country)
	set(&u.ProfilePicture, p.ProfilePicture)
	if p.Email != nil {
		u.Email = NormalizeEmail(*p.Email)
	}
}
