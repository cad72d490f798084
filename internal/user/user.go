package user

import (
	"strings"
	"time"
)

// Profile defaults for accounts that have not filled them in yet.
const (
	DefaultAddress = "Update your address"
	DefaultCity    = "Update your city"
	DefaultCountry = "Update your country"
)

// User is the stored account record.
type User struct {
	ID             string
	Fullname       string
	Email          string
	PasswordHash   string
	Contact        int64
	Address        string
	City           string
	Country        string
	ProfilePicture string
	Admin          bool
	GoogleAuth     bool
	IsVerified     bool
	LastLogin      time.Time

	VerificationToken           string
	VerificationTokenExpiresAt  time.Time
	ResetPasswordToken          string
	ResetPasswordTokenExpiresAt time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Public is the account as returned to clients. It has no password or
// token fields, so handlers cannot leak them by accident.
type Public struct {
	ID             string    `json:"_id"`
	Fullname       string    `json:"fullname"`
	Email          string    `json:"email"`
	Contact        int64     `json:"contact"`
	Address        string    `json:"address"`
	City           string    `json:"city"`
	Country        string    `json:"country"`
	ProfilePicture string    `json:"profilePicture"`
	Admin          bool      `json:"admin"`
	GoogleAuth     bool      `json:"googleAuth"`
	IsVerified     bool      `json:"isVerified"`
	LastLogin      time.Time `json:"lastLogin"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Public projects u for output.
func (u *User) Public() Public {
	return Public{
		ID:             u.ID,
		Fullname:       u.Fullname,
		Email:          u.Email,
		Contact:        u.Contact,
		Address:        u.Address,
		City:           u.City,
		Country:        u.Country,
		ProfilePicture: u.ProfilePicture,
		Admin:          u.Admin,
		GoogleAuth:     u.GoogleAuth,
		IsVerified:     u.IsVerified,
		LastLogin:      u.LastLogin,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}

// HasPassword reports whether the account can log in with a password.
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}

// SetVerificationToken replaces any outstanding verification token.
func (u *User) SetVerificationToken(token string, expiresAt time.Time) {
	u.VerificationToken = token
	u.VerificationTokenExpiresAt = expiresAt
}

// ClearVerificationToken drops the verification token and its expiry.
func (u *User) ClearVerificationToken() {
	u.VerificationToken = ""
	u.VerificationTokenExpiresAt = time.Time{}
}

// SetResetToken replaces any outstanding reset token.
func (u *User) SetResetToken(token string, expiresAt time.Time) {
	u.ResetPasswordToken = token
	u.ResetPasswordTokenExpiresAt = expiresAt
}

// ClearResetToken drops the reset token and its expiry.
func (u *User) ClearResetToken() {
	u.ResetPasswordToken = ""
	u.ResetPasswordTokenExpiresAt = time.Time{}
}

// VerificationTokenValid reports whether token matches and has not expired.
func (u *User) VerificationTokenValid(token string, now time.Time) bool {
	return token != "" && u.VerificationToken == token && now.Before(u.VerificationTokenExpiresAt)
}

// ResetTokenValid reports whether token matches and has not expired.
func (u *User) ResetTokenValid(token string, now time.Time) bool {
	return token != "" && u.ResetPasswordToken == token && now.Before(u.ResetPasswordTokenExpiresAt)
}

// applyDefaults fills the profile placeholders on a new record.
func (u *User) applyDefaults(now time.Time) {
	u.Email = NormalizeEmail(u.Email)
	if u.Address == "" {
		u.Address = DefaultAddress
	}
	if u.City == "" {
		u.City = DefaultCity
	}
	if u.Country == "" {
		u.Country = DefaultCountry
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
}

// NormalizeEmail trims and lower-cases an address. Every lookup and write
// goes through it so the unique index sees one spelling per account.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
