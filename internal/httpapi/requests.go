package httpapi

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/dmitrymomot/cravecorner/core/sanitizer"
)

type signupRequest struct {
	Fullname string  `json:"fullname" sanitize:"trim,single_line,strip_html" validate:"required;max:100"`
	Email    string  `json:"email" sanitize:"email" validate:"required;email"`
	Password string  `json:"password" validate:"required"`
	Contact  contact `json:"contact"`
}

// contact is a phone number sent either as a JSON number or a string such
// as "+1 555-1234". Only the digits are kept.
type contact string

func (c *contact) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*c = contact(sanitizer.KeepDigits(s))
		return nil
	}
	if string(b) == "null" {
		*c = ""
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	if i, err := n.Int64(); err == nil {
		*c = contact(strconv.FormatInt(i, 10))
		return nil
	}
	*c = contact(sanitizer.KeepDigits(n.String()))
	return nil
}

func (c contact) int64() (int64, bool) {
	if c == "" {
		return 0, true
	}
	n, err := strconv.ParseInt(string(c), 10, 64)
	return n, err == nil
}

type loginRequest struct {
	Email    string `json:"email" sanitize:"email" validate:"required;email"`
	Password string `json:"password" validate:"required"`
}

// verifyEmailRequest accepts the code under either name.
type verifyEmailRequest struct {
	VerificationCode string `json:"verificationCode" sanitize:"trim"`
	Code             string `json:"code" sanitize:"trim"`
}

func (r verifyEmailRequest) value() string {
	if r.VerificationCode != "" {
		return r.VerificationCode
	}
	return r.Code
}

type forgotPasswordRequest struct {
	Email string `json:"email" sanitize:"email" validate:"required;email"`
}

type resetPasswordRequest struct {
	NewPassword string `json:"newPassword" validate:"required"`
}

type googleAuthRequest struct {
	Token string `json:"token" sanitize:"trim" validate:"required"`
}

type updateProfileRequest struct {
	Fullname       *string `json:"fullname" sanitize:"trim,single_line,strip_html"`
	Email          *string `json:"email" sanitize:"email"`
	Address        *string `json:"address" sanitize:"text"`
	City           *string `json:"city" sanitize:"text"`
	Country        *string `json:"country" sanitize:"text"`
	ProfilePicture *string `json:"profilePicture" sanitize:"trim"`
}
