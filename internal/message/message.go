package message

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/cravecorner/core/email/templates"
	"github.com/dmitrymomot/cravecorner/core/email/templates/components"
)

// Kind selects a template.
type Kind string

const (
	KindVerification Kind = "verification"
	KindWelcome      Kind = "welcome"
	KindResetOTP     Kind = "reset-otp"
	KindResetSuccess Kind = "reset-success"
)

var (
	ErrUnknownKind  = errors.New("unknown message kind")
	ErrMissingParam = errors.New("missing message parameter")
)

// Params carries the values a template embeds. Each kind reads only the
// fields it needs.
type Params struct {
	Code string // verification code
	Name string // display name for the welcome message
	OTP  string // password reset code
}

// Message is a rendered email without a recipient.
type Message struct {
	Subject string
	HTML    string
	Tag     string
}

const brand = "CraveCorner"

// Render builds the subject and HTML body for kind. It does no I/O.
func Render(ctx context.Context, kind Kind, p Params) (Message, error) {
	var (
		subject string
		body    templ.Component
	)

	switch kind {
	case KindVerification:
		if strings.TrimSpace(p.Code) == "" {
			return Message{}, fmt.Errorf("%w: code", ErrMissingParam)
		}
		subject = "Verify your email"
		body = components.Layout(subject,
			components.Header("Verify Your Email", ""),
			components.Text("Thank you for signing up with "+brand+". Use the code below to verify your email address."),
			components.OTP(p.Code),
			components.TextSecondary("This code expires in 24 hours. If you did not create an account, you can ignore this email."),
			footer(),
		)

	case KindWelcome:
		name := strings.TrimSpace(p.Name)
		if name == "" {
			name = "there"
		}
		subject = "Welcome to " + brand
		body = components.Layout(subject,
			components.Header("Welcome to "+brand+", "+name+"!", "Your account is ready."),
			components.Text("We're thrilled to have you. Browse restaurants near you, build your cart and track your orders in one place."),
			components.TextSecondary("Reply to this email if you have any questions."),
			footer(),
		)

	case KindResetOTP:
		if strings.TrimSpace(p.OTP) == "" {
			return Message{}, fmt.Errorf("%w: otp", ErrMissingParam)
		}
		subject = "Reset your password - OTP"
		body = components.Layout(subject,
			components.Header("Reset Your Password", ""),
			components.Text("We received a request to reset your password. Enter this code to choose a new one:"),
			components.OTP(p.OTP),
			components.TextSecondary("The code expires in 1 hour. If you did not request a reset, no action is needed."),
			footer(),
		)

	case KindResetSuccess:
		subject = "Password Reset Successful"
		body = components.Layout(subject,
			components.Header("Password Reset Successful", ""),
			components.Text("Your password has been changed. You can now log in with your new password."),
			components.TextSecondary("If you did not make this change, contact support right away."),
			footer(),
		)

	default:
		return Message{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	html, err := templates.Render(ctx, body)
	if err != nil {
		return Message{}, err
	}
	return Message{Subject: subject, HTML: html, Tag: string(kind)}, nil
}

func footer() templ.Component {
	return components.Footer("© " + brand + ". All rights reserved.")
}
