package message_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/cravecorner/internal/message"
)

func TestRender(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		kind     message.Kind
		params   message.Params
		subject  string
		contains []string
	}{
		{"verification", message.KindVerification, message.Params{Code: "482913"}, "Verify your email", []string{"482913", "24 hours"}},
		{"welcome", message.KindWelcome, message.Params{Name: "Jane"}, "Welcome to CraveCorner", []string{"Welcome to CraveCorner, Jane!"}},
		{"welcome without name", message.KindWelcome, message.Params{}, "Welcome to CraveCorner", []string{"CraveCorner, there!"}},
		{"reset otp", message.KindResetOTP, message.Params{OTP: "123456"}, "Reset your password - OTP", []string{"123456", "1 hour"}},
		{"reset success", message.KindResetSuccess, message.Params{}, "Password Reset Successful", []string{"password has been changed"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			msg, err := message.Render(context.Background(), tt.kind, tt.params)
			require.NoError(t, err)
			assert.Equal(t, tt.subject, msg.Subject)
			assert.Equal(t, string(tt.kind), msg.Tag)
			assert.Contains(t, msg.HTML, "<!DOCTYPE html>")
			for _, s := range tt.contains {
				assert.Contains(t, msg.HTML, s)
			}
		})
	}
}

func TestRender_EscapesInput(t *testing.T) {
	t.Parallel()

	msg, err := message.Render(context.Background(), message.KindWelcome, message.Params{Name: `<script>alert(1)</script>`})
	require.NoError(t, err)
	assert.NotContains(t, msg.HTML, "<script>")
	assert.Contains(t, msg.HTML, "&lt;script&gt;")
}

func TestRender_Errors(t *testing.T) {
	t.Parallel()

	_, err := message.Render(context.Background(), message.KindVerification, message.Params{})
	assert.ErrorIs(t, err, message.ErrMissingParam)

	_, err = message.Render(context.Background(), message.KindResetOTP, message.Params{OTP: " "})
	assert.ErrorIs(t, err, message.ErrMissingParam)

	_, err = message.Render(context.Background(), message.Kind("newsletter"), message.Params{})
	assert.ErrorIs(t, err, message.ErrUnknownKind)
}

func TestRender_Deterministic(t *testing.T) {
	t.Parallel()

	a, err := message.Render(context.Background(), message.KindResetOTP, message.Params{OTP: "654321"})
	require.NoError(t, err)
	b, err := message.Render(context.Background(), message.KindResetOTP, message.Params{OTP: "654321"})
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
