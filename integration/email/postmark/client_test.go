package postmark_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/cravecorner/core/email"
	"github.com/dmitrymomot/cravecorner/integration/email/postmark"
)

type captured struct {
	mu      sync.Mutex
	token   string
	payload map[string]any
}

func apiServer(t *testing.T, status int, reply map[string]any) (*httptest.Server, *captured) {
	t.Helper()
	c := &captured{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.mu.Lock()
		c.token = r.Header.Get("X-Postmark-Server-Token")
		_ = json.NewDecoder(r.Body).Decode(&c.payload)
		c.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(reply)
	}))
	t.Cleanup(srv.Close)
	return srv, c
}

func validConfig() postmark.Config {
	return postmark.Config{
		PostmarkServerToken: "server-token",
		SenderEmail:         "orders@cravecorner.app",
		SenderName:          "Crave Corner",
		SupportEmail:        "support@cravecorner.app",
	}
}

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*postmark.Config)
		ok     bool
	}{
		{"valid", func(*postmark.Config) {}, true},
		{"no support address", func(c *postmark.Config) { c.SupportEmail = "" }, true},
		{"no server token", func(c *postmark.Config) { c.PostmarkServerToken = "" }, false},
		{"no sender", func(c *postmark.Config) { c.SenderEmail = "" }, false},
		{"bad sender", func(c *postmark.Config) { c.SenderEmail = "orders" }, false},
		{"bad support", func(c *postmark.Config) { c.SupportEmail = "help" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := validConfig()
			tt.mutate(&cfg)
			_, err := postmark.New(cfg)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, email.ErrInvalidConfig)
		})
	}
}

func TestConfig_Enabled(t *testing.T) {
	t.Parallel()

	assert.False(t, postmark.Config{}.Enabled())
	assert.True(t, postmark.Config{PostmarkServerToken: "t"}.Enabled())
	assert.True(t, postmark.Config{PostmarkServerToken: "t", Provider: "Postmark"}.Enabled())
	assert.False(t, postmark.Config{PostmarkServerToken: "t", Provider: "smtp"}.Enabled())
}

func TestClient_SendEmail(t *testing.T) {
	t.Parallel()

	srv, got := apiServer(t, http.StatusOK, map[string]any{"ErrorCode": 0, "Message": "OK", "MessageID": "abc"})
	c, err := postmark.New(validConfig(), postmark.WithBaseURL(srv.URL))
	require.NoError(t, err)

	err = c.SendEmail(context.Background(), email.SendEmailParams{
		SendTo:   "jane@example.com",
		Subject:  "Reset your password - OTP",
		BodyHTML: "<p>123456</p>",
		Tag:      "reset-otp",
	})
	require.NoError(t, err)

	got.mu.Lock()
	defer got.mu.Unlock()
	assert.Equal(t, "server-token", got.token)
	assert.Equal(t, "jane@example.com", got.payload["To"])
	assert.Equal(t, `"Crave Corner" <orders@cravecorner.app>`, got.payload["From"])
	assert.Equal(t, "support@cravecorner.app", got.payload["ReplyTo"])
	assert.Equal(t, "Reset your password - OTP", got.payload["Subject"])
	assert.Equal(t, "reset-otp", got.payload["Tag"])
	assert.Equal(t, "postmark", c.Name())
}

func TestClient_SendEmailProviderError(t *testing.T) {
	t.Parallel()

	srv, _ := apiServer(t, http.StatusUnprocessableEntity, map[string]any{"ErrorCode": 300, "Message": "Invalid email request"})
	c, err := postmark.New(validConfig(), postmark.WithBaseURL(srv.URL))
	require.NoError(t, err)

	err = c.SendEmail(context.Background(), email.SendEmailParams{SendTo: "jane@example.com", Subject: "s", BodyHTML: "b"})
	assert.ErrorIs(t, err, email.ErrFailedToSendEmail)
}

func TestClient_SendEmailInvalidParams(t *testing.T) {
	t.Parallel()

	c := postmark.MustNewClient(validConfig())
	err := c.SendEmail(context.Background(), email.SendEmailParams{SendTo: "not-an-address"})
	assert.ErrorIs(t, err, email.ErrInvalidParams)
}
