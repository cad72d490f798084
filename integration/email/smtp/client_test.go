package smtp_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/cravecorner/core/email"
	"github.com/dmitrymomot/cravecorner/integration/email/smtp"
	"github.com/dmitrymomot/cravecorner/integration/email/smtp/smtptest"
)

func clientFor(t *testing.T, srv *smtptest.Server, mutate func(*smtp.Config)) *smtp.Client {
	t.Helper()
	cfg := smtp.Config{
		Host:            srv.Host,
		Port:            srv.Port,
		TLSMode:         smtp.ModePlain,
		Username:        "orders@cravecorner.app",
		Password:        "app-password",
		SenderName:      "Crave Corner",
		ConnectTimeout:  2 * time.Second,
		GreetingTimeout: 2 * time.Second,
		SocketTimeout:   2 * time.Second,
		IdleTimeout:     time.Minute,
	}
	if mutate != nil {
		mutate(&cfg)
	}
	c, err := smtp.New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func params(to string) email.SendEmailParams {
	return email.SendEmailParams{
		SendTo:   to,
		Subject:  "Verify your email",
		BodyHTML: "<p>Your code is <b>123456</b></p>",
		Tag:      "verification",
	}
}

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	valid := smtp.Config{Host: "smtp.gmail.com", Port: 587, Username: "a@b.co", Password: "x"}

	tests := []struct {
		name   string
		mutate func(c *smtp.Config)
		ok     bool
	}{
		{"valid", func(*smtp.Config) {}, true},
		{"explicit sender without auth", func(c *smtp.Config) { c.Username, c.Password, c.SenderEmail = "", "", "noreply@b.co" }, true},
		{"empty host", func(c *smtp.Config) { c.Host = "" }, false},
		{"port zero", func(c *smtp.Config) { c.Port = 0 }, false},
		{"port too high", func(c *smtp.Config) { c.Port = 70000 }, false},
		{"unknown mode", func(c *smtp.Config) { c.TLSMode = "ssl3" }, false},
		{"username without password", func(c *smtp.Config) { c.Password = "" }, false},
		{"no sender", func(c *smtp.Config) { c.Username, c.Password = "", "" }, false},
		{"bad support address", func(c *smtp.Config) { c.SupportEmail = "support" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := valid
			tt.mutate(&cfg)
			_, err := smtp.New(cfg)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, email.ErrInvalidConfig)
		})
	}

	assert.Panics(t, func() { smtp.MustNewClient(smtp.Config{}) })
}

func TestConfig_Mode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, smtp.ModeSTARTTLS, smtp.Config{}.Mode())
	assert.Equal(t, smtp.ModeTLS, smtp.Config{Secure: true}.Mode())
	assert.Equal(t, smtp.ModePlain, smtp.Config{Secure: true, TLSMode: " PLAIN "}.Mode())
	assert.Equal(t, "a@b.co", smtp.Config{Username: "a@b.co"}.Sender())
	assert.Equal(t, "c@d.co", smtp.Config{Username: "a@b.co", SenderEmail: "c@d.co"}.Sender())
}

func TestClient_ReusesConnection(t *testing.T) {
	t.Parallel()

	srv := smtptest.NewServer(t)
	c := clientFor(t, srv, nil)
	ctx := context.Background()

	require.NoError(t, c.SendEmail(ctx, params("jane@example.com")))
	require.NoError(t, c.SendEmail(ctx, params("john@example.com")))

	assert.Equal(t, 1, srv.Connections())
	assert.Equal(t, 1, srv.Resets())

	msgs := srv.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "orders@cravecorner.app", msgs[0].From)
	assert.Equal(t, []string{"jane@example.com"}, msgs[0].To)
	assert.Equal(t, []string{"john@example.com"}, msgs[1].To)
	assert.Contains(t, msgs[0].Data, `From: "Crave Corner" <orders@cravecorner.app>`)
	assert.Contains(t, msgs[0].Data, "Subject: Verify your email")
	assert.Contains(t, msgs[0].Data, "Message-ID: <")
	assert.Contains(t, msgs[0].Data, "X-Tag: verification")
	assert.Contains(t, msgs[0].Data, "Content-Transfer-Encoding: quoted-printable")
	assert.Contains(t, msgs[0].Data, "123456")
}

func TestClient_RedialsAfterServerDrop(t *testing.T) {
	t.Parallel()

	srv := smtptest.NewServer(t)
	c := clientFor(t, srv, nil)
	ctx := context.Background()

	require.NoError(t, c.SendEmail(ctx, params("jane@example.com")))
	srv.DropConnections()
	require.NoError(t, c.SendEmail(ctx, params("jane@example.com")))

	assert.Equal(t, 2, srv.Connections())
	assert.Len(t, srv.Messages(), 2)
}

func TestClient_RedialsAfterIdleTimeout(t *testing.T) {
	t.Parallel()

	srv := smtptest.NewServer(t)
	c := clientFor(t, srv, func(cfg *smtp.Config) { cfg.IdleTimeout = time.Nanosecond })
	ctx := context.Background()

	require.NoError(t, c.SendEmail(ctx, params("jane@example.com")))
	time.Sleep(time.Millisecond)
	require.NoError(t, c.SendEmail(ctx, params("jane@example.com")))

	assert.Equal(t, 2, srv.Connections())
	assert.Zero(t, srv.Resets())
}

func TestClient_GreetingTimeout(t *testing.T) {
	t.Parallel()

	srv := smtptest.NewServer(t, smtptest.WithSilentGreeting())
	c := clientFor(t, srv, func(cfg *smtp.Config) { cfg.GreetingTimeout = 200 * time.Millisecond })

	start := time.Now()
	err := c.SendEmail(context.Background(), params("jane@example.com"))
	require.ErrorIs(t, err, email.ErrFailedToSendEmail)
	assert.Contains(t, err.Error(), "greeting")
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestClient_ContextDeadlineBoundsAttempt(t *testing.T) {
	t.Parallel()

	srv := smtptest.NewServer(t, smtptest.WithGreetingDelay(5*time.Second))
	c := clientFor(t, srv, func(cfg *smtp.Config) { cfg.GreetingTimeout = 10 * time.Second })

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := c.SendEmail(ctx, params("jane@example.com"))
	require.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestClient_RejectedDataDropsConnection(t *testing.T) {
	t.Parallel()

	srv := smtptest.NewServer(t, smtptest.WithReply("DATA", "554 5.7.1 message rejected"))
	c := clientFor(t, srv, nil)
	ctx := context.Background()

	err := c.SendEmail(ctx, params("jane@example.com"))
	require.ErrorIs(t, err, email.ErrFailedToSendEmail)
	assert.True(t, strings.Contains(err.Error(), "554"))

	_ = c.SendEmail(ctx, params("jane@example.com"))
	assert.Equal(t, 2, srv.Connections())
	assert.Empty(t, srv.Messages())
}

func TestClient_InvalidParams(t *testing.T) {
	t.Parallel()

	srv := smtptest.NewServer(t)
	c := clientFor(t, srv, nil)

	err := c.SendEmail(context.Background(), email.SendEmailParams{SendTo: "nobody"})
	assert.ErrorIs(t, err, email.ErrInvalidParams)
	assert.Zero(t, srv.Connections())
}

func TestClient_ConnectionRefused(t *testing.T) {
	t.Parallel()

	srv := smtptest.NewServer(t)
	c := clientFor(t, srv, nil)
	srv.Close()

	err := c.SendEmail(context.Background(), params("jane@example.com"))
	require.ErrorIs(t, err, email.ErrFailedToSendEmail)
	assert.Contains(t, err.Error(), "connect")
}
