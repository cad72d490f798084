package cookie_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/cravecorner/core/cookie"
)

func TestSessionPolicy_Attach(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		cfg    cookie.Config
		secure bool
	}{
		{name: "development", cfg: cookie.DefaultConfig(), secure: false},
		{name: "production", cfg: cookie.Config{Env: "production"}, secure: true},
		{name: "prod shorthand", cfg: cookie.Config{Env: " PROD "}, secure: true},
		{name: "staging", cfg: cookie.Config{Env: "staging"}, secure: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := cookie.NewSessionPolicy(tt.cfg).Attach("jwt-value")
			assert.Equal(t, "token", c.Name)
			assert.Equal(t, "jwt-value", c.Value)
			assert.Equal(t, "/", c.Path)
			assert.True(t, c.HttpOnly)
			assert.Equal(t, http.SameSiteStrictMode, c.SameSite)
			assert.Equal(t, int((7 * 24 * time.Hour).Seconds()), c.MaxAge)
			assert.Equal(t, tt.secure, c.Secure)
		})
	}
}

func TestSessionPolicy_Clear(t *testing.T) {
	t.Parallel()

	p := cookie.NewSessionPolicy(cookie.Config{Env: "production", Domain: "cravecorner.app"})
	c := p.Clear()
	assert.Equal(t, "token", c.Name)
	assert.Empty(t, c.Value)
	assert.Negative(t, c.MaxAge)
	assert.True(t, c.Secure)
	assert.Equal(t, "cravecorner.app", c.Domain)
	assert.Equal(t, http.SameSiteStrictMode, c.SameSite)
}

func TestSessionPolicy_Token(t *testing.T) {
	t.Parallel()

	p := cookie.NewSessionPolicy(cookie.DefaultConfig())

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := p.Token(r)
	require.ErrorIs(t, err, cookie.ErrCookieNotFound)

	r.AddCookie(p.Attach("abc"))
	token, err := p.Token(r)
	require.NoError(t, err)
	assert.Equal(t, "abc", token)
}

func TestSessionPolicy_Options(t *testing.T) {
	t.Parallel()

	p := cookie.NewSessionPolicy(cookie.Config{Name: "sid", TTL: time.Hour}, cookie.WithPath("/api"))
	c := p.Attach("v")
	assert.Equal(t, "sid", p.Name())
	assert.Equal(t, "/api", c.Path)
	assert.Equal(t, 3600, c.MaxAge)
}
