package cookie

import (
	"net/http"
	"time"
)

const (
	DefaultSessionCookie = "token"
	DefaultSessionTTL    = 7 * 24 * time.Hour
)

// SessionPolicy produces the cookies that carry the session token.
type SessionPolicy struct {
	name     string
	defaults Options
}

// NewSessionPolicy builds a policy from cfg. Zero fields fall back to
// DefaultConfig. opts are applied last.
func NewSessionPolicy(cfg Config, opts ...Option) *SessionPolicy {
	def := DefaultConfig()
	if cfg.Name == "" {
		cfg.Name = def.Name
	}
	if cfg.Path == "" {
		cfg.Path = def.Path
	}
	if cfg.TTL <= 0 {
		cfg.TTL = def.TTL
	}

	return &SessionPolicy{
		name: cfg.Name,
		defaults: applyOptions(Options{
			Path:     cfg.Path,
			Domain:   cfg.Domain,
			MaxAge:   int(cfg.TTL / time.Second),
			Secure:   cfg.Production(),
			HttpOnly: true,
			SameSite: http.SameSiteStrictMode,
		}, opts),
	}
}

// Name returns the cookie name.
func (p *SessionPolicy) Name() string {
	return p.name
}

// Attach returns the cookie that stores token for the policy lifetime.
func (p *SessionPolicy) Attach(token string) *http.Cookie {
	return Build(p.name, token, p.defaults)
}

// Clear returns an immediately expiring cookie that removes the session.
func (p *SessionPolicy) Clear() *http.Cookie {
	c := Build(p.name, "", p.defaults, WithMaxAge(-1))
	c.Expires = time.Unix(0, 0)
	return c
}

// Token reads the session token from r.
func (p *SessionPolicy) Token(r *http.Request) (string, error) {
	c, err := r.Cookie(p.name)
	if err != nil || c.Value == "" {
		return "", ErrCookieNotFound
	}
	return c.Value, nil
}
