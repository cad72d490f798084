package cookie

import (
	"strings"
	"time"
)

// Config configures the session cookie policy.
type Config struct {
	Name   string        `env:"SESSION_COOKIE_NAME" envDefault:"token"`
	Path   string        `env:"SESSION_COOKIE_PATH" envDefault:"/"`
	Domain string        `env:"SESSION_COOKIE_DOMAIN"`
	TTL    time.Duration `env:"SESSION_TTL" envDefault:"168h"`
	// Env is the deployment environment; "production" turns on Secure.
	Env string `env:"APP_ENV" envDefault:"development"`
}

// DefaultConfig returns the development policy: 7 day cookie named "token".
func DefaultConfig() Config {
	return Config{
		Name: DefaultSessionCookie,
		Path: "/",
		TTL:  DefaultSessionTTL,
		Env:  "development",
	}
}

// Production reports whether the policy runs in a production environment.
func (c Config) Production() bool {
	switch strings.ToLower(strings.TrimSpace(c.Env)) {
	case "production", "prod":
		return true
	}
	return false
}
