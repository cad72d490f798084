package federated

import "time"

// Google's published signing keys and accepted issuers.
const (
	GoogleJWKSURL = "https://www.googleapis.com/oauth2/v3/certs"
)

// GoogleIssuers are the iss values Google ID tokens may carry.
var GoogleIssuers = []string{"accounts.google.com", "https://accounts.google.com"}

// Config holds Google ID token verification settings.
type Config struct {
	ClientID     string        `env:"GOOGLE_CLIENT_ID"`
	JWKSURL      string        `env:"GOOGLE_JWKS_URL" envDefault:"https://www.googleapis.com/oauth2/v3/certs"`
	KeysTTL      time.Duration `env:"GOOGLE_JWKS_TTL" envDefault:"1h"`
	FetchTimeout time.Duration `env:"GOOGLE_JWKS_FETCH_TIMEOUT" envDefault:"5s"`
	ClockSkew    time.Duration `env:"GOOGLE_CLOCK_SKEW" envDefault:"30s"`
}

// Enabled reports whether Google sign-in is configured.
func (c Config) Enabled() bool {
	return c.ClientID != ""
}
