package federated

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Identity is what a verified ID token asserts about the user.
type Identity struct {
	Subject string
	Email   string
	Name    string
	Picture string
}

type googleClaims struct {
	jwt.RegisteredClaims
	Email         string `json:"email"`
	EmailVerified *bool  `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// GoogleVerifier checks Google ID tokens: RS256 signature against
// Google's published keys, audience equal to the client ID, issuer,
// expiry, and a verified email.
type GoogleVerifier struct {
	clientID string
	keys     *keySet
	parser   *jwt.Parser
	now      func() time.Time
}

// Option configures a GoogleVerifier.
type Option func(*GoogleVerifier)

// WithHTTPClient sets the client used to fetch signing keys.
func WithHTTPClient(c *http.Client) Option {
	return func(v *GoogleVerifier) {
		if c != nil {
			v.keys.client = c
		}
	}
}

// WithClock overrides the time source for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(v *GoogleVerifier) {
		if now != nil {
			v.now = now
		}
	}
}

// NewGoogleVerifier returns a verifier for tokens issued to cfg.ClientID.
func NewGoogleVerifier(cfg Config, opts ...Option) (*GoogleVerifier, error) {
	if cfg.ClientID == "" {
		return nil, ErrNotConfigured
	}
	if cfg.JWKSURL == "" {
		cfg.JWKSURL = GoogleJWKSURL
	}
	if cfg.KeysTTL <= 0 {
		cfg.KeysTTL = time.Hour
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 5 * time.Second
	}

	v := &GoogleVerifier{
		clientID: cfg.ClientID,
		now:      time.Now,
		keys: &keySet{
			url:     cfg.JWKSURL,
			ttl:     cfg.KeysTTL,
			timeout: cfg.FetchTimeout,
			client:  http.DefaultClient,
		},
	}
	for _, opt := range opts {
		opt(v)
	}
	v.keys.now = v.now
	v.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithAudience(cfg.ClientID),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(cfg.ClockSkew),
		jwt.WithTimeFunc(v.now),
	)
	return v, nil
}

// Verify checks idToken and returns the identity it asserts. Every
// failure wraps ErrInvalidToken except key fetch problems, which wrap
// ErrKeyFetch.
func (v *GoogleVerifier) Verify(ctx context.Context, idToken string) (Identity, error) {
	if idToken == "" {
		return Identity{}, fmt.Errorf("%w: empty token", ErrInvalidToken)
	}

	claims := &googleClaims{}
	_, err := v.parser.ParseWithClaims(idToken, claims, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("missing kid")
		}
		return v.keys.key(ctx, kid)
	})
	if err != nil {
		if errors.Is(err, ErrKeyFetch) {
			return Identity{}, err
		}
		return Identity{}, errors.Join(ErrInvalidToken, err)
	}

	if !slices.Contains(GoogleIssuers, claims.Issuer) {
		return Identity{}, fmt.Errorf("%w: unexpected issuer %q", ErrInvalidToken, claims.Issuer)
	}
	if claims.Email == "" {
		return Identity{}, fmt.Errorf("%w: no email claim", ErrInvalidToken)
	}
	if claims.EmailVerified != nil && !*claims.EmailVerified {
		return Identity{}, fmt.Errorf("%w: email not verified", ErrInvalidToken)
	}

	return Identity{
		Subject: claims.Subject,
		Email:   claims.Email,
		Name:    claims.Name,
		Picture: claims.Picture,
	}, nil
}
