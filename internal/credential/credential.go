package credential

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Kind distinguishes what a one-time code unlocks.
type Kind string

const (
	KindVerification Kind = "verification"
	KindReset        Kind = "reset"
)

// MinSigningKeyLen is the shortest HS256 key accepted.
const MinSigningKeyLen = 32

// Codes are drawn uniformly from [codeMin, codeMin+codeSpan).
const (
	codeMin  = 100000
	codeSpan = 900000
)

// Credential is a freshly issued one-time code. It is written straight
// into the user record and never stored elsewhere.
type Credential struct {
	Kind      Kind
	Value     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Claims are the session token claims. The subject is the user ID.
type Claims struct {
	jwt.RegisteredClaims
}

// Issuer generates one-time codes and signs session tokens.
type Issuer struct {
	cfg    Config
	key    []byte
	now    func() time.Time
	random io.Reader
	parser *jwt.Parser
}

// Option configures an Issuer.
type Option func(*Issuer)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(i *Issuer) {
		if now != nil {
			i.now = now
		}
	}
}

// WithRandom overrides the random source. It must be cryptographically
// strong outside tests.
func WithRandom(r io.Reader) Option {
	return func(i *Issuer) {
		if r != nil {
			i.random = r
		}
	}
}

// New validates cfg and returns an Issuer.
func New(cfg Config, opts ...Option) (*Issuer, error) {
	if len(cfg.SigningKey) < MinSigningKeyLen {
		return nil, fmt.Errorf("%w: signing key must be at least %d bytes", ErrInvalidConfig, MinSigningKeyLen)
	}
	def := DefaultConfig()
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = def.SessionTTL
	}
	if cfg.VerificationCodeTTL <= 0 {
		cfg.VerificationCodeTTL = def.VerificationCodeTTL
	}
	if cfg.ResetOTPTTL <= 0 {
		cfg.ResetOTPTTL = def.ResetOTPTTL
	}
	if cfg.Issuer == "" {
		cfg.Issuer = def.Issuer
	}

	i := &Issuer{
		cfg:    cfg,
		key:    []byte(cfg.SigningKey),
		now:    time.Now,
		random: rand.Reader,
	}
	for _, opt := range opts {
		opt(i)
	}
	i.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(cfg.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(i.now),
	)
	return i, nil
}

// MustNew is New that panics on invalid config.
func MustNew(cfg Config, opts ...Option) *Issuer {
	i, err := New(cfg, opts...)
	if err != nil {
		panic(err)
	}
	return i
}

// SessionTTL is how long issued session tokens stay valid.
func (i *Issuer) SessionTTL() time.Duration {
	return i.cfg.SessionTTL
}

// IssueVerificationCode returns a 6-digit email verification code.
func (i *Issuer) IssueVerificationCode() (Credential, error) {
	return i.issueCode(KindVerification, i.cfg.VerificationCodeTTL)
}

// IssueResetOTP returns a 6-digit password reset code.
func (i *Issuer) IssueResetOTP() (Credential, error) {
	return i.issueCode(KindReset, i.cfg.ResetOTPTTL)
}

func (i *Issuer) issueCode(kind Kind, ttl time.Duration) (Credential, error) {
	n, err := rand.Int(i.random, big.NewInt(codeSpan))
	if err != nil {
		return Credential{}, errors.Join(ErrRandomSource, err)
	}
	now := i.now()
	return Credential{
		Kind:      kind,
		Value:     fmt.Sprintf("%06d", codeMin+n.Int64()),
		IssuedAt:  now,
		ExpiresAt: now.Add(ttl),
	}, nil
}

// IssueSessionToken signs an HS256 token for subjectID.
func (i *Issuer) IssueSessionToken(subjectID string) (string, time.Time, error) {
	if subjectID == "" {
		return "", time.Time{}, fmt.Errorf("%w: empty subject", ErrInvalidSessionToken)
	}
	now := i.now()
	expiresAt := now.Add(i.cfg.SessionTTL)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			Issuer:    i.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	})
	signed, err := token.SignedString(i.key)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// ParseSessionToken verifies token and returns its subject.
func (i *Issuer) ParseSessionToken(token string) (string, error) {
	if token == "" {
		return "", ErrInvalidSessionToken
	}
	claims := &Claims{}
	_, err := i.parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return i.key, nil
	})
	if err != nil {
		return "", errors.Join(ErrInvalidSessionToken, err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: missing subject", ErrInvalidSessionToken)
	}
	return claims.Subject, nil
}
