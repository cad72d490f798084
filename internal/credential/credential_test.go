package credential_test

import (
	"bytes"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/cravecorner/internal/credential"
)

const testKey = "0123456789abcdef0123456789abcdef"

func newIssuer(t *testing.T, opts ...credential.Option) *credential.Issuer {
	t.Helper()
	cfg := credential.DefaultConfig()
	cfg.SigningKey = testKey
	iss, err := credential.New(cfg, opts...)
	require.NoError(t, err)
	return iss
}

func TestNew_RejectsShortKey(t *testing.T) {
	t.Parallel()

	_, err := credential.New(credential.Config{SigningKey: "short"})
	assert.ErrorIs(t, err, credential.ErrInvalidConfig)
	assert.Panics(t, func() { credential.MustNew(credential.Config{}) })
}

func TestIssueResetOTP_RangeAndFreshness(t *testing.T) {
	t.Parallel()

	iss := newIssuer(t)
	prev := ""
	for range 10_000 {
		c, err := iss.IssueResetOTP()
		require.NoError(t, err)
		require.Len(t, c.Value, 6)

		n, err := strconv.Atoi(c.Value)
		require.NoError(t, err)
		require.GreaterOrEqual(t, n, 100000)
		require.LessOrEqual(t, n, 999999)
		require.NotEqual(t, prev, c.Value)
		prev = c.Value
	}
}

func TestIssueCodes_Expiry(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	iss := newIssuer(t, credential.WithClock(func() time.Time { return now }))

	reset, err := iss.IssueResetOTP()
	require.NoError(t, err)
	assert.Equal(t, credential.KindReset, reset.Kind)
	assert.Equal(t, now, reset.IssuedAt)
	assert.Equal(t, now.Add(time.Hour), reset.ExpiresAt)

	verify, err := iss.IssueVerificationCode()
	require.NoError(t, err)
	assert.Equal(t, credential.KindVerification, verify.Kind)
	assert.Equal(t, now.Add(24*time.Hour), verify.ExpiresAt)
}

func TestIssueCodes_RandomSource(t *testing.T) {
	t.Parallel()

	zeros := newIssuer(t, credential.WithRandom(bytes.NewReader(make([]byte, 64))))
	c, err := zeros.IssueResetOTP()
	require.NoError(t, err)
	assert.Equal(t, "100000", c.Value)

	empty := newIssuer(t, credential.WithRandom(bytes.NewReader(nil)))
	_, err = empty.IssueVerificationCode()
	assert.ErrorIs(t, err, credential.ErrRandomSource)
}

func TestSessionToken_RoundTrip(t *testing.T) {
	t.Parallel()

	now := time.Now()
	iss := newIssuer(t, credential.WithClock(func() time.Time { return now }))

	token, expiresAt, err := iss.IssueSessionToken("user-42")
	require.NoError(t, err)
	assert.Equal(t, now.Add(7*24*time.Hour), expiresAt)
	assert.Equal(t, 7*24*time.Hour, iss.SessionTTL())

	sub, err := iss.ParseSessionToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-42", sub)

	_, _, err = iss.IssueSessionToken("")
	assert.ErrorIs(t, err, credential.ErrInvalidSessionToken)
}

func TestParseSessionToken_Rejects(t *testing.T) {
	t.Parallel()

	issuedAt := time.Now().Add(-8 * 24 * time.Hour)
	old := newIssuer(t, credential.WithClock(func() time.Time { return issuedAt }))
	expired, _, err := old.IssueSessionToken("u1")
	require.NoError(t, err)

	iss := newIssuer(t)
	valid, _, err := iss.IssueSessionToken("u1")
	require.NoError(t, err)
	other, _, err := iss.IssueSessionToken("u2")
	require.NoError(t, err)
	vp, op := strings.Split(valid, "."), strings.Split(other, ".")
	tampered := vp[0] + "." + op[1] + "." + vp[2]

	otherCfg := credential.DefaultConfig()
	otherCfg.SigningKey = strings.Repeat("z", 32)
	foreign, _, err := credential.MustNew(otherCfg).IssueSessionToken("u1")
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "u1",
		Issuer:    "cravecorner",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	otherIssuerCfg := credential.DefaultConfig()
	otherIssuerCfg.SigningKey = testKey
	otherIssuerCfg.Issuer = "someone-else"
	wrongIssuer, _, err := credential.MustNew(otherIssuerCfg).IssueSessionToken("u1")
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not.a.jwt"},
		{"expired", expired},
		{"tampered", tampered},
		{"foreign key", foreign},
		{"alg none", unsigned},
		{"wrong issuer", wrongIssuer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := iss.ParseSessionToken(tt.token)
			assert.ErrorIs(t, err, credential.ErrInvalidSessionToken)
		})
	}
}
