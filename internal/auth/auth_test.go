package auth_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/cravecorner/internal/auth"
	"github.com/dmitrymomot/cravecorner/internal/credential"
	"github.com/dmitrymomot/cravecorner/internal/delivery"
	"github.com/dmitrymomot/cravecorner/internal/federated"
	"github.com/dmitrymomot/cravecorner/internal/user"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type fakeSender struct {
	mu   sync.Mutex
	msgs []delivery.Message
	err  error
}

func (f *fakeSender) Send(_ context.Context, msg delivery.Message) (delivery.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return delivery.Report{}, errors.Join(delivery.ErrDeliveryExhausted, f.err)
	}
	f.msgs = append(f.msgs, msg)
	return delivery.Report{Attempts: []delivery.Attempt{{Provider: "fake", Outcome: delivery.OutcomeDelivered}}}, nil
}

func (f *fakeSender) fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *fakeSender) sent() []delivery.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]delivery.Message(nil), f.msgs...)
}

type fakeVerifier struct {
	id  federated.Identity
	err error
}

func (f fakeVerifier) Verify(context.Context, string) (federated.Identity, error) {
	return f.id, f.err
}

type fakeImages struct {
	contentType string
	size        int
}

func (f *fakeImages) Upload(_ context.Context, _ string, data []byte, contentType string) (string, error) {
	f.contentType = contentType
	f.size = len(data)
	return "https://cdn.cravecorner.app/profile-pictures/avatar.png", nil
}

var errDown = errors.New("dial tcp 10.0.0.7:27017: connection refused")

type brokenStore struct{ user.Store }

func (brokenStore) Create(context.Context, *user.User) error { return errDown }
func (brokenStore) RecordLogin(context.Context, string, time.Time) error { return errDown }
func (brokenStore) GetByID(context.Context, string) (*user.User, error) {
	return nil, errDown
}
func (brokenStore) GetByEmail(context.Context, string) (*user.User, error) {
	return nil, errDown
}

type harness struct {
	svc    *auth.Service
	store  *user.MemoryStore
	sender *fakeSender
	clock  *clock
	issuer *credential.Issuer
}

func newHarness(t *testing.T, mutate func(*auth.Config), opts ...auth.Option) *harness {
	t.Helper()
	return newHarnessWithStore(t, nil, mutate, opts...)
}

// newHarnessWithStore builds a harness whose service talks to wrap(store)
// while h.store stays the plain memory store underneath.
func newHarnessWithStore(t *testing.T, wrap func(*user.MemoryStore) user.Store, mutate func(*auth.Config), opts ...auth.Option) *harness {
	t.Helper()

	clk := &clock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	ccfg := credential.DefaultConfig()
	ccfg.SigningKey = "0123456789abcdef0123456789abcdef"
	issuer, err := credential.New(ccfg, credential.WithClock(clk.Now))
	require.NoError(t, err)

	cfg := auth.DefaultConfig()
	cfg.BcryptCost = bcrypt.MinCost
	if mutate != nil {
		mutate(&cfg)
	}

	h := &harness{store: user.NewMemoryStore(), sender: &fakeSender{}, clock: clk, issuer: issuer}
	var store user.Store = h.store
	if wrap != nil {
		store = wrap(h.store)
	}
	h.svc, err = auth.New(cfg, store, issuer, h.sender, append([]auth.Option{auth.WithClock(clk.Now)}, opts...)...)
	require.NoError(t, err)
	return h
}

func (h *harness) register(t *testing.T, email, password string) user.Public {
	t.Helper()
	u, err := h.svc.Register(context.Background(), auth.RegisterInput{Fullname: "Jane Doe", Email: email, Password: password, Contact: 5551234})
	require.NoError(t, err)
	return u
}

var sixDigits = regexp.MustCompile(`^[1-9][0-9]{5}$`)

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	issuer := credential.MustNew(credential.Config{SigningKey: strings.Repeat("k", 32), SessionTTL: time.Hour})
	store := user.NewMemoryStore()

	_, err := auth.New(auth.DefaultConfig(), nil, issuer, &fakeSender{})
	assert.ErrorIs(t, err, auth.ErrInvalidConfig)

	_, err = auth.New(auth.Config{BcryptCost: 99}, store, issuer, &fakeSender{})
	assert.ErrorIs(t, err, auth.ErrInvalidConfig)

	assert.Panics(t, func() { auth.MustNew(auth.DefaultConfig(), store, nil, &fakeSender{}) })
}

func TestRegister_SecondAttemptConflicts(t *testing.T) {
	t.Parallel()

	emails := []string{"a@x.com", "Jane.Doe@Example.com", "  spaced@cravecorner.app  "}
	for _, email := range emails {
		t.Run(email, func(t *testing.T) {
			t.Parallel()
			h := newHarness(t, nil)

			u := h.register(t, email, "pw1")
			assert.Equal(t, user.NormalizeEmail(email), u.Email)
			assert.True(t, u.IsVerified)
			assert.NotEmpty(t, u.ID)

			_, err := h.svc.Register(context.Background(), auth.RegisterInput{
				Fullname: "Someone Else",
				Email:    strings.ToUpper(strings.TrimSpace(email)),
				Password: "other",
			})
			assert.ErrorIs(t, err, auth.ErrConflict)
		})
	}
}

func TestRegister_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		in    auth.RegisterInput
		field string
	}{
		{"missing fullname", auth.RegisterInput{Email: "a@x.com", Password: "pw"}, "fullname"},
		{"missing email", auth.RegisterInput{Fullname: "A", Password: "pw"}, "email"},
		{"bad email", auth.RegisterInput{Fullname: "A", Email: "nope", Password: "pw"}, "email"},
		{"missing password", auth.RegisterInput{Fullname: "A", Email: "a@x.com"}, "password"},
		{"password too long", auth.RegisterInput{Fullname: "A", Email: "a@x.com", Password: strings.Repeat("p", 73)}, "password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h := newHarness(t, nil)

			_, err := h.svc.Register(context.Background(), tt.in)
			require.ErrorIs(t, err, auth.ErrValidation)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestRegister_WelcomeEmail(t *testing.T) {
	t.Parallel()

	t.Run("off by default", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t, nil)
		h.register(t, "a@x.com", "pw1")
		require.NoError(t, h.svc.Drain(context.Background()))
		assert.Empty(t, h.sender.sent())
	})

	t.Run("enabled", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t, func(c *auth.Config) { c.SendWelcomeEmail = true })
		h.register(t, "a@x.com", "pw1")
		require.NoError(t, h.svc.Drain(context.Background()))

		sent := h.sender.sent()
		require.Len(t, sent, 1)
		assert.Equal(t, "Welcome to CraveCorner", sent[0].Subject)
		assert.Contains(t, sent[0].HTML, "Jane Doe")
	})

	t.Run("failure does not fail signup", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t, func(c *auth.Config) { c.SendWelcomeEmail = true })
		h.sender.fail(errors.New("smtp down"))
		h.register(t, "a@x.com", "pw1")
		assert.NoError(t, h.svc.Drain(context.Background()))
	})
}

func TestLogin(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	h.register(t, "a@x.com", "pw1")

	sess, err := h.svc.Login(context.Background(), "A@X.com", "pw1")
	require.NoError(t, err)
	assert.NotEmpty(t, sess.Token)
	assert.Equal(t, h.clock.Now().Add(7*24*time.Hour), sess.ExpiresAt)
	assert.True(t, sess.User.LastLogin.Equal(h.clock.Now()))

	stored, err := h.store.GetByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.True(t, stored.LastLogin.Equal(h.clock.Now()))

	me, err := h.svc.CheckAuth(context.Background(), sess.Token)
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, me.ID)
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil, auth.WithVerifier(fakeVerifier{id: federated.Identity{Email: "g@x.com", Name: "G"}}))
	h.register(t, "a@x.com", "pw1")
	_, err := h.svc.FederatedLogin(context.Background(), "google-token")
	require.NoError(t, err)

	tests := []struct {
		name, email, password string
	}{
		{"wrong password", "a@x.com", "wrong"},
		{"unknown email", "nobody@x.com", "pw1"},
		{"federated account", "g@x.com", ""},
		{"empty password", "a@x.com", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.svc.Login(context.Background(), tt.email, tt.password)
			assert.Equal(t, auth.ErrInvalidCredentials, err)
		})
	}
}

func TestLogin_NeverExposesPasswordHash(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	h.register(t, "a@x.com", "pw1")
	stored, err := h.store.GetByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	require.NotEmpty(t, stored.PasswordHash)

	sess, err := h.svc.Login(context.Background(), "a@x.com", "pw1")
	require.NoError(t, err)
	body, err := json.Marshal(sess.User)
	require.NoError(t, err)
	assert.NotContains(t, string(body), stored.PasswordHash)
	assert.NotContains(t, strings.ToLower(string(body)), "password")

	_, err = h.svc.Login(context.Background(), "a@x.com", "wrong")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), stored.PasswordHash)
}

func TestForgotPassword(t *testing.T) {
	t.Parallel()

	t.Run("unknown account", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t, nil)
		assert.ErrorIs(t, h.svc.ForgotPassword(context.Background(), "nobody@x.com"), auth.ErrNotFound)
	})

	t.Run("invalid email", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t, nil)
		assert.ErrorIs(t, h.svc.ForgotPassword(context.Background(), "nope"), auth.ErrValidation)
	})

	t.Run("stores and delivers otp", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t, nil)
		h.register(t, "a@x.com", "pw1")

		require.NoError(t, h.svc.ForgotPassword(context.Background(), "a@x.com"))

		stored, err := h.store.GetByEmail(context.Background(), "a@x.com")
		require.NoError(t, err)
		assert.Regexp(t, sixDigits, stored.ResetPasswordToken)
		assert.Equal(t, h.clock.Now().Add(time.Hour), stored.ResetPasswordTokenExpiresAt)

		sent := h.sender.sent()
		require.Len(t, sent, 1)
		assert.Equal(t, "a@x.com", sent[0].To)
		assert.Equal(t, "Reset your password - OTP", sent[0].Subject)
		assert.Contains(t, sent[0].HTML, stored.ResetPasswordToken)
	})

	t.Run("delivery failure is reported", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t, nil)
		h.register(t, "a@x.com", "pw1")
		h.sender.fail(errors.New("all transports down"))

		err := h.svc.ForgotPassword(context.Background(), "a@x.com")
		assert.ErrorIs(t, err, auth.ErrNotificationFailed)
		assert.NotErrorIs(t, err, auth.ErrValidation)

		stored, err := h.store.GetByEmail(context.Background(), "a@x.com")
		require.NoError(t, err)
		assert.NotEmpty(t, stored.ResetPasswordToken)
	})
}

func resetToken(t *testing.T, h *harness, email string) string {
	t.Helper()
	require.NoError(t, h.svc.ForgotPassword(context.Background(), email))
	stored, err := h.store.GetByEmail(context.Background(), email)
	require.NoError(t, err)
	return stored.ResetPasswordToken
}

func TestResetPassword(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	h.register(t, "a@x.com", "pw1")
	otp := resetToken(t, h, "a@x.com")

	require.NoError(t, h.svc.ResetPassword(context.Background(), otp, "pw2"))

	stored, err := h.store.GetByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.Empty(t, stored.ResetPasswordToken)
	assert.True(t, stored.ResetPasswordTokenExpiresAt.IsZero())

	_, err = h.svc.Login(context.Background(), "a@x.com", "pw1")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	_, err = h.svc.Login(context.Background(), "a@x.com", "pw2")
	assert.NoError(t, err)

	assert.ErrorIs(t, h.svc.ResetPassword(context.Background(), otp, "pw3"), auth.ErrInvalidOrExpiredToken)

	require.NoError(t, h.svc.Drain(context.Background()))
	sent := h.sender.sent()
	require.Len(t, sent, 2)
	assert.Equal(t, "Password Reset Successful", sent[1].Subject)
}

// loginHookStore runs beforeLogin once, after Login has read the record
// and checked the password but before it records the login time.
type loginHookStore struct {
	*user.MemoryStore
	once        sync.Once
	beforeLogin func()
}

func (s *loginHookStore) RecordLogin(ctx context.Context, id string, at time.Time) error {
	s.once.Do(func() {
		if s.beforeLogin != nil {
			s.beforeLogin()
		}
	})
	return s.MemoryStore.RecordLogin(ctx, id, at)
}

func TestResetPassword_SurvivesConcurrentLogin(t *testing.T) {
	t.Parallel()

	hook := &loginHookStore{}
	h := newHarnessWithStore(t, func(m *user.MemoryStore) user.Store {
		hook.MemoryStore = m
		return hook
	}, nil)
	h.register(t, "a@x.com", "pw1")
	otp := resetToken(t, h, "a@x.com")

	var resetErr error
	hook.beforeLogin = func() {
		resetErr = h.svc.ResetPassword(context.Background(), otp, "pw2")
	}

	// Login with the old password passes its check before the reset lands.
	_, err := h.svc.Login(context.Background(), "a@x.com", "pw1")
	require.NoError(t, err)
	require.NoError(t, resetErr)

	stored, err := h.store.GetByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.Empty(t, stored.ResetPasswordToken)
	assert.False(t, stored.LastLogin.IsZero())

	_, err = h.svc.Login(context.Background(), "a@x.com", "pw2")
	assert.NoError(t, err)
	_, err = h.svc.Login(context.Background(), "a@x.com", "pw1")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	assert.ErrorIs(t, h.svc.ResetPassword(context.Background(), otp, "pw3"), auth.ErrInvalidOrExpiredToken)
}

func TestResetPassword_ConcurrentUseOfOneCode(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	h.register(t, "a@x.com", "pw1")
	otp := resetToken(t, h, "a@x.com")

	const callers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded []string
	)
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pw := "pw-" + string(rune('a'+i))
			err := h.svc.ResetPassword(context.Background(), otp, pw)
			if err == nil {
				mu.Lock()
				succeeded = append(succeeded, pw)
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, auth.ErrInvalidOrExpiredToken)
		}()
	}
	wg.Wait()

	require.Len(t, succeeded, 1)
	_, err := h.svc.Login(context.Background(), "a@x.com", succeeded[0])
	assert.NoError(t, err)
}

func TestResetPassword_ExpiredTokenRejected(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	h.register(t, "a@x.com", "pw1")
	otp := resetToken(t, h, "a@x.com")

	h.clock.Advance(time.Hour)
	assert.ErrorIs(t, h.svc.ResetPassword(context.Background(), otp, "pw2"), auth.ErrInvalidOrExpiredToken)

	_, err := h.svc.Login(context.Background(), "a@x.com", "pw1")
	assert.NoError(t, err)
}

func TestResetPassword_NewRequestReplacesOldToken(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	h.register(t, "a@x.com", "pw1")
	first := resetToken(t, h, "a@x.com")
	second := resetToken(t, h, "a@x.com")
	if first == second {
		t.Skip("codes collided")
	}

	assert.ErrorIs(t, h.svc.ResetPassword(context.Background(), first, "pw2"), auth.ErrInvalidOrExpiredToken)
	assert.NoError(t, h.svc.ResetPassword(context.Background(), second, "pw2"))
}

func TestResetPassword_ConfirmationFailureIsSwallowed(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	h.register(t, "a@x.com", "pw1")
	otp := resetToken(t, h, "a@x.com")
	h.sender.fail(errors.New("smtp down"))

	require.NoError(t, h.svc.ResetPassword(context.Background(), otp, "pw2"))
	require.NoError(t, h.svc.Drain(context.Background()))

	_, err := h.svc.Login(context.Background(), "a@x.com", "pw2")
	assert.NoError(t, err)
}

func TestResetPassword_Validation(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	assert.ErrorIs(t, h.svc.ResetPassword(context.Background(), "123456", ""), auth.ErrValidation)
	assert.ErrorIs(t, h.svc.ResetPassword(context.Background(), "", "pw2"), auth.ErrInvalidOrExpiredToken)
	assert.ErrorIs(t, h.svc.ResetPassword(context.Background(), "999999", "pw2"), auth.ErrInvalidOrExpiredToken)
}

func TestVerifyEmail(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	u := h.register(t, "a@x.com", "pw1")
	require.NoError(t, h.svc.SendVerification(context.Background(), u.ID))

	stored, err := h.store.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	code := stored.VerificationToken
	assert.Regexp(t, sixDigits, code)
	assert.Equal(t, h.clock.Now().Add(24*time.Hour), stored.VerificationTokenExpiresAt)

	sent := h.sender.sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "Verify your email", sent[0].Subject)
	assert.Contains(t, sent[0].HTML, code)

	verified, err := h.svc.VerifyEmail(context.Background(), code)
	require.NoError(t, err)
	assert.True(t, verified.IsVerified)

	stored, err = h.store.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.VerificationToken)
	assert.True(t, stored.VerificationTokenExpiresAt.IsZero())

	_, err = h.svc.VerifyEmail(context.Background(), code)
	assert.ErrorIs(t, err, auth.ErrInvalidOrExpiredToken)
}

func TestVerifyEmail_ConcurrentUseOfOneCode(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	u := h.register(t, "a@x.com", "pw1")
	require.NoError(t, h.svc.SendVerification(context.Background(), u.ID))
	stored, err := h.store.GetByID(context.Background(), u.ID)
	require.NoError(t, err)

	var (
		wg sync.WaitGroup
		mu sync.Mutex
		ok int
	)
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := h.svc.VerifyEmail(context.Background(), stored.VerificationToken); err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, ok)
}

func TestVerifyEmail_Rejects(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	u := h.register(t, "a@x.com", "pw1")
	require.NoError(t, h.svc.SendVerification(context.Background(), u.ID))
	stored, err := h.store.GetByID(context.Background(), u.ID)
	require.NoError(t, err)

	h.clock.Advance(24 * time.Hour)

	for _, code := range []string{stored.VerificationToken, "", "000000"} {
		_, err := h.svc.VerifyEmail(context.Background(), code)
		assert.ErrorIs(t, err, auth.ErrInvalidOrExpiredToken)
	}
}

func TestSendVerification_Errors(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	assert.ErrorIs(t, h.svc.SendVerification(context.Background(), "missing"), auth.ErrNotFound)

	u := h.register(t, "a@x.com", "pw1")
	h.sender.fail(errors.New("down"))
	assert.ErrorIs(t, h.svc.SendVerification(context.Background(), u.ID), auth.ErrNotificationFailed)
}

func TestFederatedLogin_CreatesAccount(t *testing.T) {
	t.Parallel()

	v := fakeVerifier{id: federated.Identity{Subject: "1234", Email: "Foodie@Gmail.com", Picture: "https://lh3.googleusercontent.com/a/photo"}}
	h := newHarness(t, nil, auth.WithVerifier(v))

	sess, err := h.svc.FederatedLogin(context.Background(), "google-token")
	require.NoError(t, err)
	assert.NotEmpty(t, sess.Token)
	assert.Equal(t, "foodie@gmail.com", sess.User.Email)
	assert.Equal(t, "foodie", sess.User.Fullname)
	assert.True(t, sess.User.IsVerified)
	assert.True(t, sess.User.GoogleAuth)
	assert.Equal(t, v.id.Picture, sess.User.ProfilePicture)

	stored, err := h.store.GetByEmail(context.Background(), "foodie@gmail.com")
	require.NoError(t, err)
	assert.False(t, stored.HasPassword())
	for _, guess := range []string{"", "password", stored.PasswordHash} {
		_, err := h.svc.Login(context.Background(), "foodie@gmail.com", guess)
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	}

	again, err := h.svc.FederatedLogin(context.Background(), "google-token")
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, again.User.ID)
}

func TestFederatedLogin_ExistingAccount(t *testing.T) {
	t.Parallel()

	const picture = "https://lh3.googleusercontent.com/a/photo"

	t.Run("backfills missing picture", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t, nil, auth.WithVerifier(fakeVerifier{id: federated.Identity{Email: "a@x.com", Name: "Google Name", Picture: picture}}))
		h.register(t, "a@x.com", "pw1")

		sess, err := h.svc.FederatedLogin(context.Background(), "google-token")
		require.NoError(t, err)
		assert.Equal(t, picture, sess.User.ProfilePicture)
		assert.Equal(t, "Jane Doe", sess.User.Fullname)

		_, err = h.svc.Login(context.Background(), "a@x.com", "pw1")
		assert.NoError(t, err)
	})

	t.Run("keeps existing picture", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t, nil, auth.WithVerifier(fakeVerifier{id: federated.Identity{Email: "a@x.com", Picture: picture}}))
		u := h.register(t, "a@x.com", "pw1")
		own := "https://cdn.cravecorner.app/me.png"
		_, err := h.svc.UpdateProfile(context.Background(), u.ID, auth.ProfileInput{ProfilePicture: &own})
		require.NoError(t, err)

		sess, err := h.svc.FederatedLogin(context.Background(), "google-token")
		require.NoError(t, err)
		assert.Equal(t, own, sess.User.ProfilePicture)
	})
}

func TestFederatedLogin_Rejects(t *testing.T) {
	t.Parallel()

	verifierErr := errors.Join(federated.ErrInvalidToken, errors.New("token has invalid audience"))

	tests := []struct {
		name  string
		opts  []auth.Option
		token string
	}{
		{"verifier error", []auth.Option{auth.WithVerifier(fakeVerifier{err: verifierErr})}, "google-token"},
		{"not configured", nil, "google-token"},
		{"empty token", []auth.Option{auth.WithVerifier(fakeVerifier{id: federated.Identity{Email: "a@x.com"}})}, " "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h := newHarness(t, nil, tt.opts...)
			_, err := h.svc.FederatedLogin(context.Background(), tt.token)
			assert.Equal(t, auth.ErrInvalidIdentityToken, err)
		})
	}
}

func TestCheckAuth_Rejects(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	h.register(t, "a@x.com", "pw1")
	sess, err := h.svc.Login(context.Background(), "a@x.com", "pw1")
	require.NoError(t, err)

	orphan, _, err := h.issuer.IssueSessionToken("missing-user")
	require.NoError(t, err)

	for _, token := range []string{"", "not-a-jwt", sess.Token + "x", orphan} {
		_, err := h.svc.CheckAuth(context.Background(), token)
		assert.ErrorIs(t, err, auth.ErrUnauthenticated)
	}

	h.clock.Advance(7*24*time.Hour + time.Second)
	_, err = h.svc.CheckAuth(context.Background(), sess.Token)
	assert.ErrorIs(t, err, auth.ErrUnauthenticated)
}

func TestUpdateProfile(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	u := h.register(t, "a@x.com", "pw1")
	assert.Equal(t, user.DefaultCity, u.City)

	name, city := "  Jane Q. Doe ", "Lisbon"
	out, err := h.svc.UpdateProfile(context.Background(), u.ID, auth.ProfileInput{Fullname: &name, City: &city})
	require.NoError(t, err)
	assert.Equal(t, "Jane Q. Doe", out.Fullname)
	assert.Equal(t, "Lisbon", out.City)
	assert.Equal(t, user.DefaultCountry, out.Country)
	assert.Equal(t, "a@x.com", out.Email)
}

func TestUpdateProfile_Errors(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	u := h.register(t, "a@x.com", "pw1")
	h.register(t, "b@x.com", "pw1")

	taken := "B@x.com"
	_, err := h.svc.UpdateProfile(context.Background(), u.ID, auth.ProfileInput{Email: &taken})
	assert.ErrorIs(t, err, auth.ErrConflict)

	bad := "not-an-email"
	_, err = h.svc.UpdateProfile(context.Background(), u.ID, auth.ProfileInput{Email: &bad})
	assert.ErrorIs(t, err, auth.ErrValidation)

	ftp := "ftp://example.com/me.png"
	_, err = h.svc.UpdateProfile(context.Background(), u.ID, auth.ProfileInput{ProfilePicture: &ftp})
	assert.ErrorIs(t, err, auth.ErrValidation)

	dataURI := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("png"))
	_, err = h.svc.UpdateProfile(context.Background(), u.ID, auth.ProfileInput{ProfilePicture: &dataURI})
	assert.ErrorIs(t, err, auth.ErrValidation)

	_, err = h.svc.UpdateProfile(context.Background(), "missing", auth.ProfileInput{})
	assert.ErrorIs(t, err, auth.ErrUnauthenticated)
}

func TestUpdateProfile_UploadsDataURI(t *testing.T) {
	t.Parallel()

	images := &fakeImages{}
	h := newHarness(t, func(c *auth.Config) { c.MaxPictureBytes = 16 }, auth.WithImageStore(images))
	u := h.register(t, "a@x.com", "pw1")

	pic := "data:image/PNG;base64," + base64.StdEncoding.EncodeToString([]byte("\x89PNG-bytes"))
	out, err := h.svc.UpdateProfile(context.Background(), u.ID, auth.ProfileInput{ProfilePicture: &pic})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.cravecorner.app/profile-pictures/avatar.png", out.ProfilePicture)
	assert.Equal(t, "image/png", images.contentType)
	assert.Equal(t, 10, images.size)

	tooBig := "data:image/png;base64," + base64.StdEncoding.EncodeToString(make([]byte, 17))
	_, err = h.svc.UpdateProfile(context.Background(), u.ID, auth.ProfileInput{ProfilePicture: &tooBig})
	assert.ErrorIs(t, err, auth.ErrValidation)

	text := "data:text/plain;base64," + base64.StdEncoding.EncodeToString([]byte("hi"))
	_, err = h.svc.UpdateProfile(context.Background(), u.ID, auth.ProfileInput{ProfilePicture: &text})
	assert.ErrorIs(t, err, auth.ErrValidation)
}

func TestStoreFailuresAreHidden(t *testing.T) {
	t.Parallel()

	issuer := credential.MustNew(credential.Config{SigningKey: strings.Repeat("k", 32), Issuer: "cravecorner", SessionTTL: time.Hour})
	svc, err := auth.New(auth.Config{BcryptCost: bcrypt.MinCost}, brokenStore{}, issuer, &fakeSender{})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), auth.RegisterInput{Fullname: "A", Email: "a@x.com", Password: "pw"})
	require.ErrorIs(t, err, auth.ErrStoreUnavailable)
	assert.NotContains(t, err.Error(), "connection refused")

	_, err = svc.Login(context.Background(), "a@x.com", "pw")
	assert.ErrorIs(t, err, auth.ErrStoreUnavailable)

	assert.ErrorIs(t, svc.ForgotPassword(context.Background(), "a@x.com"), auth.ErrStoreUnavailable)
}
