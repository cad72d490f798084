package user

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps users in process memory. Used in development and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	byID    map[string]*User
	byEmail map[string]string
	now     func() time.Time
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:    make(map[string]*User),
		byEmail: make(map[string]string),
		now:     time.Now,
	}
}

func (s *MemoryStore) Create(ctx context.Context, u *User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	u.applyDefaults(s.now())
	if _, taken := s.byEmail[u.Email]; taken {
		return ErrDuplicateEmail
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	cp := *u
	s.byID[u.ID] = &cp
	s.byEmail[u.Email] = u.ID
	return nil
}

func (s *MemoryStore) GetByID(ctx context.Context, id string) (*User, error) {
	return s.find(ctx, func(u *User) bool { return u.ID == id })
}

func (s *MemoryStore) GetByEmail(ctx context.Context, email string) (*User, error) {
	email = NormalizeEmail(email)
	return s.find(ctx, func(u *User) bool { return u.Email == email })
}

func (s *MemoryStore) GetByResetToken(ctx context.Context, token string, now time.Time) (*User, error) {
	return s.find(ctx, func(u *User) bool { return u.ResetTokenValid(token, now) })
}

func (s *MemoryStore) find(ctx context.Context, match func(*User) bool) (*User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.byID {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) RecordLogin(ctx context.Context, id string, at time.Time) error {
	_, err := s.mutate(ctx, func(u *User) bool { return u.ID == id }, func(u *User) error {
		u.LastLogin = at
		return nil
	})
	return err
}

func (s *MemoryStore) UpdateProfile(ctx context.Context, id string, p ProfileChanges) (*User, error) {
	return s.mutate(ctx, func(u *User) bool { return u.ID == id }, func(u *User) error {
		if p.Email != nil {
			email := NormalizeEmail(*p.Email)
			if owner, taken := s.byEmail[email]; taken && owner != u.ID {
				return ErrDuplicateEmail
			}
			delete(s.byEmail, u.Email)
			s.byEmail[email] = u.ID
		}
		p.apply(u)
		return nil
	})
}

func (s *MemoryStore) SetVerificationToken(ctx context.Context, id, token string, expiresAt time.Time) error {
	_, err := s.mutate(ctx, func(u *User) bool { return u.ID == id }, func(u *User) error {
		u.SetVerificationToken(token, expiresAt)
		return nil
	})
	return err
}

func (s *MemoryStore) SetResetToken(ctx context.Context, id, token string, expiresAt time.Time) error {
	_, err := s.mutate(ctx, func(u *User) bool { return u.ID == id }, func(u *User) error {
		u.SetResetToken(token, expiresAt)
		return nil
	})
	return err
}

func (s *MemoryStore) ConsumeVerificationToken(ctx context.Context, token string, now time.Time) (*User, error) {
	return s.mutate(ctx, func(u *User) bool { return u.VerificationTokenValid(token, now) }, func(u *User) error {
		u.IsVerified = true
		u.ClearVerificationToken()
		return nil
	})
}

func (s *MemoryStore) ConsumeResetToken(ctx context.Context, token string, now time.Time, passwordHash string) (*User, error) {
	return s.mutate(ctx, func(u *User) bool { return u.ResetTokenValid(token, now) }, func(u *User) error {
		u.PasswordHash = passwordHash
		u.ClearResetToken()
		return nil
	})
}

// mutate applies change to the first record matching match under the
// write lock. A failed change leaves the record untouched.
func (s *MemoryStore) mutate(ctx context.Context, match func(*User) bool, change func(*User) error) (*User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, cur := range s.byID {
		if !match(cur) {
			continue
		}
		next := *cur
		if err := change(&next); err != nil {
			return nil, err
		}
		next.UpdatedAt = s.now()
		s.byID[id] = &next
		cp := next
		return &cp, nil
	}
	return nil, ErrNotFound
}
