package user

import (
	"context"
	"embed"
	"io/fs"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/cravecorner/integration/database/pg"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrations returns the goose migrations for the users table.
func Migrations() fs.FS {
	sub, err := fs.Sub(migrations, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore keeps users in PostgreSQL. Calls join a transaction
// carried by the context (pg.WithTx) when there is one.
type PostgresStore struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// NewPostgresStore wraps pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool, now: time.Now}
}

const userColumns = `id, fullname, email, password_hash, contact, address, city, country,
	profile_picture, admin, google_auth, is_verified, last_login,
	verification_token, verification_token_expires_at,
	reset_password_token, reset_password_token_expires_at,
	created_at, updated_at`

const selectColumns = `SELECT ` + userColumns + ` FROM users `

func (s *PostgresStore) db(ctx context.Context) querier {
	if tx, ok := pg.TxFromContext(ctx); ok {
		return tx
	}
	return s.pool
}

func (s *PostgresStore) Create(ctx context.Context, u *User) error {
	u.applyDefaults(s.now())
	id := uuid.New()

	_, err := s.db(ctx).Exec(ctx, `INSERT INTO users (
		id, fullname, email, password_hash, contact, address, city, country,
		profile_picture, admin, google_auth, is_verified, last_login,
		verification_token, verification_token_expires_at,
		reset_password_token, reset_password_token_expires_at,
		created_at, updated_at
	) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)`,
		id, u.Fullname, u.Email, u.PasswordHash, u.Contact, u.Address, u.City, u.Country,
		u.ProfilePicture, u.Admin, u.GoogleAuth, u.IsVerified, u.LastLogin,
		nullString(u.VerificationToken), optionalTime(u.VerificationTokenExpiresAt),
		nullString(u.ResetPasswordToken), optionalTime(u.ResetPasswordTokenExpiresAt),
		u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return ErrDuplicateEmail
		}
		return err
	}
	u.ID = id.String()
	return nil
}

func (s *PostgresStore) GetByID(ctx context.Context, id string) (*User, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrNotFound
	}
	return s.queryOne(ctx, selectColumns+`WHERE id = $1`, uid)
}

func (s *PostgresStore) GetByEmail(ctx context.Context, email string) (*User, error) {
	return s.queryOne(ctx, selectColumns+`WHERE email = $1`, NormalizeEmail(email))
}

func (s *PostgresStore) GetByResetToken(ctx context.Context, token string, now time.Time) (*User, error) {
	if token == "" {
		return nil, ErrNotFound
	}
	return s.queryOne(ctx, selectColumns+`WHERE reset_password_token = $1 AND reset_password_token_expires_at > $2`, token, now)
}

func (s *PostgresStore) RecordLogin(ctx context.Context, id string, at time.Time) error {
	return s.execByID(ctx, id, `UPDATE users SET last_login = $2, updated_at = $3 WHERE id = $1`, at, s.now())
}

func (s *PostgresStore) SetVerificationToken(ctx context.Context, id, token string, expiresAt time.Time) error {
	return s.execByID(ctx, id, `UPDATE users SET verification_token = $2, verification_token_expires_at = $3,
		updated_at = $4 WHERE id = $1`, token, expiresAt, s.now())
}

func (s *PostgresStore) SetResetToken(ctx context.Context, id, token string, expiresAt time.Time) error {
	return s.execByID(ctx, id, `UPDATE users SET reset_password_token = $2, reset_password_token_expires_at = $3,
		updated_at = $4 WHERE id = $1`, token, expiresAt, s.now())
}

func (s *PostgresStore) UpdateProfile(ctx context.Context, id string, p ProfileChanges) (*User, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrNotFound
	}
	var email *string
	if p.Email != nil {
		normalized := NormalizeEmail(*p.Email)
		email = &normalized
	}

	u, err := s.queryOne(ctx, `UPDATE users SET
		fullname = COALESCE($2::text, fullname),
		email = COALESCE($3::text, email),
		address = COALESCE($4::text, address),
		city = COALESCE($5::text, city),
		country = COALESCE($6::text, country),
		profile_picture = COALESCE($7::text, profile_picture),
		updated_at = $8
	WHERE id = $1 RETURNING `+userColumns,
		uid, p.Fullname, email, p.Address, p.City, p.Country, p.ProfilePicture, s.now(),
	)
	if pg.IsDuplicateKeyError(err) {
		return nil, ErrDuplicateEmail
	}
	return u, err
}

func (s *PostgresStore) ConsumeVerificationToken(ctx context.Context, token string, now time.Time) (*User, error) {
	if token == "" {
		return nil, ErrNotFound
	}
	return s.queryOne(ctx, `UPDATE users SET
		is_verified = TRUE, verification_token = NULL, verification_token_expires_at = NULL, updated_at = $3
	WHERE verification_token = $1 AND verification_token_expires_at > $2 RETURNING `+userColumns,
		token, now, s.now(),
	)
}

func (s *PostgresStore) ConsumeResetToken(ctx context.Context, token string, now time.Time, passwordHash string) (*User, error) {
	if token == "" {
		return nil, ErrNotFound
	}
	return s.queryOne(ctx, `UPDATE users SET
		password_hash = $3, reset_password_token = NULL, reset_password_token_expires_at = NULL, updated_at = $4
	WHERE reset_password_token = $1 AND reset_password_token_expires_at > $2 RETURNING `+userColumns,
		token, now, passwordHash, s.now(),
	)
}

// execByID runs a single-row UPDATE keyed by $1 = id.
func (s *PostgresStore) execByID(ctx context.Context, id, sql string, args ...any) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	tag, err := s.db(ctx).Exec(ctx, sql, append([]any{uid}, args...)...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) queryOne(ctx context.Context, sql string, args ...any) (*User, error) {
	var (
		u                      User
		id                     uuid.UUID
		verifyToken, resetTok  *string
		verifyExp, resetExpiry *time.Time
	)
	err := s.db(ctx).QueryRow(ctx, sql, args...).Scan(
		&id, &u.Fullname, &u.Email, &u.PasswordHash, &u.Contact, &u.Address, &u.City, &u.Country,
		&u.ProfilePicture, &u.Admin, &u.GoogleAuth, &u.IsVerified, &u.LastLogin,
		&verifyToken, &verifyExp,
		&resetTok, &resetExpiry,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	u.ID = id.String()
	if verifyToken != nil {
		u.VerificationToken = *verifyToken
	}
	u.VerificationTokenExpiresAt = derefTime(verifyExp)
	if resetTok != nil {
		u.ResetPasswordToken = *resetTok
	}
	u.ResetPasswordTokenExpiresAt = derefTime(resetExpiry)
	return &u, nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
