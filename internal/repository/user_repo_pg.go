package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"acm-portal/internal/domain"
)

const pgUniqueViolation = "23505"

const userColumns = `id, email, password_hash, first_name, last_name, classification,
	confirm_email_token, reset_password_token, reset_password_expires,
	verified, has_paid_dues, resume, created_at, updated_at`

// pgQuerier es el subconjunto de pgxpool.Pool que usa el repositorio.
type pgQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

// PgUserRepository implementa UserRepository usando pgxpool.
type PgUserRepository struct {
	pool pgQuerier
}

func NewPgUserRepository(pool pgQuerier) *PgUserRepository {
	return &PgUserRepository{pool: pool}
}

func (r *PgUserRepository) Create(ctx context.Context, user domain.User) error {
	const query = `
		INSERT INTO users (id, email, password_hash, first_name, last_name, classification,
			confirm_email_token, verified, has_paid_dues, resume, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.Classification,
		nullableString(user.ConfirmEmailToken),
		user.Verified,
		user.HasPaidDues,
		user.Resume,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return ErrDuplicateEmail
	}
	return err
}

func (r *PgUserRepository) GetByID(ctx context.Context, id string) (domain.User, error) {
	return r.queryOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *PgUserRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.queryOne(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email)
}

func (r *PgUserRepository) GetByResetToken(ctx context.Context, token string) (domain.User, error) {
	return r.queryOne(ctx, `SELECT `+userColumns+` FROM users WHERE reset_password_token = $1`, token)
}

func (r *PgUserRepository) ConfirmEmail(ctx context.Context, token string) (domain.User, error) {
	const query = `
		UPDATE users
		SET confirm_email_token = NULL, verified = TRUE, updated_at = now()
		WHERE confirm_email_token = $1
		RETURNING ` + userColumns
	return r.queryOne(ctx, query, token)
}

func (r *PgUserRepository) SetConfirmToken(ctx context.Context, id, token string) error {
	const query = `UPDATE users SET confirm_email_token = $2, updated_at = now() WHERE id = $1`
	return r.execOne(ctx, query, id, token)
}

func (r *PgUserRepository) SetResetToken(ctx context.Context, id, token string, expiresAt time.Time) error {
	const query = `
		UPDATE users
		SET reset_password_token = $2, reset_password_expires = $3, updated_at = now()
		WHERE id = $1
	`
	return r.execOne(ctx, query, id, token, expiresAt)
}

func (r *PgUserRepository) ResetPassword(ctx context.Context, id, token, passwordHash string) (domain.User, error) {
	const query = `
		UPDATE users
		SET password_hash = $3, reset_password_token = NULL, reset_password_expires = NULL, updated_at = now()
		WHERE id = $1 AND reset_password_token = $2
		RETURNING ` + userColumns
	return r.queryOne(ctx, query, id, token, passwordHash)
}

func (r *PgUserRepository) UpdateResume(ctx context.Context, id, path string) (domain.User, error) {
	const query = `
		UPDATE users SET resume = $2, updated_at = now()
		WHERE id = $1
		RETURNING ` + userColumns
	return r.queryOne(ctx, query, id, path)
}

func (r *PgUserRepository) UpdateProfile(ctx context.Context, id string, patch domain.ProfilePatch) (domain.User, error) {
	const query = `
		UPDATE users
		SET first_name = COALESCE($2::text, first_name),
			last_name = COALESCE($3::text, last_name),
			classification = COALESCE($4::text, classification),
			updated_at = now()
		WHERE id = $1
		RETURNING ` + userColumns
	return r.queryOne(ctx, query, id, patch.FirstName, patch.LastName, patch.Classification)
}

func (r *PgUserRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *PgUserRepository) queryOne(ctx context.Context, query string, args ...any) (domain.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, ErrNotFound
	}
	return u, err
}

func (r *PgUserRepository) execOne(ctx context.Context, query string, args ...any) error {
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (domain.User, error) {
	var (
		u            domain.User
		confirmToken *string
		resetToken   *string
	)
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.FirstName,
		&u.LastName,
		&u.Classification,
		&confirmToken,
		&resetToken,
		&u.ResetPasswordExpires,
		&u.Verified,
		&u.HasPaidDues,
		&u.Resume,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, err
	}
	if confirmToken != nil {
		u.ConfirmEmailToken = *confirmToken
	}
	if resetToken != nil {
		u.ResetPasswordToken = *resetToken
	}
	return u, nil
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
