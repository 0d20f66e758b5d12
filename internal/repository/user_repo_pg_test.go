package repository

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"acm-portal/internal/domain"
)

type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) != len(r.values) {
		return errors.New("column count mismatch")
	}
	for i, d := range dest {
		target := reflect.ValueOf(d).Elem()
		if r.values[i] == nil {
			target.Set(reflect.Zero(target.Type()))
			continue
		}
		target.Set(reflect.ValueOf(r.values[i]))
	}
	return nil
}

type fakePool struct {
	lastSQL  string
	lastArgs []any
	execTag  pgconn.CommandTag
	execErr  error
	row      fakeRow
	pingErr  error
}

func (p *fakePool) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	p.lastSQL = sql
	p.lastArgs = args
	return p.execTag, p.execErr
}

func (p *fakePool) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	p.lastSQL = sql
	p.lastArgs = args
	return p.row
}

func (p *fakePool) Ping(_ context.Context) error {
	return p.pingErr
}

func userRowValues(confirm, reset *string, expires *time.Time) []any {
	now := time.Now().UTC()
	return []any{
		"u1", "a@b.com", "hash", "Ada", "Lovelace", "Senior",
		confirm, reset, expires,
		false, false, "", now, now,
	}
}

func TestPgUserRepositoryCreate_DuplicateEmail(t *testing.T) {
	pool := &fakePool{execErr: &pgconn.PgError{Code: pgUniqueViolation}}
	repo := NewPgUserRepository(pool)

	err := repo.Create(context.Background(), domain.User{ID: "u1", Email: "a@b.com"})
	if !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestPgUserRepositoryCreate_EmptyConfirmTokenIsNull(t *testing.T) {
	pool := &fakePool{execTag: pgconn.NewCommandTag("INSERT 0 1")}
	repo := NewPgUserRepository(pool)

	if err := repo.Create(context.Background(), domain.User{ID: "u1", Email: "a@b.com"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	token, ok := pool.lastArgs[6].(*string)
	if !ok || token != nil {
		t.Fatalf("expected nil confirm token argument, got %#v", pool.lastArgs[6])
	}
}

func TestPgUserRepositoryGetByEmail_NotFound(t *testing.T) {
	pool := &fakePool{row: fakeRow{err: pgx.ErrNoRows}}
	repo := NewPgUserRepository(pool)

	_, err := repo.GetByEmail(context.Background(), "missing@b.com")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if !strings.Contains(pool.lastSQL, "lower(email) = lower($1)") {
		t.Fatalf("expected case-insensitive lookup, got %q", pool.lastSQL)
	}
}

func TestPgUserRepositoryGetByID_ScansNullableTokens(t *testing.T) {
	confirm := "confirm-token"
	pool := &fakePool{row: fakeRow{values: userRowValues(&confirm, nil, nil)}}
	repo := NewPgUserRepository(pool)

	u, err := repo.GetByID(context.Background(), "u1")
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if u.ConfirmEmailToken != confirm {
		t.Fatalf("expected confirm token %q, got %q", confirm, u.ConfirmEmailToken)
	}
	if u.ResetPasswordToken != "" || u.ResetPasswordExpires != nil {
		t.Fatalf("expected empty reset state, got %+v", u)
	}
	if u.FirstName != "Ada" || u.Email != "a@b.com" {
		t.Fatalf("unexpected user: %+v", u)
	}
}

func TestPgUserRepositoryConfirmEmail_ClearsTokenInSingleUpdate(t *testing.T) {
	pool := &fakePool{row: fakeRow{values: userRowValues(nil, nil, nil)}}
	repo := NewPgUserRepository(pool)

	if _, err := repo.ConfirmEmail(context.Background(), "tok"); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if !strings.Contains(pool.lastSQL, "confirm_email_token = NULL") || !strings.Contains(pool.lastSQL, "RETURNING") {
		t.Fatalf("expected atomic update returning row, got %q", pool.lastSQL)
	}
}

func TestPgUserRepositoryResetPassword_RequiresStoredToken(t *testing.T) {
	pool := &fakePool{row: fakeRow{err: pgx.ErrNoRows}}
	repo := NewPgUserRepository(pool)

	_, err := repo.ResetPassword(context.Background(), "u1", "stale", "newhash")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if !strings.Contains(pool.lastSQL, "reset_password_token = $2") {
		t.Fatalf("expected token guard in where clause, got %q", pool.lastSQL)
	}
}

func TestPgUserRepositorySetResetToken_NoRows(t *testing.T) {
	pool := &fakePool{execTag: pgconn.NewCommandTag("UPDATE 0")}
	repo := NewPgUserRepository(pool)

	err := repo.SetResetToken(context.Background(), "ghost", "tok", time.Now())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPgUserRepositoryUpdateProfile_PassesNilForUnchangedFields(t *testing.T) {
	pool := &fakePool{row: fakeRow{values: userRowValues(nil, nil, nil)}}
	repo := NewPgUserRepository(pool)
	first := "Grace"

	if _, err := repo.UpdateProfile(context.Background(), "u1", domain.ProfilePatch{FirstName: &first}); err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if got := pool.lastArgs[1].(*string); got == nil || *got != "Grace" {
		t.Fatalf("expected first name arg, got %#v", pool.lastArgs[1])
	}
	if got := pool.lastArgs[2].(*string); got != nil {
		t.Fatalf("expected nil last name arg, got %#v", got)
	}
}
