package repository

import (
	"context"
	"errors"
	"time"

	"acm-portal/internal/domain"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicateEmail = errors.New("email already registered")
)

// UserRepository define el contrato de persistencia para usuarios.
// Cada metodo de escritura es atomico sobre un solo documento/fila.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) error
	GetByID(ctx context.Context, id string) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	GetByResetToken(ctx context.Context, token string) (domain.User, error)
	// ConfirmEmail limpia el token de confirmacion y marca verified en una sola escritura.
	ConfirmEmail(ctx context.Context, token string) (domain.User, error)
	SetConfirmToken(ctx context.Context, id, token string) error
	SetResetToken(ctx context.Context, id, token string, expiresAt time.Time) error
	// ResetPassword reemplaza el hash solo si el token sigue guardado en el usuario.
	ResetPassword(ctx context.Context, id, token, passwordHash string) (domain.User, error)
	UpdateResume(ctx context.Context, id, path string) (domain.User, error)
	UpdateProfile(ctx context.Context, id string, patch domain.ProfilePatch) (domain.User, error)
	Ping(ctx context.Context) error
}
