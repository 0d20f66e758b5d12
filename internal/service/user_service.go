package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"acm-portal/internal/domain"
	"acm-portal/internal/email"
	"acm-portal/internal/repository"
)

// UserService coordina registro, login, confirmacion y reset de password.
type UserService struct {
	logger      *zap.Logger
	users       repository.UserRepository
	hasher      *PasswordHasher
	emailSender email.Sender
	limiter     RequestLimiter
	resetTTL    time.Duration
	now         func() time.Time
}

func NewUserService(logger *zap.Logger, users repository.UserRepository, hasher *PasswordHasher, emailSender email.Sender, limiter RequestLimiter, resetTTL time.Duration) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if hasher == nil {
		hasher = NewPasswordHasher(SaveHashCost)
	}
	if limiter == nil {
		limiter = unlimited{}
	}
	if resetTTL <= 0 {
		resetTTL = time.Hour
	}
	return &UserService{
		logger:      logger,
		users:       users,
		hasher:      hasher,
		emailSender: emailSender,
		limiter:     limiter,
		resetTTL:    resetTTL,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

var (
	ErrNotFound         = errors.New("not found")
	ErrNotVerified      = errors.New("user not verified")
	ErrAlreadyVerified  = errors.New("user already verified")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrConflict         = errors.New("email already registered")
	ErrExpired          = errors.New("token expired")
	ErrInvalidEmail     = errors.New("invalid email")
	ErrInvalidPassword  = errors.New("invalid password")
	ErrRateLimited      = errors.New("rate limited")
	ErrEmailSendFailure = errors.New("email send failed")
)

const (
	minPasswordLen = 8
	// bcrypt ignora todo lo que pase de 72 bytes.
	maxPasswordLen = 72
)

type RegisterInput struct {
	Email          string
	Password       string
	FirstName      string
	LastName       string
	Classification string
}

// RegisterResult incluye el token de confirmacion para que el caller arme el correo.
type RegisterResult struct {
	User         domain.User
	ConfirmToken string
}

func (s *UserService) Register(ctx context.Context, input RegisterInput) (RegisterResult, error) {
	emailAddr, err := validateEmail(input.Email)
	if err != nil {
		return RegisterResult{}, err
	}
	if err := validatePassword(input.Password); err != nil {
		return RegisterResult{}, err
	}

	if _, err := s.users.GetByEmail(ctx, emailAddr); err == nil {
		return RegisterResult{}, ErrConflict
	} else if !errors.Is(err, repository.ErrNotFound) {
		return RegisterResult{}, err
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return RegisterResult{}, fmt.Errorf("hash password: %w", err)
	}
	confirmToken, err := generateToken()
	if err != nil {
		return RegisterResult{}, fmt.Errorf("generate confirm token: %w", err)
	}

	now := s.now()
	user := domain.User{
		ID:                uuid.NewString(),
		Email:             emailAddr,
		PasswordHash:      hash,
		FirstName:         strings.TrimSpace(input.FirstName),
		LastName:          strings.TrimSpace(input.LastName),
		Classification:    strings.TrimSpace(input.Classification),
		ConfirmEmailToken: confirmToken,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return RegisterResult{}, ErrConflict
		}
		return RegisterResult{}, err
	}

	// El registro queda hecho aunque falle el correo; se puede pedir reenvio.
	if s.emailSender != nil {
		if err := s.emailSender.SendConfirmation(ctx, emailAddr, confirmToken); err != nil {
			s.logger.Warn("send confirmation email failed", zap.Error(err), zap.String("user_id", user.ID))
		}
	}

	return RegisterResult{User: user, ConfirmToken: confirmToken}, nil
}

// Login valida credenciales; la cuenta sin verificar falla antes de mirar el password.
func (s *UserService) Login(ctx context.Context, emailAddr, password string) (domain.User, error) {
	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" {
		return domain.User{}, ErrNotFound
	}
	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.User{}, ErrNotFound
		}
		return domain.User{}, err
	}
	if !user.Verified {
		return domain.User{}, ErrNotVerified
	}
	if user.PasswordHash == "" {
		return domain.User{}, ErrUnauthorized
	}
	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return domain.User{}, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return domain.User{}, ErrUnauthorized
	}
	return user, nil
}

// ForgotResult describe el reset emitido. Token solo se expone en modo debug.
type ForgotResult struct {
	Recipient string
	Token     string
	ExpiresAt time.Time
}

func (s *UserService) ForgotPassword(ctx context.Context, emailAddr string) (ForgotResult, error) {
	emailAddr, err := validateEmail(emailAddr)
	if err != nil {
		return ForgotResult{}, err
	}
	if !s.limiter.Allow("forgot:" + emailAddr) {
		return ForgotResult{}, ErrRateLimited
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ForgotResult{}, ErrNotFound
		}
		return ForgotResult{}, err
	}

	token, err := generateToken()
	if err != nil {
		return ForgotResult{}, fmt.Errorf("generate reset token: %w", err)
	}
	expiresAt := s.now().Add(s.resetTTL)
	if err := s.users.SetResetToken(ctx, user.ID, token, expiresAt); err != nil {
		return ForgotResult{}, err
	}

	if s.emailSender == nil {
		return ForgotResult{}, ErrEmailSendFailure
	}
	if err := s.emailSender.SendPasswordReset(ctx, user.Email, token, expiresAt); err != nil {
		s.logger.Warn("send password reset failed", zap.Error(err), zap.String("user_id", user.ID))
		return ForgotResult{}, ErrEmailSendFailure
	}

	return ForgotResult{Recipient: user.Email, Token: token, ExpiresAt: expiresAt}, nil
}

func (s *UserService) ConfirmEmail(ctx context.Context, token string) (domain.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.User{}, ErrNotFound
	}
	user, err := s.users.ConfirmEmail(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.User{}, ErrNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

// ResendConfirmation emite un token de confirmacion nuevo para una cuenta sin verificar.
func (s *UserService) ResendConfirmation(ctx context.Context, emailAddr string) error {
	emailAddr, err := validateEmail(emailAddr)
	if err != nil {
		return err
	}
	if !s.limiter.Allow("confirmation:" + emailAddr) {
		return ErrRateLimited
	}
	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	if user.Verified {
		return ErrAlreadyVerified
	}

	token, err := generateToken()
	if err != nil {
		return fmt.Errorf("generate confirm token: %w", err)
	}
	if err := s.users.SetConfirmToken(ctx, user.ID, token); err != nil {
		return err
	}
	if s.emailSender == nil {
		return ErrEmailSendFailure
	}
	if err := s.emailSender.SendConfirmation(ctx, user.Email, token); err != nil {
		s.logger.Warn("resend confirmation failed", zap.Error(err), zap.String("user_id", user.ID))
		return ErrEmailSendFailure
	}
	return nil
}

// CheckResetToken devuelve el usuario dueno de un reset pendiente y vigente.
// Un token vencido sigue guardado pero ya no sirve.
func (s *UserService) CheckResetToken(ctx context.Context, token string) (domain.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.User{}, ErrNotFound
	}
	user, err := s.users.GetByResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.User{}, ErrNotFound
		}
		return domain.User{}, err
	}
	if !tokensEqual(user.ResetPasswordToken, token) {
		return domain.User{}, ErrNotFound
	}
	if !user.ResetPending(s.now()) {
		return domain.User{}, ErrExpired
	}
	return user, nil
}

func (s *UserService) ResetPassword(ctx context.Context, token, newPassword string) (domain.User, error) {
	user, err := s.CheckResetToken(ctx, token)
	if err != nil {
		return domain.User{}, err
	}
	if err := validatePassword(newPassword); err != nil {
		return domain.User{}, err
	}
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}
	updated, err := s.users.ResetPassword(ctx, user.ID, strings.TrimSpace(token), hash)
	if err != nil {
		// Otro request consumio el token entre la lectura y la escritura.
		if errors.Is(err, repository.ErrNotFound) {
			return domain.User{}, ErrNotFound
		}
		return domain.User{}, err
	}
	return updated, nil
}

func (s *UserService) GetProfile(ctx context.Context, userID string) (domain.User, error) {
	if strings.TrimSpace(userID) == "" {
		return domain.User{}, ErrUnauthorized
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.User{}, ErrNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

// UpdateResume sobreescribe la ruta del curriculum sin validar su contenido.
func (s *UserService) UpdateResume(ctx context.Context, userID, path string) (domain.User, error) {
	if strings.TrimSpace(userID) == "" {
		return domain.User{}, ErrUnauthorized
	}
	user, err := s.users.UpdateResume(ctx, userID, path)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.User{}, ErrNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID string, patch domain.ProfilePatch) (domain.User, error) {
	if strings.TrimSpace(userID) == "" {
		return domain.User{}, ErrUnauthorized
	}
	patch = trimPatch(patch)
	if patch.Empty() {
		return s.GetProfile(ctx, userID)
	}
	user, err := s.users.UpdateProfile(ctx, userID, patch)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.User{}, ErrNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

func trimPatch(p domain.ProfilePatch) domain.ProfilePatch {
	trim := func(v *string) *string {
		if v == nil {
			return nil
		}
		t := strings.TrimSpace(*v)
		return &t
	}
	return domain.ProfilePatch{
		FirstName:      trim(p.FirstName),
		LastName:       trim(p.LastName),
		Classification: trim(p.Classification),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(raw string) (string, error) {
	emailAddr := normalizeEmail(raw)
	if emailAddr == "" {
		return "", ErrInvalidEmail
	}
	addr, err := mail.ParseAddress(emailAddr)
	if err != nil || addr.Address != emailAddr {
		return "", ErrInvalidEmail
	}
	return emailAddr, nil
}

func validatePassword(password string) error {
	if len(password) < minPasswordLen || len(password) > maxPasswordLen {
		return ErrInvalidPassword
	}
	return nil
}
