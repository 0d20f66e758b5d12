package email

import (
	"context"
	"errors"
	"time"

	"acm-portal/internal/domain"
)

// Sender define la interfaz para los correos transaccionales del portal.
type Sender interface {
	SendConfirmation(ctx context.Context, toEmail, token string) error
	SendPasswordReset(ctx context.Context, toEmail, token string, expiresAt time.Time) error
	SendContactMessage(ctx context.Context, msg domain.ContactMessage) error
}

type disabledSender struct {
	reason string
}

func NewDisabledSender(reason string) Sender {
	return &disabledSender{reason: reason}
}

func (s *disabledSender) err() error {
	if s.reason == "" {
		return errors.New("email sender disabled")
	}
	return errors.New(s.reason)
}

func (s *disabledSender) SendConfirmation(_ context.Context, _, _ string) error {
	return s.err()
}

func (s *disabledSender) SendPasswordReset(_ context.Context, _, _ string, _ time.Time) error {
	return s.err()
}

func (s *disabledSender) SendContactMessage(_ context.Context, _ domain.ContactMessage) error {
	return s.err()
}
