package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"acm-portal/internal/domain"
	"acm-portal/internal/email"
)

var ErrInvalidContact = errors.New("invalid contact message")

const maxContactMessageLen = 5000

// ContactService reenvia los mensajes del formulario de contacto al inbox del club.
type ContactService struct {
	logger      *zap.Logger
	emailSender email.Sender
	limiter     RequestLimiter
}

func NewContactService(logger *zap.Logger, emailSender email.Sender, limiter RequestLimiter) *ContactService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if limiter == nil {
		limiter = unlimited{}
	}
	return &ContactService{logger: logger, emailSender: emailSender, limiter: limiter}
}

func (s *ContactService) Send(ctx context.Context, msg domain.ContactMessage) error {
	emailAddr, err := validateEmail(msg.Email)
	if err != nil {
		return err
	}
	msg = domain.ContactMessage{
		Name:    strings.TrimSpace(msg.Name),
		Email:   emailAddr,
		Topic:   strings.TrimSpace(msg.Topic),
		Message: strings.TrimSpace(msg.Message),
	}
	if msg.Name == "" || msg.Message == "" || len(msg.Message) > maxContactMessageLen {
		return ErrInvalidContact
	}
	if !s.limiter.Allow(emailAddr) {
		return ErrRateLimited
	}
	if s.emailSender == nil {
		return ErrEmailSendFailure
	}
	if err := s.emailSender.SendContactMessage(ctx, msg); err != nil {
		s.logger.Warn("send contact message failed", zap.Error(err), zap.String("from", emailAddr))
		return ErrEmailSendFailure
	}
	return nil
}
