package email

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"acm-portal/internal/domain"
)

type recordingDialer struct {
	sent []*gomail.Message
	err  error
}

func (d *recordingDialer) DialAndSend(m ...*gomail.Message) error {
	if d.err != nil {
		return d.err
	}
	d.sent = append(d.sent, m...)
	return nil
}

func newTestSender(t *testing.T) (*SMTPSender, *recordingDialer) {
	t.Helper()
	s, err := NewSMTPSender(SMTPConfig{
		Host:         "smtp.example.com",
		From:         "noreply@acm.example.com",
		FromName:     "TTU ACM",
		ContactInbox: "board@acm.example.com",
		APIBaseURL:   "https://api.acm.example.com/api/users/",
	})
	require.NoError(t, err)
	d := &recordingDialer{}
	s.dialer = d
	return s, d
}

func render(t *testing.T, m *gomail.Message) string {
	t.Helper()
	var buf bytes.Buffer
	_, err := m.WriteTo(&buf)
	require.NoError(t, err)
	return buf.String()
}

func TestNewSMTPSender_Validation(t *testing.T) {
	_, err := NewSMTPSender(SMTPConfig{From: "a@b.com"})
	assert.Error(t, err)
	_, err = NewSMTPSender(SMTPConfig{Host: "smtp.example.com"})
	assert.Error(t, err)

	s, err := NewSMTPSender(SMTPConfig{Host: "smtp.example.com", From: "a@b.com"})
	require.NoError(t, err)
	assert.Equal(t, 587, s.cfg.Port)
}

func TestSMTPSender_SendConfirmation(t *testing.T) {
	s, d := newTestSender(t)
	require.NoError(t, s.SendConfirmation(context.Background(), "member@ttu.edu", "abc123"))
	require.Len(t, d.sent, 1)

	assert.Equal(t, []string{"member@ttu.edu"}, d.sent[0].GetHeader("To"))
	raw := render(t, d.sent[0])
	assert.Contains(t, raw, "https://api.acm.example.com/api/users/confirm/abc123")
}

func TestSMTPSender_SendPasswordReset(t *testing.T) {
	s, d := newTestSender(t)
	expires := time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)
	require.NoError(t, s.SendPasswordReset(context.Background(), "member@ttu.edu", "tok", expires))
	require.Len(t, d.sent, 1)
	raw := render(t, d.sent[0])
	assert.Contains(t, raw, "/api/users/reset/tok")
}

func TestSMTPSender_SendContactMessage(t *testing.T) {
	s, d := newTestSender(t)
	msg := domain.ContactMessage{
		Name:    "Ada <script>",
		Email:   "ada@example.com",
		Topic:   "Sponsorship",
		Message: "hello",
	}
	require.NoError(t, s.SendContactMessage(context.Background(), msg))
	require.Len(t, d.sent, 1)

	m := d.sent[0]
	assert.Equal(t, []string{"board@acm.example.com"}, m.GetHeader("To"))
	assert.Equal(t, []string{"ada@example.com"}, m.GetHeader("Reply-To"))
	assert.Equal(t, []string{"Contact form: Sponsorship"}, m.GetHeader("Subject"))
	assert.False(t, strings.Contains(render(t, m), "<script>"))
}

func TestSMTPSender_ContactWithoutInbox(t *testing.T) {
	s, d := newTestSender(t)
	s.cfg.ContactInbox = ""
	assert.Error(t, s.SendContactMessage(context.Background(), domain.ContactMessage{Email: "a@b.com"}))
	assert.Empty(t, d.sent)
}

func TestSMTPSender_DialError(t *testing.T) {
	s, d := newTestSender(t)
	d.err = errors.New("connection refused")
	assert.Error(t, s.SendConfirmation(context.Background(), "member@ttu.edu", "abc"))
}

func TestDisabledSender(t *testing.T) {
	s := NewDisabledSender("smtp not configured")
	err := s.SendConfirmation(context.Background(), "a@b.com", "t")
	require.Error(t, err)
	assert.Equal(t, "smtp not configured", err.Error())
	assert.Error(t, s.SendPasswordReset(context.Background(), "a@b.com", "t", time.Now()))
	assert.Error(t, NewDisabledSender("").SendContactMessage(context.Background(), domain.ContactMessage{}))
}
