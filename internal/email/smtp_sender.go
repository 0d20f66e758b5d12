package email

import (
	"context"
	"fmt"
	"html"
	"net/url"
	"strings"
	"time"

	"gopkg.in/gomail.v2"

	"acm-portal/internal/domain"
)

// SMTPConfig agrupa los datos del servidor y los links que van en los correos.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
	// ContactInbox recibe los mensajes del formulario de contacto.
	ContactInbox string
	// APIBaseURL es la base de /api/users para armar los links de confirmacion y reset.
	APIBaseURL string
}

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPSender envia correos via SMTP usando gomail.
type SMTPSender struct {
	cfg    SMTPConfig
	dialer dialer
}

func NewSMTPSender(cfg SMTPConfig) (*SMTPSender, error) {
	if strings.TrimSpace(cfg.Host) == "" {
		return nil, fmt.Errorf("smtp host is required")
	}
	if strings.TrimSpace(cfg.From) == "" {
		return nil, fmt.Errorf("smtp from is required")
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")
	return &SMTPSender{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}, nil
}

func (s *SMTPSender) SendConfirmation(ctx context.Context, toEmail, token string) error {
	link := fmt.Sprintf("%s/confirm/%s", s.cfg.APIBaseURL, url.PathEscape(token))
	body := fmt.Sprintf(
		"<p>Welcome to TTU ACM!</p><p>Click <a href='%s'>here</a> to confirm your email address.</p>",
		link,
	)
	return s.send(ctx, toEmail, "", "Confirm your TTU ACM account", body)
}

func (s *SMTPSender) SendPasswordReset(ctx context.Context, toEmail, token string, expiresAt time.Time) error {
	link := fmt.Sprintf("%s/reset/%s", s.cfg.APIBaseURL, url.PathEscape(token))
	body := fmt.Sprintf(
		"<p>We received a request to reset your password.</p>"+
			"<p>Click <a href='%s'>here</a> to choose a new one. The link expires at %s UTC.</p>"+
			"<p>If you did not request this, you can ignore this email.</p>",
		link,
		expiresAt.UTC().Format(time.RFC1123),
	)
	return s.send(ctx, toEmail, "", "Reset your TTU ACM password", body)
}

func (s *SMTPSender) SendContactMessage(ctx context.Context, msg domain.ContactMessage) error {
	if strings.TrimSpace(s.cfg.ContactInbox) == "" {
		return fmt.Errorf("contact inbox is not configured")
	}
	subject := "Contact form"
	if topic := strings.TrimSpace(msg.Topic); topic != "" {
		subject = "Contact form: " + topic
	}
	body := fmt.Sprintf(
		"<p><b>From:</b> %s &lt;%s&gt;</p><p>%s</p>",
		html.EscapeString(msg.Name),
		html.EscapeString(msg.Email),
		strings.ReplaceAll(html.EscapeString(msg.Message), "\n", "<br>"),
	)
	return s.send(ctx, s.cfg.ContactInbox, msg.Email, subject, body)
}

func (s *SMTPSender) send(ctx context.Context, toEmail, replyTo, subject, body string) error {
	if strings.TrimSpace(toEmail) == "" {
		return fmt.Errorf("to email is required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	m := s.buildMessage(toEmail, replyTo, subject, body)
	return s.dialer.DialAndSend(m)
}

func (s *SMTPSender) buildMessage(toEmail, replyTo, subject, body string) *gomail.Message {
	m := gomail.NewMessage(gomail.SetEncoding(gomail.Unencoded))
	if strings.TrimSpace(s.cfg.FromName) != "" {
		m.SetAddressHeader("From", s.cfg.From, s.cfg.FromName)
	} else {
		m.SetHeader("From", s.cfg.From)
	}
	m.SetHeader("To", toEmail)
	if replyTo != "" {
		m.SetHeader("Reply-To", replyTo)
	}
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)
	return m
}
