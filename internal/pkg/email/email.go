package email

import (
	"bytes"
	"fmt"
	"html/template"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/workforce-portal/internal/config"
	"gopkg.in/gomail.v2"
)

const maxRetries = 3

const passwordResetTemplate = `<p>Hello {{.Name}},</p>
<p>Click the link below to reset your password:</p>
<p><a href="{{.ResetLink}}">{{.ResetLink}}</a></p>
<p>This link expires at {{.ExpiresAt}}.</p>
<p>If you did not request this, please ignore this email.</p>`

// EmailService defines the interface for sending emails
type EmailService interface {
	SendPasswordReset(to, name, resetLink string, expiresAt time.Time) error
}

type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type emailServiceImpl struct {
	cfg       config.SMTPConfig
	dialer    sender
	templates *template.Template
	backoff   time.Duration
}

// NewEmailService creates a new email service instance
func NewEmailService(cfg config.SMTPConfig) (EmailService, error) {
	tmpl, err := template.New("password_reset").Parse(passwordResetTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}

	var dialer sender
	if cfg.Host != "" {
		dialer = gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	}

	return &emailServiceImpl{
		cfg:       cfg,
		dialer:    dialer,
		templates: tmpl,
		backoff:   time.Second,
	}, nil
}

type passwordResetEmailData struct {
	Name      string
	ResetLink string
	ExpiresAt string
}

// SendPasswordReset sends a password reset email to the employee
func (s *emailServiceImpl) SendPasswordReset(to, name, resetLink string, expiresAt time.Time) error {
	body, err := s.renderPasswordReset(passwordResetEmailData{
		Name:      name,
		ResetLink: resetLink,
		ExpiresAt: expiresAt.Format(time.RFC1123),
	})
	if err != nil {
		return err
	}

	return s.sendHTML(to, "Reset Employee Password", body)
}

func (s *emailServiceImpl) renderPasswordReset(data passwordResetEmailData) (string, error) {
	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, "password_reset", data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return body.String(), nil
}

func (s *emailServiceImpl) sendHTML(to, subject, htmlBody string) error {
	// Skip sending if SMTP is not configured
	if s.dialer == nil {
		slog.Warn("SMTP not configured, skipping email send", "to", to, "subject", subject)
		return nil
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.cfg.From, s.cfg.FromName)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		err := s.dialer.DialAndSend(m)
		if err == nil {
			slog.Info("Email sent successfully", "to", to, "subject", subject, "attempt", attempt)
			return nil
		}

		lastErr = err
		slog.Error("Failed to send email",
			"to", to,
			"subject", subject,
			"attempt", attempt,
			"max_retries", maxRetries,
			"error", err,
		)

		// Exponential backoff: 1s, 2s
		if attempt < maxRetries {
			time.Sleep(s.backoff * time.Duration(1<<(attempt-1)))
		}
	}

	return fmt.Errorf("failed to send email after %d attempts: %w", maxRetries, lastErr)
}
