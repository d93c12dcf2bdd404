package services

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"

	"github.com/resend/resend-go/v2"
	"github.com/sjperalta/komplek-api/internal/config"
	"github.com/sjperalta/komplek-api/pkg/logger"
)

//go:embed templates/email/*.html
var emailTemplates embed.FS

// Mailer sends one prepared email
type Mailer interface {
	Send(params *resend.SendEmailRequest) error
}

type resendMailer struct {
	client *resend.Client
}

func (m *resendMailer) Send(params *resend.SendEmailRequest) error {
	_, err := m.client.Emails.Send(params)
	return err
}

type EmailService struct {
	config *config.Config
	mailer Mailer
}

func NewEmailService(cfg *config.Config) *EmailService {
	return &EmailService{
		config: cfg,
		mailer: &resendMailer{client: resend.NewClient(cfg.ResendAPIKey)},
	}
}

// checkEmailPreconditions reports whether mail can be sent. A missing API key or an
// empty admin list disables email silently.
func (s *EmailService) checkEmailPreconditions(operation string) (bool, error) {
	if s.config.ResendAPIKey == "" {
		logger.Debug("Email disabled, skipping", "operation", operation)
		return false, nil
	}
	if s.config.FromEmail == "" {
		return false, errors.New("FROM_EMAIL is not set")
	}
	if len(s.config.AdminEmails) == 0 {
		logger.Debug("No admin recipients, skipping", "operation", operation)
		return false, nil
	}
	return true, nil
}

// SendMonthClosed tells administrators that every active resident paid for period
func (s *EmailService) SendMonthClosed(ctx context.Context, period string, amount int64, paid int) error {
	ok, err := s.checkEmailPreconditions("month closed")
	if !ok {
		return err
	}

	total := amount * int64(paid)
	data := struct {
		Period     string
		Paid       int
		Amount     string
		Total      string
		TotalWords string
	}{
		Period:     period,
		Paid:       paid,
		Amount:     FormatRupiah(amount),
		Total:      FormatRupiah(total),
		TotalWords: Terbilang(total),
	}

	body, err := s.renderTemplate("month_closed.html", data)
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("Iuran %s lunas", period)
	params := &resend.SendEmailRequest{
		From:    s.config.FromEmail,
		To:      s.config.AdminEmails,
		Subject: subject,
		Html:    body,
	}
	if err := s.mailer.Send(params); err != nil {
		logger.Error("Failed to send email", "subject", subject, "error", err)
		return err
	}

	logger.Info("📧 [Email Sent]", "to", s.config.AdminEmails, "subject", subject)
	return nil
}

func (s *EmailService) renderTemplate(name string, data interface{}) (string, error) {
	tmpl, err := template.ParseFS(emailTemplates, "templates/email/"+name)
	if err != nil {
		return "", fmt.Errorf("failed to parse template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}

	return buf.String(), nil
}
