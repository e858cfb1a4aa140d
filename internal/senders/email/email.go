package email

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/ethanbaker/prospector/pkg/engine"
	"github.com/ethanbaker/prospector/pkg/utils"
)

// defaultSubject is used when a template renders no subject
const defaultSubject = "New Message"

// Sender delivers rendered templates over SMTP. It implements
// engine.EmailSender.
type Sender struct {
	host     string
	port     string
	from     string
	password string
}

var _ engine.EmailSender = (*Sender)(nil)

// NewSender creates an SMTP sender from config (SMTP_HOST, SMTP_PORT,
// SMTP_FROM, SMTP_PASSWORD). Returns nil when no host is configured, which
// disables the email channel.
func NewSender(cfg *utils.Config) *Sender {
	host := cfg.Get("SMTP_HOST")
	if host == "" {
		return nil
	}

	return &Sender{
		host:     host,
		port:     cfg.GetWithDefault("SMTP_PORT", "587"),
		from:     cfg.Get("SMTP_FROM"),
		password: cfg.Get("SMTP_PASSWORD"),
	}
}

// SendTemplated renders the template for the language and delivers it as an
// HTML email
func (s *Sender) SendTemplated(ctx context.Context, to string, template engine.Template, vars engine.Variables, language string) error {
	body := template.Render(language, vars)
	if body == "" {
		return fmt.Errorf("template '%s' rendered an empty body", template.TemplateID())
	}

	subject := template.RenderSubject(language, vars)
	if subject == "" {
		subject = defaultSubject
	}

	message := []byte("From: " + s.from + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-version: 1.0;\r\n" +
		"Content-Type: text/html; charset=\"UTF-8\";\r\n" +
		"\r\n" +
		"<html><body>" + body + "</body></html>")

	auth := smtp.PlainAuth("", s.from, s.password, s.host)

	// smtp.SendMail has no context support, so run it in a goroutine and
	// abandon it on cancellation
	done := make(chan error, 1)
	go func() {
		done <- smtp.SendMail(s.host+":"+s.port, auth, s.from, []string{to}, message)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to send email to '%s': %w", to, err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
