package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"go.uber.org/zap"

	"leaveflow/internal/domain/notification"
)

// Mailer delivers one rendered message.
type Mailer interface {
	Send(ctx context.Context, from, to, subject, body string) error
}

type Options struct {
	Enabled bool
	Host    string
	Port    string
	User    string
	Pass    string
	From    string
}

type noopMailer struct{ log *zap.Logger }

func (m noopMailer) Send(_ context.Context, _, to, subject, _ string) error {
	m.log.Debug("email disabled, dropping message", zap.String("to", to), zap.String("subject", subject))
	return nil
}

type smtpMailer struct {
	opts Options
}

// NewMailer returns an SMTP mailer, or a no-op one when email is disabled.
func NewMailer(opts Options, log *zap.Logger) Mailer {
	if log == nil {
		log = zap.NewNop()
	}
	if !opts.Enabled || opts.Host == "" {
		return noopMailer{log: log}
	}
	return &smtpMailer{opts: opts}
}

func (s *smtpMailer) Send(ctx context.Context, from, to, subject, body string) error {
	if strings.TrimSpace(to) == "" {
		return nil
	}
	addr := net.JoinHostPort(s.opts.Host, s.opts.Port)

	dialer := net.Dialer{Timeout: 10 * time.Second}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial smtp %s: %w", addr, err)
	}
	defer conn.Close()
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, s.opts.Host)
	if err != nil {
		return err
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: s.opts.Host}); err != nil {
			return fmt.Errorf("starttls: %w", err)
		}
	}
	if s.opts.User != "" {
		if err := client.Auth(smtp.PlainAuth("", s.opts.User, s.opts.Pass, s.opts.Host)); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	if err := client.Mail(from); err != nil {
		return err
	}
	if err := client.Rcpt(to); err != nil {
		return err
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(buildMessage(from, to, subject, body)); err != nil {
		_ = w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}

func buildMessage(from, to, subject, body string) []byte {
	headers := []string{
		"From: " + from,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
	}
	return []byte(strings.Join(headers, "\r\n") + "\r\n" + body)
}

// EmailSender renders leave-request notifications and hands them to a Mailer.
type EmailSender struct {
	mailer Mailer
	from   string
}

var _ notification.Sender = (*EmailSender)(nil)

func NewEmailSender(mailer Mailer, from string) *EmailSender {
	return &EmailSender{mailer: mailer, from: from}
}

func (s *EmailSender) Send(ctx context.Context, m notification.Message) error {
	subject, body, err := Render(m)
	if err != nil {
		return err
	}
	if err := s.mailer.Send(ctx, s.from, m.RecipientEmail, subject, body); err != nil {
		return fmt.Errorf("send %s email for request %s: %w", m.Kind, m.RequestID, err)
	}
	return nil
}
