package mailer

import (
	"context"
	"errors"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/ikkim/accounts-backend/config"
	"github.com/ikkim/accounts-backend/pkg/logger"
)

// ErrInvalidHeader is returned when a recipient or subject would break the
// message headers.
var ErrInvalidHeader = errors.New("mail header contains line breaks")

// Mailer delivers plain text email.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPMailer sends mail through an SMTP relay with PLAIN auth. net/smtp
// upgrades to STARTTLS when the server offers it.
type SMTPMailer struct {
	addr     string
	host     string
	username string
	password string
	from     string
	send     sendFunc
}

func NewSMTPMailer(cfg *config.MailConfig) *SMTPMailer {
	return &SMTPMailer{
		addr:     cfg.Addr(),
		host:     cfg.Host,
		username: cfg.Username,
		password: cfg.Password,
		from:     cfg.From,
		send:     smtp.SendMail,
	}
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg, err := BuildMessage(m.from, to, subject, body)
	if err != nil {
		return err
	}

	auth := smtp.PlainAuth("", m.username, m.password, m.host)
	if err := m.send(m.addr, auth, m.from, []string{to}, msg); err != nil {
		logger.Error("Failed to send email", err, map[string]interface{}{
			"to":   to,
			"addr": m.addr,
		})
		return fmt.Errorf("send mail: %w", err)
	}

	logger.Info("Email sent", map[string]interface{}{
		"to":      to,
		"subject": subject,
	})
	return nil
}

// LogMailer writes messages to the log instead of sending them. Only meant
// for local development (MAIL_TRANSPORT=log).
type LogMailer struct{}

func NewLogMailer() *LogMailer {
	return &LogMailer{}
}

func (m *LogMailer) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	logger.Info("[DEV MODE] Email not sent", map[string]interface{}{
		"to":      to,
		"subject": subject,
		"body":    body,
	})
	return nil
}

// New picks the transport configured in MAIL_TRANSPORT.
func New(cfg *config.MailConfig) Mailer {
	if cfg.Transport == "log" {
		return NewLogMailer()
	}
	return NewSMTPMailer(cfg)
}

// BuildMessage renders an RFC 5322 plain text message.
func BuildMessage(from, to, subject, body string) ([]byte, error) {
	for _, header := range []string{from, to, subject} {
		if strings.ContainsAny(header, "\r\n") {
			return nil, ErrInvalidHeader
		}
	}

	return []byte(fmt.Sprintf(
		"From: %s\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/plain; charset=UTF-8\r\n"+
			"\r\n"+
			"%s",
		from, to, subject, strings.ReplaceAll(body, "\n", "\r\n"),
	)), nil
}
