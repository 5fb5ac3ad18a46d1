// Package mailer delivers contact page submissions over SMTP
package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"sort"
	"strings"

	"github.com/portfolio-content-api/internal/config"
	"github.com/rs/zerolog"
)

// Message is a plain-text mail
type Message struct {
	ReplyTo string
	Subject string
	Body    string
}

// Mailer sends messages to the configured inbox
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// sendFunc matches smtp.SendMail
type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type smtpMailer struct {
	addr string
	from string
	to   string
	auth smtp.Auth
	send sendFunc
	log  zerolog.Logger
}

// NewSMTPMailer creates a mailer for cfg. PLAIN auth is used when a
// username is configured.
func NewSMTPMailer(cfg config.SMTPConfig, log zerolog.Logger) Mailer {
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return &smtpMailer{
		addr: cfg.Host + ":" + cfg.Port,
		from: cfg.From,
		to:   cfg.To,
		auth: auth,
		send: smtp.SendMail,
		log:  log.With().Str("component", "mailer").Logger(),
	}
}

func (m *smtpMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	raw := Compose(m.from, m.to, msg)
	if err := m.send(m.addr, m.auth, m.from, []string{m.to}, raw); err != nil {
		m.log.Error().Err(err).Str("smtp_addr", m.addr).Msg("Failed to send email")
		return fmt.Errorf("failed to send email: %w", err)
	}

	m.log.Info().Str("subject", msg.Subject).Msg("Email sent")
	return nil
}

// Compose renders the RFC 5322 message bytes
func Compose(from, to string, msg Message) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	if msg.ReplyTo != "" {
		fmt.Fprintf(&b, "Reply-To: %s\r\n", headerSafe(msg.ReplyTo))
	}
	fmt.Fprintf(&b, "Subject: %s\r\n", headerSafe(msg.Subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	b.WriteString(strings.ReplaceAll(msg.Body, "\n", "\r\n"))
	return []byte(b.String())
}

// FormatFields renders submitted fields as sorted "key: value" lines
func FormatFields(fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s: %s\n", k, fields[k])
	}
	return b.String()
}

// headers must not carry line breaks from user input
func headerSafe(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}
