// Package mail delivers transactional email.
package mail

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"socialhub/internal/config"

	"gopkg.in/gomail.v2"
)

// Message is a single outgoing email.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPSender sends through an SMTP relay.
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPSender returns a sender for the given relay.
func NewSMTPSender(host string, port int, username, password, from string) *SMTPSender {
	return &SMTPSender{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

// Build converts msg into a gomail message with this sender's From address.
func (s *SMTPSender) Build(msg Message) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Text)
	if msg.HTML != "" {
		m.AddAlternative("text/html", msg.HTML)
	}
	return m
}

// Send delivers msg. gomail has no context support, so ctx is only checked before dialing.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.dialer.DialAndSend(s.Build(msg)); err != nil {
		return fmt.Errorf("send mail to %s: %w", msg.To, err)
	}
	return nil
}

// LogSender writes messages to the log instead of delivering them.
type LogSender struct{}

// Send logs msg.
func (LogSender) Send(ctx context.Context, msg Message) error {
	slog.InfoContext(ctx, "mail not delivered (no SMTP relay configured)",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
	)
	return nil
}

// Recorder keeps every message passed to Send. Use it in tests and local tooling only.
type Recorder struct {
	mu   sync.Mutex
	sent []Message
}

// Send records msg.
func (r *Recorder) Send(_ context.Context, msg Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, msg)
	return nil
}

// Sent returns a copy of the recorded messages.
func (r *Recorder) Sent() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.sent...)
}

// NewSender picks SMTP when a relay is configured and logging otherwise.
func NewSender(cfg *config.Config) Sender {
	if cfg.MailEnabled() {
		return NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.MailFrom)
	}
	return LogSender{}
}

// VerificationMessage builds the email confirming ownership of an address.
func VerificationMessage(to, username, baseURL, token string) Message {
	link := strings.TrimRight(baseURL, "/") + "/api/auth/verify?token=" + url.QueryEscape(token)
	return Message{
		To:      to,
		Subject: "Confirm your email address",
		Text: fmt.Sprintf("Hi %s,\n\nconfirm your email address by opening this link:\n%s\n\nIf you did not sign up, ignore this email.\n",
			username, link),
		HTML: fmt.Sprintf(`<p>Hi %s,</p><p>confirm your email address by opening <a href="%s">this link</a>.</p><p>If you did not sign up, ignore this email.</p>`,
			html.EscapeString(username), html.EscapeString(link)),
	}
}
