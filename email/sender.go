package email

import (
	"context"
	"fmt"
	"time"

	"bookstore/config"

	"go.uber.org/zap"
	mail "gopkg.in/mail.v2"
)

// Message is a plain-text email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers outgoing mail.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// NewSender returns an SMTP sender, or a sender that only logs the message
// when no SMTP host is configured.
func NewSender(opts config.EmailOptions, logger *zap.Logger) Sender {
	if opts.Host == "" {
		logger.Warn("SMTP host not configured, emails will only be logged")
		return &logSender{logger: logger.Named("email")}
	}
	d := mail.NewDialer(opts.Host, opts.Port, opts.UserName, opts.Password)
	d.SSL = opts.EnableSsl
	d.Timeout = 10 * time.Second
	return &smtpSender{from: opts.From, dialer: d, logger: logger.Named("email")}
}

type smtpSender struct {
	from   string
	dialer *mail.Dialer
	logger *zap.Logger
}

func (s *smtpSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.dialer.DialAndSend(buildMessage(s.from, msg)); err != nil {
		s.logger.Error("Failed to send email", zap.String("to", msg.To), zap.String("subject", msg.Subject), zap.Error(err))
		return fmt.Errorf("send email to %s: %w", msg.To, err)
	}
	s.logger.Info("Email sent", zap.String("to", msg.To), zap.String("subject", msg.Subject))
	return nil
}

// logSender records that a message would have gone out. Bodies carry
// passwords and confirmation codes, so they are never logged.
type logSender struct {
	logger *zap.Logger
}

func (s *logSender) Send(_ context.Context, msg Message) error {
	s.logger.Info("Email (not sent)", zap.String("to", msg.To), zap.String("subject", msg.Subject), zap.Int("body_bytes", len(msg.Body)))
	return nil
}

func buildMessage(from string, msg Message) *mail.Message {
	m := mail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)
	return m
}
