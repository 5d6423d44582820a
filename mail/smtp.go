// Package mail delivers the verification messages produced by the engine.
package mail

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"
)

// Config holds the SMTP relay settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	// From is the envelope and header sender address.
	From string
	// Timeout bounds the whole SMTP conversation. Zero means 10s.
	Timeout time.Duration
}

const defaultTimeout = 10 * time.Second

// SMTPSender sends HTML mail over a single SMTP relay using PLAIN auth.
type SMTPSender struct {
	config Config
}

// NewSMTPSender validates cfg and returns a sender.
func NewSMTPSender(cfg Config) (*SMTPSender, error) {
	if cfg.Host == "" {
		return nil, errors.New("mail: smtp host required")
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, errors.New("mail: smtp port out of range")
	}
	if cfg.From == "" {
		return nil, errors.New("mail: from address required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &SMTPSender{config: cfg}, nil
}

// Send delivers one HTML message. The context deadline and the configured
// timeout both apply; whichever is sooner wins.
func (s *SMTPSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	addr := net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))
	msg := buildMessage(s.config.From, to, subject, htmlBody)

	var auth smtp.Auth
	if s.config.Username != "" {
		auth = smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)
	}

	// smtp.SendMail has no context hook, so run it on the side and let the
	// deadline abandon it. The goroutine finishes on its own once the dial or
	// conversation times out at the TCP layer.
	done := make(chan error, 1)
	go func() {
		done <- smtp.SendMail(addr, auth, s.config.From, []string{to}, msg)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("mail: send to %s: %w", to, err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("mail: send to %s: %w", to, ctx.Err())
	}
}

// buildMessage assembles RFC 5322 headers plus the HTML body.
func buildMessage(from, to, subject, htmlBody string) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", subject) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(htmlBody)
	return []byte(b.String())
}
