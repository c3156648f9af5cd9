package mailer

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/stratton-prime/certexam-backend/internal/config"
)

const dialTimeout = 15 * time.Second

// Message is one outgoing HTML email.
type Message struct {
	To      []string
	Subject string
	HTML    string
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPSender delivers through an SMTP relay. Without a host it runs in dev
// mode and only logs what it would have sent.
type SMTPSender struct {
	cfg config.SMTPConfig
	log zerolog.Logger
}

// NewSMTPSender creates a new SMTPSender.
func NewSMTPSender(cfg config.SMTPConfig, log zerolog.Logger) *SMTPSender {
	return &SMTPSender{cfg: cfg, log: log.With().Str("component", "mailer").Logger()}
}

// DevMode reports whether messages are logged instead of sent.
func (s *SMTPSender) DevMode() bool { return s.cfg.Host == "" }

// Send delivers msg. Port 465 uses implicit TLS, other ports STARTTLS when offered.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return errors.New("message has no recipients")
	}
	if s.DevMode() {
		s.log.Info().
			Strs("to", msg.To).
			Str("subject", msg.Subject).
			Msg("SMTP not configured, email not sent")
		return nil
	}

	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	client, err := s.dial(ctx, addr)
	if err != nil {
		return fmt.Errorf("connect smtp %s: %w", addr, err)
	}
	defer client.Close()

	if s.cfg.Port != 465 {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(&tls.Config{ServerName: s.cfg.Host}); err != nil {
				return fmt.Errorf("starttls: %w", err)
			}
		}
	}
	if s.cfg.Username != "" {
		if err := client.Auth(smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	if err := client.Mail(s.cfg.From); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	for _, rcpt := range msg.To {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("smtp rcpt %s: %w", rcpt, err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write(compose(s.cfg.From, msg)); err != nil {
		_ = w.Close()
		return fmt.Errorf("write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close message: %w", err)
	}

	if err := client.Quit(); err != nil {
		s.log.Debug().Err(err).Msg("SMTP quit failed")
	}
	s.log.Info().Strs("to", msg.To).Str("subject", msg.Subject).Msg("Email sent")
	return nil
}

func (s *SMTPSender) dial(ctx context.Context, addr string) (*smtp.Client, error) {
	dialer := &net.Dialer{Timeout: dialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	if s.cfg.Port == 465 {
		tlsConn := tls.Client(conn, &tls.Config{ServerName: s.cfg.Host})
		if err := tlsConn.HandshakeContext(ctx); err != nil {
			conn.Close()
			return nil, fmt.Errorf("tls handshake: %w", err)
		}
		conn = tlsConn
	}

	client, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return client, nil
}

func compose(from string, msg Message) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(msg.To, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", mimeHeader(msg.Subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.HTML)
	b.WriteString("\r\n")
	return b.Bytes()
}
