// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package notify

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"net"
	"net/mail"
	"net/smtp"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Mail is a message with a plain-text and an HTML body.
type Mail struct {
	From    string
	To      string
	ReplyTo string
	Subject string
	Text    string
	HTML    string
}

// Mailer sends mail and checks that the transport is usable.
type Mailer interface {
	Send(ctx context.Context, m Mail) error
	Verify(ctx context.Context) error
}

// SMTPConfig configures SMTPMailer.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Timeout  time.Duration
}

// SMTPMailer delivers mail over SMTP. Port 465 uses implicit TLS, other
// ports upgrade with STARTTLS when the server offers it.
type SMTPMailer struct {
	cfg SMTPConfig
}

// NewSMTPMailer creates a mailer for cfg.
func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &SMTPMailer{cfg: cfg}
}

// VerifyError classifies a failed transport check.
type VerifyError struct {
	Code string // "auth", "connection" or "protocol"
	Err  error
}

func (e *VerifyError) Error() string { return e.Code + ": " + e.Err.Error() }
func (e *VerifyError) Unwrap() error { return e.Err }

// Hint returns an operator-facing explanation of the failure.
func (e *VerifyError) Hint(host string) string {
	switch e.Code {
	case "auth":
		msg := "Authentication failed. Please check your email and password."
		if strings.Contains(strings.ToLower(host), "gmail") {
			msg += " Gmail accounts need an App Password instead of the regular password."
		}
		return msg
	case "connection":
		return "Failed to connect to email server. Please check the host and port settings."
	default:
		return "Unexpected response from email server."
	}
}

func (m *SMTPMailer) dial(ctx context.Context) (*smtp.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, m.cfg.Timeout)
	defer cancel()

	addr := net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))
	tlsCfg := &tls.Config{ServerName: m.cfg.Host, MinVersion: tls.VersionTLS12}

	var conn net.Conn
	var err error
	if m.cfg.Port == 465 {
		d := &tls.Dialer{Config: tlsCfg}
		conn, err = d.DialContext(ctx, "tcp", addr)
	} else {
		var d net.Dialer
		conn, err = d.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return nil, &VerifyError{Code: "connection", Err: err}
	}
	_ = conn.SetDeadline(time.Now().Add(m.cfg.Timeout))

	c, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		_ = conn.Close()
		return nil, &VerifyError{Code: "protocol", Err: err}
	}
	if m.cfg.Port != 465 {
		if ok, _ := c.Extension("STARTTLS"); ok {
			if err := c.StartTLS(tlsCfg); err != nil {
				_ = c.Close()
				return nil, &VerifyError{Code: "connection", Err: err}
			}
		}
	}
	if m.cfg.Username != "" {
		if err := c.Auth(smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)); err != nil {
			_ = c.Close()
			return nil, &VerifyError{Code: "auth", Err: err}
		}
	}
	return c, nil
}

// Verify connects and authenticates without sending anything.
func (m *SMTPMailer) Verify(ctx context.Context) error {
	c, err := m.dial(ctx)
	if err != nil {
		return err
	}
	return c.Quit()
}

// Send delivers msg.
func (m *SMTPMailer) Send(ctx context.Context, msg Mail) error {
	from, err := mail.ParseAddress(msg.From)
	if err != nil {
		return fmt.Errorf("invalid sender: %w", err)
	}
	to, err := mail.ParseAddress(msg.To)
	if err != nil {
		return fmt.Errorf("invalid recipient: %w", err)
	}
	body, err := buildMIME(msg, time.Now())
	if err != nil {
		return err
	}

	c, err := m.dial(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	if err := c.Mail(from.Address); err != nil {
		return fmt.Errorf("MAIL FROM: %w", err)
	}
	if err := c.Rcpt(to.Address); err != nil {
		return fmt.Errorf("RCPT TO: %w", err)
	}
	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("DATA: %w", err)
	}
	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("writing message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finishing message: %w", err)
	}
	return c.Quit()
}

// buildMIME renders msg as a multipart/alternative RFC 5322 message.
func buildMIME(msg Mail, now time.Time) ([]byte, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := []string{
		"From: " + msg.From,
		"To: " + msg.To,
		"Subject: " + mime.QEncoding.Encode("utf-8", msg.Subject),
		"Date: " + now.Format(time.RFC1123Z),
		"Message-ID: <" + uuid.NewString() + "@folio>",
		"MIME-Version: 1.0",
		"Content-Type: multipart/alternative; boundary=" + mw.Boundary(),
	}
	if msg.ReplyTo != "" {
		h = append(h, "Reply-To: "+msg.ReplyTo)
	}
	for _, line := range h {
		if strings.ContainsAny(line, "\r\n") {
			return nil, errors.New("header contains a line break")
		}
	}

	var out bytes.Buffer
	out.WriteString(strings.Join(h, "\r\n"))
	out.WriteString("\r\n\r\n")

	for _, part := range []struct{ ctype, body string }{
		{"text/plain; charset=utf-8", msg.Text},
		{"text/html; charset=utf-8", msg.HTML},
	} {
		pw, err := mw.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {part.ctype},
			"Content-Transfer-Encoding": {"8bit"},
		})
		if err != nil {
			return nil, err
		}
		if _, err := pw.Write([]byte(strings.ReplaceAll(part.body, "\n", "\r\n"))); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	out.Write(buf.Bytes())
	return out.Bytes(), nil
}
