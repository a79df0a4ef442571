// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package notify fans a stored contact message out to the site owner by
// email and webhook. Delivery is best effort and never blocks the request.
package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mileusna/useragent"

	"github.com/olegiv/folio-go/internal/model"
	"github.com/olegiv/folio-go/internal/webhook"
)

// DefaultTimeout bounds one notification fan-out.
const DefaultTimeout = 30 * time.Second

// Meta describes the request that produced a message.
type Meta struct {
	IP      string
	Country string
	Browser string
	OS      string
}

// CountryResolver maps an IP to a country code.
type CountryResolver interface {
	Country(ip string) string
}

// EventDispatcher queues webhook events.
type EventDispatcher interface {
	DispatchEvent(ctx context.Context, eventType string, data any) error
}

// Config wires the optional channels. Nil channels are skipped.
type Config struct {
	Mailer  Mailer
	From    string
	To      string
	Webhook EventDispatcher
	GeoIP   CountryResolver
	Timeout time.Duration
}

// Notifier runs notifications on background goroutines.
type Notifier struct {
	cfg    Config
	logger *slog.Logger
	wg     sync.WaitGroup
}

// New creates a notifier.
func New(logger *slog.Logger, cfg Config) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Notifier{cfg: cfg, logger: logger}
}

// EmailEnabled reports whether an email channel is configured.
func (n *Notifier) EmailEnabled() bool {
	return n.cfg.Mailer != nil && n.cfg.To != ""
}

// VerifyEmail checks the mail transport.
func (n *Notifier) VerifyEmail(ctx context.Context) error {
	return n.cfg.Mailer.Verify(ctx)
}

// RequestMeta derives Meta from a client IP and User-Agent header.
func (n *Notifier) RequestMeta(ip, userAgent string) Meta {
	meta := Meta{IP: ip}
	if n.cfg.GeoIP != nil {
		meta.Country = n.cfg.GeoIP.Country(ip)
	}
	if userAgent != "" {
		ua := useragent.Parse(userAgent)
		meta.Browser = ua.Name
		meta.OS = ua.OS
	}
	return meta
}

// MessageCreated notifies the owner about msg in the background. The work
// is detached from the request context.
func (n *Notifier) MessageCreated(msg model.Message, meta Meta) {
	if !n.EmailEnabled() && n.cfg.Webhook == nil {
		return
	}
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		defer func() {
			if p := recover(); p != nil {
				n.logger.Error("panic in contact notification", "panic", p, "message_id", msg.ID)
			}
		}()
		ctx, cancel := context.WithTimeout(context.Background(), n.cfg.Timeout)
		defer cancel()
		n.deliver(ctx, msg, meta)
	}()
}

func (n *Notifier) deliver(ctx context.Context, msg model.Message, meta Meta) {
	if n.EmailEnabled() {
		m, err := ContactMail(n.cfg.From, n.cfg.To, msg, meta)
		if err == nil {
			err = n.cfg.Mailer.Send(ctx, m)
		}
		if err != nil {
			n.logger.Error("contact notification email failed", "error", err, "message_id", msg.ID)
		} else {
			n.logger.Info("contact notification email sent", "message_id", msg.ID)
		}
	}

	if n.cfg.Webhook != nil {
		data := webhook.MessageEventData{
			ID:        msg.ID,
			Name:      msg.Name,
			Email:     msg.Email,
			Subject:   msg.Subject,
			Message:   msg.Message,
			CreatedAt: msg.CreatedAt,
			IP:        meta.IP,
			Country:   meta.Country,
			Browser:   meta.Browser,
			OS:        meta.OS,
		}
		if err := n.cfg.Webhook.DispatchEvent(ctx, webhook.EventMessageCreated, data); err != nil {
			n.logger.Error("contact webhook dispatch failed", "error", err, "message_id", msg.ID)
		}
	}
}

// Wait blocks until in-flight notifications finish or ctx is done.
func (n *Notifier) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		n.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
