// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNotRunning is returned by Dispatch when the dispatcher has not been started.
var ErrNotRunning = errors.New("webhook dispatcher not running")

// Dispatcher queues events and delivers them from a pool of workers.
// Failed deliveries are parked until RetryDue re-queues them.
type Dispatcher struct {
	url     string
	secret  string
	client  *http.Client
	logger  *slog.Logger
	queue   chan *Delivery
	workers int
	wg      sync.WaitGroup
	done    chan struct{}
	mu      sync.RWMutex
	running bool

	pendingMu sync.Mutex
	pending   map[string]*Delivery

	now func() time.Time
}

// Delivery is a single event bound for the endpoint.
type Delivery struct {
	ID          string
	Event       string
	Payload     []byte
	Attempts    int
	NextRetryAt time.Time
	LastError   string
}

// Config holds dispatcher configuration.
type Config struct {
	URL     string       // Endpoint receiving the events
	Secret  string       // HMAC key for X-Webhook-Signature
	Workers int          // Number of concurrent delivery workers
	Client  *http.Client // Optional; defaults to a client with RequestTimeout
}

// DefaultConfig returns default dispatcher configuration.
func DefaultConfig() Config {
	return Config{
		Workers: 2,
	}
}

// NewDispatcher creates a new webhook dispatcher.
func NewDispatcher(logger *slog.Logger, cfg Config) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if logger == nil {
		logger = slog.Default()
	}
	client := cfg.Client
	if client == nil {
		client = httpClient
	}

	return &Dispatcher{
		url:     cfg.URL,
		secret:  cfg.Secret,
		client:  client,
		logger:  logger,
		queue:   make(chan *Delivery, 100),
		workers: cfg.Workers,
		done:    make(chan struct{}),
		pending: make(map[string]*Delivery),
		now:     time.Now,
	}
}

// Start starts the dispatcher workers.
func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return
	}
	d.running = true
	d.mu.Unlock()

	d.logger.Info("starting webhook dispatcher", "workers", d.workers)

	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker(ctx, i)
	}
}

// Stop stops the dispatcher and waits for workers to finish.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return
	}
	d.running = false
	d.mu.Unlock()

	d.logger.Info("stopping webhook dispatcher")
	close(d.done)
	d.wg.Wait()
	d.logger.Info("webhook dispatcher stopped")
}

func (d *Dispatcher) worker(ctx context.Context, id int) {
	defer d.wg.Done()
	d.logger.Debug("webhook worker started", "worker_id", id)

	for {
		select {
		case <-d.done:
			return
		case <-ctx.Done():
			return
		case delivery := <-d.queue:
			d.processDelivery(ctx, delivery)
		}
	}
}

// Dispatch serialises the event and queues it for delivery.
func (d *Dispatcher) Dispatch(_ context.Context, event *Event) error {
	d.mu.RLock()
	running := d.running
	d.mu.RUnlock()

	if !running {
		d.logger.Warn("dispatcher not running, cannot dispatch event", "event_type", event.Type)
		return ErrNotRunning
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	delivery := &Delivery{
		ID:      uuid.NewString(),
		Event:   event.Type,
		Payload: payload,
	}

	select {
	case d.queue <- delivery:
		d.logger.Debug("delivery queued", "delivery_id", delivery.ID, "event_type", event.Type)
	default:
		d.logger.Warn("delivery queue full, delivery will be retried later", "delivery_id", delivery.ID)
		delivery.NextRetryAt = d.now()
		d.park(delivery)
	}
	return nil
}

// DispatchEvent is a convenience method to dispatch an event with the given type and data.
func (d *Dispatcher) DispatchEvent(ctx context.Context, eventType string, data any) error {
	return d.Dispatch(ctx, NewEvent(eventType, data))
}

// RetryDue re-queues parked deliveries whose retry time has passed and
// returns how many were queued.
func (d *Dispatcher) RetryDue(_ context.Context) int {
	now := d.now()

	d.pendingMu.Lock()
	defer d.pendingMu.Unlock()

	queued := 0
	for id, delivery := range d.pending {
		if delivery.NextRetryAt.After(now) {
			continue
		}
		select {
		case d.queue <- delivery:
			delete(d.pending, id)
			queued++
		default:
			return queued
		}
	}
	return queued
}

// Pending returns the number of deliveries waiting for a retry.
func (d *Dispatcher) Pending() int {
	d.pendingMu.Lock()
	defer d.pendingMu.Unlock()
	return len(d.pending)
}

func (d *Dispatcher) park(delivery *Delivery) {
	d.pendingMu.Lock()
	d.pending[delivery.ID] = delivery
	d.pendingMu.Unlock()
}

// GenerateSignature generates an HMAC-SHA256 signature for the payload.
func GenerateSignature(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature verifies an HMAC-SHA256 signature.
func VerifySignature(payload []byte, signature, secret string) bool {
	expectedSig := GenerateSignature(payload, secret)
	return hmac.Equal([]byte(signature), []byte(expectedSig))
}
