// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package webhook

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"
)

// Delivery configuration constants
const (
	MaxAttempts    = 5                // Maximum number of delivery attempts
	InitialBackoff = 1 * time.Minute  // Initial backoff delay
	MaxBackoff     = 24 * time.Hour   // Maximum backoff delay
	RequestTimeout = 30 * time.Second // HTTP request timeout
	MaxResponseLen = 10 * 1024        // Maximum response body kept for logging (10KB)
	UserAgent      = "oFolio/1.0"     // User-Agent header value
)

// DeliveryResult represents the result of a delivery attempt.
type DeliveryResult struct {
	Success      bool
	StatusCode   int
	ResponseBody string
	Error        error
	ShouldRetry  bool
}

var httpClient = &http.Client{
	Timeout: RequestTimeout,
	Transport: &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     90 * time.Second,
	},
}

func (d *Dispatcher) processDelivery(ctx context.Context, delivery *Delivery) {
	result := d.attemptDelivery(ctx, delivery)

	if result.Success {
		d.logger.Info("webhook delivered successfully",
			"delivery_id", delivery.ID,
			"event", delivery.Event,
			"status_code", result.StatusCode)
		return
	}

	delivery.Attempts++
	if result.Error != nil {
		delivery.LastError = result.Error.Error()
	}

	if !result.ShouldRetry || delivery.Attempts >= MaxAttempts {
		d.logger.Warn("webhook delivery dropped",
			"delivery_id", delivery.ID,
			"event", delivery.Event,
			"attempts", delivery.Attempts,
			"reason", delivery.LastError)
		return
	}

	backoff := calculateBackoff(int64(delivery.Attempts))
	delivery.NextRetryAt = d.now().Add(backoff)
	d.park(delivery)

	d.logger.Info("webhook delivery scheduled for retry",
		"delivery_id", delivery.ID,
		"attempt", delivery.Attempts,
		"next_retry_at", delivery.NextRetryAt.Format(time.RFC3339),
		"backoff", backoff.String())
}

func (d *Dispatcher) attemptDelivery(ctx context.Context, delivery *Delivery) DeliveryResult {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, bytes.NewReader(delivery.Payload))
	if err != nil {
		return DeliveryResult{
			Error:       fmt.Errorf("failed to create request: %w", err),
			ShouldRetry: false,
		}
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("X-Webhook-Event", delivery.Event)
	req.Header.Set("X-Webhook-Delivery-ID", delivery.ID)
	if d.secret != "" {
		req.Header.Set("X-Webhook-Signature", GenerateSignature(delivery.Payload, d.secret))
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return DeliveryResult{
			Error:       fmt.Errorf("request failed: %w", err),
			ShouldRetry: true,
		}
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, MaxResponseLen))

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return DeliveryResult{
			Success:      true,
			StatusCode:   resp.StatusCode,
			ResponseBody: string(body),
		}
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		// 408 and 429 are transient
		return DeliveryResult{
			StatusCode:   resp.StatusCode,
			ResponseBody: string(body),
			Error:        fmt.Errorf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
			ShouldRetry:  resp.StatusCode == http.StatusRequestTimeout || resp.StatusCode == http.StatusTooManyRequests,
		}
	default:
		return DeliveryResult{
			StatusCode:   resp.StatusCode,
			ResponseBody: string(body),
			Error:        fmt.Errorf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
			ShouldRetry:  true,
		}
	}
}

// calculateBackoff returns InitialBackoff * 2^(attempt-1), capped at MaxBackoff.
func calculateBackoff(attempt int64) time.Duration {
	if attempt <= 0 {
		attempt = 1
	}

	backoff := time.Duration(float64(InitialBackoff) * math.Pow(2, float64(attempt-1)))
	if backoff > MaxBackoff {
		backoff = MaxBackoff
	}

	return backoff
}
