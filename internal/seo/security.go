// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package seo

import (
	"strings"
	"time"
)

// SecurityTxtConfig holds configuration for security.txt generation (RFC 9116).
type SecurityTxtConfig struct {
	// Contact is required, e.g. "mailto:owner@example.com".
	Contact []string

	// Expires defaults to one year from now.
	Expires time.Time

	// Canonical is the URL this file is served from.
	Canonical string

	// PreferredLanguages, e.g. "en".
	PreferredLanguages string
}

// SecurityTxtBuilder builds security.txt content according to RFC 9116.
type SecurityTxtBuilder struct {
	config SecurityTxtConfig
	now    func() time.Time
}

// NewSecurityTxtBuilder creates a new security.txt builder.
func NewSecurityTxtBuilder(config SecurityTxtConfig) *SecurityTxtBuilder {
	return &SecurityTxtBuilder{config: config, now: time.Now}
}

// Build generates the security.txt content.
func (b *SecurityTxtBuilder) Build() string {
	var sb strings.Builder

	for _, contact := range b.config.Contact {
		if contact != "" {
			writeField(&sb, "Contact", contact)
		}
	}

	expires := b.config.Expires
	if expires.IsZero() {
		expires = b.now().AddDate(1, 0, 0)
	}
	writeField(&sb, "Expires", expires.UTC().Format(time.RFC3339))

	if b.config.PreferredLanguages != "" {
		writeField(&sb, "Preferred-Languages", b.config.PreferredLanguages)
	}
	if b.config.Canonical != "" {
		writeField(&sb, "Canonical", b.config.Canonical)
	}

	return sb.String()
}

func writeField(sb *strings.Builder, name, value string) {
	sb.WriteString(name)
	sb.WriteString(": ")
	sb.WriteString(value)
	sb.WriteString("\n")
}

// GenerateSecurityTxt renders security.txt for an email contact. An empty
// email yields "".
func GenerateSecurityTxt(siteURL, email string) string {
	if email == "" {
		return ""
	}
	cfg := SecurityTxtConfig{
		Contact:            []string{"mailto:" + email},
		PreferredLanguages: "en",
	}
	if siteURL != "" {
		cfg.Canonical = strings.TrimSuffix(siteURL, "/") + "/.well-known/security.txt"
	}
	return NewSecurityTxtBuilder(cfg).Build()
}
