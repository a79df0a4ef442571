// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"fmt"
	"net/mail"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/olegiv/folio-go/internal/model"
	"github.com/olegiv/folio-go/internal/util"
)

// Field length limits.
const (
	maxNameLength    = 100
	maxSubjectLength = 200
	maxMessageLength = 5000
	maxTitleLength   = 200
	maxShortLength   = 50
	maxURLLength     = 2048
)

// fieldErrors collects one message per invalid field.
type fieldErrors map[string]string

func (e fieldErrors) add(field, msg string) {
	if _, ok := e[field]; !ok {
		e[field] = msg
	}
}

func (e fieldErrors) required(field, value, label string) bool {
	if strings.TrimSpace(value) == "" {
		e.add(field, label+" is required")
		return false
	}
	return true
}

func (e fieldErrors) minLength(field, value string, n int, label string) {
	if utf8.RuneCountInString(strings.TrimSpace(value)) < n {
		e.add(field, fmt.Sprintf("%s must be at least %d characters", label, n))
	}
}

func (e fieldErrors) maxLength(field, value string, n int, label string) {
	if utf8.RuneCountInString(value) > n {
		e.add(field, fmt.Sprintf("%s must be at most %d characters", label, n))
	}
}

func (e fieldErrors) email(field, value string) {
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value {
		e.add(field, "Please enter a valid email address")
	}
}

// link accepts an empty value, an absolute http(s) URL or a site path
// such as an uploaded image URL.
func (e fieldErrors) link(field, value string) {
	if value == "" {
		return
	}
	if len(value) > maxURLLength {
		e.add(field, "URL is too long")
		return
	}
	if strings.HasPrefix(value, "/") && !strings.HasPrefix(value, "//") {
		return
	}
	u, err := url.Parse(value)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		e.add(field, "Must be an http or https URL")
	}
}

func (e fieldErrors) slug(field, value string) {
	if value == "" {
		e.add(field, "Slug is required")
		return
	}
	if !util.IsValidSlug(value) {
		e.add(field, "Invalid slug format (use lowercase letters, numbers, and hyphens)")
	}
}

func (e fieldErrors) level(field string, value int) {
	if value < model.MinSkillLevel || value > model.MaxSkillLevel {
		e.add(field, fmt.Sprintf("Level must be between %d and %d", model.MinSkillLevel, model.MaxSkillLevel))
	}
}
