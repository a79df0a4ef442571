// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package util provides slug generation, upload path checks and IP
// classification helpers.
package util

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxSlugLength bounds derived slugs.
const MaxSlugLength = 80

var (
	nonSlugChars    = regexp.MustCompile(`[^a-z0-9-]+`)
	multipleHyphens = regexp.MustCompile(`-{2,}`)
)

// Slugify converts a title to a URL-safe slug. Accents are stripped and
// non-Latin scripts are transliterated, so "Привет, Café" becomes
// "privet-cafe".
func Slugify(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	result = strings.ToLower(unidecode.Unidecode(result))

	result = strings.Join(strings.Fields(result), "-")
	result = nonSlugChars.ReplaceAllString(result, "-")
	result = multipleHyphens.ReplaceAllString(result, "-")
	result = strings.Trim(result, "-")

	if len(result) > MaxSlugLength {
		result = strings.TrimRight(result[:MaxSlugLength], "-")
	}
	return result
}

// IsValidSlug reports whether s consists of lowercase ASCII letters and
// digits separated by single hyphens.
func IsValidSlug(s string) bool {
	if s == "" || len(s) > MaxSlugLength*2 {
		return false
	}
	for _, r := range s {
		if !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-') {
			return false
		}
	}
	return s[0] != '-' && s[len(s)-1] != '-' && !strings.Contains(s, "--")
}
