// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package content renders blog markdown into sanitized HTML.
package content

import (
	"bytes"
	"fmt"
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

// DefaultExcerptLength is the rune length of derived excerpts.
const DefaultExcerptLength = 200

var (
	md = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Typographer),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	)

	// ugc allows the tags markdown produces plus heading ids.
	ugc = func() *bluemonday.Policy {
		p := bluemonday.UGCPolicy()
		p.AllowAttrs("id").OnElements("h1", "h2", "h3", "h4", "h5", "h6")
		p.RequireNoFollowOnLinks(true)
		p.AddTargetBlankToFullyQualifiedLinks(true)
		return p
	}()

	strict = bluemonday.StrictPolicy()
)

// Render converts markdown to HTML safe to embed in a page. Raw HTML in
// the source is filtered through a user-generated-content policy.
func Render(source string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return ugc.Sanitize(buf.String()), nil
}

// PlainText renders markdown and strips every tag, leaving readable text.
func PlainText(source string) string {
	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf); err != nil {
		return strings.TrimSpace(strict.Sanitize(source))
	}
	text := html.UnescapeString(strict.Sanitize(buf.String()))
	return strings.Join(strings.Fields(text), " ")
}

// Excerpt derives a summary of at most maxRunes runes from markdown,
// cutting on a word boundary and appending an ellipsis when shortened.
func Excerpt(source string, maxRunes int) string {
	if maxRunes <= 0 {
		maxRunes = DefaultExcerptLength
	}
	text := PlainText(source)
	if utf8.RuneCountInString(text) <= maxRunes {
		return text
	}

	runes := []rune(text)
	cut := string(runes[:maxRunes])
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,.;:") + "…"
}
