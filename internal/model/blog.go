// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"strings"
	"time"
)

// Blog is a blog post. Only published posts are publicly visible.
type Blog struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	Slug       string    `json:"slug"`
	Content    string    `json:"content"`
	Excerpt    string    `json:"excerpt"`
	Tags       string    `json:"tags,omitempty"` // comma-separated
	CoverImage string    `json:"coverImage,omitempty"`
	Published  bool      `json:"published"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// TagList splits the comma-separated tags, dropping blanks.
func (b *Blog) TagList() []string {
	return SplitTags(b.Tags)
}

// NewBlog holds the fields for creating a blog post.
type NewBlog struct {
	Title      string
	Slug       string
	Content    string
	Excerpt    string
	Tags       string
	CoverImage string
	Published  bool
	CreatedAt  time.Time // zero means now
}

// BlogPatch is a partial update. Nil fields are left unchanged.
type BlogPatch struct {
	Title      *string
	Slug       *string
	Content    *string
	Excerpt    *string
	Tags       *string
	CoverImage *string
	Published  *bool
}

// Apply copies the set fields of p onto b.
func (p BlogPatch) Apply(b *Blog) {
	setIf(&b.Title, p.Title)
	setIf(&b.Slug, p.Slug)
	setIf(&b.Content, p.Content)
	setIf(&b.Excerpt, p.Excerpt)
	setIf(&b.Tags, p.Tags)
	setIf(&b.CoverImage, p.CoverImage)
	setIf(&b.Published, p.Published)
}

// SplitTags splits a comma-separated tag string.
func SplitTags(s string) []string {
	var tags []string
	for tag := range strings.SplitSeq(s, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
