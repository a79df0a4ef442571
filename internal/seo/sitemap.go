// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package seo builds the crawler-facing documents: sitemap.xml,
// robots.txt and security.txt.
package seo

import (
	"encoding/xml"
	"strings"
	"time"
)

// XMLNamespace is the sitemap XML namespace.
const XMLNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

// ChangeFreq represents the change frequency of a URL.
type ChangeFreq string

// Valid change frequency values.
const (
	ChangeFreqDaily   ChangeFreq = "daily"
	ChangeFreqWeekly  ChangeFreq = "weekly"
	ChangeFreqMonthly ChangeFreq = "monthly"
)

// SitemapURL represents a single URL entry in the sitemap.
type SitemapURL struct {
	Loc        string     `xml:"loc"`
	LastMod    string     `xml:"lastmod,omitempty"`
	ChangeFreq ChangeFreq `xml:"changefreq,omitempty"`
	Priority   string     `xml:"priority,omitempty"`
}

// Sitemap represents the complete sitemap document.
type Sitemap struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []SitemapURL `xml:"url"`
}

// SitemapPost is a published blog post listed in the sitemap.
type SitemapPost struct {
	Slug      string
	UpdatedAt time.Time
}

// SitemapBuilder builds sitemap XML for the portfolio.
type SitemapBuilder struct {
	siteURL string
	urls    []SitemapURL
}

// NewSitemapBuilder creates a new sitemap builder.
func NewSitemapBuilder(siteURL string) *SitemapBuilder {
	return &SitemapBuilder{
		siteURL: strings.TrimSuffix(siteURL, "/"),
		urls:    make([]SitemapURL, 0),
	}
}

// AddHomepage adds the homepage to the sitemap.
func (b *SitemapBuilder) AddHomepage() {
	b.urls = append(b.urls, SitemapURL{
		Loc:        b.siteURL + "/",
		ChangeFreq: ChangeFreqWeekly,
		Priority:   "1.0",
	})
}

// AddSection adds a top-level listing such as /projects or /blog.
func (b *SitemapBuilder) AddSection(path string, lastMod time.Time) {
	url := SitemapURL{
		Loc:        b.siteURL + "/" + strings.TrimPrefix(path, "/"),
		ChangeFreq: ChangeFreqWeekly,
		Priority:   "0.8",
	}
	if !lastMod.IsZero() {
		url.LastMod = lastMod.UTC().Format(time.RFC3339)
	}
	b.urls = append(b.urls, url)
}

// AddPost adds a blog post at /blog/{slug}.
func (b *SitemapBuilder) AddPost(post SitemapPost) {
	url := SitemapURL{
		Loc:        b.siteURL + "/blog/" + post.Slug,
		ChangeFreq: ChangeFreqMonthly,
		Priority:   "0.6",
	}
	if !post.UpdatedAt.IsZero() {
		url.LastMod = post.UpdatedAt.UTC().Format(time.RFC3339)
	}
	b.urls = append(b.urls, url)
}

// AddPosts adds multiple posts to the sitemap.
func (b *SitemapBuilder) AddPosts(posts []SitemapPost) {
	for _, p := range posts {
		b.AddPost(p)
	}
}

// Build generates the sitemap XML.
func (b *SitemapBuilder) Build() ([]byte, error) {
	sitemap := Sitemap{
		XMLNS: XMLNamespace,
		URLs:  b.urls,
	}

	output := []byte(xml.Header)
	xmlBytes, err := xml.MarshalIndent(sitemap, "", "  ")
	if err != nil {
		return nil, err
	}

	return append(output, xmlBytes...), nil
}

// GenerateSitemap lists the homepage, the project and blog sections, and
// every post. The blog section's lastmod is the newest post update.
func GenerateSitemap(siteURL string, posts []SitemapPost) ([]byte, error) {
	var newest time.Time
	for _, p := range posts {
		if p.UpdatedAt.After(newest) {
			newest = p.UpdatedAt
		}
	}

	builder := NewSitemapBuilder(siteURL)
	builder.AddHomepage()
	builder.AddSection("/projects", time.Time{})
	builder.AddSection("/blog", newest)
	builder.AddPosts(posts)
	return builder.Build()
}
