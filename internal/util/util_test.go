// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"context"
	"net"
	"path/filepath"
	"strings"
	"testing"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Hello World", "hello-world"},
		{"  Building a Portfolio with Go!  ", "building-a-portfolio-with-go"},
		{"Café au lait", "cafe-au-lait"},
		{"Привет мир", "privet-mir"},
		{"C++ & Rust: a comparison", "c-rust-a-comparison"},
		{"multiple---hyphens", "multiple-hyphens"},
		{"!!!", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Slugify(tt.input); got != tt.want {
				t.Errorf("Slugify(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSlugify_Truncates(t *testing.T) {
	got := Slugify(strings.Repeat("word ", 40))
	if len(got) > MaxSlugLength {
		t.Errorf("len = %d, want <= %d", len(got), MaxSlugLength)
	}
	if strings.HasSuffix(got, "-") {
		t.Errorf("slug ends with hyphen: %q", got)
	}
}

func TestIsValidSlug(t *testing.T) {
	tests := []struct {
		slug string
		want bool
	}{
		{"hello-world", true},
		{"post-2026", true},
		{"a", true},
		{"", false},
		{"Hello", false},
		{"-leading", false},
		{"trailing-", false},
		{"double--hyphen", false},
		{"with space", false},
		{"under_score", false},
	}

	for _, tt := range tests {
		t.Run(tt.slug, func(t *testing.T) {
			if got := IsValidSlug(tt.slug); got != tt.want {
				t.Errorf("IsValidSlug(%q) = %v, want %v", tt.slug, got, tt.want)
			}
		})
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"photo.jpg", "photo.jpg", false},
		{"../../etc/passwd", "passwd", false},
		{"dir/cover.png", "cover.png", false},
		{"..", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := SanitizeFilename(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSafeJoinPath(t *testing.T) {
	base := t.TempDir()

	got, err := SafeJoinPath(base, "2026", "cover.jpg")
	if err != nil {
		t.Fatalf("SafeJoinPath() error: %v", err)
	}
	if got != filepath.Join(base, "2026", "cover.jpg") {
		t.Errorf("SafeJoinPath() = %q", got)
	}

	if _, err := SafeJoinPath(base, "..", "escape.txt"); err == nil {
		t.Error("SafeJoinPath() allowed traversal")
	}
}

func TestIsPrivateIP(t *testing.T) {
	tests := []struct {
		ip   string
		want bool
	}{
		{"10.1.2.3", true},
		{"172.16.0.1", true},
		{"192.168.1.1", true},
		{"127.0.0.1", true},
		{"::1", true},
		{"fd00::1", true},
		{"8.8.8.8", false},
		{"2001:4860:4860::8888", false},
	}

	for _, tt := range tests {
		t.Run(tt.ip, func(t *testing.T) {
			if got := IsPrivateIP(net.ParseIP(tt.ip)); got != tt.want {
				t.Errorf("IsPrivateIP(%s) = %v, want %v", tt.ip, got, tt.want)
			}
		})
	}

	if !IsPrivateIP(nil) {
		t.Error("IsPrivateIP(nil) = false")
	}
	if IsPublicAddress("not-an-ip") {
		t.Error("IsPublicAddress(garbage) = true")
	}
}

func TestValidateWebhookURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"public ip", "https://8.8.8.8/hook", false},
		{"ftp scheme", "ftp://8.8.8.8/hook", true},
		{"no host", "https:///hook", true},
		{"localhost", "http://localhost:9000/hook", true},
		{"sub localhost", "http://api.localhost/hook", true},
		{"private ip", "http://192.168.1.10/hook", true},
		{"too long", "https://8.8.8.8/" + strings.Repeat("a", MaxWebhookURLLength), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateWebhookURL(context.Background(), tt.url)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateWebhookURL(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			}
		})
	}
}
