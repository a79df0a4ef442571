// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "slices"

// Project is a portfolio entry. Lower Order values are listed first.
type Project struct {
	ID           int64    `json:"id"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Technologies []string `json:"technologies"`
	ImageURL     string   `json:"imageUrl,omitempty"`
	DemoURL      string   `json:"demoUrl,omitempty"`
	RepoURL      string   `json:"repoUrl,omitempty"`
	Featured     bool     `json:"featured"`
	Order        int      `json:"order"`
}

// NewProject holds the fields for creating a project.
type NewProject struct {
	Title        string
	Description  string
	Technologies []string
	ImageURL     string
	DemoURL      string
	RepoURL      string
	Featured     bool
	Order        int
}

// ProjectPatch is a partial update. Nil fields are left unchanged.
type ProjectPatch struct {
	Title        *string
	Description  *string
	Technologies *[]string
	ImageURL     *string
	DemoURL      *string
	RepoURL      *string
	Featured     *bool
	Order        *int
}

// Apply copies the set fields of p onto pr.
func (p ProjectPatch) Apply(pr *Project) {
	setIf(&pr.Title, p.Title)
	setIf(&pr.Description, p.Description)
	if p.Technologies != nil {
		pr.Technologies = slices.Clone(*p.Technologies)
	}
	setIf(&pr.ImageURL, p.ImageURL)
	setIf(&pr.DemoURL, p.DemoURL)
	setIf(&pr.RepoURL, p.RepoURL)
	setIf(&pr.Featured, p.Featured)
	setIf(&pr.Order, p.Order)
}
