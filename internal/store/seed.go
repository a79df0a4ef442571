// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/olegiv/folio-go/internal/model"
)

// SeedOptions controls initial provisioning.
type SeedOptions struct {
	AdminUsername     string
	AdminPasswordHash string // already hashed; empty skips the admin
	SampleContent     bool   // add sample blog posts to an empty blog table
}

// Seed provisions the admin user and sample content. It is idempotent.
func Seed(ctx context.Context, st Store, opts SeedOptions) error {
	if opts.AdminUsername != "" && opts.AdminPasswordHash != "" {
		if err := seedAdmin(ctx, st, opts.AdminUsername, opts.AdminPasswordHash); err != nil {
			return err
		}
	}

	if !opts.SampleContent {
		return nil
	}

	blogs, err := st.ListBlogs(ctx, BlogFilter{})
	if err != nil {
		return fmt.Errorf("checking blogs: %w", err)
	}
	if len(blogs) > 0 {
		slog.Debug("blogs already present, skipping sample content", "count", len(blogs))
		return nil
	}

	now := time.Now().UTC()
	for _, b := range sampleBlogs(now) {
		if _, err := st.CreateBlog(ctx, b); err != nil {
			return fmt.Errorf("creating sample blog %q: %w", b.Slug, err)
		}
	}
	slog.Info("seeded sample blog posts", "count", 2)

	return nil
}

func seedAdmin(ctx context.Context, st Store, username, passwordHash string) error {
	_, err := st.GetUserByUsername(ctx, username)
	if err == nil {
		slog.Info("admin user already exists, skipping seed", "username", username)
		return nil
	}
	if !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("checking for admin user: %w", err)
	}

	user, err := st.CreateUser(ctx, model.NewUser{
		Username:     username,
		PasswordHash: passwordHash,
		IsAdmin:      true,
	})
	if err != nil {
		return fmt.Errorf("creating admin user: %w", err)
	}

	slog.Info("created admin user", "id", user.ID, "username", user.Username)
	return nil
}

func sampleBlogs(now time.Time) []model.NewBlog {
	return []model.NewBlog{
		{
			Title: "Getting Started with Data Analysis in Python",
			Slug:  "getting-started-with-data-analysis-python",
			Content: "Python is the usual first stop for data analysis. This post walks through the libraries " +
				"you will reach for on day one.\n\n" +
				"1. **NumPy** for numerical arrays\n" +
				"2. **Pandas** for tabular data\n" +
				"3. **Matplotlib** and **Seaborn** for charts\n\n" +
				"```python\nimport pandas as pd\n\ndf = pd.read_csv('data.csv')\nprint(df.head())\nprint(df.describe())\n" +
				"print(df.isnull().sum())\n```\n\n" +
				"Those three calls show the shape of the data, summary statistics and missing values. " +
				"Later posts cover cleaning, visualisation and modelling.",
			Excerpt: "The essentials of data analysis with Python: NumPy, Pandas, Matplotlib and Seaborn " +
				"with a practical first example.",
			Tags:       "Python,Data Analysis,Pandas,Beginner",
			CoverImage: "https://images.unsplash.com/photo-1507842217343-583bb7270b66?q=80&w=2400&auto=format&fit=crop",
			Published:  true,
			CreatedAt:  now.Add(-7 * 24 * time.Hour),
		},
		{
			Title: "Web Scraping Techniques for Data Collection",
			Slug:  "web-scraping-techniques-data-collection",
			Content: "Scraping fills the gap when a site has no API. Do it politely.\n\n" +
				"## Guidelines\n\n" +
				"1. Read robots.txt and the terms of service\n" +
				"2. Keep request rates low\n" +
				"3. Send an honest User-Agent\n" +
				"4. Cache what you fetch\n\n" +
				"## Tools\n\n" +
				"### BeautifulSoup\n\n```python\nimport requests\nfrom bs4 import BeautifulSoup\n\n" +
				"soup = BeautifulSoup(requests.get('https://example.com').text, 'html.parser')\n" +
				"for link in soup.find_all('a'):\n    print(link.get('href'))\n```\n\n" +
				"### Scrapy\n\nA full crawling framework with pipelines for processing and storage.\n\n" +
				"### Selenium\n\nBrowser automation for pages that render with JavaScript.",
			Excerpt: "Ethical web scraping techniques and tools for data collection with BeautifulSoup, " +
				"Scrapy and Selenium.",
			Tags:       "Web Scraping,Python,Data Collection,BeautifulSoup",
			CoverImage: "https://images.unsplash.com/photo-1558494949-ef010cbdcc31?q=80&w=2400&auto=format&fit=crop",
			Published:  true,
			CreatedAt:  now.Add(-3 * 24 * time.Hour),
		},
	}
}
