// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package geoip provides IP-to-country lookup using a MaxMind GeoLite2-Country database.
package geoip

import (
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"github.com/oschwald/maxminddb-golang"

	"github.com/olegiv/folio-go/internal/util"
)

// CountryLocal is returned for private and loopback addresses.
const CountryLocal = "LOCAL"

// Lookup resolves IP addresses to ISO country codes. A Lookup without a
// database path answers only CountryLocal or "".
type Lookup struct {
	mu        sync.RWMutex
	db        *maxminddb.Reader
	dbPath    string
	dbModTime time.Time
}

// geoRecord matches the GeoLite2-Country database structure.
type geoRecord struct {
	Country struct {
		ISOCode string `maxminddb:"iso_code"`
	} `maxminddb:"country"`
}

// Open loads the database at dbPath. An empty path disables lookups.
func Open(dbPath string) (*Lookup, error) {
	g := &Lookup{dbPath: dbPath}
	if dbPath == "" {
		return g, nil
	}
	if err := g.load(); err != nil {
		return g, err
	}
	return g, nil
}

// load opens or reopens the database when its file changed.
// Caller must hold g.mu for writing or own g exclusively.
func (g *Lookup) load() error {
	info, err := os.Stat(g.dbPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("GeoIP database not found: %s", g.dbPath)
		}
		return fmt.Errorf("GeoIP database stat error: %w", err)
	}
	if g.db != nil && info.ModTime().Equal(g.dbModTime) {
		return nil
	}

	db, err := maxminddb.Open(g.dbPath)
	if err != nil {
		return fmt.Errorf("failed to open GeoIP database: %w", err)
	}
	if g.db != nil {
		_ = g.db.Close()
	}
	g.db = db
	g.dbModTime = info.ModTime()
	return nil
}

// Reload reopens the database if the file was replaced. The scheduler
// calls it daily so a refreshed GeoLite2 file is picked up without restart.
func (g *Lookup) Reload() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.dbPath == "" {
		return nil
	}
	return g.load()
}

// Country returns the 2-letter ISO country code for ip, CountryLocal for
// private addresses, or "" when unknown.
func (g *Lookup) Country(ip string) string {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return ""
	}
	if util.IsPrivateIP(parsed) {
		return CountryLocal
	}

	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.db == nil {
		return ""
	}

	var record geoRecord
	if err := g.db.Lookup(parsed, &record); err != nil {
		return ""
	}
	return record.Country.ISOCode
}

// Enabled reports whether a database is loaded.
func (g *Lookup) Enabled() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.db != nil
}

// Close closes the database.
func (g *Lookup) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.db == nil {
		return nil
	}
	err := g.db.Close()
	g.db = nil
	return err
}
