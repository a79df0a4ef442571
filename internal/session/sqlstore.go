// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package session

import (
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/olegiv/folio-go/internal/store"
)

// SQLStore is an scs.Store over the sessions table for PostgreSQL and MySQL.
type SQLStore struct {
	db          *sql.DB
	dialect     store.Dialect
	stopCleanup chan bool
}

// NewSQLStore creates a store and starts a goroutine deleting expired
// sessions every cleanupInterval. A zero interval disables cleanup.
func NewSQLStore(db *sql.DB, dialect store.Dialect, cleanupInterval time.Duration) *SQLStore {
	s := &SQLStore{db: db, dialect: dialect}
	if cleanupInterval > 0 {
		s.stopCleanup = make(chan bool)
		go s.startCleanup(cleanupInterval)
	}
	return s
}

func (s *SQLStore) q(pg, other string) string {
	if s.dialect == store.DialectPostgres {
		return pg
	}
	return other
}

// Find returns the data for a session token that has not expired.
func (s *SQLStore) Find(token string) ([]byte, bool, error) {
	var b []byte
	err := s.db.QueryRow(
		s.q("SELECT data FROM sessions WHERE token = $1 AND expiry > $2",
			"SELECT data FROM sessions WHERE token = ? AND expiry > ?"),
		token, time.Now().UTC(),
	).Scan(&b)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

// Commit inserts or replaces the session data.
func (s *SQLStore) Commit(token string, b []byte, expiry time.Time) error {
	_, err := s.db.Exec(
		s.q("INSERT INTO sessions (token, data, expiry) VALUES ($1, $2, $3) "+
			"ON CONFLICT (token) DO UPDATE SET data = EXCLUDED.data, expiry = EXCLUDED.expiry",
			"INSERT INTO sessions (token, data, expiry) VALUES (?, ?, ?) "+
				"ON DUPLICATE KEY UPDATE data = VALUES(data), expiry = VALUES(expiry)"),
		token, b, expiry.UTC(),
	)
	return err
}

// Delete removes the session.
func (s *SQLStore) Delete(token string) error {
	_, err := s.db.Exec(s.q("DELETE FROM sessions WHERE token = $1", "DELETE FROM sessions WHERE token = ?"), token)
	return err
}

// StopCleanup terminates the cleanup goroutine.
func (s *SQLStore) StopCleanup() {
	if s.stopCleanup != nil {
		s.stopCleanup <- true
	}
}

func (s *SQLStore) startCleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.deleteExpired(); err != nil {
				slog.Error("deleting expired sessions", "error", err)
			}
		case <-s.stopCleanup:
			return
		}
	}
}

func (s *SQLStore) deleteExpired() error {
	_, err := s.db.Exec(s.q("DELETE FROM sessions WHERE expiry < $1", "DELETE FROM sessions WHERE expiry < ?"), time.Now().UTC())
	return err
}
