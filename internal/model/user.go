// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines the portfolio entities, their create inputs and
// the partial patches accepted by admin updates.
package model

import "time"

// User is a site operator account. Only admins can log in to the dashboard.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // Never expose in JSON
	IsAdmin      bool      `json:"isAdmin"`
	CreatedAt    time.Time `json:"createdAt"`
}

// NewUser holds the fields for provisioning a user.
type NewUser struct {
	Username     string
	PasswordHash string
	IsAdmin      bool
}

// Identity is the subset of a user carried by an issued credential.
type Identity struct {
	UserID   int64  `json:"id"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"isAdmin"`
}

// Identity returns the credential identity of the user.
func (u *User) Identity() Identity {
	return Identity{UserID: u.ID, Username: u.Username, IsAdmin: u.IsAdmin}
}
