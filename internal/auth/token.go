// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/olegiv/folio-go/internal/model"
)

// TokenIssuer is the iss claim of every token.
const TokenIssuer = "folio"

// Claims is the JWT payload of an admin credential.
type Claims struct {
	UserID   int64  `json:"uid"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"admin"`
	jwt.RegisteredClaims
}

// TokenCodec signs and verifies HS256 credentials with a fixed lifetime.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenCodec creates a codec. The secret must be at least 32 bytes.
func NewTokenCodec(secret []byte, ttl time.Duration) *TokenCodec {
	return &TokenCodec{secret: secret, ttl: ttl, now: time.Now}
}

// TTL returns the lifetime of issued tokens.
func (c *TokenCodec) TTL() time.Duration { return c.ttl }

// Sign issues a token for the identity and returns it with its expiry.
func (c *TokenCodec) Sign(id model.Identity) (string, time.Time, error) {
	now := c.now()
	expires := now.Add(c.ttl)
	claims := &Claims{
		UserID:   id.UserID,
		Username: id.Username,
		IsAdmin:  id.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    TokenIssuer,
			Subject:   fmt.Sprintf("%d", id.UserID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing token: %w", err)
	}
	return signed, expires, nil
}

// Parse verifies the token and returns the identity it carries.
// Expired tokens yield ErrExpiredCredential; any other defect yields
// ErrInvalidCredential.
func (c *TokenCodec) Parse(tokenStr string) (model.Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(TokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return model.Identity{}, ErrExpiredCredential
		}
		return model.Identity{}, fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}
	if !token.Valid || claims.UserID == 0 {
		return model.Identity{}, ErrInvalidCredential
	}

	return model.Identity{UserID: claims.UserID, Username: claims.Username, IsAdmin: claims.IsAdmin}, nil
}
