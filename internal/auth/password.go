// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package auth verifies operator credentials and issues the credential
// artifact (signed token cookie or server session) that admin routes check.
package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// Argon2id parameters for new hashes (OWASP second choice: m=19456, t=2, p=1).
const (
	Argon2Time    = 2
	Argon2Memory  = 19 * 1024 // KiB
	Argon2Threads = 1
	Argon2KeyLen  = 32
	Argon2SaltLen = 16
)

var b64 = base64.RawStdEncoding

// argonHash is a decoded PHC string: $argon2id$v=19$m=..,t=..,p=..$salt$key
type argonHash struct {
	memory  uint32
	time    uint32
	threads uint8
	salt    []byte
	key     []byte
}

func (h argonHash) String() string {
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, h.memory, h.time, h.threads, b64.EncodeToString(h.salt), b64.EncodeToString(h.key))
}

func (h argonHash) current() bool {
	return h.memory == Argon2Memory && h.time == Argon2Time && h.threads == Argon2Threads
}

func (h argonHash) matches(password string) bool {
	key := argon2.IDKey([]byte(password), h.salt, h.time, h.memory, h.threads, uint32(len(h.key)))
	return subtle.ConstantTimeCompare(key, h.key) == 1
}

func parseArgon2(encoded string) (argonHash, error) {
	var h argonHash

	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" {
		return h, errors.New("invalid hash format")
	}
	if parts[1] != "argon2id" {
		return h, fmt.Errorf("unsupported hash type: %s", parts[1])
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return h, fmt.Errorf("parsing version: %w", err)
	}
	if version != argon2.Version {
		return h, fmt.Errorf("unsupported argon2 version %d", version)
	}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &h.memory, &h.time, &h.threads); err != nil {
		return h, fmt.Errorf("parsing parameters: %w", err)
	}

	var err error
	if h.salt, err = b64.DecodeString(parts[4]); err != nil {
		return h, fmt.Errorf("decoding salt: %w", err)
	}
	if h.key, err = b64.DecodeString(parts[5]); err != nil {
		return h, fmt.Errorf("decoding hash: %w", err)
	}
	if len(h.key) == 0 {
		return h, errors.New("empty hash")
	}
	return h, nil
}

func isBcrypt(hash string) bool {
	return strings.HasPrefix(hash, "$2a$") || strings.HasPrefix(hash, "$2b$") || strings.HasPrefix(hash, "$2y$")
}

// HashPassword returns an Argon2id PHC string for password with a random salt.
func HashPassword(password string) (string, error) {
	salt := make([]byte, Argon2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}

	h := argonHash{
		memory:  Argon2Memory,
		time:    Argon2Time,
		threads: Argon2Threads,
		salt:    salt,
	}
	h.key = argon2.IDKey([]byte(password), salt, h.time, h.memory, h.threads, Argon2KeyLen)
	return h.String(), nil
}

// CheckPassword reports whether password matches encodedHash. Argon2id hashes
// with any parameters verify, as do bcrypt hashes from older deployments.
// An error means the stored hash itself is unreadable.
func CheckPassword(password, encodedHash string) (bool, error) {
	if isBcrypt(encodedHash) {
		err := bcrypt.CompareHashAndPassword([]byte(encodedHash), []byte(password))
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		return err == nil, err
	}

	h, err := parseArgon2(encodedHash)
	if err != nil {
		return false, err
	}
	return h.matches(password), nil
}

// NeedsRehash reports whether encodedHash is not an Argon2id hash with the
// current parameters.
func NeedsRehash(encodedHash string) bool {
	h, err := parseArgon2(encodedHash)
	return err != nil || !h.current()
}
