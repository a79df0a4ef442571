// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("07928abid")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$v=19$m=19456,t=2,p=1$") {
		t.Fatalf("unexpected hash format: %s", hash)
	}

	other, err := HashPassword("07928abid")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if hash == other {
		t.Fatal("two hashes of the same password are identical; salt is not random")
	}
}

func TestCheckPassword_Correct(t *testing.T) {
	hash, err := HashPassword("changeme")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}

	valid, err := CheckPassword("changeme", hash)
	if err != nil {
		t.Fatalf("CheckPassword error: %v", err)
	}
	if !valid {
		t.Fatal("Correct password was rejected")
	}
}

func TestCheckPassword_Wrong(t *testing.T) {
	hash, err := HashPassword("changeme")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}

	valid, err := CheckPassword("wrongpassword", hash)
	if err != nil {
		t.Fatalf("CheckPassword error: %v", err)
	}
	if valid {
		t.Fatal("Wrong password was accepted")
	}
}

func TestCheckPassword_OlderArgon2Parameters(t *testing.T) {
	dbHash := "$argon2id$v=19$m=65536,t=1,p=4$mucMvOaS6lZ2LWNS1OEFKw$UYEWv8cvCOO6l2zGeqv3JPVe1nyy0x9GXBfYEuDM544"

	valid, err := CheckPassword("changeme", dbHash)
	if err != nil {
		t.Fatalf("CheckPassword error: %v", err)
	}
	if !valid {
		t.Fatal("hash with older parameters rejected correct password")
	}
	if !NeedsRehash(dbHash) {
		t.Error("NeedsRehash() = false for older parameters")
	}
}

func TestCheckPassword_Bcrypt(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("legacy-pass"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}

	valid, err := CheckPassword("legacy-pass", string(hash))
	if err != nil || !valid {
		t.Fatalf("CheckPassword(bcrypt) = %v, %v; want true, nil", valid, err)
	}

	valid, err = CheckPassword("nope", string(hash))
	if err != nil || valid {
		t.Fatalf("CheckPassword(bcrypt, wrong) = %v, %v; want false, nil", valid, err)
	}

	if !NeedsRehash(string(hash)) {
		t.Error("NeedsRehash() = false for bcrypt hash")
	}
}

func TestCheckPassword_Malformed(t *testing.T) {
	for _, hash := range []string{"", "plaintext", "$argon2i$v=19$m=1,t=1,p=1$a$b", "$argon2id$v=19$bad$a$b"} {
		if valid, err := CheckPassword("x", hash); valid || err == nil {
			t.Errorf("CheckPassword(%q) = %v, %v; want false with error", hash, valid, err)
		}
	}
}

func TestNeedsRehash_CurrentParameters(t *testing.T) {
	hash, err := HashPassword("changeme")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if NeedsRehash(hash) {
		t.Error("NeedsRehash() = true for a fresh hash")
	}
}

func TestParseArgon2_RoundTrip(t *testing.T) {
	hash, err := HashPassword("changeme")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}

	h, err := parseArgon2(hash)
	if err != nil {
		t.Fatalf("parseArgon2 error: %v", err)
	}
	if h.String() != hash {
		t.Errorf("String() = %q, want %q", h.String(), hash)
	}
	if len(h.salt) != Argon2SaltLen || len(h.key) != Argon2KeyLen {
		t.Errorf("salt/key lengths = %d/%d", len(h.salt), len(h.key))
	}

	if _, err := parseArgon2("$argon2id$v=16$m=1,t=1,p=1$c2FsdA$a2V5"); err == nil {
		t.Error("parseArgon2 accepted an unsupported version")
	}
}
