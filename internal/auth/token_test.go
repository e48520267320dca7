// ABOUTME: Unit tests for JWT token verification and generation
// ABOUTME: Tests valid tokens, invalid tokens, and expired tokens

package auth

import (
	"errors"
	"strings"
	"testing"
	"time"
)

// testSecret is a 32-byte secret that meets MinSecretLength requirement.
var testSecret = []byte("token-test-secret-32-bytes-long!")

func TestNewJWTVerifier_ShortSecret(t *testing.T) {
	_, err := NewJWTVerifier([]byte("too-short"))
	if !errors.Is(err, ErrSecretTooShort) {
		t.Errorf("NewJWTVerifier() error = %v, want ErrSecretTooShort", err)
	}
}

func TestJWTVerifier_ValidToken(t *testing.T) {
	verifier, err := NewJWTVerifier(testSecret)
	if err != nil {
		t.Fatalf("NewJWTVerifier() error = %v", err)
	}

	subject := "user@example.com"
	token, err := verifier.Generate(subject, time.Hour)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if !verifier.Validate(token) {
		t.Error("Validate() = false, want true")
	}

	gotSubject, err := verifier.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if gotSubject != subject {
		t.Errorf("Verify() = %q, want %q", gotSubject, subject)
	}
}

func TestJWTVerifier_InvalidToken(t *testing.T) {
	verifier, err := NewJWTVerifier(testSecret)
	if err != nil {
		t.Fatalf("NewJWTVerifier() error = %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{
			name:  "empty token",
			token: "",
		},
		{
			name:  "garbage token",
			token: "not-a-jwt-token",
		},
		{
			name:  "malformed JWT",
			token: "header.payload.signature",
		},
		{
			name: "wrong secret",
			token: func() string {
				otherVerifier, _ := NewJWTVerifier([]byte("a-completely-different-32b-secret"))
				token, _ := otherVerifier.Generate("user@example.com", time.Hour)
				return token
			}(),
		},
		{
			name: "tampered payload",
			token: func() string {
				v, _ := NewJWTVerifier(testSecret)
				token, _ := v.Generate("user@example.com", time.Hour)
				parts := strings.Split(token, ".")
				parts[1] = "eyJzdWIiOiJvdGhlckBleGFtcGxlLmNvbSJ9"
				return strings.Join(parts, ".")
			}(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if verifier.Validate(tt.token) {
				t.Error("Validate() = true, want false")
			}
			if _, err := verifier.Verify(tt.token); err == nil {
				t.Error("Verify() should have returned an error")
			}
		})
	}
}

func TestJWTVerifier_ExpiredToken(t *testing.T) {
	verifier, err := NewJWTVerifier(testSecret)
	if err != nil {
		t.Fatalf("NewJWTVerifier() error = %v", err)
	}

	// Generate a token that expired 1 hour ago
	token, err := verifier.Generate("user@example.com", -time.Hour)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if verifier.Validate(token) {
		t.Error("Validate() = true for expired token, want false")
	}

	_, err = verifier.Verify(token)
	if !errors.Is(err, ErrExpiredToken) {
		t.Errorf("Verify() error = %v, want ErrExpiredToken", err)
	}
}

func TestJWTVerifier_MissingSubject(t *testing.T) {
	verifier, err := NewJWTVerifier(testSecret)
	if err != nil {
		t.Fatalf("NewJWTVerifier() error = %v", err)
	}

	token, err := verifier.Generate("", time.Hour)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	_, err = verifier.Verify(token)
	if !errors.Is(err, ErrMissingClaim) {
		t.Errorf("Verify() error = %v, want ErrMissingClaim", err)
	}
}

func TestJWTVerifier_ValidateNeverPanics(t *testing.T) {
	verifier, err := NewJWTVerifier(testSecret)
	if err != nil {
		t.Fatalf("NewJWTVerifier() error = %v", err)
	}

	inputs := []string{
		"",
		".",
		"..",
		"...",
		"\x00\x01\x02",
		strings.Repeat("a", 1<<16),
	}

	for _, input := range inputs {
		if verifier.Validate(input) {
			t.Errorf("Validate(%q) = true, want false", input)
		}
	}
}

func TestJWTVerifier_DifferentSubjects(t *testing.T) {
	verifier, err := NewJWTVerifier(testSecret)
	if err != nil {
		t.Fatalf("NewJWTVerifier() error = %v", err)
	}

	subjects := []string{"a@b.com", "user@example.com", "admin@studio.com"}

	for _, subject := range subjects {
		token, err := verifier.Generate(subject, time.Hour)
		if err != nil {
			t.Fatalf("Generate(%q) error = %v", subject, err)
		}

		gotSubject, err := verifier.Verify(token)
		if err != nil {
			t.Fatalf("Verify() error = %v", err)
		}
		if gotSubject != subject {
			t.Errorf("Verify() = %q, want %q", gotSubject, subject)
		}
	}
}
