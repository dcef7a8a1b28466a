package auth

import (
	"errors"
	"strings"
	"testing"
	"time"
)

const testSecret = "unit-test-secret"

func TestIssueAndValidate(t *testing.T) {
	ts := NewTokenService(testSecret)

	token, err := ts.Issue(42, "alice@example.com", "user")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if strings.Count(token, ".") != 2 {
		t.Fatalf("Issue() token does not look like a JWT: %q", token)
	}

	claims, err := ts.Validate(token)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("UserID = %d, want 42", claims.UserID)
	}
	if claims.Email != "alice@example.com" {
		t.Errorf("Email = %q, want alice@example.com", claims.Email)
	}
	if claims.Role != "user" {
		t.Errorf("Role = %q, want user", claims.Role)
	}
	if claims.Subject != "42" {
		t.Errorf("Subject = %q, want 42", claims.Subject)
	}
}

func TestValidateExpired(t *testing.T) {
	ts := NewTokenServiceWithTTL(testSecret, -time.Minute)

	token, err := ts.Issue(7, "bob@example.com", "user")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	_, err = ts.Validate(token)
	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("Validate() error = %v, want ErrTokenExpired", err)
	}
}

func TestValidateWrongSecret(t *testing.T) {
	token, err := NewTokenService(testSecret).Issue(7, "bob@example.com", "user")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	_, err = NewTokenService("a-different-secret").Validate(token)
	if !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("Validate() error = %v, want ErrTokenInvalid", err)
	}
}

func TestValidateTamperedToken(t *testing.T) {
	ts := NewTokenService(testSecret)

	token, err := ts.Issue(7, "bob@example.com", "user")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	// Flip a character in the signature segment.
	mangled := token[:len(token)-2] + "xx"
	if mangled == token {
		mangled = token[:len(token)-2] + "yy"
	}

	if _, err := ts.Validate(mangled); err == nil {
		t.Fatal("Validate() accepted a tampered token")
	}
}

func TestValidateGarbage(t *testing.T) {
	ts := NewTokenService(testSecret)

	for _, input := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := ts.Validate(input); err == nil {
			t.Errorf("Validate(%q) accepted garbage input", input)
		}
	}
}
