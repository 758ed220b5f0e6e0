package auth

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"docseal/internal/domain"
)

func TestHashPassword_VerifyRoundTrip(t *testing.T) {
	salt, err := NewSalt()
	if err != nil {
		t.Fatalf("new salt: %v", err)
	}
	hash := HashPassword([]byte("correct horse"), salt)
	if !VerifyPassword([]byte("correct horse"), salt, hash) {
		t.Fatal("expected password to verify")
	}
	if VerifyPassword([]byte("wrong"), salt, hash) {
		t.Fatal("wrong password must not verify")
	}

	otherSalt, err := NewSalt()
	if err != nil {
		t.Fatalf("new salt: %v", err)
	}
	if bytes.Equal(salt, otherSalt) {
		t.Fatal("salts should be random")
	}
	if VerifyPassword([]byte("correct horse"), otherSalt, hash) {
		t.Fatal("hash is bound to its salt")
	}
}

func TestSessions_IssueParse(t *testing.T) {
	sessions := NewSessions([]byte("test-secret"), time.Hour)
	token, exp, err := sessions.Issue(domain.StaffAccount{AccountID: 7, IsSuper: true})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if !exp.After(time.Now()) {
		t.Fatal("expiry should be in the future")
	}

	session, err := sessions.Parse(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if session.AccountID != 7 || !session.IsSuper {
		t.Fatalf("unexpected session %+v", session)
	}
}

func TestSessions_RejectsTamperedAndForeign(t *testing.T) {
	sessions := NewSessions([]byte("test-secret"), time.Hour)
	token, _, err := sessions.Issue(domain.StaffAccount{AccountID: 7})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := sessions.Parse(token + "x"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for tampered token, got %v", err)
	}

	foreign := NewSessions([]byte("other-secret"), time.Hour)
	if _, err := foreign.Parse(token); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized under foreign key, got %v", err)
	}
}

func TestSessions_Expiry(t *testing.T) {
	sessions := NewSessions([]byte("test-secret"), time.Hour)
	issuedAt := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	sessions.now = func() time.Time { return issuedAt }
	token, _, err := sessions.Issue(domain.StaffAccount{AccountID: 7})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	sessions.now = func() time.Time { return issuedAt.Add(2 * time.Hour) }
	if _, err := sessions.Parse(token); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for expired token, got %v", err)
	}
}
