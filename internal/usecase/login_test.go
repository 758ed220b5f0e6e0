package usecase

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"docseal/internal/domain"
)

func TestLogin_Success(t *testing.T) {
	salt := []byte("0123456789abcdef")
	hash := []byte("stored-hash")
	accounts := &fakeAccountRepo{accounts: map[int64]domain.StaffAccount{
		1: {AccountID: 1, HolderName: "Alice", Email: "alice@example.test", PasswordHash: hash, PasswordSalt: salt, IsSuper: true},
	}}
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	uc := &Login{
		Accounts: accounts,
		Verify: func(password, gotSalt, expected []byte) bool {
			return string(password) == "secret" && bytes.Equal(gotSalt, salt) && bytes.Equal(expected, hash)
		},
		Now: func() time.Time { return at },
	}

	account, err := uc.Execute(context.Background(), "alice@example.test", "secret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if account.AccountID != 1 || !account.IsSuper {
		t.Fatalf("unexpected account %+v", account)
	}
	if account.LastLoginAt == nil || !account.LastLoginAt.Equal(at) {
		t.Fatal("last login not recorded")
	}
	stored, _ := accounts.GetByID(context.Background(), 1)
	if stored.LastLoginAt == nil || !stored.LastLoginAt.Equal(at) {
		t.Fatal("last login not persisted")
	}
}

func TestLogin_UnknownEmailAndWrongPasswordIndistinguishable(t *testing.T) {
	accounts := &fakeAccountRepo{accounts: map[int64]domain.StaffAccount{
		1: {AccountID: 1, Email: "alice@example.test"},
	}}
	uc := &Login{
		Accounts: accounts,
		Verify:   func(_, _, _ []byte) bool { return false },
	}

	_, unknownErr := uc.Execute(context.Background(), "nobody@example.test", "whatever")
	_, wrongErr := uc.Execute(context.Background(), "alice@example.test", "wrong")
	if !errors.Is(unknownErr, domain.ErrUnauthorized) || !errors.Is(wrongErr, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for both, got %v and %v", unknownErr, wrongErr)
	}

	if _, err := uc.Execute(context.Background(), "", ""); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for empty credentials, got %v", err)
	}
}
