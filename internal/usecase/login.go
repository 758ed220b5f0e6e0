package usecase

import (
	"context"
	"errors"
	"time"

	"docseal/internal/domain"
)

// PasswordVerifier checks a candidate password against stored material.
type PasswordVerifier func(password, salt, expected []byte) bool

// Login authenticates a staff account by email and password. Unknown email
// and wrong password are indistinguishable to the caller.
type Login struct {
	Accounts AccountRepository
	Verify   PasswordVerifier
	Now      func() time.Time
}

func (uc *Login) Execute(ctx context.Context, email, password string) (domain.StaffAccount, error) {
	if email == "" || password == "" {
		return domain.StaffAccount{}, domain.ErrUnauthorized
	}
	account, err := uc.Accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.StaffAccount{}, domain.ErrUnauthorized
		}
		return domain.StaffAccount{}, err
	}
	if !uc.Verify([]byte(password), account.PasswordSalt, account.PasswordHash) {
		return domain.StaffAccount{}, domain.ErrUnauthorized
	}
	now := uc.now()
	if err := uc.Accounts.TouchLastLogin(ctx, account.AccountID, now); err != nil {
		return domain.StaffAccount{}, err
	}
	account.LastLoginAt = &now
	return account, nil
}

func (uc *Login) now() time.Time {
	if uc.Now != nil {
		return uc.Now()
	}
	return time.Now().UTC()
}
