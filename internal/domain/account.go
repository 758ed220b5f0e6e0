package domain

import "time"

// StaffAccount is an operator login. Superusers are the recipients of
// lifecycle notifications and the only actors allowed to purge.
type StaffAccount struct {
	AccountID    int64
	StaffID      int64
	HolderName   string
	Email        string
	PasswordHash []byte
	PasswordSalt []byte
	IsSuper      bool
	LastLoginAt  *time.Time
	CreatedAt    time.Time
}

// Owner is the registry of document owners, keyed by IC number. Owner names
// on document records are snapshots taken from here at issue/edit time.
type Owner struct {
	IC       string
	FullName string
}
