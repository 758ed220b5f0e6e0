package db

import (
	"context"
	"time"

	"gorm.io/gorm"

	"docseal/internal/domain"
)

type StaffAccountRepository struct {
	db *gorm.DB
}

func NewStaffAccountRepository(db *gorm.DB) *StaffAccountRepository {
	return &StaffAccountRepository{db: db}
}

func (r *StaffAccountRepository) Create(ctx context.Context, account domain.StaffAccount) (domain.StaffAccount, error) {
	if r.db == nil {
		return domain.StaffAccount{}, errDBUnavailable
	}
	model := accountModelFromDomain(account)
	if model.CreatedAt.IsZero() {
		model.CreatedAt = time.Now().UTC()
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return domain.StaffAccount{}, err
	}
	return accountModelToDomain(model), nil
}

func (r *StaffAccountRepository) GetByID(ctx context.Context, accountID int64) (domain.StaffAccount, error) {
	if r.db == nil {
		return domain.StaffAccount{}, errDBUnavailable
	}
	var model StaffAccountModel
	if err := r.db.WithContext(ctx).First(&model, "account_id = ?", accountID).Error; err != nil {
		return domain.StaffAccount{}, translateNotFound(err)
	}
	return accountModelToDomain(model), nil
}

func (r *StaffAccountRepository) GetByEmail(ctx context.Context, email string) (domain.StaffAccount, error) {
	if r.db == nil {
		return domain.StaffAccount{}, errDBUnavailable
	}
	var model StaffAccountModel
	if err := r.db.WithContext(ctx).First(&model, "email = ?", email).Error; err != nil {
		return domain.StaffAccount{}, translateNotFound(err)
	}
	return accountModelToDomain(model), nil
}

func (r *StaffAccountRepository) ListSuperuserIDs(ctx context.Context) ([]int64, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&StaffAccountModel{}).
		Where("is_super = true").
		Order("account_id").
		Pluck("account_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *StaffAccountRepository) TouchLastLogin(ctx context.Context, accountID int64, at time.Time) error {
	if r.db == nil {
		return errDBUnavailable
	}
	return r.db.WithContext(ctx).
		Model(&StaffAccountModel{}).
		Where("account_id = ?", accountID).
		Update("last_login_at", at.UTC()).Error
}

func accountModelFromDomain(account domain.StaffAccount) StaffAccountModel {
	return StaffAccountModel{
		AccountID:    account.AccountID,
		StaffID:      account.StaffID,
		HolderName:   account.HolderName,
		Email:        account.Email,
		PasswordHash: account.PasswordHash,
		PasswordSalt: account.PasswordSalt,
		IsSuper:      account.IsSuper,
		LastLoginAt:  account.LastLoginAt,
		CreatedAt:    account.CreatedAt,
	}
}

func accountModelToDomain(model StaffAccountModel) domain.StaffAccount {
	return domain.StaffAccount{
		AccountID:    model.AccountID,
		StaffID:      model.StaffID,
		HolderName:   model.HolderName,
		Email:        model.Email,
		PasswordHash: model.PasswordHash,
		PasswordSalt: model.PasswordSalt,
		IsSuper:      model.IsSuper,
		LastLoginAt:  model.LastLoginAt,
		CreatedAt:    model.CreatedAt,
	}
}
