package db

import (
	"context"

	"gorm.io/gorm"

	"docseal/internal/domain"
)

type OwnerRepository struct {
	db *gorm.DB
}

func NewOwnerRepository(db *gorm.DB) *OwnerRepository {
	return &OwnerRepository{db: db}
}

func (r *OwnerRepository) GetByIC(ctx context.Context, ic string) (domain.Owner, error) {
	if r.db == nil {
		return domain.Owner{}, errDBUnavailable
	}
	var model OwnerModel
	if err := r.db.WithContext(ctx).First(&model, "owner_ic_no = ?", ic).Error; err != nil {
		return domain.Owner{}, translateNotFound(err)
	}
	return domain.Owner{IC: model.IC, FullName: model.FullName}, nil
}

func (r *OwnerRepository) Upsert(ctx context.Context, owner domain.Owner) error {
	if r.db == nil {
		return errDBUnavailable
	}
	return r.db.WithContext(ctx).Save(&OwnerModel{IC: owner.IC, FullName: owner.FullName}).Error
}
