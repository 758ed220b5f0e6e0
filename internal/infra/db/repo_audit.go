package db

import (
	"context"

	"gorm.io/gorm"

	"docseal/internal/domain"
)

// DeletionAuditRepository is append-only; rows are never updated or removed.
type DeletionAuditRepository struct {
	db *gorm.DB
}

func NewDeletionAuditRepository(db *gorm.DB) *DeletionAuditRepository {
	return &DeletionAuditRepository{db: db}
}

func (r *DeletionAuditRepository) Append(ctx context.Context, entry domain.DeletionAudit) error {
	if r.db == nil {
		return errDBUnavailable
	}
	model := DeletionAuditModel{
		DocOwnerIC:   entry.OwnerIC,
		DocumentType: entry.DocumentType,
		IssueDate:    entry.IssueDate,
		DeletedBy:    entry.DeletedBy,
		DeletedAt:    entry.DeletedAt,
	}
	return r.db.WithContext(ctx).Create(&model).Error
}

func (r *DeletionAuditRepository) List(ctx context.Context, limit int) ([]domain.DeletionAudit, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	query := r.db.WithContext(ctx).Order("deleted_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var models []DeletionAuditModel
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]domain.DeletionAudit, 0, len(models))
	for _, model := range models {
		out = append(out, domain.DeletionAudit{
			ID:           model.ID,
			OwnerIC:      model.DocOwnerIC,
			DocumentType: model.DocumentType,
			IssueDate:    model.IssueDate,
			DeletedBy:    model.DeletedBy,
			DeletedAt:    model.DeletedAt,
		})
	}
	return out, nil
}
