package db

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"docseal/internal/domain"
)

type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) Create(ctx context.Context, record domain.DocumentRecord) error {
	if r.db == nil {
		return errDBUnavailable
	}
	model := documentModelFromDomain(record)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		if isUniqueViolation(err) {
			// The partial unique index is the authoritative conflict guard.
			return domain.ErrConflict
		}
		return err
	}
	return nil
}

func (r *DocumentRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.DocumentRecord, error) {
	if r.db == nil {
		return domain.DocumentRecord{}, errDBUnavailable
	}
	var model DocumentRecordModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id.String()).Error
	if err != nil {
		return domain.DocumentRecord{}, translateNotFound(err)
	}
	return documentModelToDomain(model)
}

func (r *DocumentRepository) FindConflicting(ctx context.Context, ownerIC, documentType string, exclude uuid.UUID) ([]domain.DocumentRecord, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	query := r.db.WithContext(ctx).
		Where("doc_owner_ic = ? AND document_type = ?", ownerIC, documentType)
	if exclude != uuid.Nil {
		query = query.Where("id <> ?", exclude.String())
	}
	var models []DocumentRecordModel
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]domain.DocumentRecord, 0, len(models))
	for _, model := range models {
		record, err := documentModelToDomain(model)
		if err != nil {
			return nil, err
		}
		out = append(out, record)
	}
	return out, nil
}

func (r *DocumentRepository) Update(ctx context.Context, record domain.DocumentRecord) error {
	if r.db == nil {
		return errDBUnavailable
	}
	model := documentModelFromDomain(record)
	result := r.db.WithContext(ctx).
		Model(&DocumentRecordModel{}).
		Where("id = ?", model.ID).
		Select("DocOwnerName", "DocOwnerIC", "DocumentType", "IssuerID", "IssuerName",
			"IssueDate", "IsDeleted", "DeletedBy", "DeletedAt", "UpdatedAt").
		Updates(&model)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return domain.ErrConflict
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *DocumentRepository) HardDelete(ctx context.Context, id uuid.UUID) error {
	if r.db == nil {
		return errDBUnavailable
	}
	result := r.db.WithContext(ctx).Delete(&DocumentRecordModel{}, "id = ?", id.String())
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *DocumentRepository) List(ctx context.Context, deleted bool, limit, offset int) ([]domain.DocumentRecord, int64, error) {
	if r.db == nil {
		return nil, 0, errDBUnavailable
	}
	query := r.db.WithContext(ctx).
		Model(&DocumentRecordModel{}).
		Where("is_deleted = ?", deleted)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var models []DocumentRecordModel
	listQuery := query.Order("updated_at DESC")
	if limit > 0 {
		listQuery = listQuery.Limit(limit)
	}
	if offset > 0 {
		listQuery = listQuery.Offset(offset)
	}
	if err := listQuery.Find(&models).Error; err != nil {
		return nil, 0, err
	}
	out := make([]domain.DocumentRecord, 0, len(models))
	for _, model := range models {
		record, err := documentModelToDomain(model)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, record)
	}
	return out, total, nil
}

func documentModelFromDomain(record domain.DocumentRecord) DocumentRecordModel {
	return DocumentRecordModel{
		ID:           record.ID.String(),
		DocOwnerName: record.OwnerName,
		DocOwnerIC:   record.OwnerIC,
		DocumentType: record.DocumentType,
		IssuerID:     record.IssuerID,
		IssuerName:   record.IssuerName,
		IssueDate:    record.IssueDate,
		Hash:         record.Hash,
		Signature:    record.Signature,
		ArtifactPath: record.ArtifactPath,
		IsDeleted:    record.IsDeleted,
		DeletedBy:    record.DeletedBy,
		DeletedAt:    record.DeletedAt,
		CreatedAt:    record.CreatedAt,
		UpdatedAt:    record.UpdatedAt,
	}
}

func documentModelToDomain(model DocumentRecordModel) (domain.DocumentRecord, error) {
	id, err := uuid.Parse(model.ID)
	if err != nil {
		return domain.DocumentRecord{}, err
	}
	return domain.DocumentRecord{
		ID:           id,
		OwnerName:    model.DocOwnerName,
		OwnerIC:      model.DocOwnerIC,
		DocumentType: model.DocumentType,
		IssuerID:     model.IssuerID,
		IssuerName:   model.IssuerName,
		IssueDate:    model.IssueDate,
		Hash:         model.Hash,
		Signature:    model.Signature,
		ArtifactPath: model.ArtifactPath,
		IsDeleted:    model.IsDeleted,
		DeletedBy:    model.DeletedBy,
		DeletedAt:    model.DeletedAt,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}, nil
}
