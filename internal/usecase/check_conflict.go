package usecase

import (
	"context"

	"docseal/internal/domain"
)

// CheckConflict classifies the (owner, type) slot an edit is about to move a
// record into. The record being edited never conflicts with itself. An
// active occupant wins over a soft-deleted one when both exist.
type CheckConflict struct {
	Documents DocumentRepository
	Codec     ReferenceCodec
}

func (uc *CheckConflict) Execute(ctx context.Context, tok, proposedIC, proposedType string) (domain.ConflictStatus, error) {
	id, err := uc.Codec.Decode(tok)
	if err != nil {
		return "", err
	}
	if _, err := uc.Documents.GetByID(ctx, id); err != nil {
		return "", err
	}

	others, err := uc.Documents.FindConflicting(ctx, proposedIC, proposedType, id)
	if err != nil {
		return "", err
	}
	status := domain.ConflictNone
	for _, rec := range others {
		if !rec.IsDeleted {
			return domain.ConflictActive, nil
		}
		status = domain.ConflictSoftDeleted
	}
	return status, nil
}
