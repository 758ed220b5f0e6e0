package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"docseal/internal/domain"
)

// Tokens below this count are itemized in the batch notification; larger
// batches are summarized.
const recoverItemizeThreshold = 4

// RecoverDocuments clears the soft-delete flag for each token in the batch.
// Tokens that fail to decode, point at nothing, or point at a live record
// are skipped; one bad token never aborts the batch. A single aggregated
// notification covers the whole batch.
type RecoverDocuments struct {
	Documents DocumentRepository
	Codec     ReferenceCodec
	Notifier  *Notifier
	Authz     domain.Authorizer

	Now func() time.Time
}

func (uc *RecoverDocuments) Execute(ctx context.Context, tokens []string, actor domain.StaffAccount) (int, error) {
	if err := authorize(ctx, uc.Authz, actor, domain.ActionRecover); err != nil {
		return 0, err
	}

	now := uc.now()
	var recovered []string
	for _, tok := range tokens {
		id, err := uc.Codec.Decode(tok)
		if err != nil {
			continue
		}
		record, err := uc.Documents.GetByID(ctx, id)
		if err != nil {
			continue
		}
		if !record.IsDeleted {
			continue
		}
		record.IsDeleted = false
		record.DeletedBy = nil
		record.DeletedAt = nil
		record.UpdatedAt = now
		if err := uc.Documents.Update(ctx, record); err != nil {
			continue
		}
		recovered = append(recovered, fmt.Sprintf("%s (%s)", record.OwnerName, record.DocumentType))
	}

	if len(recovered) > 0 {
		var message string
		if len(recovered) < recoverItemizeThreshold {
			message = fmt.Sprintf("%s recovered: %s.", actor.HolderName, strings.Join(recovered, ", "))
		} else {
			message = fmt.Sprintf("%s recovered %d soft-deleted documents.", actor.HolderName, len(recovered))
		}
		if _, err := uc.Notifier.NotifySuperusers(ctx, message); err != nil {
			return len(recovered), err
		}
	}
	return len(recovered), nil
}

func (uc *RecoverDocuments) now() time.Time {
	if uc.Now != nil {
		return uc.Now()
	}
	return time.Now().UTC()
}
