package usecase

import (
	"context"
	"fmt"
	"time"

	"docseal/internal/domain"
)

// SoftDeleteDocument marks a record inactive without touching its artifact
// bytes. Reversible through recovery; superusers are notified.
type SoftDeleteDocument struct {
	Documents DocumentRepository
	Codec     ReferenceCodec
	Notifier  *Notifier
	Authz     domain.Authorizer

	Now func() time.Time
}

func (uc *SoftDeleteDocument) Execute(ctx context.Context, tok string, actor domain.StaffAccount) error {
	if err := authorize(ctx, uc.Authz, actor, domain.ActionDelete); err != nil {
		return err
	}
	id, err := uc.Codec.Decode(tok)
	if err != nil {
		return err
	}
	record, err := uc.Documents.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if record.IsDeleted {
		// Already soft-deleted; nothing to flag and nothing to announce.
		return nil
	}

	now := uc.now()
	actorID := actor.AccountID
	record.IsDeleted = true
	record.DeletedBy = &actorID
	record.DeletedAt = &now
	record.UpdatedAt = now
	if err := uc.Documents.Update(ctx, record); err != nil {
		return err
	}

	message := fmt.Sprintf("%s soft-deleted %s for %s (%s). The document can be recovered.",
		actor.HolderName, record.DocumentType, record.OwnerName, record.OwnerIC)
	if _, err := uc.Notifier.NotifySuperusers(ctx, message); err != nil {
		return err
	}
	return nil
}

func (uc *SoftDeleteDocument) now() time.Time {
	if uc.Now != nil {
		return uc.Now()
	}
	return time.Now().UTC()
}
