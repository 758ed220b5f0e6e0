package usecase

import (
	"context"
	"fmt"
	"time"

	"docseal/internal/domain"
)

// EditDocument applies metadata changes to a record. Hash, signature and the
// artifact itself are never touched: a metadata correction cannot change
// what was cryptographically attested. When the caller acknowledges a
// soft-deleted conflict, the shadow record is purged for good (artifact
// bytes removed, audit row written, record hard-deleted, superusers
// notified) before the edit applies.
type EditDocument struct {
	Documents DocumentRepository
	Owners    OwnerRepository
	Accounts  AccountRepository
	Artifacts ArtifactStore
	Audit     DeletionAuditRepository
	Codec     ReferenceCodec
	Notifier  *Notifier
	Authz     domain.Authorizer

	Now func() time.Time
}

func (uc *EditDocument) Execute(ctx context.Context, tok string, actor domain.StaffAccount, changes domain.DocumentChanges, resolution domain.ConflictResolution) error {
	if err := authorize(ctx, uc.Authz, actor, domain.ActionEdit); err != nil {
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

	targetIC := record.OwnerIC
	if changes.OwnerIC != "" {
		targetIC = changes.OwnerIC
	}
	targetType := record.DocumentType
	if changes.DocumentType != "" {
		targetType = changes.DocumentType
	}

	others, err := uc.Documents.FindConflicting(ctx, targetIC, targetType, id)
	if err != nil {
		return err
	}
	var shadow *domain.DocumentRecord
	for i := range others {
		if !others[i].IsDeleted {
			return domain.ErrConflict
		}
		shadow = &others[i]
	}
	if shadow != nil {
		if resolution != domain.ResolutionSoftDeleteConflict {
			return domain.ErrShadowConflict
		}
		if err := uc.purgeShadow(ctx, actor, *shadow); err != nil {
			return err
		}
	}

	icChanged := targetIC != record.OwnerIC
	record.OwnerIC = targetIC
	record.DocumentType = targetType
	switch {
	case changes.OwnerName != "":
		record.OwnerName = changes.OwnerName
	case icChanged:
		owner, err := uc.Owners.GetByIC(ctx, targetIC)
		if err != nil {
			return fmt.Errorf("resolve owner name: %w", err)
		}
		record.OwnerName = owner.FullName
	}
	if changes.IssuerID != nil && *changes.IssuerID != record.IssuerID {
		issuer, err := uc.Accounts.GetByID(ctx, *changes.IssuerID)
		if err != nil {
			return fmt.Errorf("resolve issuer: %w", err)
		}
		record.IssuerID = issuer.AccountID
		record.IssuerName = issuer.HolderName
	}
	record.UpdatedAt = uc.now()
	return uc.Documents.Update(ctx, record)
}

// purgeShadow is the only irreversible path in the lifecycle: bytes are
// removed, an append-only audit row records the purge, and the shadow row is
// deleted so the edited record can take the slot.
func (uc *EditDocument) purgeShadow(ctx context.Context, actor domain.StaffAccount, shadow domain.DocumentRecord) error {
	if err := authorize(ctx, uc.Authz, actor, domain.ActionPurge); err != nil {
		return err
	}
	if err := uc.Artifacts.Purge(shadow.ID); err != nil {
		return err
	}
	if err := uc.Audit.Append(ctx, domain.DeletionAudit{
		OwnerIC:      shadow.OwnerIC,
		DocumentType: shadow.DocumentType,
		IssueDate:    shadow.IssueDate,
		DeletedBy:    actor.AccountID,
		DeletedAt:    uc.now(),
	}); err != nil {
		return err
	}
	if err := uc.Documents.HardDelete(ctx, shadow.ID); err != nil {
		return err
	}
	message := fmt.Sprintf("%s permanently removed the soft-deleted %s for %s (%s) while resolving an edit conflict. This cannot be undone.",
		actor.HolderName, shadow.DocumentType, shadow.OwnerName, shadow.OwnerIC)
	if _, err := uc.Notifier.NotifySuperusers(ctx, message); err != nil {
		return err
	}
	return nil
}

func (uc *EditDocument) now() time.Time {
	if uc.Now != nil {
		return uc.Now()
	}
	return time.Now().UTC()
}
