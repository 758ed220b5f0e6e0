package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"docseal/internal/domain"
)

// DocumentRepository is the persistence boundary for document records. Create
// must enforce the single-active-record-per-slot rule at the storage level
// and surface violations as domain.ErrConflict; the in-usecase checks are
// only early, friendlier rejections.
type DocumentRepository interface {
	Create(ctx context.Context, record domain.DocumentRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (domain.DocumentRecord, error)
	// FindConflicting returns every record occupying (ownerIC, documentType)
	// except exclude, both active and soft-deleted.
	FindConflicting(ctx context.Context, ownerIC, documentType string, exclude uuid.UUID) ([]domain.DocumentRecord, error)
	Update(ctx context.Context, record domain.DocumentRecord) error
	HardDelete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, deleted bool, limit, offset int) ([]domain.DocumentRecord, int64, error)
}

type DeletionAuditRepository interface {
	Append(ctx context.Context, entry domain.DeletionAudit) error
}

type AccountRepository interface {
	GetByID(ctx context.Context, accountID int64) (domain.StaffAccount, error)
	GetByEmail(ctx context.Context, email string) (domain.StaffAccount, error)
	ListSuperuserIDs(ctx context.Context) ([]int64, error)
	TouchLastLogin(ctx context.Context, accountID int64, at time.Time) error
}

type OwnerRepository interface {
	GetByIC(ctx context.Context, ic string) (domain.Owner, error)
}

// NotificationRepository persists the fan-out. CreateWithRecipients writes
// the notification and all delivery rows in one transaction so a partial
// recipient list is never observable.
type NotificationRepository interface {
	CreateWithRecipients(ctx context.Context, message string, createdAt time.Time, recipientIDs []int64) (domain.Notification, error)
	MarkDelivered(ctx context.Context, accountID, notificationID int64, at time.Time) error
	MarkAllDelivered(ctx context.Context, accountID int64, at time.Time) error
	MarkRead(ctx context.Context, accountID, notificationID int64) error
	MarkAllRead(ctx context.Context, accountID int64) error
	ListFeed(ctx context.Context, accountID int64) ([]domain.NotificationFeedItem, error)
}

// ArtifactStore holds the original and stamped artifact bytes.
type ArtifactStore interface {
	SaveOriginal(id uuid.UUID, data []byte) (string, error)
	SaveStamped(id uuid.UUID, data []byte) (string, error)
	LoadStamped(path string) ([]byte, error)
	Purge(id uuid.UUID) error
}

// Embedder places the verification QR into the artifact. Treated as a pure
// function; a failure aborts issuance before anything is hashed or signed.
type Embedder interface {
	Embed(pdf []byte, verifyURL string) ([]byte, error)
}

// Signer is the custodian surface the engine needs.
type Signer interface {
	Hash(data []byte) []byte
	Sign(digest []byte) ([]byte, error)
	Verify(signature, digest []byte) bool
}

// ReferenceCodec turns internal identifiers into opaque external tokens and
// back. Internal identifiers never cross the system boundary undisguised.
type ReferenceCodec interface {
	Encode(id uuid.UUID) (string, error)
	Decode(token string) (uuid.UUID, error)
}

// PushJob asks the worker to attempt real-time delivery of one notification
// to one recipient.
type PushJob struct {
	AccountID    int64
	Notification domain.Notification
}

// Pusher hands off push jobs without blocking the triggering operation.
type Pusher interface {
	Enqueue(job PushJob)
}

func authorize(ctx context.Context, authz domain.Authorizer, actor domain.StaffAccount, action string) error {
	if authz == nil {
		return nil
	}
	decision, err := authz.Authorize(ctx, domain.AuthzInput{
		AccountID: actor.AccountID,
		IsSuper:   actor.IsSuper,
		Action:    action,
	})
	if err != nil {
		return err
	}
	if !decision.Allow {
		return domain.ErrForbidden
	}
	return nil
}
