package usecase

import (
	"context"
	"time"

	"docseal/internal/domain"
)

// Notifier fans lifecycle notifications out to superusers. Persistence of
// the notification and every delivery row completes first, in one
// transaction; only then are push jobs handed off. A crash after the
// transaction leaves undelivered rows that reconciliation fills on the
// recipient's next connect.
type Notifier struct {
	Notifications NotificationRepository
	Accounts      AccountRepository
	Push          Pusher

	Now func() time.Time
}

func (n *Notifier) NotifySuperusers(ctx context.Context, message string) (domain.Notification, error) {
	recipients, err := n.Accounts.ListSuperuserIDs(ctx)
	if err != nil {
		return domain.Notification{}, err
	}
	notification, err := n.Notifications.CreateWithRecipients(ctx, message, n.now(), recipients)
	if err != nil {
		return domain.Notification{}, err
	}
	if n.Push != nil {
		for _, accountID := range recipients {
			n.Push.Enqueue(PushJob{AccountID: accountID, Notification: notification})
		}
	}
	return notification, nil
}

// ReconcileOnConnect marks every undelivered row for the recipient as
// delivered. Connecting counts as delivery confirmation regardless of
// whether the original push ever went out.
func (n *Notifier) ReconcileOnConnect(ctx context.Context, accountID int64) error {
	return n.Notifications.MarkAllDelivered(ctx, accountID, n.now())
}

// MarkRead is independent of delivery state; reading an undelivered
// notification is allowed.
func (n *Notifier) MarkRead(ctx context.Context, accountID, notificationID int64) error {
	return n.Notifications.MarkRead(ctx, accountID, notificationID)
}

func (n *Notifier) MarkAllRead(ctx context.Context, accountID int64) error {
	return n.Notifications.MarkAllRead(ctx, accountID)
}

func (n *Notifier) Feed(ctx context.Context, accountID int64) ([]domain.NotificationFeedItem, error) {
	return n.Notifications.ListFeed(ctx, accountID)
}

func (n *Notifier) now() time.Time {
	if n.Now != nil {
		return n.Now()
	}
	return time.Now().UTC()
}
