package db

import (
	"context"
	"time"

	"gorm.io/gorm"

	"docseal/internal/domain"
)

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// CreateWithRecipients writes the notification and one undelivered delivery
// row per recipient inside a single transaction, so a partially fanned-out
// notification is never visible.
func (r *NotificationRepository) CreateWithRecipients(ctx context.Context, message string, createdAt time.Time, recipientIDs []int64) (domain.Notification, error) {
	if r.db == nil {
		return domain.Notification{}, errDBUnavailable
	}
	model := NotificationModel{Message: message, CreatedAt: createdAt.UTC()}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&model).Error; err != nil {
			return err
		}
		for _, accountID := range recipientIDs {
			delivery := DeliveryRecordModel{
				AccountID:      accountID,
				NotificationID: model.ID,
			}
			if err := tx.Create(&delivery).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.Notification{}, err
	}
	return domain.Notification{ID: model.ID, Message: model.Message, CreatedAt: model.CreatedAt}, nil
}

func (r *NotificationRepository) MarkDelivered(ctx context.Context, accountID, notificationID int64, at time.Time) error {
	if r.db == nil {
		return errDBUnavailable
	}
	at = at.UTC()
	return r.db.WithContext(ctx).
		Model(&DeliveryRecordModel{}).
		Where("account_id = ? AND notification_id = ? AND has_received = false", accountID, notificationID).
		Updates(map[string]any{"has_received": true, "received_at": at}).Error
}

func (r *NotificationRepository) MarkAllDelivered(ctx context.Context, accountID int64, at time.Time) error {
	if r.db == nil {
		return errDBUnavailable
	}
	at = at.UTC()
	return r.db.WithContext(ctx).
		Model(&DeliveryRecordModel{}).
		Where("account_id = ? AND has_received = false", accountID).
		Updates(map[string]any{"has_received": true, "received_at": at}).Error
}

func (r *NotificationRepository) MarkRead(ctx context.Context, accountID, notificationID int64) error {
	if r.db == nil {
		return errDBUnavailable
	}
	result := r.db.WithContext(ctx).
		Model(&DeliveryRecordModel{}).
		Where("account_id = ? AND notification_id = ?", accountID, notificationID).
		Update("has_read", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, accountID int64) error {
	if r.db == nil {
		return errDBUnavailable
	}
	return r.db.WithContext(ctx).
		Model(&DeliveryRecordModel{}).
		Where("account_id = ? AND has_read = false", accountID).
		Update("has_read", true).Error
}

func (r *NotificationRepository) ListFeed(ctx context.Context, accountID int64) ([]domain.NotificationFeedItem, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var rows []struct {
		ID        int64
		Message   string
		CreatedAt time.Time
		HasRead   bool
	}
	err := r.db.WithContext(ctx).
		Table("notification").
		Select("notification.id, notification.message, notification.created_at, notified_user.has_read").
		Joins("JOIN notified_user ON notified_user.notification_id = notification.id").
		Where("notified_user.account_id = ?", accountID).
		Order("notification.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]domain.NotificationFeedItem, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.NotificationFeedItem{
			Notification: domain.Notification{ID: row.ID, Message: row.Message, CreatedAt: row.CreatedAt},
			Read:         row.HasRead,
		})
	}
	return out, nil
}

// ListUndelivered returns the backlog replayed to a recipient right after
// reconnect, oldest first.
func (r *NotificationRepository) ListUndelivered(ctx context.Context, accountID int64) ([]domain.Notification, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var models []NotificationModel
	err := r.db.WithContext(ctx).
		Table("notification").
		Joins("JOIN notified_user ON notified_user.notification_id = notification.id").
		Where("notified_user.account_id = ? AND notified_user.has_received = false", accountID).
		Order("notification.created_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	out := make([]domain.Notification, 0, len(models))
	for _, model := range models {
		out = append(out, domain.Notification{ID: model.ID, Message: model.Message, CreatedAt: model.CreatedAt})
	}
	return out, nil
}
