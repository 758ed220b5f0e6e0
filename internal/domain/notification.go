package domain

import "time"

// Notification is a single fan-out message. The per-recipient state lives in
// DeliveryRecord, one row per (notification, recipient).
type Notification struct {
	ID        int64
	Message   string
	CreatedAt time.Time
}

// DeliveryRecord tracks push delivery and read state independently. It is
// created undelivered and mutated at most twice: once when delivery is
// confirmed, once when the recipient marks it read.
type DeliveryRecord struct {
	ID             int64
	AccountID      int64
	NotificationID int64
	Delivered      bool
	DeliveredAt    *time.Time
	Read           bool
}

// NotificationFeedItem is a notification joined with the recipient's own
// read flag, as listed in the recipient's feed.
type NotificationFeedItem struct {
	Notification Notification
	Read         bool
}
