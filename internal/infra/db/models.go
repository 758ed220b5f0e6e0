package db

import "time"

type DocumentRecordModel struct {
	ID           string    `gorm:"type:uuid;primaryKey"`
	DocOwnerName string    `gorm:"not null"`
	DocOwnerIC   string    `gorm:"index;not null"`
	DocumentType string    `gorm:"not null"`
	IssuerID     int64     `gorm:"not null"`
	IssuerName   string    `gorm:"not null"`
	IssueDate    time.Time `gorm:"type:date;not null"`
	Hash         []byte    `gorm:"type:bytea;not null"`
	Signature    []byte    `gorm:"type:bytea;not null"`
	ArtifactPath string    `gorm:"not null"`
	IsDeleted    bool      `gorm:"not null;default:false;index"`
	DeletedBy    *int64
	DeletedAt    *time.Time
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

func (DocumentRecordModel) TableName() string { return "document_record" }

type DeletionAuditModel struct {
	ID           int64     `gorm:"primaryKey;autoIncrement"`
	DocOwnerIC   string    `gorm:"index;not null"`
	DocumentType string    `gorm:"not null"`
	IssueDate    time.Time `gorm:"type:date;not null"`
	DeletedBy    int64     `gorm:"index;not null"`
	DeletedAt    time.Time `gorm:"not null"`
}

func (DeletionAuditModel) TableName() string { return "deleted_document" }

type NotificationModel struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	Message   string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null;index"`
}

func (NotificationModel) TableName() string { return "notification" }

type DeliveryRecordModel struct {
	ID             int64 `gorm:"primaryKey;autoIncrement"`
	AccountID      int64 `gorm:"index;not null"`
	NotificationID int64 `gorm:"index;not null"`
	HasReceived    bool  `gorm:"not null;default:false"`
	ReceivedAt     *time.Time
	HasRead        bool `gorm:"not null;default:false"`
}

func (DeliveryRecordModel) TableName() string { return "notified_user" }

type StaffAccountModel struct {
	AccountID    int64  `gorm:"primaryKey;autoIncrement"`
	StaffID      int64  `gorm:"index;not null"`
	HolderName   string `gorm:"not null"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash []byte `gorm:"type:bytea;not null"`
	PasswordSalt []byte `gorm:"type:bytea;not null"`
	IsSuper      bool   `gorm:"not null;default:false"`
	LastLoginAt  *time.Time
	CreatedAt    time.Time `gorm:"not null"`
}

func (StaffAccountModel) TableName() string { return "staff_system_acc" }

type OwnerModel struct {
	IC       string `gorm:"primaryKey;column:owner_ic_no"`
	FullName string `gorm:"not null"`
}

func (OwnerModel) TableName() string { return "owner" }
