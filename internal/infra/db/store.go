package db

import (
	"errors"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"docseal/internal/config"
)

type Store struct {
	DB *gorm.DB
}

func NewStore(cfg config.Config) (*Store, error) {
	if cfg.PostgresDSN == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}
	gdb, err := gorm.Open(postgres.Open(cfg.PostgresDSN), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &Store{DB: gdb}, nil
}

// Migrate creates the schema. The partial unique index is the authoritative
// enforcement of the one-active-record-per-slot rule: two racing issuances
// cannot both commit an active row for the same (owner, type).
func (s *Store) Migrate() error {
	if err := s.DB.AutoMigrate(
		&StaffAccountModel{},
		&OwnerModel{},
		&DocumentRecordModel{},
		&DeletionAuditModel{},
		&NotificationModel{},
		&DeliveryRecordModel{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	statements := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS ux_document_record_active_slot
			ON document_record (doc_owner_ic, document_type) WHERE NOT is_deleted`,
		`CREATE UNIQUE INDEX IF NOT EXISTS ux_notified_user_pair
			ON notified_user (account_id, notification_id)`,
	}
	for _, stmt := range statements {
		if err := s.DB.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}
