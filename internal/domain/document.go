package domain

import (
	"time"

	"github.com/google/uuid"
)

// DocumentRecord is the authoritative unit: a signed artifact plus the
// metadata captured at issuance. Hash and Signature are fixed at creation
// and never change afterwards; metadata edits do not re-sign.
type DocumentRecord struct {
	ID           uuid.UUID
	OwnerName    string
	OwnerIC      string
	DocumentType string

	IssuerID   int64
	IssuerName string
	IssueDate  time.Time

	Hash         []byte
	Signature    []byte
	ArtifactPath string

	IsDeleted bool
	DeletedBy *int64
	DeletedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// DeletionAudit is the append-only trace of a permanent purge. A row is
// written only when an edit resolves a soft-deleted conflict by destroying
// the shadow record.
type DeletionAudit struct {
	ID           int64
	OwnerIC      string
	DocumentType string
	IssueDate    time.Time
	DeletedBy    int64
	DeletedAt    time.Time
}

type ConflictStatus string

const (
	ConflictNone        ConflictStatus = "ok"
	ConflictActive      ConflictStatus = "conflict"
	ConflictSoftDeleted ConflictStatus = "soft_deleted_conflict"
)

// ConflictResolution is the caller's explicit acknowledgement on edit.
type ConflictResolution string

const (
	ResolutionNone               ConflictResolution = ""
	ResolutionSoftDeleteConflict ConflictResolution = "soft_delete_conflict"
)

// DocumentChanges carries the editable metadata. A nil IssuerID leaves the
// issuer of record untouched; a set one also refreshes the denormalized
// issuer name snapshot.
type DocumentChanges struct {
	OwnerName    string
	OwnerIC      string
	DocumentType string
	IssuerID     *int64
}

type VerificationStatus string

const (
	VerificationValid           VerificationStatus = "valid"
	VerificationAltered         VerificationStatus = "altered"
	VerificationUnsigned        VerificationStatus = "unsigned"
	VerificationAlteredUnsigned VerificationStatus = "altered_unsigned"
)

// VerificationResult reports the hash and signature checks independently so
// callers can tell "altered" apart from "not issued by this system".
type VerificationResult struct {
	Status         VerificationStatus
	HashMatch      bool
	SignatureValid bool

	OwnerName  string
	IssuerName string
	IssueDate  time.Time
}

func VerificationStatusFor(hashMatch, signatureValid bool) VerificationStatus {
	switch {
	case hashMatch && signatureValid:
		return VerificationValid
	case !hashMatch && signatureValid:
		return VerificationAltered
	case hashMatch && !signatureValid:
		return VerificationUnsigned
	default:
		return VerificationAlteredUnsigned
	}
}
