package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"docseal/internal/domain"
)

type IssueRequest struct {
	OwnerIC      string
	OwnerName    string
	DocumentType string
	IssuerID     int64
	IssueDate    time.Time
	PDF          []byte
}

type IssueResult struct {
	Record domain.DocumentRecord
	Token  string
	// Stamped is the artifact as handed back to the issuer, QR included.
	Stamped []byte
}

// IssueDocument creates a new active record: conflict check, fresh
// identifier, QR embedding, hash and signature over the final stamped bytes,
// then persistence. The storage unique index is the authoritative conflict
// guard; the early FindConflicting pass only produces a better error before
// any artifact work happens.
type IssueDocument struct {
	Documents DocumentRepository
	Owners    OwnerRepository
	Accounts  AccountRepository
	Artifacts ArtifactStore
	Embedder  Embedder
	Signer    Signer
	Codec     ReferenceCodec
	Authz     domain.Authorizer

	// VerifyURL builds the externally reachable verification URL for a
	// token; the engine never assembles URLs beyond this call.
	VerifyURL func(token string) string

	Now func() time.Time
}

func (uc *IssueDocument) Execute(ctx context.Context, actor domain.StaffAccount, req IssueRequest) (*IssueResult, error) {
	if err := authorize(ctx, uc.Authz, actor, domain.ActionIssue); err != nil {
		return nil, err
	}
	if req.OwnerIC == "" || req.DocumentType == "" {
		return nil, errors.New("owner IC and document type are required")
	}
	if len(req.PDF) == 0 {
		return nil, errors.New("artifact bytes are required")
	}

	existing, err := uc.Documents.FindConflicting(ctx, req.OwnerIC, req.DocumentType, uuid.Nil)
	if err != nil {
		return nil, err
	}
	for _, rec := range existing {
		if !rec.IsDeleted {
			return nil, domain.ErrConflict
		}
	}

	ownerName := req.OwnerName
	if ownerName == "" {
		owner, err := uc.Owners.GetByIC(ctx, req.OwnerIC)
		if err != nil {
			return nil, fmt.Errorf("resolve owner name: %w", err)
		}
		ownerName = owner.FullName
	}
	issuer, err := uc.Accounts.GetByID(ctx, req.IssuerID)
	if err != nil {
		return nil, fmt.Errorf("resolve issuer: %w", err)
	}

	id := uuid.New()
	tok, err := uc.Codec.Encode(id)
	if err != nil {
		return nil, err
	}

	stamped, err := uc.Embedder.Embed(req.PDF, uc.VerifyURL(tok))
	if err != nil {
		return nil, fmt.Errorf("embed verification code: %w", err)
	}

	if _, err := uc.Artifacts.SaveOriginal(id, req.PDF); err != nil {
		return nil, err
	}
	stampedPath, err := uc.Artifacts.SaveStamped(id, stamped)
	if err != nil {
		return nil, err
	}

	digest := uc.Signer.Hash(stamped)
	signature, err := uc.Signer.Sign(digest)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	record := domain.DocumentRecord{
		ID:           id,
		OwnerName:    ownerName,
		OwnerIC:      req.OwnerIC,
		DocumentType: req.DocumentType,
		IssuerID:     issuer.AccountID,
		IssuerName:   issuer.HolderName,
		IssueDate:    req.IssueDate,
		Hash:         digest,
		Signature:    signature,
		ArtifactPath: stampedPath,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.Documents.Create(ctx, record); err != nil {
		return nil, err
	}
	return &IssueResult{Record: record, Token: tok, Stamped: stamped}, nil
}

func (uc *IssueDocument) now() time.Time {
	if uc.Now != nil {
		return uc.Now()
	}
	return time.Now().UTC()
}
