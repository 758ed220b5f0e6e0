package usecase

import (
	"bytes"
	"context"

	"docseal/internal/domain"
)

// VerifyDocument checks an uploaded artifact against the record behind a
// token. Hash equality and signature validity are checked independently so
// the four outcomes of the truth table stay distinguishable. An invalid
// token and a missing record are reported as errors; a failed check is a
// normal result, not an error.
type VerifyDocument struct {
	Documents DocumentRepository
	Signer    Signer
	Codec     ReferenceCodec
}

func (uc *VerifyDocument) Execute(ctx context.Context, tok string, uploaded []byte) (domain.VerificationResult, error) {
	id, err := uc.Codec.Decode(tok)
	if err != nil {
		return domain.VerificationResult{}, err
	}
	record, err := uc.Documents.GetByID(ctx, id)
	if err != nil {
		return domain.VerificationResult{}, err
	}

	digest := uc.Signer.Hash(uploaded)
	hashMatch := bytes.Equal(digest, record.Hash)
	signatureValid := uc.Signer.Verify(record.Signature, digest)

	return domain.VerificationResult{
		Status:         domain.VerificationStatusFor(hashMatch, signatureValid),
		HashMatch:      hashMatch,
		SignatureValid: signatureValid,
		OwnerName:      record.OwnerName,
		IssuerName:     record.IssuerName,
		IssueDate:      record.IssueDate,
	}, nil
}
