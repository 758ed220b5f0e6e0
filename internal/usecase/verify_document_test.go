package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"docseal/internal/domain"
)

func TestVerifyDocument_TruthTable(t *testing.T) {
	docs := newFakeDocumentRepo()
	signer := testSigner(t)
	genuine := []byte("%PDF-1.7 genuine stamped artifact")
	digest := signer.Hash(genuine)
	signature, err := signer.Sign(digest)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	foreignSigner := testSigner(t)
	foreignSig, err := foreignSigner.Sign(digest)
	if err != nil {
		t.Fatalf("foreign sign: %v", err)
	}

	id := uuid.New()
	base := domain.DocumentRecord{
		ID:           id,
		OwnerName:    "Tan Mei Ling",
		OwnerIC:      "900101-14-5678",
		DocumentType: "passport",
		IssuerName:   "Alice Tan",
		IssueDate:    time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Hash:         digest,
		Signature:    signature,
	}
	if err := docs.Create(context.Background(), base); err != nil {
		t.Fatalf("seed record: %v", err)
	}

	altered := []byte("%PDF-1.7 tampered artifact")
	alteredDigest := signer.Hash(altered)
	alteredSig, err := signer.Sign(alteredDigest)
	if err != nil {
		t.Fatalf("sign altered: %v", err)
	}

	uc := &VerifyDocument{Documents: docs, Signer: signer, Codec: fakeCodec{}}
	tok := "tok:" + id.String()

	cases := []struct {
		name       string
		hash       []byte
		sig        []byte
		uploaded   []byte
		wantStatus domain.VerificationStatus
	}{
		{"valid", digest, signature, genuine, domain.VerificationValid},
		// Stored hash disagrees with the upload, but the signature does
		// attest the uploaded bytes: altered record, genuine signature.
		{"altered", digest, alteredSig, altered, domain.VerificationAltered},
		// Hash matches the upload but the signature belongs to another key:
		// content is right, attestation is not.
		{"unsigned", alteredDigest, foreignSig, altered, domain.VerificationUnsigned},
		{"altered and unsigned", digest, signature, altered, domain.VerificationAlteredUnsigned},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			record := base
			record.Hash = tc.hash
			record.Signature = tc.sig
			if err := docs.Update(context.Background(), record); err != nil {
				t.Fatalf("update record: %v", err)
			}

			result, err := uc.Execute(context.Background(), tok, tc.uploaded)
			if err != nil {
				t.Fatalf("verify: %v", err)
			}
			if result.Status != tc.wantStatus {
				t.Fatalf("status = %q, want %q (hash=%v sig=%v)",
					result.Status, tc.wantStatus, result.HashMatch, result.SignatureValid)
			}
		})
	}
}

func TestVerifyDocument_InvalidTokenVsMissingRecord(t *testing.T) {
	uc := &VerifyDocument{Documents: newFakeDocumentRepo(), Signer: testSigner(t), Codec: fakeCodec{}}

	if _, err := uc.Execute(context.Background(), "garbage", []byte("x")); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
	if _, err := uc.Execute(context.Background(), "tok:"+uuid.NewString(), []byte("x")); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
