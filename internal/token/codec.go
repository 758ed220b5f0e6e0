// Package token maps internal record identifiers to the opaque references
// shared outside the system. A token is the identifier's hex form encrypted
// with OAEP under the custodian's public key, then raw URL-safe base64. Only
// the holder of the private key can reverse it; the codec itself does no
// storage lookups.
package token

import (
	"encoding/base64"
	"encoding/hex"

	"github.com/google/uuid"

	"docseal/internal/domain"
)

// Cipher is the custodian's asymmetric primitives. Key material stays behind
// this boundary.
type Cipher interface {
	EncryptReference(plaintext []byte) ([]byte, error)
	DecryptReference(ciphertext []byte) ([]byte, error)
}

type Codec struct {
	cipher Cipher
}

func NewCodec(cipher Cipher) *Codec {
	return &Codec{cipher: cipher}
}

// Encode produces the external token for id. With a 2048-bit key the
// ciphertext is a single block, so the token length is fixed.
func (c *Codec) Encode(id uuid.UUID) (string, error) {
	ciphertext, err := c.cipher.EncryptReference([]byte(hex.EncodeToString(id[:])))
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(ciphertext), nil
}

// Decode reverses Encode. Every failure mode (bad base64, decryption
// failure, junk plaintext) collapses into domain.ErrInvalidToken so callers
// cannot be used as a padding oracle.
func (c *Codec) Decode(token string) (uuid.UUID, error) {
	ciphertext, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return uuid.Nil, domain.ErrInvalidToken
	}
	plaintext, err := c.cipher.DecryptReference(ciphertext)
	if err != nil {
		return uuid.Nil, domain.ErrInvalidToken
	}
	id, err := uuid.Parse(string(plaintext))
	if err != nil {
		return uuid.Nil, domain.ErrInvalidToken
	}
	return id, nil
}
