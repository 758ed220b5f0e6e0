// Package keys owns the process-wide RSA keypair. The pair is loaded or
// generated exactly once at startup and is immutable afterwards, so the
// custodian is safe for unsynchronized concurrent use. Key material never
// leaves this package; callers only get hash, sign, verify and the OAEP
// primitives the reference codec is built on.
package keys

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	privateKeyFile = "private_key.pem"
	publicKeyFile  = "public_key.pem"

	keyBits = 2048
)

// LoadError means persisted key material exists but cannot be used. It is
// fatal at startup: the custodian never regenerates over existing files.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load key material %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

type Custodian struct {
	private *rsa.PrivateKey
	public  *rsa.PublicKey
}

// PSSSaltLengthAuto signs with the largest salt that fits, so repeated
// signatures over the same digest differ.
var pssOpts = &rsa.PSSOptions{
	SaltLength: rsa.PSSSaltLengthAuto,
	Hash:       crypto.SHA256,
}

// LoadOrCreate loads the PEM keypair from dir, generating and persisting a
// fresh pair first if none exists. Generation claims the private key file
// with O_EXCL so two racing processes cannot both write key material; the
// loser re-reads the winner's files.
func LoadOrCreate(dir string, passphrase []byte) (*Custodian, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create key dir: %w", err)
	}
	privPath := filepath.Join(dir, privateKeyFile)
	pubPath := filepath.Join(dir, publicKeyFile)

	if _, err := os.Stat(privPath); err == nil {
		return load(privPath, pubPath, passphrase)
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, &LoadError{Path: privPath, Err: err}
	}

	private, err := rsa.GenerateKey(rand.Reader, keyBits)
	if err != nil {
		return nil, fmt.Errorf("generate keypair: %w", err)
	}
	switch err := persist(privPath, pubPath, private, passphrase); {
	case err == nil:
		return &Custodian{private: private, public: &private.PublicKey}, nil
	case errors.Is(err, os.ErrExist):
		// Another process won the generation race.
		return load(privPath, pubPath, passphrase)
	default:
		return nil, err
	}
}

func load(privPath, pubPath string, passphrase []byte) (*Custodian, error) {
	privPEM, err := os.ReadFile(privPath)
	if err != nil {
		return nil, &LoadError{Path: privPath, Err: err}
	}
	private, err := parsePrivatePEM(privPEM, passphrase)
	if err != nil {
		return nil, &LoadError{Path: privPath, Err: err}
	}

	pubPEM, err := os.ReadFile(pubPath)
	if err != nil {
		return nil, &LoadError{Path: pubPath, Err: err}
	}
	public, err := parsePublicPEM(pubPEM)
	if err != nil {
		return nil, &LoadError{Path: pubPath, Err: err}
	}
	if public.N.Cmp(private.N) != 0 || public.E != private.E {
		return nil, &LoadError{Path: pubPath, Err: errors.New("public key does not match private key")}
	}
	return &Custodian{private: private, public: public}, nil
}

func persist(privPath, pubPath string, private *rsa.PrivateKey, passphrase []byte) error {
	privBlock, err := encodePrivate(private, passphrase)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(privPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return err
	}
	if err := pem.Encode(f, privBlock); err != nil {
		f.Close()
		return fmt.Errorf("write private key: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write private key: %w", err)
	}

	pubDER, err := x509.MarshalPKIXPublicKey(&private.PublicKey)
	if err != nil {
		return fmt.Errorf("marshal public key: %w", err)
	}
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER})
	if err := os.WriteFile(pubPath, pubPEM, 0o644); err != nil {
		return fmt.Errorf("write public key: %w", err)
	}
	return nil
}

func encodePrivate(private *rsa.PrivateKey, passphrase []byte) (*pem.Block, error) {
	if len(passphrase) == 0 {
		der, err := x509.MarshalPKCS8PrivateKey(private)
		if err != nil {
			return nil, fmt.Errorf("marshal private key: %w", err)
		}
		return &pem.Block{Type: "PRIVATE KEY", Bytes: der}, nil
	}
	der := x509.MarshalPKCS1PrivateKey(private)
	block, err := x509.EncryptPEMBlock(rand.Reader, "RSA PRIVATE KEY", der, passphrase, x509.PEMCipherAES256) //nolint:staticcheck // PEM-level encryption mirrors the persisted format
	if err != nil {
		return nil, fmt.Errorf("encrypt private key: %w", err)
	}
	return block, nil
}

func parsePrivatePEM(data, passphrase []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, errors.New("no PEM block")
	}
	der := block.Bytes
	if x509.IsEncryptedPEMBlock(block) { //nolint:staticcheck
		if len(passphrase) == 0 {
			return nil, errors.New("private key is encrypted and no passphrase was supplied")
		}
		decrypted, err := x509.DecryptPEMBlock(block, passphrase) //nolint:staticcheck
		if err != nil {
			return nil, fmt.Errorf("decrypt private key: %w", err)
		}
		der = decrypted
	}
	switch block.Type {
	case "RSA PRIVATE KEY":
		return x509.ParsePKCS1PrivateKey(der)
	case "PRIVATE KEY":
		parsed, err := x509.ParsePKCS8PrivateKey(der)
		if err != nil {
			return nil, err
		}
		private, ok := parsed.(*rsa.PrivateKey)
		if !ok {
			return nil, errors.New("private key is not RSA")
		}
		return private, nil
	default:
		return nil, fmt.Errorf("unexpected PEM block type %q", block.Type)
	}
}

func parsePublicPEM(data []byte) (*rsa.PublicKey, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, errors.New("no PEM block")
	}
	parsed, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, err
	}
	public, ok := parsed.(*rsa.PublicKey)
	if !ok {
		return nil, errors.New("public key is not RSA")
	}
	return public, nil
}

// Hash returns the SHA-256 digest used as the signed payload. Signing the
// digest instead of the raw artifact bounds signature cost.
func (c *Custodian) Hash(data []byte) []byte {
	sum := sha256.Sum256(data)
	return sum[:]
}

// Sign produces an RSA-PSS signature over the digest. PSS salting is
// randomized, so repeated calls over the same digest yield different bytes
// that all verify.
func (c *Custodian) Sign(digest []byte) ([]byte, error) {
	inner := sha256.Sum256(digest)
	sig, err := rsa.SignPSS(rand.Reader, c.private, crypto.SHA256, inner[:], pssOpts)
	if err != nil {
		return nil, fmt.Errorf("sign digest: %w", err)
	}
	return sig, nil
}

// Verify reports whether signature validates digest under the current public
// key. Any failure mode yields false; malformed input never panics.
func (c *Custodian) Verify(signature, digest []byte) bool {
	return c.verify(signature, digest) == nil
}

func (c *Custodian) verify(signature, digest []byte) error {
	inner := sha256.Sum256(digest)
	return rsa.VerifyPSS(c.public, crypto.SHA256, inner[:], signature, pssOpts)
}

// EncryptReference encrypts a short plaintext (a record identifier in hex
// form) under the public key with OAEP-SHA256. Plaintext length is bounded
// by the key size; 2048-bit keys take up to 190 bytes.
func (c *Custodian) EncryptReference(plaintext []byte) ([]byte, error) {
	out, err := rsa.EncryptOAEP(sha256.New(), rand.Reader, c.public, plaintext, nil)
	if err != nil {
		return nil, fmt.Errorf("encrypt reference: %w", err)
	}
	return out, nil
}

// DecryptReference reverses EncryptReference with the private key.
func (c *Custodian) DecryptReference(ciphertext []byte) ([]byte, error) {
	out, err := rsa.DecryptOAEP(sha256.New(), rand.Reader, c.private, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("decrypt reference: %w", err)
	}
	return out, nil
}

// PublicKeyPEM exports the public half for display or external verifiers.
func (c *Custodian) PublicKeyPEM() (string, error) {
	der, err := x509.MarshalPKIXPublicKey(c.public)
	if err != nil {
		return "", fmt.Errorf("marshal public key: %w", err)
	}
	return string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})), nil
}
