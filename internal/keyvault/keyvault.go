package keyvault

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"
	"strings"

	"golang.org/x/crypto/nacl/secretbox"
)

var (
	// ErrNoKey means the process-wide vault key was never configured.
	ErrNoKey = errors.New("keyvault: encryption key is not configured")
	// ErrCiphertext covers truncated, tampered or wrong-key ciphertexts.
	ErrCiphertext = errors.New("keyvault: cannot decrypt ciphertext")
)

const nonceSize = 24

// Vault encrypts custodial secret keys at rest with a single symmetric
// key derived from the configured secret.
type Vault struct {
	key [32]byte
	set bool
}

func New(secret string) (*Vault, error) {
	if secret == "" {
		return nil, ErrNoKey
	}
	v := &Vault{set: true}
	v.key = sha256.Sum256([]byte(secret))
	return v, nil
}

func (v *Vault) Encrypt(secret string) (string, error) {
	if v == nil || !v.set {
		return "", ErrNoKey
	}
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", err
	}
	box := secretbox.Seal(nonce[:], []byte(secret), &nonce, &v.key)
	return base64.StdEncoding.EncodeToString(box), nil
}

func (v *Vault) Decrypt(ciphertext string) (string, error) {
	if v == nil || !v.set {
		return "", ErrNoKey
	}
	if ciphertext == "" {
		return "", ErrCiphertext
	}
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil || len(raw) <= nonceSize {
		return "", ErrCiphertext
	}
	var nonce [nonceSize]byte
	copy(nonce[:], raw[:nonceSize])
	plain, ok := secretbox.Open(nil, raw[nonceSize:], &nonce, &v.key)
	if !ok {
		return "", ErrCiphertext
	}
	secret := string(plain)
	// Stellar secret seeds start with S; anything else means the stored
	// blob never held valid key material.
	if !strings.HasPrefix(secret, "S") {
		return "", ErrCiphertext
	}
	return secret, nil
}
