package transform

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"

	"github.com/pkg/errors"
)

// FieldCipher applies reversible symmetric encryption to individual column
// values using AES-GCM, keyed by a process-wide secret.
type FieldCipher struct {
	gcm cipher.AEAD
}

func NewFieldCipher(key []byte) (*FieldCipher, error) {
	c, err := aes.NewCipher(key)
	if err != nil {
		return nil, errors.Wrap(err, "error creating field cipher")
	}
	gcm, err := cipher.NewGCM(c)
	if err != nil {
		return nil, errors.Wrap(err, "error creating field cipher")
	}
	return &FieldCipher{gcm: gcm}, nil
}

// EncryptString seals the plain text and returns base64(nonce || ciphertext).
// The nonce is random per value so equal inputs produce different outputs.
func (f *FieldCipher) EncryptString(plainText string) (string, error) {
	nonce := make([]byte, f.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", errors.Wrap(err, "error generating nonce")
	}
	sealed := f.gcm.Seal(nonce, nonce, []byte(plainText), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// DecryptString reverses EncryptString.
func (f *FieldCipher) DecryptString(encoded string) (string, error) {
	sealed, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", errors.Wrap(err, "error decoding encrypted value")
	}
	nonceSize := f.gcm.NonceSize()
	if len(sealed) < nonceSize {
		return "", fmt.Errorf("encrypted value is too short")
	}
	nonce, cipherText := sealed[:nonceSize], sealed[nonceSize:]
	plain, err := f.gcm.Open(nil, nonce, cipherText, nil)
	if err != nil {
		return "", errors.Wrap(err, "error decrypting value")
	}
	return string(plain), nil
}
