// Package crypto seals small secrets, such as stored provider API keys,
// with AES-256-GCM before they reach the database.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"
)

var (
	ErrInvalidKey        = errors.New("crypto: invalid encryption key")
	ErrEncryptionFailed  = errors.New("crypto: encryption failed")
	ErrDecryptionFailed  = errors.New("crypto: decryption failed")
	ErrInvalidCipherText = errors.New("crypto: invalid cipher text")
)

// deriveKey stretches an arbitrary-length passphrase into the 32 bytes
// AES-256 requires.
func deriveKey(key string) []byte {
	hash := sha256.Sum256([]byte(key))
	return hash[:]
}

// Encrypt seals plainText under the given passphrase. The random nonce is
// prepended to the ciphertext and the whole blob is base64-encoded, so the
// result is safe to store in a text column.
func Encrypt(plainText string, key string) (string, error) {
	if key == "" {
		return "", ErrInvalidKey
	}

	block, err := aes.NewCipher(deriveKey(key))
	if err != nil {
		return "", ErrEncryptionFailed
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", ErrEncryptionFailed
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", ErrEncryptionFailed
	}

	sealed := gcm.Seal(nonce, nonce, []byte(plainText), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt. A wrong passphrase or a tampered blob surfaces
// as ErrDecryptionFailed; input that is not even a valid blob surfaces as
// ErrInvalidCipherText.
func Decrypt(cipherText string, key string) (string, error) {
	if key == "" {
		return "", ErrInvalidKey
	}

	data, err := base64.StdEncoding.DecodeString(cipherText)
	if err != nil {
		return "", ErrInvalidCipherText
	}

	block, err := aes.NewCipher(deriveKey(key))
	if err != nil {
		return "", ErrDecryptionFailed
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", ErrDecryptionFailed
	}

	if len(data) < gcm.NonceSize() {
		return "", ErrInvalidCipherText
	}

	nonce, sealed := data[:gcm.NonceSize()], data[gcm.NonceSize():]
	plainText, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", ErrDecryptionFailed
	}

	return string(plainText), nil
}
