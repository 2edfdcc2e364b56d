package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"
)

// EncryptString encrypts plaintext under the compound key derived from the
// app key and the per-organization key, returning base64 ciphertext.
func EncryptString(appKey, orgKey []byte, plaintext string) (string, error) {
	ciphertext, err := EncryptBytes(appKey, orgKey, []byte(plaintext))
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// DecryptString reverses EncryptString.
func DecryptString(appKey, orgKey []byte, ciphertext string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", errors.Join(ErrInvalidCiphertext, err)
	}
	plaintext, err := DecryptBytes(appKey, orgKey, raw)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}

// EncryptBytes seals data with AES-256-GCM. The random nonce is prepended to
// the returned ciphertext.
func EncryptBytes(appKey, orgKey, data []byte) ([]byte, error) {
	if err := ValidateKeys(appKey, orgKey); err != nil {
		return nil, err
	}

	key, err := deriveKey(appKey, orgKey)
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errors.Join(ErrEncryptionFailed, err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, errors.Join(ErrEncryptionFailed, err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, errors.Join(ErrEncryptionFailed, err)
	}

	return gcm.Seal(nonce, nonce, data, nil), nil
}

// DecryptBytes opens ciphertext produced by EncryptBytes.
func DecryptBytes(appKey, orgKey, ciphertext []byte) ([]byte, error) {
	if err := ValidateKeys(appKey, orgKey); err != nil {
		return nil, err
	}

	key, err := deriveKey(appKey, orgKey)
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errors.Join(ErrDecryptionFailed, err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, errors.Join(ErrDecryptionFailed, err)
	}

	if len(ciphertext) < gcm.NonceSize() {
		return nil, ErrInvalidCiphertext
	}
	nonce, sealed := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]

	plaintext, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, errors.Join(ErrDecryptionFailed, err)
	}
	return plaintext, nil
}
