package secrets

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"io"

	"golang.org/x/crypto/hkdf"
)

const (
	// KeySize is the required length of both input keys (AES-256).
	KeySize = 32

	// domainInfo separates this derivation from any other HKDF use of the
	// same key material.
	domainInfo = "emailify-secrets-v1"
)

// ValidateKeys checks both keys are exactly KeySize bytes.
func ValidateKeys(appKey, orgKey []byte) error {
	validApp := len(appKey) == KeySize
	validOrg := len(orgKey) == KeySize
	if !validApp {
		return ErrInvalidAppKey
	}
	if !validOrg {
		return ErrInvalidOrgKey
	}
	return nil
}

// deriveKey combines the app key and org key through HKDF-SHA256 so a leaked
// org key alone cannot decrypt stored secrets.
func deriveKey(appKey, orgKey []byte) ([]byte, error) {
	reader := hkdf.New(sha256.New, appKey, orgKey, []byte(domainInfo))
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, errors.Join(ErrKeyDerivationFailed, err)
	}
	return key, nil
}

// GenerateKey returns a fresh random 32-byte key.
func GenerateKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}
	return key, nil
}
