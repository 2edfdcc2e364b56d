package secrets

import "errors"

var (
	ErrInvalidAppKey = errors.New("invalid app key: must be 32 bytes")
	ErrInvalidOrgKey = errors.New("invalid org key: must be 32 bytes")

	ErrEncryptionFailed  = errors.New("encryption failed")
	ErrDecryptionFailed  = errors.New("decryption failed")
	ErrInvalidCiphertext = errors.New("invalid ciphertext format")

	ErrKeyDerivationFailed = errors.New("key derivation failed")
)
