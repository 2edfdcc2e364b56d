// Package secrets encrypts per-organization provider credentials at rest.
//
// A compound 32-byte key is derived from the application key and the
// organization key with HKDF-SHA256, then used with AES-256-GCM. Neither key
// alone can decrypt a stored secret.
package secrets
