package testutil

import (
	"netbackup/internal/encryption"
	"netbackup/internal/nb"
)

// NewTestEncryptor creates a reversible, key-less encryptor for testing.
func NewTestEncryptor() nb.Encryptor {
	return encryption.NewTestEncryptor()
}
