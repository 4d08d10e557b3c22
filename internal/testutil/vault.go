package testutil

import (
	"netbackup/internal/vault"
)

// TestContainer is the container name used by test vaults.
const TestContainer = "azure-network-backups"

// NewTestVault creates a new in-memory vault for testing.
func NewTestVault() *vault.MemoryVault {
	return vault.NewMemoryVault(TestContainer)
}
