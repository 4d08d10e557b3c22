package testutil

import (
	"netbackup/internal/staging"
)

// NewTestStagingArea creates a new in-memory staging area for testing.
func NewTestStagingArea() *staging.MemoryStagingArea {
	return staging.NewMemoryStagingArea()
}
