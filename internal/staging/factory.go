package staging

import (
	"fmt"

	"netbackup/internal/config"
	"netbackup/internal/nb"
)

// DefaultStagingDir is where backup trees are written when no directory is configured.
const DefaultStagingDir = "azure_network_backups"

// NewStagingAreaFromConfig creates a StagingArea implementation based on the config type.
func NewStagingAreaFromConfig(cfg config.StagingConfig) (nb.StagingArea, error) {
	switch cfg.Type {
	case "memory":
		return NewMemoryStagingArea(), nil
	case "filesystem", "":
		dir := cfg.StagingDir
		if dir == "" {
			dir = DefaultStagingDir
		}
		return NewFileSystemStagingArea(dir)
	default:
		return nil, fmt.Errorf("unknown staging area type: %s", cfg.Type)
	}
}
