package database

import (
	"fmt"
	"path/filepath"

	"netbackup/internal/config"
	"netbackup/internal/nb"
)

// NewDatabaseFromConfig creates a Database implementation based on the database config type.
func NewDatabaseFromConfig(cfg config.DatabaseConfig) (nb.Database, error) {
	switch cfg.Type {
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite database")
		}
		return NewSQLiteDatabase(filepath.Join(cfg.DataDir, DatabaseFile))
	case "memory":
		return NewMemoryDatabase()
	default:
		return nil, fmt.Errorf("unknown database type: %s", cfg.Type)
	}
}
