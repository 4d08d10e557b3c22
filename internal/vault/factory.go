package vault

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"

	"netbackup/internal/config"
	"netbackup/internal/nb"
)

// NewVaultFromConfig creates a Vault implementation based on the vault config type.
// cred is only used by the azure vault.
func NewVaultFromConfig(ctx context.Context, cfg config.VaultConfig, cred azcore.TokenCredential) (nb.Vault, error) {
	if cfg.Container == "" {
		return nil, fmt.Errorf("vault requires a container name")
	}

	switch cfg.Type {
	case "memory":
		return NewMemoryVault(cfg.Container), nil
	case "azure":
		if cfg.StorageAccount == "" && cfg.BlobEndpoint == "" {
			return nil, fmt.Errorf("azure vault requires a storage account")
		}
		if cred == nil {
			return nil, fmt.Errorf("azure vault requires a credential")
		}
		return NewAzureBlobVault(cfg.BlobServiceURL(), cfg.Container, cred, nil)
	case "s3":
		return NewS3Vault(ctx, cfg)
	case "filesystem":
		if cfg.FSVaultRoot == "" {
			return nil, fmt.Errorf("filesystem vault requires fs_vault_root to be set")
		}
		return NewFileSystemVault(cfg.FSVaultRoot, cfg.Container)
	default:
		return nil, fmt.Errorf("unknown vault type: %s", cfg.Type)
	}
}
