package app

import (
	"context"
	"fmt"

	"netbackup/internal/azure"
	"netbackup/internal/config"
	"netbackup/internal/nb"
	"netbackup/internal/vault"
)

// azureConnector builds the directory and vault for each run from config.
// Credentials are created here, at run start, never at process start.
type azureConnector struct {
	cfg *config.Config
}

var _ nb.Connector = (*azureConnector)(nil)

func (c *azureConnector) Connect(ctx context.Context) (nb.Directory, nb.Vault, error) {
	if missing := c.cfg.MissingRequired(); len(missing) > 0 {
		return nil, nil, &nb.ConfigurationError{Missing: missing}
	}

	az := c.cfg.Azure
	cred, err := azure.NewCredential(az.TenantID, az.ClientID, az.ClientSecret)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", nb.ErrConfiguration, err)
	}

	dir, err := azure.NewDirectory(cred, nil, az.RequestsPerSecond)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", nb.ErrConfiguration, err)
	}

	v, err := vault.NewVaultFromConfig(ctx, c.cfg.Vault, cred)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: creating vault: %w", nb.ErrConfiguration, err)
	}

	return dir, v, nil
}
