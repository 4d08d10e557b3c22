package encryption

import (
	"fmt"

	"netbackup/internal/config"
	"netbackup/internal/nb"
)

// NewEncryptorFromConfig creates an Encryptor based on the configuration
// type. It returns nil for "none": archives are uploaded as plain zips.
func NewEncryptorFromConfig(cfg config.EncryptionConfig) (nb.Encryptor, error) {
	switch cfg.Type {
	case "none", "":
		return nil, nil
	case "age":
		if cfg.PublicKeyPath == "" || cfg.PrivateKeyPath == "" {
			return nil, fmt.Errorf("age encryption requires public_key_path and private_key_path")
		}
		return NewAgeEncryptor(cfg), nil
	case "test":
		return NewTestEncryptor(), nil
	default:
		return nil, fmt.Errorf("unknown encryption type: %q", cfg.Type)
	}
}
