package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v9"
)

const (
	DefaultContainer  = "azure-network-backups"
	DefaultStagingDir = "azure_network_backups"
	DefaultHost       = "0.0.0.0"
	DefaultPort       = 8000
)

// Config represents the main configuration for netbackup.
type Config struct {
	BaseDir    string           `toml:"base_dir" env:"NETBACKUP_BASE_DIR"`
	LogDir     string           `toml:"log_dir" env:"NETBACKUP_LOG_DIR"`
	Debug      bool             `toml:"debug,omitempty" env:"NETBACKUP_DEBUG"`
	Azure      AzureConfig      `toml:"azure"`
	Vault      VaultConfig      `toml:"vault"`
	Staging    StagingConfig    `toml:"staging"`
	Database   DatabaseConfig   `toml:"database"`
	Encryption EncryptionConfig `toml:"encryption"`
	Server     ServerConfig     `toml:"server"`
}

// AzureConfig holds the service principal used to read the directory.
type AzureConfig struct {
	TenantID     string `toml:"tenant_id" env:"AZURE_TENANT_ID"`
	ClientID     string `toml:"client_id" env:"AZURE_CLIENT_ID"`
	ClientSecret string `toml:"client_secret,omitempty" env:"AZURE_CLIENT_SECRET"`

	// RequestsPerSecond throttles directory page fetches; 0 disables throttling.
	RequestsPerSecond float64 `toml:"requests_per_second,omitempty" env:"AZURE_REQUESTS_PER_SECOND"`
}

// VaultConfig represents configuration for the archive store.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type VaultConfig struct {
	Type      string `toml:"type" env:"NETBACKUP_VAULT_TYPE"` // "azure", "s3", "filesystem" or "memory"
	Container string `toml:"container" env:"NETBACKUP_CONTAINER"`

	// RetryMaxElapsed enables upload retries for up to this duration, e.g. "2m".
	RetryMaxElapsed string `toml:"retry_max_elapsed,omitempty"`

	// Azure-specific fields (only used when Type == "azure")
	StorageAccount string `toml:"storage_account,omitempty" env:"AZURE_STORAGE_ACCOUNT_NAME"`
	BlobEndpoint   string `toml:"blob_endpoint,omitempty"` // defaults to https://<account>.blob.core.windows.net/

	// S3-specific fields (only used when Type == "s3")
	S3Region          string `toml:"s3_region,omitempty"`
	S3Prefix          string `toml:"s3_prefix,omitempty"`
	S3Endpoint        string `toml:"s3_endpoint,omitempty"`
	S3AccessKeyID     string `toml:"s3_access_key_id,omitempty"`
	S3SecretAccessKey string `toml:"s3_secret_access_key,omitempty"`

	// FileSystem-specific fields (only used when Type == "filesystem")
	FSVaultRoot string `toml:"fs_vault_root,omitempty"`
}

// RetryWindow parses RetryMaxElapsed. An empty value means no retries.
func (c VaultConfig) RetryWindow() (time.Duration, error) {
	if c.RetryMaxElapsed == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.RetryMaxElapsed)
	if err != nil {
		return 0, fmt.Errorf("invalid retry_max_elapsed %q: %w", c.RetryMaxElapsed, err)
	}
	return d, nil
}

// BlobServiceURL returns the Blob Storage endpoint for the configured account.
func (c VaultConfig) BlobServiceURL() string {
	if c.BlobEndpoint != "" {
		return c.BlobEndpoint
	}
	return fmt.Sprintf("https://%s.blob.core.windows.net/", c.StorageAccount)
}

// DatabaseConfig represents configuration for the run history database.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type DatabaseConfig struct {
	Type    string `toml:"type"`               // "sqlite" or "memory"
	DataDir string `toml:"data_dir,omitempty"` // only used for type=sqlite
}

// StagingConfig represents configuration for the staging area.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type StagingConfig struct {
	Type       string `toml:"type"`                  // "memory" or "filesystem"
	StagingDir string `toml:"staging_dir,omitempty"` // only used for type=filesystem
}

// EncryptionConfig selects optional archive encryption.
type EncryptionConfig struct {
	Type           string `toml:"type"` // "none" (default), "age" or "test"
	PublicKeyPath  string `toml:"public_key_path,omitempty"`
	PrivateKeyPath string `toml:"private_key_path,omitempty"`
}

// ServerConfig holds the HTTP listen address.
type ServerConfig struct {
	Host string `toml:"host" env:"SERVER_HOST"`
	Port int    `toml:"port" env:"SERVER_PORT"`
}

// Addr returns host:port.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// NewConfig creates a new Config rooted at baseDir with defaults applied.
func NewConfig(baseDir string) *Config {
	cfg := &Config{BaseDir: baseDir}
	cfg.SetDefaults()
	return cfg
}

// SetDefaults fills every unset field with its default.
func (c *Config) SetDefaults() {
	if c.LogDir == "" && c.BaseDir != "" {
		c.LogDir = filepath.Join(c.BaseDir, "log")
	}
	if c.Vault.Type == "" {
		c.Vault.Type = "azure"
	}
	if c.Vault.Container == "" {
		c.Vault.Container = DefaultContainer
	}
	if c.Staging.Type == "" {
		c.Staging.Type = "filesystem"
	}
	if c.Staging.Type == "filesystem" && c.Staging.StagingDir == "" {
		c.Staging.StagingDir = DefaultStagingDir
	}
	if c.Database.Type == "" {
		c.Database.Type = "sqlite"
	}
	if c.Database.Type == "sqlite" && c.Database.DataDir == "" && c.BaseDir != "" {
		c.Database.DataDir = filepath.Join(c.BaseDir, "db")
	}
	if c.Encryption.Type == "" {
		c.Encryption.Type = "none"
	}
	if c.Encryption.PublicKeyPath == "" && c.BaseDir != "" {
		c.Encryption.PublicKeyPath = filepath.Join(c.BaseDir, "keys", "netbackup.pub")
	}
	if c.Encryption.PrivateKeyPath == "" && c.BaseDir != "" {
		c.Encryption.PrivateKeyPath = filepath.Join(c.BaseDir, "keys", "netbackup.key")
	}
	if c.Server.Host == "" {
		c.Server.Host = DefaultHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
}

// MissingRequired lists the required environment variables whose values are
// unset, in a stable order.
func (c *Config) MissingRequired() []string {
	required := []struct {
		name  string
		value string
	}{
		{"AZURE_CLIENT_ID", c.Azure.ClientID},
		{"AZURE_CLIENT_SECRET", c.Azure.ClientSecret},
		{"AZURE_TENANT_ID", c.Azure.TenantID},
	}
	if c.Vault.Type == "azure" {
		required = append(required, struct {
			name  string
			value string
		}{"AZURE_STORAGE_ACCOUNT_NAME", c.Vault.StorageAccount})
	}

	var missing []string
	for _, r := range required {
		if r.value == "" {
			missing = append(missing, r.name)
		}
	}
	return missing
}

// Redacted returns a copy safe for display.
func (c *Config) Redacted() *Config {
	cp := *c
	if cp.Azure.ClientSecret != "" {
		cp.Azure.ClientSecret = "********"
	}
	if cp.Vault.S3SecretAccessKey != "" {
		cp.Vault.S3SecretAccessKey = "********"
	}
	return &cp
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ApplyEnv overlays environment variables onto cfg. Unset variables leave
// the file values in place.
func ApplyEnv(cfg *Config) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parsing environment: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// Load reads the file at path if it exists, overlays the environment and
// applies defaults. A missing file is not an error.
func Load(path, baseDir string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); err == nil {
		cfg, err = ReadFromFile(path)
		if err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("checking config file: %w", err)
	}

	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	if cfg.BaseDir == "" {
		cfg.BaseDir = baseDir
	}
	cfg.SetDefaults()
	return cfg, nil
}

// writeToFile writes a Config to the specified file path.
func writeToFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the provided
// Config. The client secret is never written; supply it through the environment.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	cp := *cfg
	cp.Azure.ClientSecret = ""
	if err := writeToFile(path, &cp); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
