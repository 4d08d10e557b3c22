package vault

import (
	"context"
	"fmt"
	"io"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"

	"netbackup/internal/azure"
	"netbackup/internal/nb"
)

// AzureBlobVault stores archives as block blobs in a single container.
type AzureBlobVault struct {
	client    *azblob.Client
	container string
}

// NewAzureBlobVault creates a vault for container on the Blob service at
// serviceURL, authenticating with cred. opts may be nil.
func NewAzureBlobVault(serviceURL, container string, cred azcore.TokenCredential, opts *azblob.ClientOptions) (*AzureBlobVault, error) {
	client, err := azblob.NewClient(serviceURL, cred, opts)
	if err != nil {
		return nil, fmt.Errorf("creating blob client: %w", err)
	}
	return &AzureBlobVault{client: client, container: container}, nil
}

// EnsureContainer creates the container. An existing container is success.
func (v *AzureBlobVault) EnsureContainer(ctx context.Context) error {
	_, err := v.client.CreateContainer(ctx, v.container, nil)
	if err != nil && !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
		return fmt.Errorf("creating container %s: %w", v.container, azure.ClassifyError(err))
	}
	return nil
}

// Put uploads r as a block blob, overwriting any existing blob.
func (v *AzureBlobVault) Put(ctx context.Context, key string, r io.Reader, size int64) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read content: %w", err)
	}
	if int64(len(data)) != size {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, len(data))
	}

	if _, err := v.client.UploadBuffer(ctx, v.container, key, data, nil); err != nil {
		return fmt.Errorf("uploading blob %s: %w", key, azure.ClassifyError(err))
	}
	return nil
}

// Get downloads the blob stored under key into w.
func (v *AzureBlobVault) Get(ctx context.Context, key string, w io.Writer) error {
	resp, err := v.client.DownloadStream(ctx, v.container, key, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return fmt.Errorf("object not found: %s", key)
		}
		return fmt.Errorf("downloading blob %s: %w", key, azure.ClassifyError(err))
	}
	defer resp.Body.Close()

	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("reading blob %s: %w", key, err)
	}
	return nil
}

// ValidateSetup reads the container's properties. A missing container
// still proves the account is reachable and the credential is accepted.
func (v *AzureBlobVault) ValidateSetup(ctx context.Context) error {
	cc := v.client.ServiceClient().NewContainerClient(v.container)
	_, err := cc.GetProperties(ctx, nil)
	if err != nil && !bloberror.HasCode(err, bloberror.ContainerNotFound) {
		return fmt.Errorf("checking container %s: %w", v.container, azure.ClassifyError(err))
	}
	return nil
}

// Compile-time check that AzureBlobVault implements nb.Vault interface
var _ nb.Vault = (*AzureBlobVault)(nil)
