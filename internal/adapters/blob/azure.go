package blob

import (
	"context"
	"fmt"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	azblobblob "github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/sas"
)

// AzureStore implements PhotoStore on Azure Blob Storage. Display URLs
// are shared-key-signed SAS URLs; signing is local.
type AzureStore struct {
	client    *azblob.Client
	container string
}

// AzureConfig holds Azure Blob Storage configuration. A shared key is
// required because SAS URLs are signed with it.
type AzureConfig struct {
	Container   string
	AccountName string
	AccountKey  string
}

// NewAzureStore creates a new Azure photo store.
func NewAzureStore(cfg AzureConfig) (*AzureStore, error) {
	serviceURL := fmt.Sprintf("https://%s.blob.core.windows.net/", cfg.AccountName)

	cred, err := azblob.NewSharedKeyCredential(cfg.AccountName, cfg.AccountKey)
	if err != nil {
		return nil, err
	}

	client, err := azblob.NewClientWithSharedKeyCredential(serviceURL, cred, nil)
	if err != nil {
		return nil, err
	}

	return &AzureStore{
		client:    client,
		container: cfg.Container,
	}, nil
}

// Put stores the photo bytes under the given key.
func (s *AzureStore) Put(ctx context.Context, key string, data []byte) error {
	contentType := photoContentType
	_, err := s.client.UploadBuffer(ctx, s.container, key, data, &azblob.UploadBufferOptions{
		HTTPHeaders: &azblobblob.HTTPHeaders{
			BlobContentType: &contentType,
		},
	})
	return err
}

// DisplayURL returns a read-only SAS URL valid for ttl.
func (s *AzureStore) DisplayURL(_ context.Context, key string, ttl time.Duration) (string, error) {
	blobClient := s.client.ServiceClient().
		NewContainerClient(s.container).
		NewBlobClient(key)

	return blobClient.GetSASURL(
		sas.BlobPermissions{Read: true},
		time.Now().UTC().Add(ttl),
		nil,
	)
}
