package storage

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
)

// AzureBlobStore keeps enrollment snapshots in a private Azure Blob
// container.
type AzureBlobStore struct {
	client    *azblob.Client
	endpoint  string
	container string
}

func NewAzureBlobStore(endpoint, accountName, accountKey, container string) (*AzureBlobStore, error) {
	if endpoint == "" || accountName == "" || accountKey == "" {
		return nil, fmt.Errorf("azure blob: missing endpoint or credentials")
	}
	if container == "" {
		return nil, fmt.Errorf("azure blob: container not configured")
	}
	cred, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, fmt.Errorf("azure blob: credential error: %w", err)
	}
	client, err := azblob.NewClientWithSharedKeyCredential(endpoint, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("azure blob: client init failed: %w", err)
	}
	return &AzureBlobStore{
		client:    client,
		endpoint:  strings.TrimSuffix(endpoint, "/"),
		container: container,
	}, nil
}

func (s *AzureBlobStore) Save(ctx context.Context, snap *Snapshot) (*Location, error) {
	if err := ValidateSnapshot(snap); err != nil {
		return nil, err
	}

	blobName, err := sanitizeBlobPath(snap.Name)
	if err != nil {
		return nil, err
	}

	options := &azblob.UploadStreamOptions{}
	if snap.ContentType != "" {
		options.HTTPHeaders = &blob.HTTPHeaders{
			BlobContentType: &snap.ContentType,
		}
	}

	if _, err := s.client.UploadStream(ctx, s.container, blobName, snap.Reader, options); err != nil {
		return nil, fmt.Errorf("azure blob: upload failed: %w", err)
	}

	return &Location{
		Path: blobName,
		URL:  fmt.Sprintf("%s/%s/%s", s.endpoint, s.container, blobName),
	}, nil
}

func (s *AzureBlobStore) Open(ctx context.Context, loc *Location) (*Result, error) {
	if err := ValidateLocation(loc); err != nil {
		return nil, err
	}

	resp, err := s.client.DownloadStream(ctx, s.container, loc.Path, nil)
	if err != nil {
		return nil, fmt.Errorf("azure blob: download failed: %w", err)
	}

	contentType := ""
	if resp.ContentType != nil {
		contentType = *resp.ContentType
	}

	size := int64(0)
	if resp.ContentLength != nil {
		size = *resp.ContentLength
	}

	return &Result{
		Reader:      resp.Body,
		ContentType: contentType,
		Size:        size,
	}, nil
}

func (s *AzureBlobStore) Delete(ctx context.Context, loc *Location) error {
	if err := ValidateLocation(loc); err != nil {
		return err
	}
	if _, err := s.client.DeleteBlob(ctx, s.container, loc.Path, nil); err != nil {
		return fmt.Errorf("azure blob: delete failed: %w", err)
	}
	return nil
}

func sanitizeBlobPath(name string) (string, error) {
	clean := path.Clean(name)
	if clean == "." || clean == "/" {
		return "", fmt.Errorf("azure blob: invalid blob name")
	}
	if strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("azure blob: path traversal detected")
	}
	return clean, nil
}
