package archive

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/sas"

	"posgate/internal/domain"
)

// Compile-time check: AzureUploader implements Uploader.
var _ Uploader = (*AzureUploader)(nil)

// AzureUploader writes snapshots to Azure Blob Storage and signs download
// URLs with shared-key SAS tokens.
type AzureUploader struct {
	client    *azblob.Client
	container string
}

// NewAzureUploader creates an uploader from an Azure archive credential.
// Only account-key authentication is supported.
func NewAzureUploader(cred domain.ArchiveCredential) (*AzureUploader, error) {
	sharedKey, err := azblob.NewSharedKeyCredential(cred.AzureAccountName, cred.AzureAccountKey)
	if err != nil {
		return nil, fmt.Errorf("build shared key credential: %w", err)
	}
	client, err := azblob.NewClientWithSharedKeyCredential(
		fmt.Sprintf("https://%s.blob.core.windows.net", cred.AzureAccountName), sharedKey, nil)
	if err != nil {
		return nil, fmt.Errorf("build Azure blob client: %w", err)
	}
	return &AzureUploader{client: client, container: cred.AzureContainer}, nil
}

// Upload puts the document at key and returns its az:// path.
func (u *AzureUploader) Upload(ctx context.Context, key string, data []byte) (string, error) {
	if _, err := u.client.UploadBuffer(ctx, u.container, key, data, nil); err != nil {
		return "", fmt.Errorf("upload blob %q/%q: %w", u.container, key, err)
	}
	return fmt.Sprintf("az://%s/%s", u.container, key), nil
}

// PresignGet generates a presigned (SAS) GET URL for an Azure blob.
// path is a full Azure storage URI (abfss://, az://, or https://).
func (u *AzureUploader) PresignGet(_ context.Context, path string, expiry time.Duration) (string, error) {
	container, key, err := ParseAzurePath(path)
	if err != nil {
		return "", err
	}
	blob := u.client.ServiceClient().NewContainerClient(container).NewBlobClient(key)
	sasURL, err := blob.GetSASURL(sas.BlobPermissions{Read: true}, time.Now().Add(expiry), nil)
	if err != nil {
		return "", fmt.Errorf("generate SAS URL for %q: %w", path, err)
	}
	return sasURL, nil
}

// Bucket returns the container name (equivalent of an S3 bucket).
func (u *AzureUploader) Bucket() string {
	return u.container
}

// ParseAzurePath extracts container and key from an Azure storage URI.
// Three spellings show up in practice: abfss://container@account.dfs...,
// az://container/key, and the plain https:// blob endpoint.
func ParseAzurePath(path string) (container, key string, err error) {
	u, err := url.Parse(path)
	if err != nil {
		return "", "", fmt.Errorf("parse Azure path %q: %w", path, err)
	}

	switch u.Scheme {
	case "abfss":
		// url.Parse reads the container as userinfo: the part before
		// the @ in abfss://container@account.dfs.core.windows.net/key.
		if u.User == nil {
			return "", "", fmt.Errorf("abfss path %q missing container@account component", path)
		}
		container, key = u.User.Username(), strings.TrimPrefix(u.Path, "/")
	case "az":
		container, key = u.Host, strings.TrimPrefix(u.Path, "/")
	case "https":
		if !strings.Contains(u.Host, ".blob.core.windows.net") {
			return "", "", fmt.Errorf("unrecognized Azure HTTPS host %q in path %q", u.Host, path)
		}
		container, key, _ = strings.Cut(strings.TrimPrefix(u.Path, "/"), "/")
	default:
		return "", "", fmt.Errorf("unrecognized Azure path scheme %q in %q", u.Scheme, path)
	}

	switch {
	case container == "":
		return "", "", fmt.Errorf("empty container in Azure path %q", path)
	case key == "":
		return container, "", fmt.Errorf("empty key in Azure path %q", path)
	}
	return container, key, nil
}
