package archive

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"posgate/internal/domain"
)

// Uploader writes snapshot documents to object storage and hands out
// time-limited download URLs for them. Implementations: S3Uploader,
// AzureUploader, GCSUploader.
type Uploader interface {
	// Upload stores data under key in the configured bucket and returns
	// the full storage path (s3://, az:// or gs:// URI).
	Upload(ctx context.Context, key string, data []byte) (string, error)
	// PresignGet generates a presigned GET URL for a previously uploaded
	// storage path.
	PresignGet(ctx context.Context, path string, expiry time.Duration) (string, error)
	// Bucket returns the configured bucket or container name.
	Bucket() string
}

// NewUploaderFromCredential creates an Uploader based on credential type.
// It dispatches to the appropriate cloud-specific constructor.
func NewUploaderFromCredential(cred domain.ArchiveCredential) (Uploader, error) {
	if err := cred.Validate(); err != nil {
		return nil, err
	}
	switch cred.CredentialType {
	case domain.CredentialTypeS3:
		return NewS3Uploader(cred)
	case domain.CredentialTypeAzure:
		return NewAzureUploader(cred)
	case domain.CredentialTypeGCS:
		return NewGCSUploader(cred)
	default:
		return nil, fmt.Errorf("unsupported credential type %q", cred.CredentialType)
	}
}

// splitBucketURI parses flat scheme://bucket/key storage URIs, the
// grammar s3:// and gs:// paths share.
func splitBucketURI(path, scheme string) (bucket, key string, err error) {
	u, err := url.Parse(path)
	if err != nil {
		return "", "", fmt.Errorf("parse storage path %q: %w", path, err)
	}
	if u.Scheme != scheme {
		return "", "", fmt.Errorf("expected %s:// scheme, got %q in %q", scheme, u.Scheme, path)
	}
	if key = strings.TrimPrefix(u.Path, "/"); key == "" {
		return "", "", fmt.Errorf("empty key in storage path %q", path)
	}
	return u.Host, key, nil
}
