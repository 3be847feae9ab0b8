package archive

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"posgate/internal/domain"
)

// Compile-time check: GCSUploader implements Uploader.
var _ Uploader = (*GCSUploader)(nil)

// GCSUploader writes snapshots to Google Cloud Storage.
type GCSUploader struct {
	client *storage.Client
	bucket string
}

// NewGCSUploader creates an uploader from a GCS archive credential.
func NewGCSUploader(cred domain.ArchiveCredential) (*GCSUploader, error) {
	client, err := storage.NewClient(context.Background(),
		option.WithAuthCredentialsFile(option.ServiceAccount, cred.GCSKeyFilePath))
	if err != nil {
		return nil, fmt.Errorf("create GCS client: %w", err)
	}

	return &GCSUploader{
		client: client,
		bucket: cred.GCSBucket,
	}, nil
}

// Upload puts the document at key and returns its gs:// path.
func (u *GCSUploader) Upload(ctx context.Context, key string, data []byte) (string, error) {
	w := u.client.Bucket(u.bucket).Object(key).NewWriter(ctx)
	w.ContentType = "application/json"
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("write object %q/%q: %w", u.bucket, key, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("close object %q/%q: %w", u.bucket, key, err)
	}
	return fmt.Sprintf("gs://%s/%s", u.bucket, key), nil
}

// PresignGet generates a signed GET URL for a GCS object.
// path is a full gs:// URI like "gs://bucket/snapshots/xxx.json".
func (u *GCSUploader) PresignGet(_ context.Context, path string, expiry time.Duration) (string, error) {
	bucket, key, err := ParseGCSPath(path)
	if err != nil {
		return "", err
	}

	signedURL, err := u.client.Bucket(bucket).SignedURL(key, &storage.SignedURLOptions{
		Method:  "GET",
		Expires: time.Now().Add(expiry),
	})
	if err != nil {
		return "", fmt.Errorf("sign GetObject for %q: %w", path, err)
	}
	return signedURL, nil
}

// Bucket returns the configured GCS bucket name.
func (u *GCSUploader) Bucket() string {
	return u.bucket
}

// ParseGCSPath extracts bucket and key from a "gs://bucket/path/to/file" URI.
func ParseGCSPath(path string) (bucket, key string, err error) {
	return splitBucketURI(path, "gs")
}
