package archive

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"posgate/internal/domain"
)

// Compile-time check: S3Uploader implements Uploader.
var _ Uploader = (*S3Uploader)(nil)

// S3Uploader writes snapshots to S3-compatible object storage using the
// AWS SDK v2. Path-style addressing is the default because most
// S3-compatible providers require it.
type S3Uploader struct {
	client        *s3.Client
	presignClient *s3.PresignClient
	bucket        string
}

// NewS3Uploader creates an uploader from an S3 archive credential.
func NewS3Uploader(cred domain.ArchiveCredential) (*S3Uploader, error) {
	opts := s3.Options{
		Region: cred.Region,
		Credentials: credentials.NewStaticCredentialsProvider(
			cred.KeyID, cred.Secret, "",
		),
		UsePathStyle: cred.URLStyle != "vhost",
	}
	if cred.Endpoint != "" {
		opts.BaseEndpoint = aws.String(fmt.Sprintf("https://%s", cred.Endpoint))
	}
	client := s3.New(opts)

	return &S3Uploader{
		client:        client,
		presignClient: s3.NewPresignClient(client),
		bucket:        cred.Bucket,
	}, nil
}

// Upload puts the document at key and returns its s3:// path.
func (u *S3Uploader) Upload(ctx context.Context, key string, data []byte) (string, error) {
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("put object %q/%q: %w", u.bucket, key, err)
	}
	return fmt.Sprintf("s3://%s/%s", u.bucket, key), nil
}

// PresignGet generates a presigned GET URL for an S3 object.
// path is a full s3:// URI like "s3://bucket/snapshots/xxx.json".
func (u *S3Uploader) PresignGet(ctx context.Context, path string, expiry time.Duration) (string, error) {
	bucket, key, err := ParseS3Path(path)
	if err != nil {
		return "", err
	}

	result, err := u.presignClient.PresignGetObject(ctx,
		&s3.GetObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(key),
		},
		s3.WithPresignExpires(expiry),
	)
	if err != nil {
		return "", fmt.Errorf("presign GetObject for %q: %w", path, err)
	}
	return result.URL, nil
}

// Bucket returns the configured S3 bucket name.
func (u *S3Uploader) Bucket() string {
	return u.bucket
}

// ParseS3Path extracts bucket and key from an "s3://bucket/path/to/file" URI.
func ParseS3Path(path string) (bucket, key string, err error) {
	return splitBucketURI(path, "s3")
}
