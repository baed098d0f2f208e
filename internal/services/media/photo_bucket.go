package media

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"
	"sync/atomic"
	"time"

	"github.com/minio/minio-go/v7"
)

// PhotoBucket signs read URLs for profile photos kept in one S3 bucket.
type PhotoBucket struct {
	client *minio.Client
	bucket string
	ready  atomic.Bool
}

func NewPhotoBucket(client *minio.Client, bucket string) *PhotoBucket {
	return &PhotoBucket{
		client: client,
		bucket: strings.TrimSpace(bucket),
	}
}

// EnsureBucket creates the bucket on first use. A successful check is
// remembered; a failed one is retried on the next call.
func (b *PhotoBucket) EnsureBucket(ctx context.Context) error {
	if b.client == nil {
		return fmt.Errorf("s3 client is nil")
	}
	if b.bucket == "" {
		return fmt.Errorf("photo bucket name is empty")
	}
	if b.ready.Load() {
		return nil
	}

	exists, err := b.client.BucketExists(ctx, b.bucket)
	if err != nil {
		return fmt.Errorf("check photo bucket %q: %w", b.bucket, err)
	}
	if !exists {
		if err := b.client.MakeBucket(ctx, b.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("create photo bucket %q: %w", b.bucket, err)
		}
	}

	b.ready.Store(true)
	return nil
}

func (b *PhotoBucket) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if b.client == nil {
		return "", fmt.Errorf("s3 client is nil")
	}
	key, ok := cleanObjectKey(key)
	if !ok {
		return "", ErrValidation
	}
	if ttl <= 0 {
		ttl = defaultURLTTL
	}

	params := url.Values{}
	params.Set("response-content-disposition", "inline")
	signed, err := b.client.PresignedGetObject(ctx, b.bucket, key, ttl, params)
	if err != nil {
		return "", fmt.Errorf("presign photo %q: %w", key, err)
	}
	return signed.String(), nil
}

// cleanObjectKey rejects keys that would escape the bucket root.
func cleanObjectKey(key string) (string, bool) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", false
	}
	cleaned := path.Clean("/" + key)
	if cleaned == "/" || strings.Contains(key, "..") {
		return "", false
	}
	return strings.TrimPrefix(cleaned, "/"), true
}
