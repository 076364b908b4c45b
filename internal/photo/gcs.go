package photo

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"cloud.google.com/go/storage"
)

// GCSSigner signs download URLs for objects in a Cloud Storage bucket using
// the ambient Google credentials.
type GCSSigner struct {
	client *storage.Client
	bucket *storage.BucketHandle
	ttl    time.Duration
}

// NewGCSSigner creates a signer for bucket.
func NewGCSSigner(ctx context.Context, bucket string, ttl time.Duration) (*GCSSigner, error) {
	if bucket == "" {
		return nil, fmt.Errorf("bucket is required")
	}
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating storage client: %w", err)
	}
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &GCSSigner{client: client, bucket: client.Bucket(bucket), ttl: ttl}, nil
}

// SignedURL returns a V4 signed GET URL for object.
func (s *GCSSigner) SignedURL(_ context.Context, object string) (string, error) {
	u, err := s.bucket.SignedURL(object, &storage.SignedURLOptions{
		Scheme:  storage.SigningSchemeV4,
		Method:  http.MethodGet,
		Expires: time.Now().Add(s.ttl),
	})
	if err != nil {
		return "", fmt.Errorf("signing url: %w", err)
	}
	return u, nil
}

// Close releases the storage client.
func (s *GCSSigner) Close() error {
	return s.client.Close()
}
