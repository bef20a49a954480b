package storage

import (
	"context"
	"fmt"
	"net/url"
	"os"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/memblob"
)

// BlobStore writes attachments to any gocloud bucket URL (file://, mem://).
type BlobStore struct {
	bucket  *blob.Bucket
	baseURL string
}

// OpenBlobStore opens bucketURL. Local directories are created on demand.
func OpenBlobStore(ctx context.Context, bucketURL, publicBaseURL string) (*BlobStore, error) {
	u, err := url.Parse(bucketURL)
	if err != nil {
		return nil, fmt.Errorf("parse bucket url: %w", err)
	}
	if u.Scheme == "file" {
		if err := os.MkdirAll(u.Path, 0o755); err != nil {
			return nil, fmt.Errorf("ensure bucket dir: %w", err)
		}
	}
	bk, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, fmt.Errorf("open bucket: %w", err)
	}
	return &BlobStore{bucket: bk, baseURL: publicBaseURL}, nil
}

func (s *BlobStore) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	key = sanitizeKey(key)
	if err := s.bucket.WriteAll(ctx, key, data, &blob.WriterOptions{ContentType: contentType}); err != nil {
		return "", fmt.Errorf("write %s: %w", key, err)
	}
	return joinURL(s.baseURL, key), nil
}

func (s *BlobStore) Delete(ctx context.Context, key string) error {
	return s.bucket.Delete(ctx, sanitizeKey(key))
}

// Exists reports whether key is present in the bucket.
func (s *BlobStore) Exists(ctx context.Context, key string) (bool, error) {
	return s.bucket.Exists(ctx, sanitizeKey(key))
}

func (s *BlobStore) Close() error {
	return s.bucket.Close()
}
