package objectstore

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/yanqian/iknowall-bot/internal/domain/qa"
)

// maxDocumentSize is the largest object accepted as a Q&A document.
const maxDocumentSize = 4 << 20

// Source reads the Q&A document from an S3 compatible bucket (R2, MinIO, S3).
type Source struct {
	client  *minio.Client
	bucket  string
	key     string
	timeout time.Duration
	maxSize int64
}

// NewSource constructs the object storage adapter.
func NewSource(endpoint, accessKey, secretKey, bucket, region, key string, timeout time.Duration) (*Source, error) {
	useSSL := !strings.HasPrefix(strings.ToLower(strings.TrimSpace(endpoint)), "http://")
	client, err := minio.New(sanitizeEndpoint(endpoint), &minio.Options{
		Creds:        credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure:       useSSL,
		Region:       region,
		BucketLookup: minio.BucketLookupPath,
	})
	if err != nil {
		return nil, fmt.Errorf("init object storage client: %w", err)
	}
	return &Source{client: client, bucket: bucket, key: key, timeout: timeout, maxSize: maxDocumentSize}, nil
}

// FetchText implements qa.DocumentSource.
func (s *Source) FetchText(ctx context.Context) (string, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	obj, err := s.client.GetObject(ctx, s.bucket, s.key, minio.GetObjectOptions{})
	if err != nil {
		return "", fmt.Errorf("get object %s/%s: %w", s.bucket, s.key, err)
	}
	defer obj.Close()
	info, err := obj.Stat()
	if err != nil {
		return "", fmt.Errorf("stat object %s/%s: %w", s.bucket, s.key, err)
	}
	if info.Size > s.maxSize {
		return "", fmt.Errorf("object %s/%s is %d bytes, limit is %d", s.bucket, s.key, info.Size, s.maxSize)
	}
	// the size from Stat is advisory; a truncated document must never be served
	data, err := io.ReadAll(io.LimitReader(obj, s.maxSize+1))
	if err != nil {
		return "", fmt.Errorf("read object %s/%s: %w", s.bucket, s.key, err)
	}
	if int64(len(data)) > s.maxSize {
		return "", fmt.Errorf("object %s/%s exceeds %d bytes", s.bucket, s.key, s.maxSize)
	}
	return string(data), nil
}

// sanitizeEndpoint removes schemes and paths to satisfy minio.New expectations.
func sanitizeEndpoint(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(strings.TrimPrefix(raw, "https://"), "http://")
	if idx := strings.IndexByte(raw, '/'); idx >= 0 {
		raw = raw[:idx]
	}
	return raw
}

var _ qa.DocumentSource = (*Source)(nil)
