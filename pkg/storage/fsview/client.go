// File: pkg/storage/fsview/client.go
package fsview

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"strata/pkg/common"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// entry is one row of a delimited listing, or the metadata of a single object
type entry struct {
	Key          string
	Size         int64
	LastModified time.Time
	IsPrefix     bool
}

type client interface {
	// A positive limit stops the listing after that many entries
	List(ctx context.Context, bucket, prefix string, limit int) ([]entry, error)
	Stat(ctx context.Context, bucket, key string) (entry, error)
	Get(ctx context.Context, bucket, key string) (io.ReadCloser, error)
}

// newMinioClient builds a minio-go client for the resolved endpoint URL
func newMinioClient(endpoint string, cfg common.ProviderConfig) (*minioClient, error) {
	host, secure, err := parseEndpoint(endpoint)
	if err != nil {
		return nil, err
	}

	region := cfg.Region
	if !cfg.Provider.RequiresRegion() {
		region = "auto"
	}

	clientImpl, err := minio.New(host, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: secure,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}
	return &minioClient{client: clientImpl}, nil
}

// minio-go wants a bare host plus a TLS flag rather than a URL
func parseEndpoint(raw string) (string, bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false, fmt.Errorf("endpoint is required")
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", false, fmt.Errorf("parse endpoint URL: %w", err)
	}
	if parsed.Host == "" {
		return "", false, fmt.Errorf("endpoint host is required: %q", raw)
	}
	return parsed.Host, parsed.Scheme == "https", nil
}

type minioClient struct {
	client *minio.Client
}

func (m *minioClient) List(ctx context.Context, bucket, prefix string, limit int) ([]entry, error) {
	// Cancelling stops the listing goroutine if we return early
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	opts := minio.ListObjectsOptions{Prefix: prefix, Recursive: false}
	if limit > 0 {
		opts.MaxKeys = limit
	}

	var entries []entry
	for obj := range m.client.ListObjects(ctx, bucket, opts) {
		if obj.Err != nil {
			return nil, mapMinioErr(obj.Err)
		}
		entries = append(entries, entry{
			Key:          obj.Key,
			Size:         obj.Size,
			LastModified: obj.LastModified,
			// Non-recursive listings report common prefixes as keys ending in the delimiter
			IsPrefix: strings.HasSuffix(obj.Key, "/") && obj.ETag == "",
		})
		if limit > 0 && len(entries) >= limit {
			break
		}
	}
	return entries, nil
}

func (m *minioClient) Stat(ctx context.Context, bucket, key string) (entry, error) {
	info, err := m.client.StatObject(ctx, bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return entry{}, mapMinioErr(err)
	}
	return entry{Key: info.Key, Size: info.Size, LastModified: info.LastModified}, nil
}

func (m *minioClient) Get(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	obj, err := m.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, mapMinioErr(err)
	}
	// GetObject is lazy; Stat surfaces a missing key before the first Read
	if _, err := obj.Stat(); err != nil {
		_ = obj.Close()
		return nil, mapMinioErr(err)
	}
	return obj, nil
}

func mapMinioErr(err error) error {
	if err == nil {
		return nil
	}
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NotFound":
		return fmt.Errorf("%w: %v", fs.ErrNotExist, err)
	case "AccessDenied":
		return fmt.Errorf("%w: %v", fs.ErrPermission, err)
	}
	return err
}

var _ client = (*minioClient)(nil)
