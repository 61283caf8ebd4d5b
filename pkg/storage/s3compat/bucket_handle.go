// File: pkg/storage/s3compat/bucket_handle.go
package s3compat

import (
	"context"
	"io"
	"strata/pkg/storage"
)

// BucketHandle scopes object operations to one bucket
type BucketHandle struct {
	storage *S3Storage
	name    string
}

func (b *BucketHandle) Name() string {
	return b.name
}

func (b *BucketHandle) List(ctx context.Context, prefix string) (storage.ObjectList, error) {
	return b.storage.ListObjects(ctx, b.name, prefix)
}

func (b *BucketHandle) Stat(ctx context.Context, key string) (storage.Object, error) {
	return b.storage.DescribeObject(ctx, b.name, key)
}

func (b *BucketHandle) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	return b.storage.GetObject(ctx, b.name, key)
}

func (b *BucketHandle) Put(ctx context.Context, key string, body io.Reader, contentType string) error {
	return b.storage.PutObject(ctx, b.name, key, body, contentType)
}

func (b *BucketHandle) Delete(ctx context.Context, key string) error {
	return b.storage.DeleteObject(ctx, b.name, key)
}

func (b *BucketHandle) Describe(ctx context.Context) (storage.Bucket, error) {
	return b.storage.DescribeBucket(ctx, b.name)
}
