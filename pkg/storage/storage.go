// File: pkg/storage/storage.go
package storage

import (
	"context"
	"io"
	"strata/pkg/common"
)

// Storage is the account-level view of one provider used by the CLI services
type Storage interface {
	ProviderName() common.Provider

	ListBuckets(ctx context.Context) ([]Bucket, error)
	DescribeBucket(ctx context.Context, bucketName string) (Bucket, error)
	CreateBucket(ctx context.Context, bucketName string, location string) error
	DeleteBucket(ctx context.Context, bucketName string) error

	ListObjects(ctx context.Context, bucketName string, prefix string) (ObjectList, error)
	DescribeObject(ctx context.Context, bucketName string, objectKey string) (Object, error)
	GetObject(ctx context.Context, bucketName string, objectKey string) (io.ReadCloser, error)
	PutObject(ctx context.Context, bucketName string, objectKey string, body io.Reader, contentType string) error
	DeleteObject(ctx context.Context, bucketName string, objectKey string) error

	Close() error
}

// BucketInspector layers provider-native details over a bucket described through the S3-compatible API
type BucketInspector interface {
	AugmentBucket(ctx context.Context, base Bucket) (Bucket, error)
	Close() error
}
