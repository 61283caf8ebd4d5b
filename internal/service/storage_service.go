// File: internal/service/storage_service.go
package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"

	"strata/internal/metrics"
	"strata/internal/provider/factory"
	"strata/pkg/common"
	"strata/pkg/gateway"
	"strata/pkg/storage"

	"golang.org/x/sync/errgroup"
)

// Upper bound on providers queried at once by ListAllBuckets
const maxConcurrentProviders = 4

type StorageService struct {
	providerFactory *factory.Factory
	logger          *slog.Logger
}

func NewStorageService(providerFactory *factory.Factory, logger *slog.Logger) *StorageService {
	return &StorageService{
		providerFactory: providerFactory,
		logger:          logger.With("service", "StorageService"),
	}
}

// --- Bucket Operations ---

// ListAllBuckets queries every provider concurrently. A failing provider is logged and skipped
func (s *StorageService) ListAllBuckets(ctx context.Context, providerNames []string) ([]storage.Bucket, error) {
	if len(providerNames) == 0 {
		return nil, nil
	}

	s.logger.Debug("Starting ListAllBuckets operation", "providers", providerNames)

	var allBuckets []storage.Bucket
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentProviders)

	for _, pName := range providerNames {
		g.Go(func() error {
			client, err := s.providerFactory.GetStorageProvider(gctx, pName)
			if err != nil {
				s.logger.Error("Failed to initialize provider client", "provider", pName, "error", err)
				return nil
			}
			defer client.Close()

			buckets, err := client.ListBuckets(gctx)
			metrics.ObserveStorageOperation(pName, "list_buckets", err)
			if err != nil {
				s.logger.Error("Failed to list buckets from provider", "provider", pName, "error", err)
				return nil
			}

			mu.Lock()
			allBuckets = append(allBuckets, buckets...)
			mu.Unlock()

			s.logger.Debug("Successfully fetched buckets", "provider", pName, "count", len(buckets))
			return nil
		})
	}

	// Workers never return errors, partial results are still a success
	_ = g.Wait()

	sort.SliceStable(allBuckets, func(i, j int) bool {
		if allBuckets[i].Provider != allBuckets[j].Provider {
			return allBuckets[i].Provider < allBuckets[j].Provider
		}
		return allBuckets[i].Name < allBuckets[j].Name
	})
	return allBuckets, nil
}

// DescribeBucket describes a bucket through the S3-compatible API, then lets the provider's native
// inspector add what that API cannot report. A failing inspector leaves the S3 view in place
func (s *StorageService) DescribeBucket(ctx context.Context, bucketName, providerName string) (storage.Bucket, error) {
	s.logger.Debug("Starting DescribeBucket operation", "bucket", bucketName, "provider", providerName)

	bucketName, err := s.resolveBucket(providerName, bucketName)
	if err != nil {
		return storage.Bucket{}, err
	}

	client, err := s.getStorageClient(ctx, providerName)
	if err != nil {
		return storage.Bucket{}, err
	}
	defer client.Close()

	bucket, err := client.DescribeBucket(ctx, bucketName)
	metrics.ObserveStorageOperation(providerName, "describe_bucket", err)
	if err != nil {
		s.logger.Error("Failed to describe bucket", "bucket", bucketName, "provider", providerName, "error", err)
		return storage.Bucket{}, err
	}

	inspector, err := s.providerFactory.GetBucketInspector(ctx, providerName)
	if err != nil {
		s.logger.Warn("Native inspector unavailable, showing S3 details only", "provider", providerName, "error", err)
		return bucket, nil
	}
	if inspector == nil {
		return bucket, nil
	}
	defer inspector.Close()

	augmented, err := inspector.AugmentBucket(ctx, bucket)
	metrics.ObserveStorageOperation(providerName, "augment_bucket", err)
	if err != nil {
		s.logger.Warn("Failed to add native bucket details, showing S3 details only", "bucket", bucketName, "provider", providerName, "error", err)
		return bucket, nil
	}
	return augmented, nil
}

func (s *StorageService) CreateBucket(ctx context.Context, bucketName, providerName, location string) error {
	s.logger.Debug("Starting CreateBucket operation", "bucket", bucketName, "provider", providerName, "location", location)

	client, err := s.getStorageClient(ctx, providerName)
	if err != nil {
		return err
	}
	defer client.Close()

	err = client.CreateBucket(ctx, bucketName, location)
	metrics.ObserveStorageOperation(providerName, "create_bucket", err)
	if err != nil {
		s.logger.Error("Failed to create bucket", "bucket", bucketName, "provider", providerName, "error", err)
		return err
	}
	return nil
}

func (s *StorageService) DeleteBucket(ctx context.Context, bucketName, providerName string) error {
	s.logger.Debug("Starting DeleteBucket operation", "bucket", bucketName, "provider", providerName)

	client, err := s.getStorageClient(ctx, providerName)
	if err != nil {
		return err
	}
	defer client.Close()

	err = client.DeleteBucket(ctx, bucketName)
	metrics.ObserveStorageOperation(providerName, "delete_bucket", err)
	if err != nil {
		s.logger.Error("Failed to delete bucket", "bucket", bucketName, "provider", providerName, "error", err)
		return err
	}
	return nil
}

// --- Object Operations ---

// An empty bucketName falls back to the provider's configured default bucket in every object operation

func (s *StorageService) ListObjects(ctx context.Context, bucketName, providerName, prefix string) (storage.ObjectList, error) {
	s.logger.Debug("Starting ListObjects operation", "bucket", bucketName, "provider", providerName, "prefix", prefix)

	bucketName, err := s.resolveBucket(providerName, bucketName)
	if err != nil {
		return storage.ObjectList{}, err
	}

	client, err := s.getStorageClient(ctx, providerName)
	if err != nil {
		return storage.ObjectList{}, err
	}
	defer client.Close()

	objects, err := client.ListObjects(ctx, bucketName, prefix)
	metrics.ObserveStorageOperation(providerName, "list_objects", err)
	if err != nil {
		s.logger.Error("Failed to list objects", "bucket", bucketName, "provider", providerName, "error", err)
		return storage.ObjectList{}, err
	}
	return objects, nil
}

func (s *StorageService) DescribeObject(ctx context.Context, bucketName, objectKey, providerName string) (storage.Object, error) {
	s.logger.Debug("Starting DescribeObject operation", "bucket", bucketName, "object", objectKey, "provider", providerName)

	bucketName, err := s.resolveBucket(providerName, bucketName)
	if err != nil {
		return storage.Object{}, err
	}

	client, err := s.getStorageClient(ctx, providerName)
	if err != nil {
		return storage.Object{}, err
	}
	defer client.Close()

	object, err := client.DescribeObject(ctx, bucketName, objectKey)
	metrics.ObserveStorageOperation(providerName, "describe_object", err)
	if err != nil {
		s.logger.Error("Failed to describe object", "bucket", bucketName, "object", objectKey, "provider", providerName, "error", err)
		return storage.Object{}, err
	}
	return object, nil
}

// GetObject streams an object body. Closing the reader also releases the provider client
func (s *StorageService) GetObject(ctx context.Context, bucketName, objectKey, providerName string) (io.ReadCloser, error) {
	s.logger.Debug("Starting GetObject operation", "bucket", bucketName, "object", objectKey, "provider", providerName)

	bucketName, err := s.resolveBucket(providerName, bucketName)
	if err != nil {
		return nil, err
	}

	client, err := s.getStorageClient(ctx, providerName)
	if err != nil {
		return nil, err
	}

	body, err := client.GetObject(ctx, bucketName, objectKey)
	metrics.ObserveStorageOperation(providerName, "get_object", err)
	if err != nil {
		client.Close()
		s.logger.Error("Failed to get object", "bucket", bucketName, "object", objectKey, "provider", providerName, "error", err)
		return nil, err
	}
	return &clientBody{ReadCloser: body, client: client}, nil
}

func (s *StorageService) PutObject(ctx context.Context, bucketName, objectKey, providerName string, body io.Reader, contentType string) error {
	s.logger.Debug("Starting PutObject operation", "bucket", bucketName, "object", objectKey, "provider", providerName)

	bucketName, err := s.resolveBucket(providerName, bucketName)
	if err != nil {
		return err
	}

	client, err := s.getStorageClient(ctx, providerName)
	if err != nil {
		return err
	}
	defer client.Close()

	err = client.PutObject(ctx, bucketName, objectKey, body, contentType)
	metrics.ObserveStorageOperation(providerName, "put_object", err)
	if err != nil {
		s.logger.Error("Failed to put object", "bucket", bucketName, "object", objectKey, "provider", providerName, "error", err)
		return err
	}
	return nil
}

func (s *StorageService) DeleteObject(ctx context.Context, bucketName, objectKey, providerName string) error {
	s.logger.Debug("Starting DeleteObject operation", "bucket", bucketName, "object", objectKey, "provider", providerName)

	bucketName, err := s.resolveBucket(providerName, bucketName)
	if err != nil {
		return err
	}

	client, err := s.getStorageClient(ctx, providerName)
	if err != nil {
		return err
	}
	defer client.Close()

	err = client.DeleteObject(ctx, bucketName, objectKey)
	metrics.ObserveStorageOperation(providerName, "delete_object", err)
	if err != nil {
		s.logger.Error("Failed to delete object", "bucket", bucketName, "object", objectKey, "provider", providerName, "error", err)
		return err
	}
	return nil
}

// --- Gateway views ---

// OpenFilesystem returns the read-only filesystem view of a bucket
func (s *StorageService) OpenFilesystem(providerName, bucketName string) (*gateway.FilesystemView, error) {
	cfg, err := s.providerFactory.GetProviderConfig(providerName, bucketName)
	if err != nil {
		return nil, err
	}
	return gateway.OpenFilesystemView(cfg, s.logger.With("provider", string(cfg.Provider)))
}

// Check reports whether a provider has every argument needed to open handles. It never fails on missing values
func (s *StorageService) Check(providerName, bucketName string) gateway.Confirmation {
	cfg, err := s.providerFactory.GetProviderConfig(providerName, bucketName)
	if err != nil {
		return gateway.Confirmation{Provider: common.Provider(providerName), Err: err}
	}
	return gateway.CheckArguments(cfg)
}

// Helper to initialize the storage client and handle common error logging
func (s *StorageService) getStorageClient(ctx context.Context, providerName string) (storage.Storage, error) {
	client, err := s.providerFactory.GetStorageProvider(ctx, providerName)
	if err != nil {
		s.logger.Error("Failed to initialize provider", "provider", providerName, "error", err)
		return nil, fmt.Errorf("error initializing provider: %w", err)
	}
	return client, nil
}

func (s *StorageService) resolveBucket(providerName, bucketName string) (string, error) {
	if bucketName != "" {
		return bucketName, nil
	}
	cfg, err := s.providerFactory.GetProviderConfig(providerName, "")
	if err != nil {
		return "", err
	}
	if cfg.Bucket == "" {
		return "", &common.MissingArgumentError{Fields: []string{"bucket"}}
	}
	return cfg.Bucket, nil
}

type clientBody struct {
	io.ReadCloser
	client storage.Storage
}

func (b *clientBody) Close() error {
	err := b.ReadCloser.Close()
	if cerr := b.client.Close(); err == nil {
		err = cerr
	}
	return err
}
