// File: pkg/storage/s3compat/client.go
package s3compat

import (
	"context"
	"fmt"
	"log/slog"
	"strata/internal/config"
	"strata/internal/provider/registry"
	"strata/pkg/common"
	"strata/pkg/storage"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// GCS' interoperability endpoint accepts any region and signs against "auto"
const gcpSigningRegion = "auto"

func init() {
	for _, name := range common.SupportedProviders() {
		p := common.Provider(name)
		registry.RegisterProvider(name, registry.ProviderRegistration{
			ConfigCheck: func(cfg *config.Config) bool { return isConfigured(cfg, p) },
			Initializer: func(ctx context.Context, cfg *config.Config, logger *slog.Logger) (storage.Storage, error) {
				return initialize(ctx, cfg, p, logger)
			},
		})
	}
}

// Checks that the provider block carries credentials and, where needed, a region
func isConfigured(cfg *config.Config, p common.Provider) bool {
	s := cfg.Settings(p)
	if s == nil || s.AccessKey == "" || s.SecretKey == "" {
		return false
	}
	return s.Region != "" || !p.RequiresRegion()
}

func initialize(ctx context.Context, cfg *config.Config, p common.Provider, logger *slog.Logger) (storage.Storage, error) {
	pc, err := cfg.ProviderConfig(string(p), "")
	if err != nil {
		return nil, err
	}
	return New(ctx, pc, logger)
}

// S3API is the subset of *s3.Client used by this package
type S3API interface {
	ListBuckets(ctx context.Context, params *s3.ListBucketsInput, optFns ...func(*s3.Options)) (*s3.ListBucketsOutput, error)
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	GetBucketVersioning(ctx context.Context, params *s3.GetBucketVersioningInput, optFns ...func(*s3.Options)) (*s3.GetBucketVersioningOutput, error)
	CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
	DeleteBucket(ctx context.Context, params *s3.DeleteBucketInput, optFns ...func(*s3.Options)) (*s3.DeleteBucketOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

var _ S3API = (*s3.Client)(nil)

// NewClient builds an SDK client against the provider's resolved endpoint.
// Nothing is sent over the network until the first request.
func NewClient(ctx context.Context, cfg common.ProviderConfig) (*s3.Client, string, error) {
	endpoint, err := common.ResolveEndpoint(cfg.Provider, cfg.Region)
	if err != nil {
		return nil, "", err
	}

	region := cfg.Region
	if !cfg.Provider.RequiresRegion() {
		region = gcpSigningRegion
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load AWS SDK config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(strings.TrimSuffix(endpoint, "/"))
		if cfg.Provider != common.AWS {
			// Non-AWS providers reject the default CRC32 trailing checksums
			o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
			o.ResponseChecksumValidation = aws.ResponseChecksumValidationWhenRequired
		}
	})

	return client, endpoint, nil
}

type S3Storage struct {
	client   S3API
	provider common.Provider
	endpoint string
	region   string
	logger   *slog.Logger
}

var _ storage.Storage = (*S3Storage)(nil)

// New validates the credentials and creates the account-level storage for one provider
func New(ctx context.Context, cfg common.ProviderConfig, logger *slog.Logger) (*S3Storage, error) {
	if err := cfg.ValidateCredentials(); err != nil {
		return nil, err
	}

	client, endpoint, err := NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}

	logger.Debug("Created S3-compatible client", "endpoint", endpoint, "region", cfg.Region)
	return NewWithClient(client, cfg.Provider, endpoint, cfg.Region, logger), nil
}

func NewWithClient(client S3API, provider common.Provider, endpoint, region string, logger *slog.Logger) *S3Storage {
	return &S3Storage{
		client:   client,
		provider: provider,
		endpoint: endpoint,
		region:   region,
		logger:   logger,
	}
}

// Bucket returns a handle bound to a single bucket
func (s *S3Storage) Bucket(name string) *BucketHandle {
	return &BucketHandle{storage: s, name: name}
}

func (s *S3Storage) Endpoint() string {
	return s.endpoint
}

func (s *S3Storage) ProviderName() common.Provider {
	return s.provider
}

func (s *S3Storage) Close() error {
	// The SDK client holds no resources that need releasing
	return nil
}
