// File: pkg/storage/s3compat/buckets.go
package s3compat

import (
	"context"
	"fmt"
	"strata/pkg/storage"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3 leaves the location constraint empty for buckets in the default region
const defaultRegion = "us-east-1"

func (s *S3Storage) ListBuckets(ctx context.Context) ([]storage.Bucket, error) {
	s.logger.Debug("Starting ListBuckets operation")
	var buckets []storage.Bucket

	paginator := s3.NewListBucketsPaginator(s.client, &s3.ListBucketsInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("error listing buckets: %w", err)
		}
		for _, b := range page.Buckets {
			buckets = append(buckets, s.mapBucket(b))
		}
	}

	return buckets, nil
}

func (s *S3Storage) DescribeBucket(ctx context.Context, bucketName string) (storage.Bucket, error) {
	s.logger.Debug("Starting DescribeBucket operation", "bucket", bucketName)

	head, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(bucketName)})
	if err != nil {
		return storage.Bucket{}, fmt.Errorf("error getting bucket metadata: %w", err)
	}

	location := aws.ToString(head.BucketRegion)
	if location == "" {
		location = s.region
	}

	details := storage.Bucket{
		Name:       bucketName,
		Provider:   s.provider,
		Endpoint:   s.endpoint,
		Location:   location,
		UsageBytes: -1, // The S3 API has no cheap usage call
	}

	versioning, err := s.client.GetBucketVersioning(ctx, &s3.GetBucketVersioningInput{Bucket: aws.String(bucketName)})
	if err != nil {
		// Several S3-compatible providers do not implement versioning queries
		s.logger.Warn("Could not retrieve versioning status for bucket", "bucket", bucketName, "error", err)
	} else {
		details.Versioning = &storage.Versioning{Enabled: versioning.Status == types.BucketVersioningStatusEnabled}
	}

	return details, nil
}

func (s *S3Storage) CreateBucket(ctx context.Context, bucketName string, location string) error {
	input := &s3.CreateBucketInput{Bucket: aws.String(bucketName)}
	if location == "" {
		location = s.region
	}
	if location != "" && location != defaultRegion {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(location),
		}
	}

	if _, err := s.client.CreateBucket(ctx, input); err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

func (s *S3Storage) DeleteBucket(ctx context.Context, bucketName string) error {
	if _, err := s.client.DeleteBucket(ctx, &s3.DeleteBucketInput{Bucket: aws.String(bucketName)}); err != nil {
		return fmt.Errorf("failed to delete bucket: %w", err)
	}
	return nil
}

func (s *S3Storage) mapBucket(b types.Bucket) storage.Bucket {
	location := aws.ToString(b.BucketRegion)
	if location == "" {
		location = s.region
	}
	return storage.Bucket{
		Name:       aws.ToString(b.Name),
		Provider:   s.provider,
		Endpoint:   s.endpoint,
		Location:   location,
		CreatedAt:  aws.ToTime(b.CreationDate),
		UsageBytes: -1,
	}
}
