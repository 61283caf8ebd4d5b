// File: pkg/storage/s3compat/objects.go
package s3compat

import (
	"context"
	"fmt"
	"io"
	"strata/pkg/storage"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

func (s *S3Storage) ListObjects(ctx context.Context, bucketName string, prefix string) (storage.ObjectList, error) {
	s.logger.Debug("Starting ListObjects operation (delimited)", "bucket", bucketName, "prefix", prefix)

	result := storage.ObjectList{
		BucketName:     bucketName,
		Prefix:         prefix,
		Objects:        []storage.Object{},
		CommonPrefixes: []string{},
	}

	input := &s3.ListObjectsV2Input{
		Bucket:    aws.String(bucketName),
		Delimiter: aws.String("/"),
	}
	if prefix != "" {
		input.Prefix = aws.String(prefix)
	}

	paginator := s3.NewListObjectsV2Paginator(s.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return storage.ObjectList{}, fmt.Errorf("error iterating objects: %w", err)
		}
		for _, cp := range page.CommonPrefixes {
			result.CommonPrefixes = append(result.CommonPrefixes, aws.ToString(cp.Prefix))
		}
		for _, obj := range page.Contents {
			result.Objects = append(result.Objects, storage.Object{
				Key:          aws.ToString(obj.Key),
				Bucket:       bucketName,
				Provider:     s.provider,
				Size:         aws.ToInt64(obj.Size),
				StorageClass: string(obj.StorageClass),
				LastModified: aws.ToTime(obj.LastModified),
				ETag:         trimETag(aws.ToString(obj.ETag)),
			})
		}
	}

	return result, nil
}

func (s *S3Storage) DescribeObject(ctx context.Context, bucketName string, objectKey string) (storage.Object, error) {
	s.logger.Debug("Starting DescribeObject operation", "bucket", bucketName, "object", objectKey)

	head, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucketName),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		return storage.Object{}, fmt.Errorf("error getting object metadata: %w", err)
	}

	storageClass := string(head.StorageClass)
	if storageClass == "" {
		// HeadObject omits the class for STANDARD objects
		storageClass = "STANDARD"
	}

	return storage.Object{
		Key:             objectKey,
		Bucket:          bucketName,
		Provider:        s.provider,
		Size:            aws.ToInt64(head.ContentLength),
		StorageClass:    storageClass,
		LastModified:    aws.ToTime(head.LastModified),
		ETag:            trimETag(aws.ToString(head.ETag)),
		ContentType:     aws.ToString(head.ContentType),
		ContentEncoding: aws.ToString(head.ContentEncoding),
		CacheControl:    aws.ToString(head.CacheControl),
		Metadata:        head.Metadata,
	}, nil
}

// GetObject returns the object body. The caller must close it
func (s *S3Storage) GetObject(ctx context.Context, bucketName string, objectKey string) (io.ReadCloser, error) {
	s.logger.Debug("Starting GetObject operation", "bucket", bucketName, "object", objectKey)

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucketName),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		return nil, fmt.Errorf("error getting object %q: %w", objectKey, err)
	}
	return out.Body, nil
}

func (s *S3Storage) PutObject(ctx context.Context, bucketName string, objectKey string, body io.Reader, contentType string) error {
	s.logger.Debug("Starting PutObject operation", "bucket", bucketName, "object", objectKey)

	input := &s3.PutObjectInput{
		Bucket: aws.String(bucketName),
		Key:    aws.String(objectKey),
		Body:   body,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("error putting object %q: %w", objectKey, err)
	}
	return nil
}

func (s *S3Storage) DeleteObject(ctx context.Context, bucketName string, objectKey string) error {
	s.logger.Debug("Starting DeleteObject operation", "bucket", bucketName, "object", objectKey)

	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucketName),
		Key:    aws.String(objectKey),
	}); err != nil {
		return fmt.Errorf("error deleting object %q: %w", objectKey, err)
	}
	return nil
}

func trimETag(etag string) string {
	if len(etag) >= 2 && etag[0] == '"' && etag[len(etag)-1] == '"' {
		return etag[1 : len(etag)-1]
	}
	return etag
}
