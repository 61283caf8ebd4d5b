package gcp

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"strata/internal/config"
	"strata/pkg/common"
	"strata/pkg/storage"

	monitoringpb "cloud.google.com/go/monitoring/apiv3/v2/monitoringpb"
	gcpstorage "cloud.google.com/go/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractUsageValue(t *testing.T) {
	assert.Equal(t, int64(0), extractUsageValue(nil))
	assert.Equal(t, int64(42), extractUsageValue(&monitoringpb.TypedValue{
		Value: &monitoringpb.TypedValue_Int64Value{Int64Value: 42},
	}))
	assert.Equal(t, int64(1025), extractUsageValue(&monitoringpb.TypedValue{
		Value: &monitoringpb.TypedValue_DoubleValue{DoubleValue: 1024.6},
	}))
	assert.Equal(t, int64(0), extractUsageValue(&monitoringpb.TypedValue{
		Value: &monitoringpb.TypedValue_StringValue{StringValue: "n/a"},
	}))
}

func TestUsageRequest(t *testing.T) {
	end := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	req := usageRequest("my-project", "reviews", end)

	assert.Equal(t, "projects/my-project", req.GetName())
	assert.Contains(t, req.GetFilter(), `resource.labels.bucket_name="reviews"`)
	assert.Contains(t, req.GetFilter(), totalBytesMetric)
	assert.Equal(t, end.Add(-metricTimeWindow), req.GetInterval().GetStartTime().AsTime())
	assert.Equal(t, monitoringpb.Aggregation_REDUCE_SUM, req.GetAggregation().GetCrossSeriesReducer())
}

func s3View() storage.Bucket {
	return storage.Bucket{
		Name:       "reviews",
		Provider:   common.GCP,
		Endpoint:   "https://storage.googleapis.com/",
		Location:   "auto",
		UsageBytes: -1,
		Versioning: &storage.Versioning{Enabled: true},
	}
}

func newTestInspector(attrs *gcpstorage.BucketAttrs, attrsErr error, usage int64, usageErr error) *Inspector {
	return &Inspector{
		projectID: "analytics",
		logger:    slog.New(slog.DiscardHandler),
		attrs: func(context.Context, string) (*gcpstorage.BucketAttrs, error) {
			return attrs, attrsErr
		},
		usage: func(context.Context, string) (int64, error) {
			return usage, usageErr
		},
	}
}

func TestMergeAttrsKeepsS3Identity(t *testing.T) {
	created := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	merged := mergeAttrs(s3View(), &gcpstorage.BucketAttrs{
		Name:                   "reviews",
		Location:               "EUROPE-WEST1",
		StorageClass:           "STANDARD",
		Created:                created,
		VersioningEnabled:      false,
		Labels:                 map[string]string{"team": "data"},
		Logging:                &gcpstorage.BucketLogging{LogBucket: "audit", LogObjectPrefix: "reviews/"},
		PublicAccessPrevention: gcpstorage.PublicAccessPreventionEnforced,
		Lifecycle: gcpstorage.Lifecycle{Rules: []gcpstorage.LifecycleRule{
			{
				Action:    gcpstorage.LifecycleAction{Type: "SetStorageClass", StorageClass: "COLDLINE"},
				Condition: gcpstorage.LifecycleCondition{AgeInDays: 90},
			},
			{Action: gcpstorage.LifecycleAction{Type: "Delete"}},
		}},
	})

	assert.Equal(t, "https://storage.googleapis.com/", merged.Endpoint)
	assert.Equal(t, common.GCP, merged.Provider)
	assert.True(t, merged.Versioning.Enabled, "S3 versioning answer wins")
	assert.Equal(t, "EUROPE-WEST1", merged.Location)
	assert.Equal(t, "STANDARD", merged.StorageClass)
	assert.Equal(t, created, merged.CreatedAt)
	assert.Equal(t, map[string]string{"team": "data"}, merged.Labels)
	assert.Equal(t, "Enforced", merged.PublicAccessPrevention)
	require.NotNil(t, merged.Logging)
	assert.Equal(t, "audit", merged.Logging.LogBucket)

	require.Len(t, merged.LifecycleRules, 2)
	assert.Equal(t, "SetStorageClass to COLDLINE", merged.LifecycleRules[0].Action)
	assert.Equal(t, 90, merged.LifecycleRules[0].Condition.Age)
	assert.Equal(t, "Delete", merged.LifecycleRules[1].Action)
}

func TestMergeAttrsFillsMissingVersioning(t *testing.T) {
	base := s3View()
	base.Versioning = nil

	merged := mergeAttrs(base, &gcpstorage.BucketAttrs{VersioningEnabled: true})
	require.NotNil(t, merged.Versioning)
	assert.True(t, merged.Versioning.Enabled)
	assert.Equal(t, "auto", merged.Location)
	assert.Empty(t, merged.PublicAccessPrevention)
	assert.Nil(t, merged.LifecycleRules)
	assert.Nil(t, merged.Logging)

	assert.Equal(t, base, mergeAttrs(base, nil))
}

func TestAugmentBucketAddsUsage(t *testing.T) {
	in := newTestInspector(&gcpstorage.BucketAttrs{Location: "US"}, nil, 2048, nil)

	bucket, err := in.AugmentBucket(context.Background(), s3View())
	require.NoError(t, err)
	assert.Equal(t, int64(2048), bucket.UsageBytes)
	assert.Equal(t, "US", bucket.Location)
}

func TestAugmentBucketUsageUnavailable(t *testing.T) {
	in := newTestInspector(&gcpstorage.BucketAttrs{Location: "US"}, nil, -1, ErrMetricsNotFound)

	bucket, err := in.AugmentBucket(context.Background(), s3View())
	require.NoError(t, err)
	assert.Equal(t, int64(-1), bucket.UsageBytes)
	assert.Equal(t, "US", bucket.Location)
}

func TestAugmentBucketAttrsError(t *testing.T) {
	in := newTestInspector(nil, errors.New("storage: bucket doesn't exist"), 0, nil)

	bucket, err := in.AugmentBucket(context.Background(), s3View())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reviews")
	assert.Equal(t, s3View(), bucket)
}

func TestInspectorClose(t *testing.T) {
	closed := false
	in := &Inspector{close: func() error { closed = true; return nil }}
	require.NoError(t, in.Close())
	assert.True(t, closed)
	assert.NoError(t, (&Inspector{}).Close())
}

func TestHasProject(t *testing.T) {
	assert.False(t, hasProject(&config.Config{}))
	assert.False(t, hasProject(&config.Config{GCP: &config.GCPSettings{}}))
	assert.True(t, hasProject(&config.Config{GCP: &config.GCPSettings{Project: "analytics"}}))
}
