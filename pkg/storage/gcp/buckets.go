// File: pkg/storage/gcp/buckets.go
package gcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strata/pkg/storage"

	gcpstorage "cloud.google.com/go/storage"
)

// AugmentBucket keeps the identity the S3 view established (name, provider, endpoint, versioning)
// and fills in what only the native API knows. On error the base bucket is returned unchanged.
func (in *Inspector) AugmentBucket(ctx context.Context, base storage.Bucket) (storage.Bucket, error) {
	in.logger.Debug("Augmenting bucket with native GCS details", "bucket", base.Name)

	attrs, err := in.attrs(ctx, base.Name)
	if err != nil {
		return base, fmt.Errorf("error getting native attributes for bucket %s: %w", base.Name, err)
	}

	bucket := mergeAttrs(base, attrs)
	if bucket.UsageBytes >= 0 {
		return bucket, nil
	}

	usage, err := in.usage(ctx, base.Name)
	if err != nil {
		level, msg := slog.LevelWarn, "Failed to retrieve usage metrics, usage will be reported as N/A"
		if errors.Is(err, ErrMetricsNotFound) {
			level, msg = slog.LevelInfo, "Usage metrics not yet available (bucket may be new), usage will be reported as N/A"
		}
		in.logger.Log(ctx, level, msg, "bucket", base.Name, "error", err)
		return bucket, nil
	}
	bucket.UsageBytes = usage
	return bucket, nil
}

// Native values win for placement and policy; fields the S3 view already answered stay as they are
func mergeAttrs(base storage.Bucket, attrs *gcpstorage.BucketAttrs) storage.Bucket {
	out := base
	if attrs == nil {
		return out
	}

	if attrs.Location != "" {
		out.Location = attrs.Location
	}
	if out.StorageClass == "" {
		out.StorageClass = attrs.StorageClass
	}
	if out.CreatedAt.IsZero() {
		out.CreatedAt = attrs.Created
	}
	if out.UpdatedAt.IsZero() {
		out.UpdatedAt = attrs.Updated
	}
	if out.Versioning == nil {
		out.Versioning = &storage.Versioning{Enabled: attrs.VersioningEnabled}
	}

	if len(attrs.Labels) > 0 {
		labels := make(map[string]string, len(base.Labels)+len(attrs.Labels))
		for k, v := range base.Labels {
			labels[k] = v
		}
		for k, v := range attrs.Labels {
			labels[k] = v
		}
		out.Labels = labels
	}

	if attrs.Logging != nil {
		out.Logging = &storage.Logging{
			LogBucket:       attrs.Logging.LogBucket,
			LogObjectPrefix: attrs.Logging.LogObjectPrefix,
		}
	}

	out.LifecycleRules = nil
	for _, r := range attrs.Lifecycle.Rules {
		action := r.Action.Type
		if r.Action.StorageClass != "" {
			action = fmt.Sprintf("%s to %s", r.Action.Type, r.Action.StorageClass)
		}
		out.LifecycleRules = append(out.LifecycleRules, storage.LifecycleRule{
			Action: action,
			Condition: storage.LifecycleCondition{
				Age:                 int(r.Condition.AgeInDays),
				CreatedBefore:       r.Condition.CreatedBefore,
				MatchesStorageClass: r.Condition.MatchesStorageClasses,
				NumNewerVersions:    int(r.Condition.NumNewerVersions),
			},
		})
	}

	switch attrs.PublicAccessPrevention {
	case gcpstorage.PublicAccessPreventionEnforced:
		out.PublicAccessPrevention = "Enforced"
	case gcpstorage.PublicAccessPreventionInherited:
		out.PublicAccessPrevention = "Inherited"
	}
	return out
}
