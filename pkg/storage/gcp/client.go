// File: pkg/storage/gcp/client.go
package gcp

import (
	"context"
	"fmt"
	"log/slog"
	"strata/internal/config"
	"strata/internal/provider/registry"
	"strata/pkg/storage"

	gcpstorage "cloud.google.com/go/storage"
)

// Objects and the base bucket view for GCP go through the S3 interoperability endpoint.
// When gcp.project is set, this inspector layers the GCS-only details on top.
func init() {
	registry.RegisterInspector("gcp", registry.InspectorRegistration{
		ConfigCheck: hasProject,
		Initializer: initialize,
	})
}

func hasProject(cfg *config.Config) bool {
	return cfg.GCP != nil && cfg.GCP.Project != ""
}

func initialize(ctx context.Context, cfg *config.Config, logger *slog.Logger) (storage.BucketInspector, error) {
	if !hasProject(cfg) {
		return nil, fmt.Errorf("gcp.project is required for native bucket inspection")
	}
	return NewInspector(ctx, cfg.GCP.Project, logger)
}

type attrsFunc func(ctx context.Context, bucketName string) (*gcpstorage.BucketAttrs, error)

type usageFunc func(ctx context.Context, bucketName string) (int64, error)

// Inspector augments an S3-compatible bucket description with labels, lifecycle rules,
// logging, public access prevention and Cloud Monitoring usage
type Inspector struct {
	projectID string
	logger    *slog.Logger

	attrs attrsFunc
	usage usageFunc
	close func() error
}

var _ storage.BucketInspector = (*Inspector)(nil)

// Uses Application Default Credentials; the HMAC keys of the interoperability endpoint do not apply here
func NewInspector(ctx context.Context, projectID string, logger *slog.Logger) (*Inspector, error) {
	client, err := gcpstorage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client for native inspection: %w", err)
	}

	in := &Inspector{
		projectID: projectID,
		logger:    logger,
		attrs: func(ctx context.Context, bucketName string) (*gcpstorage.BucketAttrs, error) {
			return client.Bucket(bucketName).Attrs(ctx)
		},
		close: client.Close,
	}
	in.usage = in.bucketUsage
	return in, nil
}

func (in *Inspector) Close() error {
	if in.close != nil {
		return in.close()
	}
	return nil
}
