// File: pkg/gateway/gateway.go
package gateway

import (
	"context"
	"log/slog"
	"strata/pkg/common"
	"strata/pkg/storage/fsview"
	"strata/pkg/storage/s3compat"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// StorageHandles pairs an SDK client with a handle bound to the configured bucket
type StorageHandles struct {
	Client   *s3.Client
	Bucket   *s3compat.BucketHandle
	Endpoint string
}

// FilesystemView exposes the bucket as a filesystem rooted at RootPath
type FilesystemView struct {
	FS       *fsview.BucketFS
	RootPath string
	Endpoint string
}

// Confirmation reports whether a config is complete enough to open handles, without failing
type Confirmation struct {
	Ready    bool
	Provider common.Provider
	Endpoint string
	Missing  []string
	Err      error
}

// OpenStorage resolves the endpoint and builds an authenticated client for cfg.
// Construction performs no network I/O; credential problems surface on the first request.
func OpenStorage(ctx context.Context, cfg common.ProviderConfig, logger *slog.Logger) (*StorageHandles, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client, endpoint, err := s3compat.NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	logger.Debug("Opened storage handles", "provider", cfg.Provider, "endpoint", endpoint, "bucket", cfg.Bucket)

	store := s3compat.NewWithClient(client, cfg.Provider, endpoint, cfg.Region, logger.With("provider", string(cfg.Provider)))
	return &StorageHandles{
		Client:   client,
		Bucket:   store.Bucket(cfg.Bucket),
		Endpoint: endpoint,
	}, nil
}

// OpenFilesystemView resolves the same endpoint as OpenStorage but goes through minio-go's
// listing API so the bucket can be walked with io/fs
func OpenFilesystemView(cfg common.ProviderConfig, logger *slog.Logger) (*FilesystemView, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	endpoint, err := common.ResolveEndpoint(cfg.Provider, cfg.Region)
	if err != nil {
		return nil, err
	}

	fsys, err := fsview.New(endpoint, cfg)
	if err != nil {
		return nil, err
	}
	logger.Debug("Opened filesystem view", "provider", cfg.Provider, "endpoint", endpoint, "bucket", cfg.Bucket)

	return &FilesystemView{
		FS:       fsys,
		RootPath: cfg.Bucket + "/",
		Endpoint: endpoint,
	}, nil
}

// CheckArguments validates cfg and resolves its endpoint, reporting problems in the result instead of an error
func CheckArguments(cfg common.ProviderConfig) Confirmation {
	c := Confirmation{Provider: cfg.Provider}

	err := cfg.Validate()
	if err != nil {
		c.Err = err
		c.Missing = cfg.MissingFields()
	}

	if p, perr := common.ParseProvider(string(cfg.Provider)); perr == nil {
		c.Provider = p
		c.Endpoint, _ = common.ResolveEndpoint(p, cfg.Region)
	}

	c.Ready = err == nil
	return c
}
