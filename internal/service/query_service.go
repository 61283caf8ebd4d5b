// File: internal/service/query_service.go
package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"strata/internal/metrics"
	"strata/internal/provider/factory"
	"strata/pkg/common"
	"strata/pkg/gateway"
	"strata/pkg/selectquery"
	"strata/pkg/tabular"
)

// Default S3 Select input format when neither the flag nor the config names one
const defaultSelectFormat = selectquery.FormatParquet

type SelectOptions struct {
	Provider string
	Bucket   string
	Key      string
	// SQL overrides the preset query when set
	SQL       string
	Format    string
	SampleOne bool
}

type TableOptions struct {
	Provider string
	Bucket   string
	Key      string
	// Format is "csv" or "parquet"; empty infers it from the key's extension
	Format  string
	Threads int
}

// The pieces of a storage handle the query paths need
type queryTarget struct {
	selector selectquery.SelectAPI
	source   tabular.ObjectSource
	bucket   string
}

type QueryService struct {
	providerFactory *factory.Factory
	logger          *slog.Logger
	open            func(ctx context.Context, cfg common.ProviderConfig) (queryTarget, error)
}

func NewQueryService(providerFactory *factory.Factory, logger *slog.Logger) *QueryService {
	s := &QueryService{
		providerFactory: providerFactory,
		logger:          logger.With("service", "QueryService"),
	}
	s.open = s.openGateway
	return s
}

func (s *QueryService) openGateway(ctx context.Context, cfg common.ProviderConfig) (queryTarget, error) {
	handles, err := gateway.OpenStorage(ctx, cfg, s.logger)
	if err != nil {
		return queryTarget{}, err
	}
	return queryTarget{selector: handles.Client, source: handles.Bucket, bucket: handles.Bucket.Name()}, nil
}

// Select runs an S3 Select query and collects every record
func (s *QueryService) Select(ctx context.Context, opts SelectOptions) ([]string, selectquery.Stats, error) {
	format := s.selectFormat(opts.Format)
	stream, err := s.startSelect(ctx, opts, format)
	if err != nil {
		metrics.ObserveSelectQuery(format, 0, 0, 0, err)
		return nil, selectquery.Stats{}, err
	}

	records, stats, err := selectquery.DrainResults(stream)
	metrics.ObserveSelectQuery(format, len(records), stats.BytesScanned, stats.BytesReturned, err)
	if err != nil {
		s.logger.Error("Failed to read select results", "key", opts.Key, "error", err)
		return records, stats, err
	}

	s.logger.Debug("Select query complete", "key", opts.Key, "records", len(records), "bytes_scanned", stats.BytesScanned)
	return records, stats, nil
}

// StreamSelect runs an S3 Select query and writes records to w as they arrive
func (s *QueryService) StreamSelect(ctx context.Context, opts SelectOptions, w io.Writer) (selectquery.Stats, error) {
	format := s.selectFormat(opts.Format)
	stream, err := s.startSelect(ctx, opts, format)
	if err != nil {
		metrics.ObserveSelectQuery(format, 0, 0, 0, err)
		return selectquery.Stats{}, err
	}

	stats, err := selectquery.StreamResults(stream, w)
	metrics.ObserveSelectQuery(format, stats.Records, stats.BytesScanned, stats.BytesReturned, err)
	if err != nil {
		s.logger.Error("Failed to stream select results", "key", opts.Key, "error", err)
	}
	return stats, err
}

func (s *QueryService) startSelect(ctx context.Context, opts SelectOptions, format string) (selectquery.EventStream, error) {
	s.logger.Debug("Starting Select operation", "provider", opts.Provider, "bucket", opts.Bucket, "key", opts.Key, "format", format)

	serialization := selectquery.BuildSerializationSpec(format)
	if serialization.Input == nil {
		return nil, fmt.Errorf("%w: %q (supported: %s)", selectquery.ErrNoInputSerialization, format, strings.Join(selectquery.Formats(), ", "))
	}

	target, err := s.openTarget(ctx, opts.Provider, opts.Bucket)
	if err != nil {
		return nil, err
	}

	expression := opts.SQL
	if expression == "" {
		expression = selectquery.PresetQuery(opts.SampleOne)
	}

	stream, err := selectquery.RunSelectQuery(ctx, target.selector, selectquery.QueryRequest{
		Bucket:        target.bucket,
		Key:           opts.Key,
		Expression:    expression,
		Serialization: serialization,
	})
	if err != nil {
		s.logger.Error("Failed to run select query", "bucket", target.bucket, "key", opts.Key, "error", err)
		return nil, err
	}
	return stream, nil
}

// LoadTable downloads an object into an in-memory DuckDB table. The caller closes the handle
func (s *QueryService) LoadTable(ctx context.Context, opts TableOptions) (*tabular.TableHandle, error) {
	format := tableFormat(opts.Format, opts.Key)
	threads := opts.Threads
	if threads == 0 {
		threads = s.providerFactory.QuerySettings().Threads
	}
	s.logger.Debug("Starting LoadTable operation", "provider", opts.Provider, "bucket", opts.Bucket, "key", opts.Key, "format", format, "threads", threads)

	target, err := s.openTarget(ctx, opts.Provider, opts.Bucket)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	var handle *tabular.TableHandle
	switch format {
	case "parquet":
		handle, err = tabular.LoadParquetAsTable(ctx, target.source, opts.Key, tabular.Options{Threads: threads})
	case "csv":
		handle, err = tabular.LoadCSVAsTable(ctx, target.source, opts.Key, tabular.Options{Threads: threads})
	default:
		err = fmt.Errorf("unsupported table format %q (supported: csv, parquet)", format)
	}
	metrics.ObserveTableLoad(format, time.Since(start), err)
	if err != nil {
		s.logger.Error("Failed to load table", "key", opts.Key, "error", err)
		return nil, err
	}
	return handle, nil
}

func (s *QueryService) openTarget(ctx context.Context, providerName, bucket string) (queryTarget, error) {
	cfg, err := s.providerFactory.GetProviderConfig(providerName, bucket)
	if err != nil {
		return queryTarget{}, err
	}
	target, err := s.open(ctx, cfg)
	if err != nil {
		s.logger.Error("Failed to open storage handles", "provider", providerName, "error", err)
		return queryTarget{}, err
	}
	return target, nil
}

func (s *QueryService) selectFormat(flagValue string) string {
	if flagValue != "" {
		return strings.ToLower(flagValue)
	}
	if f := s.providerFactory.QuerySettings().Format; f != "" {
		return strings.ToLower(f)
	}
	return defaultSelectFormat
}

func tableFormat(format, key string) string {
	if format != "" {
		return strings.ToLower(format)
	}
	if strings.HasSuffix(strings.ToLower(key), ".parquet") {
		return "parquet"
	}
	return "csv"
}
