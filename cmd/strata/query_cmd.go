// File: cmd/strata/query_cmd.go
package main

import (
	"context"
	"fmt"
	"strings"

	"strata/internal/flags"
	"strata/internal/service"
	"strata/pkg/selectquery"
	"strata/pkg/tabular"

	"github.com/spf13/cobra"
)

type queryFlags struct {
	provider  string
	bucket    string
	key       string
	sql       string
	format    string
	sampleOne bool
	collect   bool
	threads   int
}

type tableReader interface {
	Preview(ctx context.Context) (tabular.ResultSet, error)
	Query(ctx context.Context, sqlText string) (tabular.ResultSet, error)
}

// Runs sqlText when given, otherwise the fixed preview
func readTable(ctx context.Context, t tableReader, sqlText string) (tabular.ResultSet, error) {
	if sqlText != "" {
		return t.Query(ctx, sqlText)
	}
	return t.Preview(ctx)
}

func newQueryCmd() *cobra.Command {
	cmdFlags := queryFlags{}

	queryCmd := &cobra.Command{
		Use:   "query",
		Short: "Query objects with SQL",
		Long:  `Run SQL against a single object, either server-side with S3 Select or locally in an in-memory DuckDB table.`,
	}

	selectCmd := &cobra.Command{
		Use:   "select",
		Short: "Run an S3 Select query against an object",
		Long: fmt.Sprintf(`Runs SQL server-side and streams newline-delimited JSON records to stdout.
Without --sql a preset review query runs; --sample-one filters to positive sentiment.
Formats: %s (default from query.format, else parquet).`, strings.Join(selectquery.Formats(), ", ")),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFromContext(cmd.Context())
			if err != nil {
				return err
			}

			opts := service.SelectOptions{
				Provider:  cmdFlags.provider,
				Bucket:    cmdFlags.bucket,
				Key:       cmdFlags.key,
				SQL:       cmdFlags.sql,
				Format:    cmdFlags.format,
				SampleOne: cmdFlags.sampleOne,
			}

			var stats selectquery.Stats
			if cmdFlags.collect {
				var records []string
				records, stats, err = app.QueryService.Select(cmd.Context(), opts)
				if err != nil {
					return fmt.Errorf("error running select on '%s': %w", cmdFlags.key, err)
				}
				fmt.Fprint(cmd.OutOrStdout(), app.QueryFormatter.FormatRecords(records))
			} else {
				stats, err = app.QueryService.StreamSelect(cmd.Context(), opts, cmd.OutOrStdout())
				if err != nil {
					return fmt.Errorf("error running select on '%s': %w", cmdFlags.key, err)
				}
			}

			fmt.Fprintln(cmd.ErrOrStderr(), app.QueryFormatter.FormatStats(stats))
			return nil
		},
	}
	selectCmd.Flags().StringVar(&cmdFlags.format, flags.Format, "", "Object serialization")
	selectCmd.Flags().BoolVar(&cmdFlags.sampleOne, flags.SampleOne, false, "Use the positive-sentiment preset query")
	selectCmd.Flags().BoolVar(&cmdFlags.collect, flags.Collect, false, "Print records only after the whole result arrives")

	tableCmd := &cobra.Command{
		Use:   "table",
		Short: "Load an object into DuckDB and query it locally",
		Long: `Downloads a CSV (optionally gzipped) or Parquet object into an in-memory DuckDB table
named object_table. Without --sql the first five rows are shown.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFromContext(cmd.Context())
			if err != nil {
				return err
			}

			handle, err := app.QueryService.LoadTable(cmd.Context(), service.TableOptions{
				Provider: cmdFlags.provider,
				Bucket:   cmdFlags.bucket,
				Key:      cmdFlags.key,
				Format:   cmdFlags.format,
				Threads:  cmdFlags.threads,
			})
			if err != nil {
				return fmt.Errorf("error loading '%s': %w", cmdFlags.key, err)
			}
			defer handle.Close()

			rs, err := readTable(cmd.Context(), handle, cmdFlags.sql)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), app.QueryFormatter.FormatResultSet(rs))
			return nil
		},
	}
	tableCmd.Flags().StringVar(&cmdFlags.format, flags.Format, "", "csv or parquet (inferred from the key when omitted)")
	tableCmd.Flags().IntVar(&cmdFlags.threads, flags.Threads, 0, "DuckDB worker threads (default from query.threads, else 1)")

	for _, c := range []*cobra.Command{selectCmd, tableCmd} {
		requireProviderFlag(c, &cmdFlags.provider, "The provider where the bucket resides (required)")
		c.Flags().StringVarP(&cmdFlags.bucket, flags.Bucket, flags.BucketShort, "", "Bucket name (defaults to <provider>.bucket)")
		c.Flags().StringVarP(&cmdFlags.key, flags.Key, flags.KeyShort, "", "Object key (required)")
		_ = c.MarkFlagRequired(flags.Key)
		c.Flags().StringVarP(&cmdFlags.sql, flags.SQL, flags.SQLShort, "", "SQL expression")
	}

	queryCmd.AddCommand(selectCmd, tableCmd)
	return queryCmd
}
