// File: internal/flags/flags.go
package flags

// Centralized definitions for CLI flags used across the application

const (
	// Provider flags are used when an operation targets a single, specific provider (e.g., describe, create, delete)
	Provider      = "provider"
	ProviderShort = "p"

	// Providers (plural) flags are used when an operation can target multiple providers (e.g., list)
	// Note: 'p' is reused for both singular and plural provider flags depending on the subcommand context
	Providers      = "providers"
	ProvidersShort = "p"

	// Location flags are used to specify the region for bucket creation
	Location      = "location"
	LocationShort = "l"

	// Bucket flags override the provider's configured default bucket
	Bucket      = "bucket"
	BucketShort = "b"

	// Key flags name the object an operation targets
	Key      = "key"
	KeyShort = "k"

	// Prefix flags are used to filter object listings
	Prefix = "prefix"

	// Force flags are used to bypass interactive confirmation prompts for destructive operations
	Force      = "force"
	ForceShort = "f"

	// Debug flags are used to enable verbose logging
	Debug      = "debug"
	DebugShort = "d"

	// MetricsFile flags name a Prometheus textfile written when the command exits
	MetricsFile = "metrics-file"

	// SQL flags carry a query expression
	SQL      = "sql"
	SQLShort = "q"

	// Format flags select the object's serialization (parquet, compressed_csv, ...)
	Format = "format"

	// SampleOne flags switch the preset query to the single-sentiment filter
	SampleOne = "sample-one"

	// Collect flags buffer every select record before printing
	Collect = "collect"

	// Threads flags size DuckDB's execution pool
	Threads = "threads"

	// Output flags name a local file; "-" or empty means stdout/stdin
	Output      = "output"
	OutputShort = "o"

	// File flags name a local input file for uploads
	File = "file"

	// ContentType flags set the uploaded object's Content-Type
	ContentType = "content-type"
)
