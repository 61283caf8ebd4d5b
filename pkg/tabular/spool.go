// File: pkg/tabular/spool.go
package tabular

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
)

// DuckDB picks gzip decompression from the file extension
func csvSuffix(key string) string {
	if strings.HasSuffix(strings.ToLower(key), ".gz") {
		return ".csv.gz"
	}
	return ".csv"
}

// Copies the object to a local temp file and returns its path
func spoolObject(ctx context.Context, source ObjectSource, key, suffix string) (string, error) {
	body, err := source.Get(ctx, key)
	if err != nil {
		return "", fmt.Errorf("error fetching object %s: %w", key, err)
	}
	defer func() { _ = body.Close() }()

	file, err := os.CreateTemp("", "strata-table-*"+suffix)
	if err != nil {
		return "", fmt.Errorf("error creating spool file: %w", err)
	}

	if _, err := io.Copy(file, body); err != nil {
		_ = file.Close()
		_ = os.Remove(file.Name())
		return "", fmt.Errorf("error downloading object %s: %w", key, err)
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(file.Name())
		return "", fmt.Errorf("error closing spool file: %w", err)
	}
	return file.Name(), nil
}
