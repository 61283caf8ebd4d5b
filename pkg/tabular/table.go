// File: pkg/tabular/table.go
package tabular

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	_ "github.com/marcboeker/go-duckdb/v2"
)

// TableName is the name every loaded object is exposed under
const TableName = "object_table"

const previewQuery = "SELECT * FROM " + TableName + " LIMIT 5"

// ObjectSource fetches an object body. s3compat.BucketHandle satisfies it
type ObjectSource interface {
	Get(ctx context.Context, key string) (io.ReadCloser, error)
}

type Options struct {
	// Threads > 0 lets DuckDB execute across that many cores; zero keeps one
	Threads int
}

type ResultSet struct {
	Columns  []string
	Rows     [][]any
	Duration time.Duration
}

// TableHandle owns an in-memory DuckDB holding one table
type TableHandle struct {
	db    *sql.DB
	name  string
	spool string
}

// NewTableHandle wraps an already-populated database
func NewTableHandle(db *sql.DB, name string) *TableHandle {
	return &TableHandle{db: db, name: name}
}

// LoadCSVAsTable downloads a CSV object (optionally gzipped) and exposes it as object_table
func LoadCSVAsTable(ctx context.Context, source ObjectSource, key string, opts Options) (*TableHandle, error) {
	return load(ctx, source, key, opts, "read_csv_auto", csvSuffix(key))
}

// LoadParquetAsTable downloads a Parquet object and exposes it as object_table
func LoadParquetAsTable(ctx context.Context, source ObjectSource, key string, opts Options) (*TableHandle, error) {
	return load(ctx, source, key, opts, "read_parquet", ".parquet")
}

func load(ctx context.Context, source ObjectSource, key string, opts Options, reader, suffix string) (*TableHandle, error) {
	if strings.TrimSpace(key) == "" {
		return nil, errors.New("object key is required")
	}

	spool, err := spoolObject(ctx, source, key, suffix)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("duckdb", "")
	if err != nil {
		_ = os.Remove(spool)
		return nil, fmt.Errorf("error opening duckdb: %w", err)
	}

	h := &TableHandle{db: db, name: TableName, spool: spool}
	if err := h.populate(ctx, reader, opts); err != nil {
		_ = h.Close()
		return nil, err
	}
	return h, nil
}

func (h *TableHandle) populate(ctx context.Context, reader string, opts Options) error {
	threads := opts.Threads
	if threads <= 0 {
		threads = 1
	}
	if _, err := h.db.ExecContext(ctx, fmt.Sprintf("SET threads TO %d", threads)); err != nil {
		return fmt.Errorf("error setting duckdb threads: %w", err)
	}

	create := fmt.Sprintf("CREATE TABLE %s AS SELECT * FROM %s(%s)", quoteIdent(h.name), reader, quoteString(h.spool))
	if _, err := h.db.ExecContext(ctx, create); err != nil {
		return fmt.Errorf("error creating table %s: %w", h.name, err)
	}
	return nil
}

func (h *TableHandle) Name() string {
	return h.name
}

// Preview returns the first five rows
func (h *TableHandle) Preview(ctx context.Context) (ResultSet, error) {
	return h.Query(ctx, previewQuery)
}

// Query runs arbitrary SQL against the loaded table
func (h *TableHandle) Query(ctx context.Context, sqlText string) (ResultSet, error) {
	sqlText = stripTrailingSemicolons(sqlText)
	if sqlText == "" {
		return ResultSet{}, errors.New("sql is required")
	}

	start := time.Now()
	rows, err := h.db.QueryContext(ctx, sqlText)
	if err != nil {
		return ResultSet{}, fmt.Errorf("error executing query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return ResultSet{}, fmt.Errorf("error reading columns: %w", err)
	}

	result := ResultSet{Columns: columns, Rows: make([][]any, 0)}
	for rows.Next() {
		values := make([]any, len(columns))
		targets := make([]any, len(columns))
		for i := range values {
			targets[i] = &values[i]
		}
		if err := rows.Scan(targets...); err != nil {
			return ResultSet{}, fmt.Errorf("error scanning row: %w", err)
		}
		result.Rows = append(result.Rows, normalizeValues(values))
	}
	if err := rows.Err(); err != nil {
		return ResultSet{}, fmt.Errorf("error iterating rows: %w", err)
	}

	result.Duration = time.Since(start)
	return result, nil
}

// Close releases the database and removes the spooled object
func (h *TableHandle) Close() error {
	err := h.db.Close()
	if h.spool != "" {
		if rmErr := os.Remove(h.spool); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			err = errors.Join(err, rmErr)
		}
		h.spool = ""
	}
	return err
}

func normalizeValues(values []any) []any {
	normalized := make([]any, len(values))
	for i, value := range values {
		switch typed := value.(type) {
		case []byte:
			normalized[i] = string(typed)
		default:
			normalized[i] = typed
		}
	}
	return normalized
}

func quoteIdent(value string) string {
	return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
}

func quoteString(value string) string {
	return `'` + strings.ReplaceAll(value, `'`, `''`) + `'`
}

func stripTrailingSemicolons(sqlText string) string {
	trimmed := strings.TrimSpace(sqlText)
	for strings.HasSuffix(trimmed, ";") {
		trimmed = strings.TrimSpace(strings.TrimSuffix(trimmed, ";"))
	}
	return trimmed
}
