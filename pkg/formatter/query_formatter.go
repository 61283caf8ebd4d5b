// File: pkg/formatter/query_formatter.go
package formatter

import (
	"fmt"
	"strings"
	"time"

	"strata/pkg/selectquery"
	"strata/pkg/storage"
	"strata/pkg/tabular"
)

type QueryFormatter struct{}

func NewQueryFormatter() *QueryFormatter {
	return &QueryFormatter{}
}

// Records are printed as received, one JSON document per line
func (f *QueryFormatter) FormatRecords(records []string) string {
	return strings.Join(records, "")
}

func (f *QueryFormatter) FormatStats(stats selectquery.Stats) string {
	return fmt.Sprintf("%d record batches, scanned %s, processed %s, returned %s",
		stats.Records,
		storage.FormatBytes(stats.BytesScanned),
		storage.FormatBytes(stats.BytesProcessed),
		storage.FormatBytes(stats.BytesReturned))
}

func (f *QueryFormatter) FormatResultSet(rs tabular.ResultSet) string {
	table := NewTable(rs.Columns)
	for _, row := range rs.Rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = formatValue(v)
		}
		table.AddRow(cells)
	}
	return fmt.Sprintf("%s\n(%d rows in %s)", table.String(), len(rs.Rows), rs.Duration.Round(time.Millisecond))
}

func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return "NULL"
	case time.Time:
		return t.Format(time.RFC3339)
	default:
		return fmt.Sprint(t)
	}
}
