package formatter

import (
	"errors"
	"strings"
	"testing"
	"time"

	"strata/pkg/common"
	"strata/pkg/gateway"
	"strata/pkg/selectquery"
	"strata/pkg/storage"
	"strata/pkg/tabular"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableString(t *testing.T) {
	table := NewTable([]string{"NAME", "SIZE"})
	table.AddRow([]string{"reviews.csv", "1.0 KB"})
	table.AddRow([]string{"short"})

	out := table.String()
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "reviews.csv")
	assert.Contains(t, out, "+")
	assert.Len(t, table.Rows[1], 2)

	assert.Empty(t, NewTable(nil).String())
}

func TestFormatBucketList(t *testing.T) {
	out := NewStorageFormatter().FormatBucketList([]storage.Bucket{
		{Name: "reviews", Provider: common.Linode, Location: "us-southeast-1", UsageBytes: -1},
	})
	assert.Contains(t, out, "reviews")
	assert.Contains(t, out, "linode")
	assert.Contains(t, out, "N/A")
}

func TestFormatBucketDetails(t *testing.T) {
	out := NewStorageFormatter().FormatBucketDetails(storage.Bucket{
		Name:       "reviews",
		Provider:   common.GCP,
		UsageBytes: 2048,
		Labels:     map[string]string{"team": "data", "env": "prod"},
		Versioning: &storage.Versioning{Enabled: true},
		LifecycleRules: []storage.LifecycleRule{
			{Action: "Delete", Condition: storage.LifecycleCondition{Age: 30}},
		},
	})

	assert.Contains(t, out, "Bucket: reviews")
	assert.Contains(t, out, "2.0 KB")
	assert.Contains(t, out, "Enabled")
	assert.Contains(t, out, "age >= 30d")
	assert.Less(t, strings.Index(out, "env"), strings.Index(out, "team"))
}

func TestFormatObjectList(t *testing.T) {
	out := NewStorageFormatter().FormatObjectList(storage.ObjectList{
		BucketName:     "reviews",
		Prefix:         "2024/",
		CommonPrefixes: []string{"2024/raw/"},
		Objects:        []storage.Object{{Key: "2024/a.csv", Size: 10, LastModified: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)}},
	})
	assert.Contains(t, out, "2024/raw/")
	assert.Contains(t, out, "PREFIX")
	assert.Contains(t, out, "2024-03-01 00:00:00")
}

func TestFormatResultSet(t *testing.T) {
	out := NewQueryFormatter().FormatResultSet(tabular.ResultSet{
		Columns:  []string{"id", "text"},
		Rows:     [][]any{{int64(1), "great"}, {int64(2), nil}},
		Duration: 1500 * time.Microsecond,
	})
	assert.Contains(t, out, "great")
	assert.Contains(t, out, "NULL")
	assert.Contains(t, out, "(2 rows in 2ms)")
}

func TestFormatRecordsAndStats(t *testing.T) {
	qf := NewQueryFormatter()
	assert.Equal(t, "{\"a\":1}\n{\"a\":2}\n", qf.FormatRecords([]string{"{\"a\":1}\n", "{\"a\":2}\n"}))
	assert.Equal(t, "2 record batches, scanned 1.0 KB, processed 0 B, returned 12 B",
		qf.FormatStats(selectquery.Stats{BytesScanned: 1024, BytesReturned: 12, Records: 2}))
}

func TestFormatConfirmation(t *testing.T) {
	out := NewStorageFormatter().FormatConfirmation(gateway.Confirmation{
		Provider: common.AWS,
		Missing:  []string{"secret_key"},
		Err:      errors.New("missing required arguments: secret_key"),
	})
	assert.Contains(t, out, "not ready")
	assert.Contains(t, out, "secret_key")
}

func TestFormatYAML(t *testing.T) {
	out, err := FormatYAML(map[string]any{"aws": map[string]string{"region": "us-east-1"}})
	require.NoError(t, err)
	assert.Equal(t, "aws:\n    region: us-east-1\n", out)
}
