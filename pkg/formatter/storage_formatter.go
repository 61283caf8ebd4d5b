// File: pkg/formatter/storage_formatter.go
package formatter

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"strata/pkg/gateway"
	"strata/pkg/storage"
)

type StorageFormatter struct{}

func NewStorageFormatter() *StorageFormatter {
	return &StorageFormatter{}
}

func (f *StorageFormatter) FormatBucketList(buckets []storage.Bucket) string {
	table := NewTable([]string{"BUCKET NAME", "PROVIDER", "LOCATION", "USAGE", "STORAGE CLASS", "CREATED"})

	for _, bucket := range buckets {
		table.AddRow([]string{
			bucket.Name,
			string(bucket.Provider),
			bucket.Location,
			storage.FormatBytes(bucket.UsageBytes),
			bucket.StorageClass,
			formatDate(bucket.CreatedAt, "2006-01-02"),
		})
	}

	return table.String()
}

func (f *StorageFormatter) FormatBucketDetails(bucket storage.Bucket) string {
	var sb strings.Builder

	sb.WriteString(FormatHeaderSection("Bucket: " + bucket.Name))
	sb.WriteString("\n\n")

	sb.WriteString(FormatSectionTitle("Overview"))
	sb.WriteString("\n")

	overview := NewTable([]string{"Parameter", "Value"})
	details := [][]string{
		{"Provider", string(bucket.Provider)},
		{"Location / Region", bucket.Location},
		{"Storage Class", bucket.StorageClass},
		{"Usage", storage.FormatBytes(bucket.UsageBytes)},
		{"Created On", formatDate(bucket.CreatedAt, time.RFC1123)},
		{"Updated On", formatDate(bucket.UpdatedAt, time.RFC1123)},
	}
	if bucket.Endpoint != "" {
		details = append(details, []string{"Endpoint", bucket.Endpoint})
	}
	if bucket.Versioning != nil {
		details = append(details, []string{"Versioning", enabled(bucket.Versioning.Enabled)})
	}
	if bucket.PublicAccessPrevention != "" {
		details = append(details, []string{"Public Access Prevention", bucket.PublicAccessPrevention})
	}
	if bucket.Logging != nil {
		details = append(details, []string{"Access Logs", bucket.Logging.LogBucket + "/" + bucket.Logging.LogObjectPrefix})
	}
	for _, d := range details {
		overview.AddRow(d)
	}
	sb.WriteString(overview.String())
	sb.WriteString("\n\n")

	if len(bucket.Labels) > 0 {
		sb.WriteString(FormatSectionTitle("Labels"))
		sb.WriteString("\n")
		labels := NewTable([]string{"Key", "Value"})
		for _, k := range sortedKeys(bucket.Labels) {
			labels.AddRow([]string{k, bucket.Labels[k]})
		}
		sb.WriteString(labels.String())
		sb.WriteString("\n\n")
	}

	if len(bucket.LifecycleRules) > 0 {
		sb.WriteString(FormatSectionTitle("Lifecycle Rules"))
		sb.WriteString("\n")
		rules := NewTable([]string{"Action", "Condition"})
		for _, r := range bucket.LifecycleRules {
			rules.AddRow([]string{r.Action, formatCondition(r.Condition)})
		}
		sb.WriteString(rules.String())
		sb.WriteString("\n\n")
	}

	return sb.String()
}

func (f *StorageFormatter) FormatObjectList(list storage.ObjectList) string {
	table := NewTable([]string{"KEY", "SIZE", "STORAGE CLASS", "LAST MODIFIED"})

	for _, prefix := range list.CommonPrefixes {
		table.AddRow([]string{prefix, "-", "PREFIX", ""})
	}
	for _, obj := range list.Objects {
		table.AddRow([]string{
			obj.Key,
			storage.FormatBytes(obj.Size),
			obj.StorageClass,
			formatDate(obj.LastModified, "2006-01-02 15:04:05"),
		})
	}

	return fmt.Sprintf("Bucket: %s  Prefix: %q\n%s", list.BucketName, list.Prefix, table.String())
}

func (f *StorageFormatter) FormatObjectDetails(obj storage.Object) string {
	var sb strings.Builder

	sb.WriteString(FormatHeaderSection("Object: " + obj.Key))
	sb.WriteString("\n\n")

	table := NewTable([]string{"Parameter", "Value"})
	for _, row := range [][]string{
		{"Bucket", obj.Bucket},
		{"Provider", string(obj.Provider)},
		{"Size", storage.FormatBytes(obj.Size)},
		{"Storage Class", obj.StorageClass},
		{"Last Modified", formatDate(obj.LastModified, time.RFC1123)},
		{"ETag", obj.ETag},
		{"Content-Type", obj.ContentType},
		{"Content-Encoding", obj.ContentEncoding},
		{"Cache-Control", obj.CacheControl},
	} {
		if row[1] != "" {
			table.AddRow(row)
		}
	}
	sb.WriteString(table.String())
	sb.WriteString("\n")

	if len(obj.Metadata) > 0 {
		sb.WriteString("\n")
		sb.WriteString(FormatSectionTitle("Metadata"))
		sb.WriteString("\n")
		meta := NewTable([]string{"Key", "Value"})
		for _, k := range sortedKeys(obj.Metadata) {
			meta.AddRow([]string{k, obj.Metadata[k]})
		}
		sb.WriteString(meta.String())
		sb.WriteString("\n")
	}

	return sb.String()
}

// Renders the result of a gateway argument check
func (f *StorageFormatter) FormatConfirmation(c gateway.Confirmation) string {
	table := NewTable([]string{"Parameter", "Value"})
	status := "ready"
	if !c.Ready {
		status = "not ready"
	}
	table.AddRow([]string{"Provider", string(c.Provider)})
	table.AddRow([]string{"Status", status})
	table.AddRow([]string{"Endpoint", c.Endpoint})
	if len(c.Missing) > 0 {
		table.AddRow([]string{"Missing", strings.Join(c.Missing, ", ")})
	} else if c.Err != nil {
		table.AddRow([]string{"Error", c.Err.Error()})
	}
	return table.String()
}

func formatDate(t time.Time, layout string) string {
	if t.IsZero() {
		return "N/A"
	}
	return t.Format(layout)
}

func enabled(b bool) string {
	if b {
		return "Enabled"
	}
	return "Disabled"
}

func formatCondition(c storage.LifecycleCondition) string {
	var parts []string
	if c.Age > 0 {
		parts = append(parts, "age >= "+strconv.Itoa(c.Age)+"d")
	}
	if !c.CreatedBefore.IsZero() {
		parts = append(parts, "created before "+c.CreatedBefore.Format("2006-01-02"))
	}
	if len(c.MatchesStorageClass) > 0 {
		parts = append(parts, "class in ["+strings.Join(c.MatchesStorageClass, ", ")+"]")
	}
	if c.NumNewerVersions > 0 {
		parts = append(parts, "newer versions >= "+strconv.Itoa(c.NumNewerVersions))
	}
	if len(parts) == 0 {
		return "always"
	}
	return strings.Join(parts, ", ")
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
