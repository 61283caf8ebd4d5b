// File: pkg/selectquery/serialization.go
package selectquery

import (
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// Format hints accepted by BuildSerializationSpec
const (
	FormatParquet        = "parquet"
	FormatCompressedCSV  = "compressed_csv"
	FormatCompressedJSON = "compressed_json"
	FormatCSV            = "csv"
	FormatJSON           = "json"
)

// SerializationSpec describes how S3 Select parses the object and encodes its results.
// Input is nil when the hint was not recognised.
type SerializationSpec struct {
	Input  *types.InputSerialization
	Output *types.OutputSerialization
}

// Formats lists the recognised hints
func Formats() []string {
	return []string{FormatParquet, FormatCompressedCSV, FormatCompressedJSON, FormatCSV, FormatJSON}
}

// BuildSerializationSpec maps a format hint to input/output serialization settings.
// Results are always newline-delimited JSON records.
func BuildSerializationSpec(hint string) SerializationSpec {
	return SerializationSpec{
		Input:  inputFor(strings.ToLower(strings.TrimSpace(hint))),
		Output: &types.OutputSerialization{
			JSON: &types.JSONOutput{RecordDelimiter: aws.String("\n")},
		},
	}
}

func inputFor(hint string) *types.InputSerialization {
	switch hint {
	case FormatParquet:
		return &types.InputSerialization{Parquet: &types.ParquetInput{}}
	case FormatCompressedCSV:
		return &types.InputSerialization{
			CSV:             &types.CSVInput{FileHeaderInfo: types.FileHeaderInfoUse},
			CompressionType: types.CompressionTypeGzip,
		}
	case FormatCompressedJSON:
		return &types.InputSerialization{
			JSON:            &types.JSONInput{Type: types.JSONTypeDocument},
			CompressionType: types.CompressionTypeGzip,
		}
	case FormatCSV:
		return &types.InputSerialization{
			CSV:             &types.CSVInput{FileHeaderInfo: types.FileHeaderInfoUse},
			CompressionType: types.CompressionTypeNone,
		}
	case FormatJSON:
		return &types.InputSerialization{
			JSON:            &types.JSONInput{Type: types.JSONTypeLines},
			CompressionType: types.CompressionTypeNone,
		}
	default:
		return nil
	}
}
