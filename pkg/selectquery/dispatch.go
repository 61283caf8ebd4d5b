// File: pkg/selectquery/dispatch.go
package selectquery

import (
	"context"
	"errors"
	"fmt"

	"strata/pkg/common"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

var (
	ErrNoInputSerialization = errors.New("no input serialization for the requested format")
	errNoStream             = errors.New("select response carried no event stream")
)

const (
	sampleOneQuery = `SELECT * FROM S3Object s WHERE s."sentiment" = 'positive'`
	sampleAllQuery = `SELECT s."text", s."sentiment_score" FROM S3Object s`
)

// SelectAPI is the part of *s3.Client that runs S3 Select
type SelectAPI interface {
	SelectObjectContent(ctx context.Context, params *s3.SelectObjectContentInput, optFns ...func(*s3.Options)) (*s3.SelectObjectContentOutput, error)
}

var _ SelectAPI = (*s3.Client)(nil)

// EventStream is satisfied by *s3.SelectObjectContentEventStream
type EventStream interface {
	Events() <-chan types.SelectObjectContentEventStream
	Close() error
	Err() error
}

type QueryRequest struct {
	Bucket        string
	Key           string
	Expression    string
	Serialization SerializationSpec
}

// PresetQuery returns one of the two canned review queries
func PresetQuery(sampleOne bool) string {
	if sampleOne {
		return sampleOneQuery
	}
	return sampleAllQuery
}

// RunSelectQuery submits the SQL expression against a single object and returns the open result stream.
// The caller must drain or close it.
func RunSelectQuery(ctx context.Context, client SelectAPI, req QueryRequest) (EventStream, error) {
	var missing []string
	if req.Bucket == "" {
		missing = append(missing, "bucket")
	}
	if req.Key == "" {
		missing = append(missing, "key")
	}
	if req.Expression == "" {
		missing = append(missing, "expression")
	}
	if len(missing) > 0 {
		return nil, &common.MissingArgumentError{Fields: missing}
	}
	if req.Serialization.Input == nil {
		return nil, ErrNoInputSerialization
	}

	output := req.Serialization.Output
	if output == nil {
		output = BuildSerializationSpec("").Output
	}

	resp, err := client.SelectObjectContent(ctx, &s3.SelectObjectContentInput{
		Bucket:              aws.String(req.Bucket),
		Key:                 aws.String(req.Key),
		Expression:          aws.String(req.Expression),
		ExpressionType:      types.ExpressionTypeSql,
		InputSerialization:  req.Serialization.Input,
		OutputSerialization: output,
	})
	if err != nil {
		return nil, fmt.Errorf("error selecting from object %s in bucket %s: %w", req.Key, req.Bucket, err)
	}

	stream := resp.GetStream()
	if stream == nil {
		return nil, errNoStream
	}
	return stream, nil
}
