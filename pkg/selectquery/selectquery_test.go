package selectquery

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"strata/pkg/common"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStream struct {
	events chan types.SelectObjectContentEventStream
	err    error
	closed bool
}

func newFakeStream(events ...types.SelectObjectContentEventStream) *fakeStream {
	ch := make(chan types.SelectObjectContentEventStream, len(events))
	for _, e := range events {
		ch <- e
	}
	close(ch)
	return &fakeStream{events: ch}
}

func (f *fakeStream) Events() <-chan types.SelectObjectContentEventStream { return f.events }
func (f *fakeStream) Close() error                                       { f.closed = true; return nil }
func (f *fakeStream) Err() error                                         { return f.err }

func records(payload string) types.SelectObjectContentEventStream {
	return &types.SelectObjectContentEventStreamMemberRecords{Value: types.RecordsEvent{Payload: []byte(payload)}}
}

func stats(scanned, processed, returned int64) types.SelectObjectContentEventStream {
	return &types.SelectObjectContentEventStreamMemberStats{Value: types.StatsEvent{Details: &types.Stats{
		BytesScanned:   aws.Int64(scanned),
		BytesProcessed: aws.Int64(processed),
		BytesReturned:  aws.Int64(returned),
	}}}
}

type fakeSelect struct {
	input *s3.SelectObjectContentInput
	err   error
}

func (f *fakeSelect) SelectObjectContent(_ context.Context, params *s3.SelectObjectContentInput, _ ...func(*s3.Options)) (*s3.SelectObjectContentOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &s3.SelectObjectContentOutput{}, nil
}

func TestBuildSerializationSpec(t *testing.T) {
	parquet := BuildSerializationSpec("parquet")
	require.NotNil(t, parquet.Input)
	assert.NotNil(t, parquet.Input.Parquet)
	assert.Nil(t, parquet.Input.CSV)
	assert.Equal(t, types.CompressionType(""), parquet.Input.CompressionType)

	csv := BuildSerializationSpec("compressed_csv")
	require.NotNil(t, csv.Input.CSV)
	assert.Equal(t, types.FileHeaderInfoUse, csv.Input.CSV.FileHeaderInfo)
	assert.Equal(t, types.CompressionTypeGzip, csv.Input.CompressionType)

	js := BuildSerializationSpec("compressed_json")
	require.NotNil(t, js.Input.JSON)
	assert.Equal(t, types.JSONTypeDocument, js.Input.JSON.Type)
	assert.Equal(t, types.CompressionTypeGzip, js.Input.CompressionType)

	plain := BuildSerializationSpec(" CSV ")
	require.NotNil(t, plain.Input.CSV)
	assert.Equal(t, types.CompressionTypeNone, plain.Input.CompressionType)

	lines := BuildSerializationSpec("json")
	require.NotNil(t, lines.Input.JSON)
	assert.Equal(t, types.JSONTypeLines, lines.Input.JSON.Type)
}

func TestBuildSerializationSpecUnknownHint(t *testing.T) {
	s := BuildSerializationSpec("avro")
	assert.Nil(t, s.Input)
	require.NotNil(t, s.Output)
	assert.Equal(t, "\n", aws.ToString(s.Output.JSON.RecordDelimiter))
}

func TestBuildSerializationSpecIsIdempotent(t *testing.T) {
	for _, hint := range Formats() {
		a, b := BuildSerializationSpec(hint), BuildSerializationSpec(hint)
		assert.Equal(t, a, b, hint)
		assert.NotSame(t, a.Input, b.Input, hint)
		assert.NotSame(t, a.Output, b.Output, hint)
	}
}

func TestPresetQuery(t *testing.T) {
	assert.Equal(t, `SELECT * FROM S3Object s WHERE s."sentiment" = 'positive'`, PresetQuery(true))
	assert.Equal(t, `SELECT s."text", s."sentiment_score" FROM S3Object s`, PresetQuery(false))
}

func TestRunSelectQueryBuildsRequest(t *testing.T) {
	client := &fakeSelect{}
	_, err := RunSelectQuery(context.Background(), client, QueryRequest{
		Bucket:        "reviews",
		Key:           "2024/reviews.parquet",
		Expression:    PresetQuery(false),
		Serialization: BuildSerializationSpec("parquet"),
	})

	// The fake cannot attach an event stream
	require.ErrorIs(t, err, errNoStream)
	require.NotNil(t, client.input)
	assert.Equal(t, "reviews", aws.ToString(client.input.Bucket))
	assert.Equal(t, "2024/reviews.parquet", aws.ToString(client.input.Key))
	assert.Equal(t, types.ExpressionTypeSql, client.input.ExpressionType)
	assert.NotNil(t, client.input.InputSerialization.Parquet)
	assert.Equal(t, "\n", aws.ToString(client.input.OutputSerialization.JSON.RecordDelimiter))
}

func TestRunSelectQueryFailsFast(t *testing.T) {
	client := &fakeSelect{}

	_, err := RunSelectQuery(context.Background(), client, QueryRequest{
		Bucket: "reviews", Key: "data.avro", Expression: "SELECT 1", Serialization: BuildSerializationSpec("avro"),
	})
	require.ErrorIs(t, err, ErrNoInputSerialization)

	_, err = RunSelectQuery(context.Background(), client, QueryRequest{Serialization: BuildSerializationSpec("csv")})
	var missing *common.MissingArgumentError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"bucket", "key", "expression"}, missing.Fields)

	assert.Nil(t, client.input, "no request should be sent")
}

func TestRunSelectQueryPropagatesServiceErrors(t *testing.T) {
	client := &fakeSelect{err: &types.NoSuchKey{}}
	_, err := RunSelectQuery(context.Background(), client, QueryRequest{
		Bucket: "reviews", Key: "missing.csv", Expression: "SELECT 1", Serialization: BuildSerializationSpec("csv"),
	})

	var noSuchKey *types.NoSuchKey
	assert.ErrorAs(t, err, &noSuchKey)
}

func TestDrainResultsKeepsRecordOrder(t *testing.T) {
	stream := newFakeStream(
		records(`{"text":"great"}`+"\n"),
		&types.SelectObjectContentEventStreamMemberProgress{},
		stats(100, 80, 20),
		records(`{"text":"fine"}`+"\n"),
		&types.SelectObjectContentEventStreamMemberCont{},
		records("bad \xff byte"),
		&types.SelectObjectContentEventStreamMemberEnd{},
	)

	got, st, err := DrainResults(stream)
	require.NoError(t, err)
	assert.Equal(t, []string{`{"text":"great"}` + "\n", `{"text":"fine"}` + "\n", "bad � byte"}, got)
	assert.Equal(t, Stats{BytesScanned: 100, BytesProcessed: 80, BytesReturned: 20, Records: 3}, st)
	assert.True(t, stream.closed)
}

func TestDrainResultsEmptyStream(t *testing.T) {
	got, st, err := DrainResults(newFakeStream(&types.SelectObjectContentEventStreamMemberEnd{}))
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, Stats{}, st)
}

func TestDrainResultsReportsStreamError(t *testing.T) {
	stream := newFakeStream(records("partial"))
	stream.err = errors.New("connection reset")

	got, _, err := DrainResults(stream)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	assert.Equal(t, []string{"partial"}, got)
}

func TestStreamResults(t *testing.T) {
	var buf bytes.Buffer
	st, err := StreamResults(newFakeStream(records("a\n"), stats(3, 3, 2), records("b\n")), &buf)
	require.NoError(t, err)
	assert.Equal(t, "a\nb\n", buf.String())
	assert.Equal(t, int64(2), st.BytesReturned)
	assert.Equal(t, 2, st.Records)
}

func TestStreamResultsRepairsInvalidUTF8(t *testing.T) {
	var buf bytes.Buffer
	st, err := StreamResults(newFakeStream(records("bad \xff byte\n"), records("ok\n")), &buf)
	require.NoError(t, err)
	assert.Equal(t, "bad \uFFFD byte\nok\n", buf.String())
	assert.Equal(t, 2, st.Records)
}
