// File: pkg/selectquery/drain.go
package selectquery

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// Stats carries the byte counters from the last Stats event, if any, and the number of
// Records payloads received
type Stats struct {
	BytesScanned   int64
	BytesProcessed int64
	BytesReturned  int64
	Records        int
}

// DrainResults consumes the stream once and returns every Records payload in arrival order.
// Non-record events only feed Stats. The stream is closed before returning.
func DrainResults(stream EventStream) ([]string, Stats, error) {
	var records []string
	stats, err := consume(stream, func(payload []byte) error {
		records = append(records, decodeRecords(payload))
		return nil
	})
	return records, stats, err
}

// StreamResults writes each Records payload to w as it arrives, with the same UTF-8 repair as DrainResults
func StreamResults(stream EventStream, w io.Writer) (Stats, error) {
	return consume(stream, func(payload []byte) error {
		if _, err := io.WriteString(w, decodeRecords(payload)); err != nil {
			return fmt.Errorf("error writing query results: %w", err)
		}
		return nil
	})
}

func consume(stream EventStream, onRecords func([]byte) error) (Stats, error) {
	var stats Stats
	var writeErr error

	for event := range stream.Events() {
		switch e := event.(type) {
		case *types.SelectObjectContentEventStreamMemberRecords:
			stats.Records++
			if writeErr == nil {
				writeErr = onRecords(e.Value.Payload)
			}
		case *types.SelectObjectContentEventStreamMemberStats:
			if d := e.Value.Details; d != nil {
				stats.BytesScanned = aws.ToInt64(d.BytesScanned)
				stats.BytesProcessed = aws.ToInt64(d.BytesProcessed)
				stats.BytesReturned = aws.ToInt64(d.BytesReturned)
			}
		}
		// Progress, Cont and End carry nothing the caller needs
	}

	closeErr := stream.Close()
	if err := stream.Err(); err != nil {
		return stats, fmt.Errorf("error reading select results: %w", err)
	}
	if writeErr != nil {
		return stats, writeErr
	}
	if closeErr != nil && !errors.Is(closeErr, io.EOF) {
		return stats, fmt.Errorf("error closing select stream: %w", closeErr)
	}
	return stats, nil
}

// Invalid byte sequences become U+FFFD
func decodeRecords(payload []byte) string {
	return strings.ToValidUTF8(string(payload), "\uFFFD")
}
