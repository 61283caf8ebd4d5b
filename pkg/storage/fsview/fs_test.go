package fsview

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"sort"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeObject struct {
	body    string
	modTime time.Time
}

// fakeClient mimics a non-recursive S3 listing over an in-memory key space
type fakeClient struct {
	objects  map[string]fakeObject
	getCalls int
	limits   []int
}

func (f *fakeClient) List(ctx context.Context, bucket, prefix string, limit int) ([]entry, error) {
	f.limits = append(f.limits, limit)
	seenPrefix := map[string]bool{}
	var entries []entry
	for key, obj := range f.objects {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		rest := strings.TrimPrefix(key, prefix)
		if i := strings.Index(rest, "/"); i >= 0 {
			common := prefix + rest[:i+1]
			if !seenPrefix[common] {
				seenPrefix[common] = true
				entries = append(entries, entry{Key: common, IsPrefix: true})
			}
			continue
		}
		entries = append(entries, entry{Key: key, Size: int64(len(obj.body)), LastModified: obj.modTime})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (f *fakeClient) Stat(ctx context.Context, bucket, key string) (entry, error) {
	obj, ok := f.objects[key]
	if !ok {
		return entry{}, fs.ErrNotExist
	}
	return entry{Key: key, Size: int64(len(obj.body)), LastModified: obj.modTime}, nil
}

func (f *fakeClient) Get(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	obj, ok := f.objects[key]
	if !ok {
		return nil, fs.ErrNotExist
	}
	f.getCalls++
	return io.NopCloser(strings.NewReader(obj.body)), nil
}

func newTestFS() (*BucketFS, *fakeClient) {
	mod := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	fake := &fakeClient{objects: map[string]fakeObject{
		"README.txt":              {body: "bucket for reviews", modTime: mod},
		"reviews/2024.csv":        {body: "id,sentiment\n1,positive\n", modTime: mod},
		"reviews/2025.csv":        {body: "id,sentiment\n2,negative\n3,positive\n", modTime: mod},
		"reviews/raw/part-0.json": {body: `{"id":1}`, modTime: mod},
		"reviews/raw/":            {body: "", modTime: mod},
	}}
	return newWithClient(fake, "reviews-bucket"), fake
}

func TestBucketFSConformance(t *testing.T) {
	fsys, _ := newTestFS()
	require.NoError(t, fstest.TestFS(fsys, "README.txt", "reviews/2024.csv", "reviews/raw/part-0.json"))
}

func TestReadDirRoot(t *testing.T) {
	fsys, _ := newTestFS()

	entries, err := fsys.ReadDir(".")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "README.txt", entries[0].Name())
	assert.False(t, entries[0].IsDir())
	assert.Equal(t, "reviews", entries[1].Name())
	assert.True(t, entries[1].IsDir())
}

func TestReadDirSkipsDirectoryMarkers(t *testing.T) {
	fsys, _ := newTestFS()

	entries, err := fsys.ReadDir("reviews/raw")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "part-0.json", entries[0].Name())
}

func TestStat(t *testing.T) {
	fsys, fake := newTestFS()

	info, err := fsys.Stat("reviews/2025.csv")
	require.NoError(t, err)
	assert.Equal(t, "2025.csv", info.Name())
	assert.Equal(t, int64(len(fake.objects["reviews/2025.csv"].body)), info.Size())
	assert.False(t, info.IsDir())

	info, err = fsys.Stat("reviews")
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	_, err = fsys.Stat("missing")
	assert.True(t, errors.Is(err, fs.ErrNotExist))

	_, err = fsys.Stat("../escape")
	assert.True(t, errors.Is(err, fs.ErrInvalid))
}

func TestStatDirectoryUsesBoundedListing(t *testing.T) {
	fsys, fake := newTestFS()
	for i := 0; i < 50; i++ {
		fake.objects[fmt.Sprintf("archive/part-%03d.csv", i)] = fakeObject{body: "id\n"}
	}
	fake.objects["marked/"] = fakeObject{}
	fake.objects["marked/a.csv"] = fakeObject{body: "id\n"}
	fake.objects["empty/"] = fakeObject{}

	info, err := fsys.Stat("archive")
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, []int{dirCheckLimit}, fake.limits)

	info, err = fsys.Stat("marked")
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	_, err = fsys.Stat("empty")
	assert.True(t, errors.Is(err, fs.ErrNotExist))

	entries, err := fsys.ReadDir("archive")
	require.NoError(t, err)
	assert.Len(t, entries, 50)
	assert.Equal(t, 0, fake.limits[len(fake.limits)-1])
}

func TestOpenFetchesBodyLazily(t *testing.T) {
	fsys, fake := newTestFS()

	f, err := fsys.Open("reviews/2024.csv")
	require.NoError(t, err)
	assert.Equal(t, 0, fake.getCalls)

	data, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "id,sentiment\n1,positive\n", string(data))
	assert.Equal(t, 1, fake.getCalls)

	require.NoError(t, f.Close())
	_, err = f.Read(make([]byte, 1))
	assert.True(t, errors.Is(err, fs.ErrClosed))
}

func TestReadDirOnFile(t *testing.T) {
	fsys, _ := newTestFS()

	_, err := fsys.ReadDir("README.txt")
	require.Error(t, err)
	assert.False(t, errors.Is(err, fs.ErrNotExist))

	_, err = fsys.ReadDir("nope")
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestDiskUsage(t *testing.T) {
	fsys, fake := newTestFS()

	total, err := DiskUsage(fsys, "reviews")
	require.NoError(t, err)
	want := len(fake.objects["reviews/2024.csv"].body) + len(fake.objects["reviews/2025.csv"].body) + len(fake.objects["reviews/raw/part-0.json"].body)
	assert.Equal(t, int64(want), total)
}

func TestParseEndpoint(t *testing.T) {
	host, secure, err := parseEndpoint("https://storage.googleapis.com/")
	require.NoError(t, err)
	assert.Equal(t, "storage.googleapis.com", host)
	assert.True(t, secure)

	host, secure, err = parseEndpoint("http://localhost:9000")
	require.NoError(t, err)
	assert.Equal(t, "localhost:9000", host)
	assert.False(t, secure)

	_, _, err = parseEndpoint("us-east-1")
	assert.Error(t, err)
}
