// File: pkg/storage/fsview/fs.go
package fsview

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"

	"strata/pkg/common"
)

var errNotDir = errors.New("not a directory")

// Entries fetched to prove a prefix is a directory: room for a "dir/" marker plus one child
const dirCheckLimit = 2

// BucketFS exposes one bucket as a read-only hierarchical filesystem.
// Directories are key prefixes split on "/"; they exist as long as some key lives under them.
type BucketFS struct {
	client client
	bucket string
	ctx    context.Context
}

var (
	_ fs.FS         = (*BucketFS)(nil)
	_ fs.ReadDirFS  = (*BucketFS)(nil)
	_ fs.StatFS     = (*BucketFS)(nil)
	_ fs.ReadFileFS = (*BucketFS)(nil)
)

// New opens a filesystem view of cfg.Bucket on the given endpoint. No request is made until first use
func New(endpoint string, cfg common.ProviderConfig) (*BucketFS, error) {
	mc, err := newMinioClient(endpoint, cfg)
	if err != nil {
		return nil, err
	}
	return newWithClient(mc, cfg.Bucket), nil
}

func newWithClient(c client, bucket string) *BucketFS {
	return &BucketFS{client: c, bucket: bucket, ctx: context.Background()}
}

// WithContext returns a view whose requests are bound to ctx. fs.FS methods take no context of their own
func (b *BucketFS) WithContext(ctx context.Context) *BucketFS {
	cp := *b
	cp.ctx = ctx
	return &cp
}

func (b *BucketFS) Bucket() string {
	return b.bucket
}

func (b *BucketFS) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}

	info, err := b.stat(name)
	if err != nil {
		return nil, &fs.PathError{Op: "open", Path: name, Err: err}
	}
	if info.IsDir() {
		return &dirFile{fsys: b, name: name, info: info}, nil
	}
	return &objectFile{fsys: b, name: name, info: info}, nil
}

func (b *BucketFS) Stat(name string) (fs.FileInfo, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrInvalid}
	}
	info, err := b.stat(name)
	if err != nil {
		return nil, &fs.PathError{Op: "stat", Path: name, Err: err}
	}
	return info, nil
}

func (b *BucketFS) ReadDir(name string) ([]fs.DirEntry, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: fs.ErrInvalid}
	}
	entries, err := b.readDir(name)
	if err != nil {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: err}
	}
	return entries, nil
}

func (b *BucketFS) ReadFile(name string) ([]byte, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "readfile", Path: name, Err: fs.ErrInvalid}
	}
	if name == "." {
		return nil, &fs.PathError{Op: "readfile", Path: name, Err: fmt.Errorf("is a directory")}
	}

	body, err := b.client.Get(b.ctx, b.bucket, name)
	if err != nil {
		return nil, &fs.PathError{Op: "readfile", Path: name, Err: err}
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, &fs.PathError{Op: "readfile", Path: name, Err: err}
	}
	return data, nil
}

// An object wins over a prefix of the same name
func (b *BucketFS) stat(name string) (*fileInfo, error) {
	if name == "." {
		return dirInfo("."), nil
	}

	obj, err := b.client.Stat(b.ctx, b.bucket, name)
	if err == nil {
		return objectInfo(path.Base(name), obj), nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	children, err := b.client.List(b.ctx, b.bucket, name+"/", dirCheckLimit)
	if err != nil {
		return nil, err
	}
	for _, child := range children {
		if childName(name+"/", child.Key) != "" {
			return dirInfo(path.Base(name)), nil
		}
	}
	return nil, fs.ErrNotExist
}

func (b *BucketFS) readDir(name string) ([]fs.DirEntry, error) {
	prefix := ""
	if name != "." {
		prefix = name + "/"
	}

	listed, err := b.client.List(b.ctx, b.bucket, prefix, 0)
	if err != nil {
		return nil, err
	}

	entries := make([]fs.DirEntry, 0, len(listed))
	seen := make(map[string]bool, len(listed))
	for _, e := range listed {
		child := childName(prefix, e.Key)
		if child == "" || seen[child] {
			continue
		}
		seen[child] = true

		if e.IsPrefix {
			entries = append(entries, fs.FileInfoToDirEntry(dirInfo(child)))
		} else {
			entries = append(entries, fs.FileInfoToDirEntry(objectInfo(child, e)))
		}
	}

	if len(entries) == 0 && name != "." {
		// Distinguish an empty listing under a real object from a missing path
		if _, err := b.client.Stat(b.ctx, b.bucket, name); err == nil {
			return nil, errNotDir
		}
		return nil, fs.ErrNotExist
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	return entries, nil
}

// Returns the first path element of key below prefix, or "" when the key is not a valid child.
// Directory marker objects ("dir/") and keys that do not form valid fs paths are skipped.
func childName(prefix, key string) string {
	if !strings.HasPrefix(key, prefix) {
		return ""
	}
	rest := strings.TrimPrefix(key, prefix)
	if i := strings.Index(rest, "/"); i >= 0 {
		rest = rest[:i]
	}
	if rest == "" || !fs.ValidPath(rest) {
		return ""
	}
	return rest
}

type fileInfo struct {
	name    string
	size    int64
	modTime time.Time
	dir     bool
}

func dirInfo(name string) *fileInfo {
	return &fileInfo{name: name, dir: true}
}

func objectInfo(name string, e entry) *fileInfo {
	return &fileInfo{name: name, size: e.Size, modTime: e.LastModified}
}

func (fi *fileInfo) Name() string       { return fi.name }
func (fi *fileInfo) Size() int64        { return fi.size }
func (fi *fileInfo) ModTime() time.Time { return fi.modTime }
func (fi *fileInfo) IsDir() bool        { return fi.dir }
func (fi *fileInfo) Sys() any           { return nil }

func (fi *fileInfo) Mode() fs.FileMode {
	if fi.dir {
		return fs.ModeDir | 0555
	}
	return 0444
}

type objectFile struct {
	fsys   *BucketFS
	name   string
	info   *fileInfo
	body   io.ReadCloser
	closed bool
}

func (f *objectFile) Stat() (fs.FileInfo, error) {
	return f.info, nil
}

// The body is fetched on the first Read so that Open and Stat stay metadata-only
func (f *objectFile) Read(p []byte) (int, error) {
	if f.closed {
		return 0, &fs.PathError{Op: "read", Path: f.name, Err: fs.ErrClosed}
	}
	if f.body == nil {
		body, err := f.fsys.client.Get(f.fsys.ctx, f.fsys.bucket, f.name)
		if err != nil {
			return 0, &fs.PathError{Op: "read", Path: f.name, Err: err}
		}
		f.body = body
	}
	return f.body.Read(p)
}

func (f *objectFile) Close() error {
	if f.closed {
		return &fs.PathError{Op: "close", Path: f.name, Err: fs.ErrClosed}
	}
	f.closed = true
	if f.body != nil {
		return f.body.Close()
	}
	return nil
}

type dirFile struct {
	fsys    *BucketFS
	name    string
	info    *fileInfo
	entries []fs.DirEntry
	loaded  bool
	offset  int
}

func (d *dirFile) Stat() (fs.FileInfo, error) {
	return d.info, nil
}

func (d *dirFile) Read([]byte) (int, error) {
	return 0, &fs.PathError{Op: "read", Path: d.name, Err: fmt.Errorf("is a directory")}
}

func (d *dirFile) Close() error {
	return nil
}

func (d *dirFile) ReadDir(n int) ([]fs.DirEntry, error) {
	if !d.loaded {
		entries, err := d.fsys.readDir(d.name)
		if err != nil {
			return nil, &fs.PathError{Op: "readdir", Path: d.name, Err: err}
		}
		d.entries = entries
		d.loaded = true
	}

	remaining := d.entries[d.offset:]
	if n <= 0 {
		d.offset = len(d.entries)
		out := make([]fs.DirEntry, len(remaining))
		copy(out, remaining)
		return out, nil
	}
	if len(remaining) == 0 {
		return nil, io.EOF
	}
	if n > len(remaining) {
		n = len(remaining)
	}
	d.offset += n
	return remaining[:n], nil
}

// DiskUsage sums the size of every object under root
func DiskUsage(fsys fs.FS, root string) (int64, error) {
	var total int64
	err := fs.WalkDir(fsys, root, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		total += info.Size()
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}
