// Package localstore implements bucketfs.ObjectStoreClient on a local
// directory. Each bucket is a directory under the root and each object a
// file inside it. Writes are atomic and ETags are SHA256 digests.
//
// ACLs, cache headers, storage classes and user metadata are accepted and
// ignored. Content types are derived from the key's extension.
package localstore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/sagarc03/bucketfs"
)

// Store provides bucket and object operations on a directory tree.
type Store struct {
	root *os.Root
	fs   afero.Fs
}

var _ bucketfs.ObjectStoreClient = (*Store)(nil)

type Option func(*Store)

// WithFs sets the filesystem PutOptions.SourcePath is read from.
func WithFs(fs afero.Fs) Option {
	return func(s *Store) {
		s.fs = fs
	}
}

// New creates a Store on root. The root provides sandboxed file operations
// preventing path traversal.
func New(root *os.Root, opts ...Option) *Store {
	s := &Store{root: root, fs: afero.NewOsFs()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// BucketExists reports whether the bucket directory exists.
func (s *Store) BucketExists(ctx context.Context, bucket string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if err := validBucket(bucket); err != nil {
		return false, err
	}

	info, err := s.root.Stat(bucket)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat bucket %s: %w", bucket, err)
	}
	return info.IsDir(), nil
}

// CreateBucket creates the bucket directory. The region is ignored and an
// existing bucket is not an error.
func (s *Store) CreateBucket(ctx context.Context, bucket, _ string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validBucket(bucket); err != nil {
		return err
	}

	if err := s.root.Mkdir(bucket, 0o755); err != nil && !errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("create bucket %s: %w", bucket, err)
	}
	return nil
}

// ObjectExists reports whether a regular file exists at key.
func (s *Store) ObjectExists(ctx context.Context, bucket, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	p, err := objectPath(bucket, key)
	if err != nil {
		return false, err
	}

	info, err := s.root.Stat(p)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", key, err)
	}
	return info.Mode().IsRegular(), nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (r *ctxReader) Read(p []byte) (n int, err error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}

// CreateObject atomically writes in.Body, or the file at in.SourcePath, to
// key using a temp file and rename. Intermediate directories are created as
// needed. The bucket must exist.
func (s *Store) CreateObject(ctx context.Context, bucket, key string, in bucketfs.CreateObjectInput) (*bucketfs.Result, error) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	p, err := objectPath(bucket, key)
	if err != nil {
		return nil, err
	}
	if ok, err := s.BucketExists(ctx, bucket); err != nil {
		return nil, err
	} else if !ok {
		return nil, fmt.Errorf("upload %s: bucket %q: %w", key, bucket, bucketfs.ErrBucketNotFound)
	}

	body := in.Body
	if in.SourcePath != "" {
		f, err := s.fs.Open(in.SourcePath)
		if err != nil {
			return nil, fmt.Errorf("open source %s: %w", in.SourcePath, err)
		}
		defer func() { _ = f.Close() }()
		body = f
	}
	if body == nil {
		body = strings.NewReader("")
	}

	tmpFile := filepath.Join(bucket, tmpFileName())
	t, createErr := s.root.Create(tmpFile)
	if createErr != nil {
		return nil, fmt.Errorf("could not open temp file: %w", createErr)
	}

	success := false
	defer func() {
		if closeErr := t.Close(); closeErr != nil && !errors.Is(closeErr, os.ErrClosed) {
			slog.Warn("failed to close tmp file", "err", closeErr)
		}
		if !success {
			if rmErr := s.root.Remove(tmpFile); rmErr != nil {
				slog.Warn("failed to remove tmp file", "err", rmErr)
			}
		}
	}()

	h := sha256.New()
	w := io.MultiWriter(h, t)

	if _, err := io.Copy(w, &ctxReader{ctx: ctx, r: body}); err != nil {
		return nil, fmt.Errorf("could not copy file contents: %w", err)
	}
	if err := t.Sync(); err != nil {
		return nil, fmt.Errorf("could not sync written file: %w", err)
	}
	if err := t.Close(); err != nil {
		return nil, fmt.Errorf("could not close written file: %w", err)
	}

	if destDir := filepath.Dir(p); destDir != bucket {
		if err := s.root.MkdirAll(destDir, 0o755); err != nil {
			return nil, fmt.Errorf("could not create intermediate directories: %w", err)
		}
	}
	if err := s.root.Rename(tmpFile, p); err != nil {
		return nil, fmt.Errorf("failed to rename file: %w", err)
	}
	success = true

	return &bucketfs.Result{Key: key, ETag: quote(h.Sum(nil))}, nil
}

type readCloser struct {
	io.Reader
	io.Closer
}

// GetObject opens the object. Ranges and If-Match/If-None-Match are
// honored; versions are not supported.
func (s *Store) GetObject(ctx context.Context, bucket, key string, opts bucketfs.ReadOptions) (*bucketfs.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if opts.VersionID != "" {
		return nil, fmt.Errorf("read %s: versions are not supported: %w", key, bucketfs.ErrInvalidInput)
	}
	p, err := objectPath(bucket, key)
	if err != nil {
		return nil, err
	}
	offset, length, err := bucketfs.ParseRange(opts.Range)
	if err != nil {
		return nil, err
	}

	f, err := s.root.Open(p)
	if err != nil {
		return nil, s.notFound(bucket, key, err)
	}

	res, err := s.read(f, key, offset, length, opts)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return res, nil
}

func (s *Store) read(f *os.File, key string, offset, length int64, opts bucketfs.ReadOptions) (*bucketfs.Result, error) {
	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", key, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("read %s: %w", key, bucketfs.ErrNotFound)
	}

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return nil, fmt.Errorf("hash %s: %w", key, err)
	}
	etag := quote(h.Sum(nil))
	if err := bucketfs.CheckConditions(etag, opts); err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}

	size := info.Size()
	if opts.Range != "" {
		if err := bucketfs.CheckRange(offset, size); err != nil {
			return nil, fmt.Errorf("read %s: %w", key, err)
		}
	}
	start, n := resolveRange(offset, length, size)
	if _, err := f.Seek(start, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek %s: %w", key, err)
	}

	res := &bucketfs.Result{
		Key:           key,
		ETag:          etag,
		Body:          readCloser{Reader: io.LimitReader(f, n), Closer: f},
		ContentLength: n,
		ContentType:   detectContentType(key),
		LastModified:  info.ModTime(),
	}
	if opts.Range != "" {
		res.ContentRange = bucketfs.ContentRange(start, n, size)
	}
	return res, nil
}

// DeleteObject removes the object. Returns bucketfs.ErrNotFound if it does
// not exist.
func (s *Store) DeleteObject(ctx context.Context, bucket, key string, _ bucketfs.DeleteOptions) (*bucketfs.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := objectPath(bucket, key)
	if err != nil {
		return nil, err
	}

	if err := s.root.Remove(p); err != nil {
		return nil, s.notFound(bucket, key, err)
	}
	return &bucketfs.Result{Key: key}, nil
}

// notFound maps a missing file to ErrBucketNotFound or ErrNotFound.
func (s *Store) notFound(bucket, key string, err error) error {
	if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("open %s: %w", key, err)
	}
	if _, statErr := s.root.Stat(bucket); errors.Is(statErr, fs.ErrNotExist) {
		return fmt.Errorf("%s: %w: %w", key, bucketfs.ErrBucketNotFound, err)
	}
	return fmt.Errorf("%s: %w: %w", key, bucketfs.ErrNotFound, err)
}

func validBucket(bucket string) error {
	if bucket == "" || bucket == "." || bucket == ".." || strings.ContainsAny(bucket, `/\`) {
		return fmt.Errorf("bucket %q: %w", bucket, bucketfs.ErrInvalidInput)
	}
	return nil
}

func objectPath(bucket, key string) (string, error) {
	if err := validBucket(bucket); err != nil {
		return "", err
	}
	if !bucketfs.IsValidPath(key) {
		return "", fmt.Errorf("key %q: %w", key, bucketfs.ErrInvalidInput)
	}
	return filepath.Join(bucket, filepath.FromSlash(key)), nil
}

// resolveRange turns ParseRange output into a start offset and byte count
// clamped to size.
func resolveRange(offset, length, size int64) (start, n int64) {
	start = offset
	if start < 0 {
		start = max(size+start, 0)
	}
	start = min(start, size)

	n = size - start
	if length >= 0 {
		n = min(length, n)
	}
	return start, n
}

func quote(sum []byte) string {
	return `"` + hex.EncodeToString(sum) + `"`
}

func detectContentType(key string) string {
	contentType := mime.TypeByExtension(filepath.Ext(key))
	if contentType == "" {
		return "application/octet-stream"
	}
	return contentType
}

func tmpFileName() string {
	return fmt.Sprintf(".t%s", uuid.New().String())
}
