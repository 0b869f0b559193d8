// Package gcsstore implements bucketfs.ObjectStoreClient on Google Cloud Storage.
//
// S3 canned ACLs are translated to GCS predefined ACLs, and object versions
// are GCS generations written in decimal.
package gcsstore

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/spf13/afero"
	"google.golang.org/api/option"

	"github.com/sagarc03/bucketfs"
)

// Config selects the GCS project and credentials.
type Config struct {
	ProjectID string
	// CredentialsFile is a service account key. Empty uses application
	// default credentials.
	CredentialsFile string
	// Endpoint overrides the JSON API endpoint, e.g. for an emulator.
	Endpoint string
	// Anonymous sends unauthenticated requests.
	Anonymous bool
}

// Client is a bucketfs.ObjectStoreClient backed by GCS.
type Client struct {
	client    *storage.Client
	projectID string
	fs        afero.Fs
}

var _ bucketfs.ObjectStoreClient = (*Client)(nil)

type Option func(*Client)

// WithFs sets the filesystem PutOptions.SourcePath is read from.
func WithFs(fs afero.Fs) Option {
	return func(c *Client) {
		c.fs = fs
	}
}

// New wraps a storage client. projectID is only needed to create buckets.
func New(client *storage.Client, projectID string, opts ...Option) *Client {
	c := &Client{
		client:    client,
		projectID: projectID,
		fs:        afero.NewOsFs(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewFromConfig creates a storage client from cfg.
func NewFromConfig(ctx context.Context, cfg Config, opts ...Option) (*Client, error) {
	var clientOpts []option.ClientOption
	if cfg.CredentialsFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	if cfg.Endpoint != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(cfg.Endpoint))
	}
	if cfg.Anonymous {
		clientOpts = append(clientOpts, option.WithoutAuthentication())
	}

	client, err := storage.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create GCS client: %w", err)
	}
	return New(client, cfg.ProjectID, opts...), nil
}

// Close releases the underlying storage client.
func (c *Client) Close() error {
	return c.client.Close()
}

func (c *Client) BucketExists(ctx context.Context, bucket string) (bool, error) {
	_, err := c.client.Bucket(bucket).Attrs(ctx)
	if err != nil {
		if isNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("bucket attrs %s: %w", bucket, err)
	}
	return true, nil
}

// CreateBucket creates bucket in the location derived from region. A bucket
// that already exists is not an error.
func (c *Client) CreateBucket(ctx context.Context, bucket, region string) error {
	var attrs *storage.BucketAttrs
	if loc := location(region); loc != "" {
		attrs = &storage.BucketAttrs{Location: loc}
	}

	if err := c.client.Bucket(bucket).Create(ctx, c.projectID, attrs); err != nil && !isConflict(err) {
		return fmt.Errorf("create bucket %s: %w", bucket, err)
	}
	return nil
}

func (c *Client) ObjectExists(ctx context.Context, bucket, key string) (bool, error) {
	_, err := c.client.Bucket(bucket).Object(key).Attrs(ctx)
	if err != nil {
		if isNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("object attrs %s: %w", key, err)
	}
	return true, nil
}

// CreateObject uploads in.Body, or the file at in.SourcePath when set.
func (c *Client) CreateObject(ctx context.Context, bucket, key string, in bucketfs.CreateObjectInput) (*bucketfs.Result, error) {
	body := in.Body
	if in.SourcePath != "" {
		f, err := c.fs.Open(in.SourcePath)
		if err != nil {
			return nil, fmt.Errorf("open source %s: %w", in.SourcePath, err)
		}
		defer func() { _ = f.Close() }()
		body = f
	}
	if body == nil {
		body = strings.NewReader("")
	}

	// Cancelling ctx aborts the upload if copying fails.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w := c.client.Bucket(bucket).Object(key).NewWriter(ctx)
	w.ContentType = in.ContentType
	w.CacheControl = in.CacheControl
	w.ContentDisposition = in.ContentDisposition
	w.Metadata = in.Metadata
	w.PredefinedACL = predefinedACL(in.ACL)
	w.StorageClass = in.StorageClass

	if _, err := io.Copy(w, body); err != nil {
		cancel()
		_ = w.Close()
		return nil, fmt.Errorf("upload %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("upload %s: %w", key, classify(err))
	}

	attrs := w.Attrs()
	return &bucketfs.Result{
		Key:       key,
		ETag:      attrs.Etag,
		VersionID: strconv.FormatInt(attrs.Generation, 10),
	}, nil
}

// GetObject reads the object. If-Match and If-None-Match are compared with
// the object ETag. Response header overrides are not supported by GCS reads
// and are ignored.
func (c *Client) GetObject(ctx context.Context, bucket, key string, opts bucketfs.ReadOptions) (*bucketfs.Result, error) {
	obj, err := c.object(bucket, key, opts.VersionID)
	if err != nil {
		return nil, err
	}

	offset, length, err := bucketfs.ParseRange(opts.Range)
	if err != nil {
		return nil, err
	}

	attrs, err := obj.Attrs(ctx)
	if err != nil {
		return nil, fmt.Errorf("object attrs %s: %w", key, classify(err))
	}
	if err := bucketfs.CheckConditions(attrs.Etag, opts); err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	if opts.Range != "" {
		if err := bucketfs.CheckRange(offset, attrs.Size); err != nil {
			return nil, fmt.Errorf("read %s: %w", key, err)
		}
	}

	r, err := obj.Generation(attrs.Generation).NewRangeReader(ctx, offset, length)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, classify(err))
	}

	res := &bucketfs.Result{
		Key:           key,
		ETag:          attrs.Etag,
		VersionID:     strconv.FormatInt(attrs.Generation, 10),
		Body:          r,
		ContentLength: r.Remain(),
		ContentType:   attrs.ContentType,
		LastModified:  attrs.Updated,
	}
	if opts.Range != "" {
		res.ContentRange = bucketfs.ContentRange(r.Attrs.StartOffset, r.Remain(), attrs.Size)
	}
	return res, nil
}

func (c *Client) DeleteObject(ctx context.Context, bucket, key string, opts bucketfs.DeleteOptions) (*bucketfs.Result, error) {
	obj, err := c.object(bucket, key, opts.VersionID)
	if err != nil {
		return nil, err
	}
	if err := obj.Delete(ctx); err != nil {
		return nil, fmt.Errorf("delete %s: %w", key, classify(err))
	}
	return &bucketfs.Result{Key: key, VersionID: opts.VersionID}, nil
}

func (c *Client) object(bucket, key, versionID string) (*storage.ObjectHandle, error) {
	obj := c.client.Bucket(bucket).Object(key)
	if versionID == "" {
		return obj, nil
	}
	gen, err := strconv.ParseInt(versionID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("version %q is not a generation: %w", versionID, bucketfs.ErrInvalidInput)
	}
	return obj.Generation(gen), nil
}
