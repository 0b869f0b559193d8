// Package s3store implements bucketfs.ObjectStoreClient on Amazon S3 and
// S3-compatible stores such as MinIO.
package s3store

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/spf13/afero"

	"github.com/sagarc03/bucketfs"
)

// Config selects the S3 endpoint and credentials.
type Config struct {
	Region string
	// Key and Secret are used as static credentials when both are set.
	// Otherwise the default AWS credential chain applies.
	Key    string
	Secret string
	// Endpoint overrides the S3 endpoint, e.g. http://localhost:9000.
	Endpoint     string
	UsePathStyle bool
}

// Client is a bucketfs.ObjectStoreClient backed by S3.
type Client struct {
	api S3API
	fs  afero.Fs
}

var _ bucketfs.ObjectStoreClient = (*Client)(nil)

type Option func(*Client)

// WithFs sets the filesystem PutOptions.SourcePath is read from.
func WithFs(fs afero.Fs) Option {
	return func(c *Client) {
		c.fs = fs
	}
}

// New wraps an S3 API client.
func New(api S3API, opts ...Option) *Client {
	c := &Client{
		api: api,
		fs:  afero.NewOsFs(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewFromConfig builds an S3 client from the default AWS configuration,
// overridden by cfg.
func NewFromConfig(ctx context.Context, cfg Config, opts ...Option) (*Client, error) {
	var loadOpts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(cfg.Region))
	}
	if cfg.Key != "" && cfg.Secret != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.Key, cfg.Secret, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	api := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})
	return New(api, opts...), nil
}

func (c *Client) BucketExists(ctx context.Context, bucket string) (bool, error) {
	_, err := c.api.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(bucket)})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("head bucket %s: %w", bucket, classify(err))
	}
	return true, nil
}

// CreateBucket creates bucket in region. A bucket already owned by the
// caller is not an error.
func (c *Client) CreateBucket(ctx context.Context, bucket, region string) error {
	input := &s3.CreateBucketInput{Bucket: aws.String(bucket)}
	// us-east-1 rejects an explicit location constraint.
	if region != "" && region != "us-east-1" {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(region),
		}
	}

	if _, err := c.api.CreateBucket(ctx, input); err != nil && !isAlreadyOwned(err) {
		return fmt.Errorf("create bucket %s: %w", bucket, classify(err))
	}
	return nil
}

func (c *Client) ObjectExists(ctx context.Context, bucket, key string) (bool, error) {
	_, err := c.api.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("head object %s: %w", key, classify(err))
	}
	return true, nil
}

// CreateObject uploads in.Body, or the file at in.SourcePath when set.
// A body that cannot seek is spooled to a temp file on the client's
// filesystem first and removed afterwards.
func (c *Client) CreateObject(ctx context.Context, bucket, key string, in bucketfs.CreateObjectInput) (*bucketfs.Result, error) {
	input := &s3.PutObjectInput{
		Bucket:             aws.String(bucket),
		Key:                aws.String(key),
		Body:               in.Body,
		ContentType:        optional(in.ContentType),
		CacheControl:       optional(in.CacheControl),
		ContentDisposition: optional(in.ContentDisposition),
		Metadata:           in.Metadata,
	}
	if in.ACL != "" {
		input.ACL = types.ObjectCannedACL(in.ACL)
	}
	if in.StorageClass != "" {
		input.StorageClass = types.StorageClass(strings.ToUpper(in.StorageClass))
	}
	if in.ContentLength > 0 {
		input.ContentLength = aws.Int64(in.ContentLength)
	}

	if in.SourcePath != "" {
		f, err := c.fs.Open(in.SourcePath)
		if err != nil {
			return nil, fmt.Errorf("open source %s: %w", in.SourcePath, err)
		}
		defer func() { _ = f.Close() }()

		info, err := f.Stat()
		if err != nil {
			return nil, fmt.Errorf("stat source %s: %w", in.SourcePath, err)
		}
		input.Body = f
		input.ContentLength = aws.Int64(info.Size())
	} else if in.Body != nil {
		if !seekable(in.Body) {
			f, size, err := c.spool(in.Body)
			if err != nil {
				return nil, fmt.Errorf("put object %s: %w", key, err)
			}
			defer c.discard(f)
			input.Body = f
			input.ContentLength = aws.Int64(size)
		}
	}

	out, err := c.api.PutObject(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("put object %s: %w", key, classify(err))
	}
	return &bucketfs.Result{
		Key:       key,
		ETag:      aws.ToString(out.ETag),
		VersionID: aws.ToString(out.VersionId),
	}, nil
}

// spool copies a stream the SDK cannot rewind into a temp file on c.fs.
// Payload checksums over plain HTTP need a seekable body.
func (c *Client) spool(body io.Reader) (afero.File, int64, error) {
	f, err := afero.TempFile(c.fs, "", "bucketfs-put-*")
	if err != nil {
		return nil, 0, fmt.Errorf("create spool file: %w", err)
	}
	size, err := io.Copy(f, body)
	if err == nil {
		_, err = f.Seek(0, io.SeekStart)
	}
	if err != nil {
		c.discard(f)
		return nil, 0, fmt.Errorf("spool body: %w", err)
	}
	return f, size, nil
}

// seekable reports whether r can rewind. Pipes and terminals pass the type
// assertion but fail to seek.
func seekable(r io.Reader) bool {
	s, ok := r.(io.Seeker)
	if !ok {
		return false
	}
	_, err := s.Seek(0, io.SeekCurrent)
	return err == nil
}

func (c *Client) discard(f afero.File) {
	_ = f.Close()
	_ = c.fs.Remove(f.Name())
}

// GetObject returns the object with an open Body that the caller closes.
func (c *Client) GetObject(ctx context.Context, bucket, key string, opts bucketfs.ReadOptions) (*bucketfs.Result, error) {
	out, err := c.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket:                     aws.String(bucket),
		Key:                        aws.String(key),
		Range:                      optional(opts.Range),
		VersionId:                  optional(opts.VersionID),
		IfMatch:                    optional(opts.IfMatch),
		IfNoneMatch:                optional(opts.IfNoneMatch),
		ResponseContentType:        optional(opts.ResponseContentType),
		ResponseContentDisposition: optional(opts.ResponseContentDisposition),
		ResponseCacheControl:       optional(opts.ResponseCacheControl),
	})
	if err != nil {
		return nil, fmt.Errorf("get object %s: %w", key, classify(err))
	}
	return &bucketfs.Result{
		Key:           key,
		ETag:          aws.ToString(out.ETag),
		VersionID:     aws.ToString(out.VersionId),
		Body:          out.Body,
		ContentLength: aws.ToInt64(out.ContentLength),
		ContentType:   aws.ToString(out.ContentType),
		LastModified:  aws.ToTime(out.LastModified),
		ContentRange:  aws.ToString(out.ContentRange),
	}, nil
}

func (c *Client) DeleteObject(ctx context.Context, bucket, key string, opts bucketfs.DeleteOptions) (*bucketfs.Result, error) {
	out, err := c.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket:    aws.String(bucket),
		Key:       aws.String(key),
		VersionId: optional(opts.VersionID),
		MFA:       optional(opts.MFA),
	})
	if err != nil {
		return nil, fmt.Errorf("delete object %s: %w", key, classify(err))
	}
	return &bucketfs.Result{
		Key:       key,
		VersionID: aws.ToString(out.VersionId),
	}, nil
}

// optional maps "" to nil so unset options are omitted from requests.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return aws.String(s)
}
