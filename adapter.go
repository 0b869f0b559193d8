package bucketfs

import (
	"context"
	"fmt"
	"io"
	"maps"
	"strconv"
	"time"
)

// Action performs a storage operation when invoked. self supplies the
// client; p supplies the filename and data. Empty params fall back to the
// values given when the Action was created.
type Action func(ctx context.Context, self ClientProvider, p Params) (*Result, error)

// Adapter maps filesystem-style calls onto an ObjectStoreClient.
// It is safe for concurrent use; its configuration never changes after New.
type Adapter struct {
	cfg    Config
	client ObjectStoreClient
	now    func() time.Time
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithClock sets the time source used to compute signed URL expiry.
func WithClock(now func() time.Time) Option {
	return func(a *Adapter) {
		a.now = now
	}
}

// New creates an Adapter. The configuration is not validated: a missing
// bucket or credential surfaces when an operation needs it.
func New(cfg Config, client ObjectStoreClient, opts ...Option) *Adapter {
	a := &Adapter{
		cfg:    cfg,
		client: client,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Client returns the injected client.
func (a *Adapter) Client() ObjectStoreClient {
	return a.client
}

// Config returns a copy of the adapter configuration.
func (a *Adapter) Config() Config {
	return a.cfg
}

// Write returns an Action that uploads data to filename.
//
// When invoked, the Action:
//  1. Creates the bucket if it does not exist, or fails with
//     ErrBucketNotFound when AutoCreateBucket is false
//  2. Fails with ErrObjectAlreadyExists if the object exists and Overwrite is false
//  3. Uploads the data, or the file at SourcePath, with the remaining options
//
// A bucket created in step 1 is kept if the upload fails.
func (a *Adapter) Write(filename string, data io.Reader, opts WriteOptions) Action {
	bucket, region := a.cfg.Bucket, a.cfg.Region
	autoCreate := valueOr(opts.AutoCreateBucket, true)
	overwrite := valueOr(opts.Overwrite, true)

	put := opts.PutOptions
	put.Metadata = maps.Clone(put.Metadata)
	if put.ACL == "" {
		put.ACL = DefaultACL
	}

	return func(ctx context.Context, self ClientProvider, p Params) (*Result, error) {
		key, body := p.Filename, p.Data
		if key == "" {
			key = filename
		}
		if body == nil {
			body = data
		}
		client := self.Client()

		exists, err := client.BucketExists(ctx, bucket)
		if err != nil {
			return nil, fmt.Errorf("write %s: check bucket %s: %w", key, bucket, err)
		}
		if !exists {
			if !autoCreate {
				return nil, fmt.Errorf("write %s: bucket %q: %w", key, bucket, ErrBucketNotFound)
			}
			if err := client.CreateBucket(ctx, bucket, region); err != nil {
				return nil, fmt.Errorf("write %s: create bucket %s: %w", key, bucket, err)
			}
		}

		found, err := client.ObjectExists(ctx, bucket, key)
		if err != nil {
			return nil, fmt.Errorf("write %s: check object: %w", key, err)
		}
		if found && !overwrite {
			return nil, fmt.Errorf("write %s: in bucket %q: %w", key, bucket, ErrObjectAlreadyExists)
		}

		res, err := client.CreateObject(ctx, bucket, key, CreateObjectInput{Body: body, PutOptions: put})
		if err != nil {
			return nil, fmt.Errorf("write %s: %w", key, err)
		}
		return res, nil
	}
}

// Read returns an Action that fetches filename. Options are passed to the
// client unchanged.
func (a *Adapter) Read(filename string, opts ReadOptions) Action {
	bucket := a.cfg.Bucket

	return func(ctx context.Context, self ClientProvider, p Params) (*Result, error) {
		key := p.Filename
		if key == "" {
			key = filename
		}
		res, err := self.Client().GetObject(ctx, bucket, key, opts)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", key, err)
		}
		return res, nil
	}
}

// Delete returns an Action that removes filename. Options are passed to the
// client unchanged.
func (a *Adapter) Delete(filename string, opts DeleteOptions) Action {
	bucket := a.cfg.Bucket

	return func(ctx context.Context, self ClientProvider, p Params) (*Result, error) {
		key := p.Filename
		if key == "" {
			key = filename
		}
		res, err := self.Client().DeleteObject(ctx, bucket, key, opts)
		if err != nil {
			return nil, fmt.Errorf("delete %s: %w", key, err)
		}
		return res, nil
	}
}

// URL returns the public URL of path. It makes no client calls.
//
// The protocol is rendered as "<protocol>:" or omitted when empty, giving a
// protocol-relative URL. The host is the CDN domain when UseCDN is set and
// "<bucket>.<host>" otherwise.
//
// Returns ErrMissingCDNDomain if UseCDN is set without a CDN domain.
func (a *Adapter) URL(path string, opts URLOptions) (string, error) {
	protocol := valueOr(opts.Protocol, a.cfg.Protocol)
	prefix := ""
	if protocol != "" {
		prefix = protocol + ":"
	}

	var host string
	if valueOr(opts.UseCDN, a.cfg.UseCDN) {
		host = valueOr(opts.CDNDomain, a.cfg.CDNDomain)
		if host == "" {
			return "", fmt.Errorf("url %s: %w", path, ErrMissingCDNDomain)
		}
	} else {
		storeHost := a.cfg.Host
		if storeHost == "" {
			storeHost = DefaultHost
		}
		host = a.cfg.Bucket + "." + storeHost
	}

	return prefix + "//" + host + "/" + path, nil
}

// SignURL returns a time-limited URL for reading path.
//
// The expiry is resolved from opts.Timeout, or the configured timeout. The
// query string carries AWSAccessKeyId, Expires and Signature, in that order.
// With SignatureOnly set only the query string is returned. Otherwise the
// query is appended to URL(path, opts.URLOptions); with no URL options that
// is the configured public URL. The options never enter the signature.
func (a *Adapter) SignURL(path string, opts SignOptions) (string, error) {
	timeout := a.cfg.Timeout
	if opts.Timeout != nil {
		timeout = *opts.Timeout
	} else if timeout == (Timeout{}) {
		timeout = TimeoutExpr(DefaultTimeout)
	}

	expires, ok := ResolveExpiry(timeout, a.now())
	field := ""
	if ok {
		field = strconv.FormatInt(expires, 10)
	}

	signature := Sign(a.cfg.Secret, StringToSign(field, a.cfg.Bucket, path))
	qs := SignedQuery(a.cfg.Key, expires, signature)
	if opts.SignatureOnly {
		return qs, nil
	}

	u, err := a.URL(path, opts.URLOptions)
	if err != nil {
		return "", fmt.Errorf("sign %w", err)
	}
	return u + "?" + qs, nil
}

func valueOr[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}
