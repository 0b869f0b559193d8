package metrics

import (
	"context"

	"github.com/sagarc03/bucketfs"
)

// client counts the calls made to an object store.
type client struct {
	next  bucketfs.ObjectStoreClient
	calls func(method string, err error)
}

// WrapClient returns next with every call counted.
func (m *Metrics) WrapClient(next bucketfs.ObjectStoreClient) bucketfs.ObjectStoreClient {
	return &client{
		next: next,
		calls: func(method string, err error) {
			m.clientCalls.WithLabelValues(method, outcome(err)).Inc()
		},
	}
}

func (c *client) BucketExists(ctx context.Context, bucket string) (bool, error) {
	ok, err := c.next.BucketExists(ctx, bucket)
	c.calls("bucket_exists", err)
	return ok, err
}

func (c *client) CreateBucket(ctx context.Context, bucket, region string) error {
	err := c.next.CreateBucket(ctx, bucket, region)
	c.calls("create_bucket", err)
	return err
}

func (c *client) ObjectExists(ctx context.Context, bucket, key string) (bool, error) {
	ok, err := c.next.ObjectExists(ctx, bucket, key)
	c.calls("object_exists", err)
	return ok, err
}

func (c *client) CreateObject(ctx context.Context, bucket, key string, in bucketfs.CreateObjectInput) (*bucketfs.Result, error) {
	res, err := c.next.CreateObject(ctx, bucket, key, in)
	c.calls("create_object", err)
	return res, err
}

func (c *client) GetObject(ctx context.Context, bucket, key string, opts bucketfs.ReadOptions) (*bucketfs.Result, error) {
	res, err := c.next.GetObject(ctx, bucket, key, opts)
	c.calls("get_object", err)
	return res, err
}

func (c *client) DeleteObject(ctx context.Context, bucket, key string, opts bucketfs.DeleteOptions) (*bucketfs.Result, error) {
	res, err := c.next.DeleteObject(ctx, bucket, key, opts)
	c.calls("delete_object", err)
	return res, err
}
