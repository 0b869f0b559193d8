package bucketfs

import "context"

// ObjectStoreClient defines the bucket and object operations the adapter
// delegates to. Implementations wrap a cloud SDK (see s3store and gcsstore).
//
// All methods accept a context for cancellation and timeout control. The
// adapter adds no retries; errors are returned to the caller unchanged.
type ObjectStoreClient interface {
	// BucketExists reports whether the bucket exists and is accessible.
	BucketExists(ctx context.Context, bucket string) (bool, error)

	// CreateBucket creates the bucket in the given region.
	CreateBucket(ctx context.Context, bucket, region string) error

	// ObjectExists reports whether an object exists at key.
	ObjectExists(ctx context.Context, bucket, key string) (bool, error)

	// CreateObject uploads in.Body, or the file at in.SourcePath when set.
	CreateObject(ctx context.Context, bucket, key string, in CreateObjectInput) (*Result, error)

	// GetObject retrieves an object. The caller closes Result.Body.
	//
	// Returns ErrNotFound if the object does not exist.
	GetObject(ctx context.Context, bucket, key string, opts ReadOptions) (*Result, error)

	// DeleteObject removes an object.
	DeleteObject(ctx context.Context, bucket, key string, opts DeleteOptions) (*Result, error)
}

// ClientProvider exposes the client an Action runs against. Adapter
// implements it.
type ClientProvider interface {
	Client() ObjectStoreClient
}
