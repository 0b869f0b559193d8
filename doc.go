// Package bucketfs provides an object store adapter for filesystem-style
// storage abstractions.
//
// The adapter maps a uniform (filename, data, options) call shape onto a
// bucket/object client and builds public and signed URLs for stored objects.
// It holds no state beyond its configuration: every storage operation is
// delegated to an ObjectStoreClient (see the s3store and gcsstore packages).
//
// # Key Components
//
//   - Adapter: translates Write, Read and Delete into deferred Actions and
//     builds URLs with URL and SignURL
//   - ObjectStoreClient: interface implemented by the storage backends
//   - Filesystem: runs Actions through a chain of Filters
//   - SignatureVerifier: verifies query strings produced by SignURL
//
// # Deferred Actions
//
// Write, Read and Delete do not touch the store. They return an Action that
// captures the merged options and performs the client calls when invoked:
//
//	adapter := bucketfs.New(bucketfs.Config{Bucket: "assets"}, client)
//
//	action := adapter.Write("logo.png", r, bucketfs.WriteOptions{
//	    Overwrite: bucketfs.Ptr(false),
//	})
//	res, err := action(ctx, adapter, bucketfs.Params{Filename: "logo.png", Data: r})
//
// Filesystem wraps this pattern and applies filters around each call:
//
//	fs := bucketfs.NewFilesystem(adapter, bucketfs.LogFilter(slog.Default()))
//	res, err := fs.Write(ctx, "logo.png", r, bucketfs.WriteOptions{})
//
// # URLs
//
//	u, err := adapter.URL("logo.png", bucketfs.URLOptions{})
//	// https://assets.s3.amazonaws.com/logo.png
//
//	s, err := adapter.SignURL("logo.png", bucketfs.SignOptions{})
//	// https://assets.s3.amazonaws.com/logo.png?AWSAccessKeyId=...&Expires=...&Signature=...
package bucketfs
