// Package config loads the bucketfs settings shared by every command.
//
// Sources are layered, later ones winning: built-in defaults, the YAML
// files given with --config (merged in order, ./bucketfs.yaml when none
// are given), BUCKETFS_* environment variables, then command-line flags
// that were explicitly set. Nested keys map to environment variables by
// joining with underscores, so adapter.bucket is BUCKETFS_ADAPTER_BUCKET.
//
// A minimal file for a MinIO backend:
//
//	adapter:
//	  bucket: uploads
//	  key: minioadmin
//	  secret: minioadmin
//	storage:
//	  backend: s3
//	  endpoint: http://localhost:9000
//	  path_style: true
//
// Load validates the merged result. The bucket and credentials are left
// alone: an adapter without them fails on first use, not at startup.
// BucketfsConfig converts the adapter section into a bucketfs.Config.
package config
