package bucketfs

import "errors"

var (
	// ErrBucketNotFound is returned by Write when the bucket is missing and
	// automatic bucket creation is disabled.
	ErrBucketNotFound = errors.New("bucket not found")
	// ErrObjectAlreadyExists is returned by Write when an object exists and overwrite is disabled.
	ErrObjectAlreadyExists = errors.New("object already exists")
	// ErrMissingCDNDomain is returned when a CDN URL is requested without a configured domain.
	ErrMissingCDNDomain = errors.New("cdn requires a domain")
	// ErrNotFound is returned by clients when an object does not exist
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnauthorized is returned when signed URL verification fails
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotModified is returned by reads whose If-None-Match matched.
	ErrNotModified = errors.New("not modified")
	// ErrPreconditionFailed is returned by reads whose If-Match did not match.
	ErrPreconditionFailed = errors.New("precondition failed")
	// ErrRangeNotSatisfiable is returned by reads whose range starts at or
	// past the end of the object.
	ErrRangeNotSatisfiable = errors.New("range not satisfiable")
)
