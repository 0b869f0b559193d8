package s3store

import (
	"errors"
	"fmt"
	"net/http"

	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/sagarc03/bucketfs"
)

// sentinelFor maps an S3 error onto a bucketfs sentinel, or nil when the
// error has no bucketfs meaning.
func sentinelFor(err error) error {
	var (
		noSuchKey    *types.NoSuchKey
		notFound     *types.NotFound
		noSuchBucket *types.NoSuchBucket
	)
	switch {
	case errors.As(err, &noSuchBucket):
		return bucketfs.ErrBucketNotFound
	case errors.As(err, &noSuchKey), errors.As(err, &notFound):
		return bucketfs.ErrNotFound
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchBucket":
			return bucketfs.ErrBucketNotFound
		case "NoSuchKey", "NotFound":
			return bucketfs.ErrNotFound
		case "NotModified":
			return bucketfs.ErrNotModified
		case "PreconditionFailed":
			return bucketfs.ErrPreconditionFailed
		case "InvalidRange":
			return bucketfs.ErrRangeNotSatisfiable
		}
	}

	// Bodiless responses (HEAD, 304) only carry a status code.
	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) {
		switch respErr.HTTPStatusCode() {
		case http.StatusNotFound:
			return bucketfs.ErrNotFound
		case http.StatusNotModified:
			return bucketfs.ErrNotModified
		case http.StatusPreconditionFailed:
			return bucketfs.ErrPreconditionFailed
		case http.StatusRequestedRangeNotSatisfiable:
			return bucketfs.ErrRangeNotSatisfiable
		}
	}
	return nil
}

// classify wraps err with its bucketfs sentinel, keeping the S3 error in the chain.
func classify(err error) error {
	if sentinel := sentinelFor(err); sentinel != nil {
		return fmt.Errorf("%w: %w", sentinel, err)
	}
	return err
}

func isNotFound(err error) bool {
	sentinel := sentinelFor(err)
	return sentinel == bucketfs.ErrNotFound || sentinel == bucketfs.ErrBucketNotFound
}

func isAlreadyOwned(err error) bool {
	var owned *types.BucketAlreadyOwnedByYou
	return errors.As(err, &owned)
}
