package gcsstore

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"

	"github.com/sagarc03/bucketfs"
)

// cannedACLs maps S3 canned ACLs to GCS predefined ACLs.
var cannedACLs = map[string]string{
	"private":                   "private",
	"public-read":               "publicRead",
	"public-read-write":         "publicReadWrite",
	"authenticated-read":        "authenticatedRead",
	"bucket-owner-read":         "bucketOwnerRead",
	"bucket-owner-full-control": "bucketOwnerFullControl",
}

// predefinedACL translates an S3 canned ACL. Other values, including native
// GCS names, pass through unchanged.
func predefinedACL(acl string) string {
	if gcs, ok := cannedACLs[acl]; ok {
		return gcs
	}
	return acl
}

var awsRegionRegex = regexp.MustCompile(`^([a-z]+-[a-z]+)-(\d+)$`)

// location turns an AWS style region such as us-east-1 into the GCS form
// us-east1. GCS names are returned as is.
func location(region string) string {
	return awsRegionRegex.ReplaceAllString(region, "$1$2")
}

func apiCode(err error) int {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return 0
}

func isNotExist(err error) bool {
	return errors.Is(err, storage.ErrObjectNotExist) ||
		errors.Is(err, storage.ErrBucketNotExist) ||
		apiCode(err) == http.StatusNotFound
}

func isConflict(err error) bool {
	return apiCode(err) == http.StatusConflict
}

// classify wraps err with its bucketfs sentinel, keeping the GCS error in the chain.
func classify(err error) error {
	switch {
	case errors.Is(err, storage.ErrBucketNotExist):
		return fmt.Errorf("%w: %w", bucketfs.ErrBucketNotFound, err)
	case errors.Is(err, storage.ErrObjectNotExist), apiCode(err) == http.StatusNotFound:
		return fmt.Errorf("%w: %w", bucketfs.ErrNotFound, err)
	case apiCode(err) == http.StatusPreconditionFailed:
		return fmt.Errorf("%w: %w", bucketfs.ErrPreconditionFailed, err)
	case apiCode(err) == http.StatusNotModified:
		return fmt.Errorf("%w: %w", bucketfs.ErrNotModified, err)
	case apiCode(err) == http.StatusRequestedRangeNotSatisfiable:
		return fmt.Errorf("%w: %w", bucketfs.ErrRangeNotSatisfiable, err)
	}
	return err
}
