package bucketfs

import (
	"io"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultProtocol = "https"
	DefaultRegion   = "us-east-1"
	DefaultHost     = "s3.amazonaws.com"
	DefaultTimeout  = "+15 minutes"
	DefaultACL      = "public-read"
)

// Config holds the adapter-level defaults. Call options override these
// values for the duration of one call.
type Config struct {
	Protocol string
	Bucket   string
	Key      string
	Secret   string
	Region   string
	// Timeout is the default signed URL lifetime. The zero Timeout means
	// DefaultTimeout, so a zero-second lifetime has to be requested per
	// call with SignOptions.Timeout.
	Timeout   Timeout
	CDNDomain string
	UseCDN    bool
	// Host is the store's default public host. Bucket URLs are built as
	// "<bucket>.<host>".
	Host string
}

// DefaultConfig returns a Config populated with the adapter defaults.
func DefaultConfig() Config {
	return Config{
		Protocol: DefaultProtocol,
		Region:   DefaultRegion,
		Timeout:  TimeoutExpr(DefaultTimeout),
		Host:     DefaultHost,
	}
}

// Timeout is the lifetime of a signed URL. A non-empty Expr is a textual
// time expression ("+15 minutes", "2030-01-01 00:00:00"); otherwise Seconds
// is added to the current time.
type Timeout struct {
	Expr    string
	Seconds int64
}

// TimeoutExpr returns a Timeout resolved from a time expression.
func TimeoutExpr(expr string) Timeout {
	return Timeout{Expr: expr}
}

// TimeoutSeconds returns a Timeout of n seconds from now.
func TimeoutSeconds(n int64) Timeout {
	return Timeout{Seconds: n}
}

// ParseTimeout interprets an all-digit string as seconds and anything else as an expression.
func ParseTimeout(s string) Timeout {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return TimeoutSeconds(n)
	}
	return TimeoutExpr(s)
}

func (t Timeout) String() string {
	if t.Expr != "" {
		return t.Expr
	}
	return strconv.FormatInt(t.Seconds, 10)
}

// PutOptions are passed through verbatim to ObjectStoreClient.CreateObject.
type PutOptions struct {
	// SourcePath is a local file uploaded instead of the data buffer.
	SourcePath         string
	ACL                string
	ContentType        string
	CacheControl       string
	ContentDisposition string
	StorageClass       string
	Metadata           map[string]string
	// ContentLength, when positive, is sent as the object size.
	ContentLength int64
}

// WriteOptions configures Adapter.Write.
type WriteOptions struct {
	PutOptions
	// AutoCreateBucket creates a missing bucket before uploading. Defaults to true.
	AutoCreateBucket *bool
	// Overwrite allows replacing an existing object. Defaults to true.
	Overwrite *bool
}

// ReadOptions are passed through verbatim to ObjectStoreClient.GetObject.
type ReadOptions struct {
	Range                      string
	VersionID                  string
	IfMatch                    string
	IfNoneMatch                string
	ResponseContentType        string
	ResponseContentDisposition string
	ResponseCacheControl       string
}

// DeleteOptions are passed through verbatim to ObjectStoreClient.DeleteObject.
type DeleteOptions struct {
	VersionID string
	MFA       string
}

// URLOptions override Config fields when building a URL. Nil fields fall
// back to the adapter configuration.
type URLOptions struct {
	Protocol  *string
	CDNDomain *string
	UseCDN    *bool
}

// SignOptions configures Adapter.SignURL.
type SignOptions struct {
	URLOptions
	Timeout *Timeout
	// SignatureOnly returns the query string without host or path.
	SignatureOnly bool
}

// Params are supplied when an Action is invoked.
type Params struct {
	Filename string
	Data     io.Reader
}

// CreateObjectInput is the body and options of an upload.
type CreateObjectInput struct {
	Body io.Reader
	PutOptions
}

// Result is returned by client operations. Body is only set by reads and
// must be closed by the caller.
type Result struct {
	Key           string
	ETag          string
	VersionID     string
	Body          io.ReadCloser
	ContentLength int64
	ContentType   string
	LastModified  time.Time
	// ContentRange is set when a ranged read returned part of the object.
	ContentRange string
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
