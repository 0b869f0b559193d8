package bucketfs_test

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/sagarc03/bucketfs"
)

const (
	testBucket = "li3_aws"
	testKey    = "BKIAJCQJZKAWSTNVBHUJ"
	testSecret = "TRDMBTZ1Ju1KUG4zKLbL1k8cJgh92UJQzrK4l1M"
	testCDN    = "li3_aws.cloudfront.net"
)

// SpyClient records every call made to it, in order, in Calls.
type SpyClient struct {
	mock.Mock
}

func (s *SpyClient) BucketExists(ctx context.Context, bucket string) (bool, error) {
	args := s.Called(ctx, bucket)
	return args.Bool(0), args.Error(1)
}

func (s *SpyClient) CreateBucket(ctx context.Context, bucket, region string) error {
	args := s.Called(ctx, bucket, region)
	return args.Error(0)
}

func (s *SpyClient) ObjectExists(ctx context.Context, bucket, key string) (bool, error) {
	args := s.Called(ctx, bucket, key)
	return args.Bool(0), args.Error(1)
}

func (s *SpyClient) CreateObject(ctx context.Context, bucket, key string, in bucketfs.CreateObjectInput) (*bucketfs.Result, error) {
	args := s.Called(ctx, bucket, key, in)
	res, _ := args.Get(0).(*bucketfs.Result)
	return res, args.Error(1)
}

func (s *SpyClient) GetObject(ctx context.Context, bucket, key string, opts bucketfs.ReadOptions) (*bucketfs.Result, error) {
	args := s.Called(ctx, bucket, key, opts)
	res, _ := args.Get(0).(*bucketfs.Result)
	return res, args.Error(1)
}

func (s *SpyClient) DeleteObject(ctx context.Context, bucket, key string, opts bucketfs.DeleteOptions) (*bucketfs.Result, error) {
	args := s.Called(ctx, bucket, key, opts)
	res, _ := args.Get(0).(*bucketfs.Result)
	return res, args.Error(1)
}

// methods returns the names of the recorded calls in order.
func (s *SpyClient) methods() []string {
	names := make([]string, 0, len(s.Calls))
	for _, c := range s.Calls {
		names = append(names, c.Method)
	}
	return names
}

func testConfig() bucketfs.Config {
	return bucketfs.Config{
		Protocol:  "http",
		Bucket:    testBucket,
		Key:       testKey,
		Secret:    testSecret,
		Region:    "us-east-1",
		Timeout:   bucketfs.TimeoutExpr("+15 minutes"),
		CDNDomain: testCDN,
		UseCDN:    false,
	}
}

var fixedNow = time.Date(2014, time.September, 26, 15, 24, 52, 0, time.UTC)

func NewAdapter(t *testing.T, cfg bucketfs.Config) (*bucketfs.Adapter, *SpyClient) {
	t.Helper()
	spy := new(SpyClient)
	return bucketfs.New(cfg, spy, bucketfs.WithClock(func() time.Time { return fixedNow })), spy
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
