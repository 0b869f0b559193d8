package bucketfs_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sagarc03/bucketfs"
)

func TestAdapter_New(t *testing.T) {
	t.Run("does not validate configuration", func(t *testing.T) {
		spy := new(SpyClient)
		a := bucketfs.New(bucketfs.Config{}, spy)

		require.NotNil(t, a)
		assert.Same(t, spy, a.Client())
		spy.AssertNotCalled(t, "BucketExists", mock.Anything, mock.Anything)
	})

	t.Run("config is returned by value", func(t *testing.T) {
		a, _ := NewAdapter(t, testConfig())
		cfg := a.Config()
		cfg.Bucket = "changed"

		assert.Equal(t, testBucket, a.Config().Bucket)
	})
}

func TestAdapter_Write(t *testing.T) {
	t.Run("checks bucket and object then creates", func(t *testing.T) {
		a, spy := NewAdapter(t, testConfig())
		ctx := context.Background()
		data := strings.NewReader("test data")
		want := &bucketfs.Result{Key: "test_file", ETag: "etag"}

		spy.On("BucketExists", ctx, testBucket).Return(true, nil)
		spy.On("ObjectExists", ctx, testBucket, "test_file").Return(false, nil)
		spy.On("CreateObject", ctx, testBucket, "test_file", bucketfs.CreateObjectInput{
			Body:       data,
			PutOptions: bucketfs.PutOptions{ACL: "public-read"},
		}).Return(want, nil)

		action := a.Write("test_file", data, bucketfs.WriteOptions{})
		res, err := action(ctx, a, bucketfs.Params{Filename: "test_file", Data: data})
		require.NoError(t, err)

		assert.Same(t, want, res)
		assert.Equal(t, []string{"BucketExists", "ObjectExists", "CreateObject"}, spy.methods())
		spy.AssertExpectations(t)
	})

	t.Run("uploads source file instead of buffer", func(t *testing.T) {
		a, spy := NewAdapter(t, testConfig())
		ctx := context.Background()

		spy.On("BucketExists", ctx, testBucket).Return(true, nil)
		spy.On("ObjectExists", ctx, testBucket, "test_file").Return(false, nil)
		spy.On("CreateObject", ctx, testBucket, "test_file", bucketfs.CreateObjectInput{
			Body: nil,
			PutOptions: bucketfs.PutOptions{
				SourcePath: "/path/to/the/file",
				ACL:        "public-read",
			},
		}).Return(&bucketfs.Result{Key: "test_file"}, nil)

		action := a.Write("test_file", nil, bucketfs.WriteOptions{
			PutOptions: bucketfs.PutOptions{SourcePath: "/path/to/the/file"},
		})
		_, err := action(ctx, a, bucketfs.Params{Filename: "test_file"})
		require.NoError(t, err)

		assert.Equal(t, []string{"BucketExists", "ObjectExists", "CreateObject"}, spy.methods())
		spy.AssertExpectations(t)
	})

	t.Run("passes remaining options through", func(t *testing.T) {
		a, spy := NewAdapter(t, testConfig())
		ctx := context.Background()
		data := strings.NewReader("{}")

		put := bucketfs.PutOptions{
			ACL:          "private",
			ContentType:  "application/json",
			CacheControl: "max-age=60",
			StorageClass: "STANDARD_IA",
			Metadata:     map[string]string{"owner": "ops"},
		}

		spy.On("BucketExists", ctx, testBucket).Return(true, nil)
		spy.On("ObjectExists", ctx, testBucket, "config.json").Return(true, nil)
		spy.On("CreateObject", ctx, testBucket, "config.json", bucketfs.CreateObjectInput{
			Body:       data,
			PutOptions: put,
		}).Return(&bucketfs.Result{}, nil)

		action := a.Write("config.json", data, bucketfs.WriteOptions{
			PutOptions: put,
			Overwrite:  bucketfs.Ptr(true),
		})
		_, err := action(ctx, a, bucketfs.Params{Filename: "config.json", Data: data})
		require.NoError(t, err)

		spy.AssertExpectations(t)
	})

	t.Run("creates missing bucket in configured region", func(t *testing.T) {
		cfg := testConfig()
		cfg.Region = "eu-west-1"
		a, spy := NewAdapter(t, cfg)
		ctx := context.Background()

		spy.On("BucketExists", ctx, testBucket).Return(false, nil)
		spy.On("CreateBucket", ctx, testBucket, "eu-west-1").Return(nil)
		spy.On("ObjectExists", ctx, testBucket, "test_file").Return(false, nil)
		spy.On("CreateObject", ctx, testBucket, "test_file", mock.Anything).Return(&bucketfs.Result{}, nil)

		_, err := a.Write("test_file", strings.NewReader("x"), bucketfs.WriteOptions{})(ctx, a, bucketfs.Params{})
		require.NoError(t, err)

		assert.Equal(t, []string{"BucketExists", "CreateBucket", "ObjectExists", "CreateObject"}, spy.methods())
	})

	t.Run("does not overwrite existing object", func(t *testing.T) {
		a, spy := NewAdapter(t, testConfig())
		ctx := context.Background()

		spy.On("BucketExists", ctx, testBucket).Return(true, nil)
		spy.On("ObjectExists", ctx, testBucket, "test_existing_file").Return(true, nil)

		action := a.Write("test_existing_file", strings.NewReader("test data"), bucketfs.WriteOptions{
			Overwrite: bucketfs.Ptr(false),
		})
		_, err := action(ctx, a, bucketfs.Params{Filename: "test_existing_file"})

		require.ErrorIs(t, err, bucketfs.ErrObjectAlreadyExists)
		assert.Contains(t, err.Error(), "test_existing_file")
		assert.Contains(t, err.Error(), testBucket)
		spy.AssertNotCalled(t, "CreateObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("does not auto create bucket", func(t *testing.T) {
		cfg := testConfig()
		cfg.Bucket = "unexisting_bucket"
		a, spy := NewAdapter(t, cfg)
		ctx := context.Background()

		spy.On("BucketExists", ctx, "unexisting_bucket").Return(false, nil)

		action := a.Write("test_file", strings.NewReader("test data"), bucketfs.WriteOptions{
			AutoCreateBucket: bucketfs.Ptr(false),
		})
		_, err := action(ctx, a, bucketfs.Params{Filename: "test_file"})

		require.ErrorIs(t, err, bucketfs.ErrBucketNotFound)
		assert.Contains(t, err.Error(), "unexisting_bucket")
		assert.Equal(t, []string{"BucketExists"}, spy.methods())
	})

	t.Run("params override captured filename and data", func(t *testing.T) {
		a, spy := NewAdapter(t, testConfig())
		ctx := context.Background()
		data := strings.NewReader("from params")

		spy.On("BucketExists", ctx, testBucket).Return(true, nil)
		spy.On("ObjectExists", ctx, testBucket, "other").Return(false, nil)
		spy.On("CreateObject", ctx, testBucket, "other", bucketfs.CreateObjectInput{
			Body:       data,
			PutOptions: bucketfs.PutOptions{ACL: "public-read"},
		}).Return(&bucketfs.Result{}, nil)

		action := a.Write("test_file", strings.NewReader("captured"), bucketfs.WriteOptions{})
		_, err := action(ctx, a, bucketfs.Params{Filename: "other", Data: data})
		require.NoError(t, err)

		spy.AssertExpectations(t)
	})

	t.Run("create bucket failure is returned and no object is written", func(t *testing.T) {
		a, spy := NewAdapter(t, testConfig())
		ctx := context.Background()
		createErr := errors.New("access denied")

		spy.On("BucketExists", ctx, testBucket).Return(false, nil)
		spy.On("CreateBucket", ctx, testBucket, "us-east-1").Return(createErr)

		_, err := a.Write("test_file", strings.NewReader("x"), bucketfs.WriteOptions{})(ctx, a, bucketfs.Params{})

		require.ErrorIs(t, err, createErr)
		assert.Equal(t, []string{"BucketExists", "CreateBucket"}, spy.methods())
	})

	t.Run("client errors propagate", func(t *testing.T) {
		a, spy := NewAdapter(t, testConfig())
		ctx := context.Background()

		spy.On("BucketExists", ctx, testBucket).Return(false, io.ErrUnexpectedEOF)

		_, err := a.Write("test_file", nil, bucketfs.WriteOptions{})(ctx, a, bucketfs.Params{})

		require.ErrorIs(t, err, io.ErrUnexpectedEOF)
		assert.Equal(t, []string{"BucketExists"}, spy.methods())
	})

	t.Run("upload failure after bucket creation is returned", func(t *testing.T) {
		a, spy := NewAdapter(t, testConfig())
		ctx := context.Background()

		spy.On("BucketExists", ctx, testBucket).Return(false, nil)
		spy.On("CreateBucket", ctx, testBucket, "us-east-1").Return(nil)
		spy.On("ObjectExists", ctx, testBucket, "test_file").Return(false, nil)
		spy.On("CreateObject", ctx, testBucket, "test_file", mock.Anything).Return(nil, io.ErrClosedPipe)

		_, err := a.Write("test_file", strings.NewReader("x"), bucketfs.WriteOptions{})(ctx, a, bucketfs.Params{})

		require.ErrorIs(t, err, io.ErrClosedPipe)
		spy.AssertNotCalled(t, "DeleteObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("options are captured at creation", func(t *testing.T) {
		a, spy := NewAdapter(t, testConfig())
		ctx := context.Background()

		meta := map[string]string{"k": "v"}
		opts := bucketfs.WriteOptions{PutOptions: bucketfs.PutOptions{Metadata: meta}}
		action := a.Write("test_file", nil, opts)
		meta["k"] = "changed"

		spy.On("BucketExists", ctx, testBucket).Return(true, nil)
		spy.On("ObjectExists", ctx, testBucket, "test_file").Return(false, nil)
		spy.On("CreateObject", ctx, testBucket, "test_file", bucketfs.CreateObjectInput{
			PutOptions: bucketfs.PutOptions{ACL: "public-read", Metadata: map[string]string{"k": "v"}},
		}).Return(&bucketfs.Result{}, nil)

		_, err := action(ctx, a, bucketfs.Params{})
		require.NoError(t, err)
		spy.AssertExpectations(t)
	})
}

func TestAdapter_Read(t *testing.T) {
	t.Run("gets object with options", func(t *testing.T) {
		a, spy := NewAdapter(t, testConfig())
		ctx := context.Background()
		opts := bucketfs.ReadOptions{Range: "bytes=0-9"}
		want := &bucketfs.Result{Key: "test_file", Body: io.NopCloser(strings.NewReader("0123456789"))}

		spy.On("GetObject", ctx, testBucket, "test_file", opts).Return(want, nil)

		res, err := a.Read("test_file", opts)(ctx, a, bucketfs.Params{Filename: "test_file"})
		require.NoError(t, err)

		assert.Same(t, want, res)
		assert.Equal(t, []string{"GetObject"}, spy.methods())
	})

	t.Run("empty options pass through", func(t *testing.T) {
		a, spy := NewAdapter(t, testConfig())
		ctx := context.Background()

		spy.On("GetObject", ctx, testBucket, "test_file", bucketfs.ReadOptions{}).Return(&bucketfs.Result{}, nil)

		_, err := a.Read("test_file", bucketfs.ReadOptions{})(ctx, a, bucketfs.Params{})
		require.NoError(t, err)
		spy.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		a, spy := NewAdapter(t, testConfig())
		ctx := context.Background()

		spy.On("GetObject", ctx, testBucket, "missing", bucketfs.ReadOptions{}).Return(nil, bucketfs.ErrNotFound)

		_, err := a.Read("missing", bucketfs.ReadOptions{})(ctx, a, bucketfs.Params{})
		assert.ErrorIs(t, err, bucketfs.ErrNotFound)
	})
}

func TestAdapter_Delete(t *testing.T) {
	t.Run("deletes object with options", func(t *testing.T) {
		a, spy := NewAdapter(t, testConfig())
		ctx := context.Background()

		spy.On("DeleteObject", ctx, testBucket, "test_file", bucketfs.DeleteOptions{}).Return(&bucketfs.Result{Key: "test_file"}, nil)

		res, err := a.Delete("test_file", bucketfs.DeleteOptions{})(ctx, a, bucketfs.Params{Filename: "test_file"})
		require.NoError(t, err)

		assert.Equal(t, "test_file", res.Key)
		assert.Equal(t, []string{"DeleteObject"}, spy.methods())
	})

	t.Run("version is passed through", func(t *testing.T) {
		a, spy := NewAdapter(t, testConfig())
		ctx := context.Background()
		opts := bucketfs.DeleteOptions{VersionID: "v2"}

		spy.On("DeleteObject", ctx, testBucket, "test_file", opts).Return(&bucketfs.Result{}, nil)

		_, err := a.Delete("test_file", opts)(ctx, a, bucketfs.Params{})
		require.NoError(t, err)
		spy.AssertExpectations(t)
	})

	t.Run("error propagates", func(t *testing.T) {
		a, spy := NewAdapter(t, testConfig())
		ctx := context.Background()

		spy.On("DeleteObject", ctx, testBucket, "test_file", bucketfs.DeleteOptions{}).Return(nil, io.ErrUnexpectedEOF)

		_, err := a.Delete("test_file", bucketfs.DeleteOptions{})(ctx, a, bucketfs.Params{})
		assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	})
}

func TestAdapter_URL(t *testing.T) {
	tests := []struct {
		name    string
		cfg     func(*bucketfs.Config)
		opts    bucketfs.URLOptions
		want    string
		wantErr error
	}{
		{
			name: "configured protocol",
			want: "http://li3_aws.s3.amazonaws.com/test_file",
		},
		{
			name: "protocol override",
			opts: bucketfs.URLOptions{Protocol: bucketfs.Ptr("https")},
			want: "https://li3_aws.s3.amazonaws.com/test_file",
		},
		{
			name: "empty protocol is protocol relative",
			opts: bucketfs.URLOptions{Protocol: bucketfs.Ptr("")},
			want: "//li3_aws.s3.amazonaws.com/test_file",
		},
		{
			name: "cdn domain",
			opts: bucketfs.URLOptions{UseCDN: bucketfs.Ptr(true)},
			want: "http://li3_aws.cloudfront.net/test_file",
		},
		{
			name: "cdn enabled in config",
			cfg:  func(c *bucketfs.Config) { c.UseCDN = true },
			want: "http://li3_aws.cloudfront.net/test_file",
		},
		{
			name: "cdn disabled by option",
			cfg:  func(c *bucketfs.Config) { c.UseCDN = true },
			opts: bucketfs.URLOptions{UseCDN: bucketfs.Ptr(false)},
			want: "http://li3_aws.s3.amazonaws.com/test_file",
		},
		{
			name:    "cdn without domain",
			opts:    bucketfs.URLOptions{UseCDN: bucketfs.Ptr(true), CDNDomain: bucketfs.Ptr("")},
			wantErr: bucketfs.ErrMissingCDNDomain,
		},
		{
			name:    "cdn without configured domain",
			cfg:     func(c *bucketfs.Config) { c.CDNDomain = "" },
			opts:    bucketfs.URLOptions{UseCDN: bucketfs.Ptr(true)},
			wantErr: bucketfs.ErrMissingCDNDomain,
		},
		{
			name: "custom store host",
			cfg:  func(c *bucketfs.Config) { c.Host = "storage.example.com" },
			want: "http://li3_aws.storage.example.com/test_file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			if tt.cfg != nil {
				tt.cfg(&cfg)
			}
			a, spy := NewAdapter(t, cfg)

			got, err := a.URL("test_file", tt.opts)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, got)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
			assert.Empty(t, spy.Calls)
		})
	}
}

func TestAdapter_URL_Idempotent(t *testing.T) {
	a, _ := NewAdapter(t, testConfig())

	first, err := a.URL("a/b.txt", bucketfs.URLOptions{})
	require.NoError(t, err)
	second, err := a.URL("a/b.txt", bucketfs.URLOptions{})
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestAdapter_SignURL(t *testing.T) {
	const wantQuery = "AWSAccessKeyId=BKIAJCQJZKAWSTNVBHUJ&Expires=0&Signature=w0%2Bg4Ckt6FtW2fc3%2F7Knn%2Fa2zZA%3D"

	t.Run("unresolvable timeout signs with empty expiry", func(t *testing.T) {
		a, _ := NewAdapter(t, testConfig())

		got, err := a.SignURL("test_file", bucketfs.SignOptions{
			Timeout: bucketfs.Ptr(bucketfs.TimeoutExpr("26/09/2014 15:24:52")),
		})
		require.NoError(t, err)

		assert.Equal(t, "http://li3_aws.s3.amazonaws.com/test_file?"+wantQuery, got)
	})

	t.Run("signature only", func(t *testing.T) {
		a, _ := NewAdapter(t, testConfig())

		got, err := a.SignURL("test_file", bucketfs.SignOptions{
			Timeout:       bucketfs.Ptr(bucketfs.TimeoutExpr("26/09/2014 15:24:52")),
			SignatureOnly: true,
		})
		require.NoError(t, err)

		assert.Equal(t, wantQuery, got)
	})

	t.Run("configured relative timeout", func(t *testing.T) {
		a, _ := NewAdapter(t, testConfig())
		expires := fixedNow.Unix() + 15*60

		got, err := a.SignURL("test_file", bucketfs.SignOptions{SignatureOnly: true})
		require.NoError(t, err)

		sig := bucketfs.Sign(testSecret, bucketfs.StringToSign(itoa(expires), testBucket, "test_file"))
		assert.Equal(t, bucketfs.SignedQuery(testKey, expires, sig), got)
	})

	t.Run("seconds timeout is added to now", func(t *testing.T) {
		a, _ := NewAdapter(t, testConfig())

		got, err := a.SignURL("test_file", bucketfs.SignOptions{
			Timeout:       bucketfs.Ptr(bucketfs.TimeoutSeconds(60)),
			SignatureOnly: true,
		})
		require.NoError(t, err)

		assert.Contains(t, got, "&Expires="+itoa(fixedNow.Unix()+60)+"&")
	})

	t.Run("zero configured timeout uses default", func(t *testing.T) {
		cfg := testConfig()
		cfg.Timeout = bucketfs.Timeout{}
		a, _ := NewAdapter(t, cfg)

		got, err := a.SignURL("test_file", bucketfs.SignOptions{SignatureOnly: true})
		require.NoError(t, err)

		assert.Contains(t, got, "&Expires="+itoa(fixedNow.Unix()+15*60)+"&")
	})

	t.Run("explicit zero seconds expires now", func(t *testing.T) {
		cfg := testConfig()
		cfg.Timeout = bucketfs.Timeout{}
		a, _ := NewAdapter(t, cfg)

		got, err := a.SignURL("test_file", bucketfs.SignOptions{
			Timeout:       bucketfs.Ptr(bucketfs.TimeoutSeconds(0)),
			SignatureOnly: true,
		})
		require.NoError(t, err)

		assert.Contains(t, got, "&Expires="+itoa(fixedNow.Unix())+"&")
	})

	t.Run("url options apply to the signed url", func(t *testing.T) {
		a, _ := NewAdapter(t, testConfig())

		got, err := a.SignURL("test_file", bucketfs.SignOptions{
			URLOptions: bucketfs.URLOptions{UseCDN: bucketfs.Ptr(true)},
			Timeout:    bucketfs.Ptr(bucketfs.TimeoutExpr("26/09/2014 15:24:52")),
		})
		require.NoError(t, err)

		assert.Equal(t, "http://li3_aws.cloudfront.net/test_file?"+wantQuery, got)
	})

	t.Run("url options leave the query untouched", func(t *testing.T) {
		a, _ := NewAdapter(t, testConfig())
		timeout := bucketfs.Ptr(bucketfs.TimeoutExpr("26/09/2014 15:24:52"))

		plain, err := a.SignURL("test_file", bucketfs.SignOptions{Timeout: timeout})
		require.NoError(t, err)
		relative, err := a.SignURL("test_file", bucketfs.SignOptions{
			URLOptions: bucketfs.URLOptions{Protocol: bucketfs.Ptr("")},
			Timeout:    timeout,
		})
		require.NoError(t, err)

		assert.Equal(t, "http://li3_aws.s3.amazonaws.com/test_file?"+wantQuery, plain)
		assert.Equal(t, "//li3_aws.s3.amazonaws.com/test_file?"+wantQuery, relative)
	})

	t.Run("cdn without domain", func(t *testing.T) {
		cfg := testConfig()
		cfg.CDNDomain = ""
		a, _ := NewAdapter(t, cfg)

		_, err := a.SignURL("test_file", bucketfs.SignOptions{
			URLOptions: bucketfs.URLOptions{UseCDN: bucketfs.Ptr(true)},
		})
		assert.ErrorIs(t, err, bucketfs.ErrMissingCDNDomain)
	})

	t.Run("deterministic", func(t *testing.T) {
		a, _ := NewAdapter(t, testConfig())
		opts := bucketfs.SignOptions{Timeout: bucketfs.Ptr(bucketfs.TimeoutExpr("2030-01-01 00:00:00"))}

		first, err := a.SignURL("test_file", opts)
		require.NoError(t, err)
		second, err := a.SignURL("test_file", opts)
		require.NoError(t, err)

		assert.Equal(t, first, second)
	})
}
