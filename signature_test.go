package bucketfs_test

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagarc03/bucketfs"
	"github.com/sagarc03/bucketfs/keybackend"
)

func TestStringToSign(t *testing.T) {
	assert.Equal(t, "GET\n\n\n1411745092\n/li3_aws/test_file", bucketfs.StringToSign("1411745092", "li3_aws", "test_file"))
	assert.Equal(t, "GET\n\n\n\n/li3_aws/test_file", bucketfs.StringToSign("", "li3_aws", "test_file"))
}

func TestSign(t *testing.T) {
	got := bucketfs.Sign(testSecret, "GET\n\n\n\n/li3_aws/test_file")
	assert.Equal(t, "w0+g4Ckt6FtW2fc3/7Knn/a2zZA=", got)
}

func TestSignedQuery(t *testing.T) {
	got := bucketfs.SignedQuery(testKey, 0, "w0+g4Ckt6FtW2fc3/7Knn/a2zZA=")
	assert.Equal(t, "AWSAccessKeyId=BKIAJCQJZKAWSTNVBHUJ&Expires=0&Signature=w0%2Bg4Ckt6FtW2fc3%2F7Knn%2Fa2zZA%3D", got)
}

func TestSignatureVerifier_Verify(t *testing.T) {
	store := keybackend.NewStore(map[string]string{testKey: testSecret})
	a, _ := NewAdapter(t, testConfig())

	signed := func(t *testing.T, path string, timeout bucketfs.Timeout) url.Values {
		t.Helper()
		qs, err := a.SignURL(path, bucketfs.SignOptions{Timeout: &timeout, SignatureOnly: true})
		require.NoError(t, err)
		q, err := url.ParseQuery(qs)
		require.NoError(t, err)
		return q
	}

	newVerifier := func(now time.Time) *bucketfs.SignatureVerifier {
		v := bucketfs.NewSignatureVerifier(testBucket, store)
		v.Now = func() time.Time { return now }
		return v
	}

	t.Run("accepts url signed by adapter", func(t *testing.T) {
		q := signed(t, "test_file", bucketfs.TimeoutExpr("+1 hour"))
		assert.NoError(t, newVerifier(fixedNow).Verify("test_file", q))
	})

	t.Run("accepts nested path", func(t *testing.T) {
		q := signed(t, "a/b/c.txt", bucketfs.TimeoutSeconds(30))
		assert.NoError(t, newVerifier(fixedNow.Add(29*time.Second)).Verify("a/b/c.txt", q))
	})

	tests := []struct {
		name      string
		query     func(t *testing.T) url.Values
		path      string
		now       time.Time
		wantError string
	}{
		{
			name:      "empty query",
			query:     func(*testing.T) url.Values { return url.Values{} },
			path:      "test_file",
			now:       fixedNow,
			wantError: "missing required signature parameters",
		},
		{
			name: "missing signature",
			query: func(t *testing.T) url.Values {
				q := signed(t, "test_file", bucketfs.TimeoutExpr("+1 hour"))
				q.Del(bucketfs.QuerySignature)
				return q
			},
			path:      "test_file",
			now:       fixedNow,
			wantError: "missing required signature parameters",
		},
		{
			name: "unresolved expiry",
			query: func(t *testing.T) url.Values {
				return signed(t, "test_file", bucketfs.TimeoutExpr("26/09/2014 15:24:52"))
			},
			path:      "test_file",
			now:       fixedNow,
			wantError: "invalid Expires",
		},
		{
			name: "non numeric expiry",
			query: func(t *testing.T) url.Values {
				q := signed(t, "test_file", bucketfs.TimeoutExpr("+1 hour"))
				q.Set(bucketfs.QueryExpires, "tomorrow")
				return q
			},
			path:      "test_file",
			now:       fixedNow,
			wantError: "invalid Expires",
		},
		{
			name: "expired",
			query: func(t *testing.T) url.Values {
				return signed(t, "test_file", bucketfs.TimeoutExpr("+1 minute"))
			},
			path:      "test_file",
			now:       fixedNow.Add(time.Minute),
			wantError: "signature expired",
		},
		{
			name: "unknown access key",
			query: func(t *testing.T) url.Values {
				q := signed(t, "test_file", bucketfs.TimeoutExpr("+1 hour"))
				q.Set(bucketfs.QueryAccessKeyID, "UNKNOWN")
				return q
			},
			path:      "test_file",
			now:       fixedNow,
			wantError: "invalid access key",
		},
		{
			name: "different path",
			query: func(t *testing.T) url.Values {
				return signed(t, "test_file", bucketfs.TimeoutExpr("+1 hour"))
			},
			path:      "other_file",
			now:       fixedNow,
			wantError: "signature mismatch",
		},
		{
			name: "tampered expiry",
			query: func(t *testing.T) url.Values {
				q := signed(t, "test_file", bucketfs.TimeoutExpr("+1 hour"))
				q.Set(bucketfs.QueryExpires, itoa(fixedNow.Unix()+7200))
				return q
			},
			path:      "test_file",
			now:       fixedNow,
			wantError: "signature mismatch",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := newVerifier(tt.now).Verify(tt.path, tt.query(t))

			require.ErrorIs(t, err, bucketfs.ErrUnauthorized)
			assert.Contains(t, err.Error(), tt.wantError)
		})
	}
}
