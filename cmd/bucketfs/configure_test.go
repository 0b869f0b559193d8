package main

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagarc03/bucketfs/config"
)

func TestWriteFileConfig_LoadsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bucketfs.yaml")
	want := fileConfig{
		Adapter: fileAdapter{
			Bucket:    "li3_aws",
			Key:       "BKIAJCQJZKAWSTNVBHUJ",
			Secret:    "TRDMBTZ1Ju1KUG4zKLbL1k8cJgh92UJQzrK4l1M",
			Region:    "eu-west-1",
			CDNDomain: "li3_aws.cloudfront.net",
			UseCDN:    true,
		},
		Storage: fileStorage{
			Backend:   "s3",
			Endpoint:  "http://localhost:9000",
			PathStyle: true,
		},
	}

	require.NoError(t, writeFileConfig(afero.NewOsFs(), path, want))

	cfg, err := config.Load([]string{path}, nil)
	require.NoError(t, err)

	assert.Equal(t, "li3_aws", cfg.Adapter.Bucket)
	assert.Equal(t, "BKIAJCQJZKAWSTNVBHUJ", cfg.Adapter.Key)
	assert.Equal(t, "eu-west-1", cfg.Adapter.Region)
	assert.True(t, cfg.Adapter.UseCDN)
	assert.Equal(t, "http://localhost:9000", cfg.Storage.Endpoint)
	assert.True(t, cfg.Storage.PathStyle)
	// Unwritten keys keep their defaults.
	assert.Equal(t, "https", cfg.Adapter.Protocol)
}

func TestWriteFileConfig_Permissions(t *testing.T) {
	fsys := afero.NewMemMapFs()

	require.NoError(t, writeFileConfig(fsys, "bucketfs.yaml", fileConfig{Storage: fileStorage{Backend: "gcs"}}))

	info, err := fsys.Stat("bucketfs.yaml")
	require.NoError(t, err)
	assert.Equal(t, "-rw-------", info.Mode().Perm().String())

	data, err := afero.ReadFile(fsys, "bucketfs.yaml")
	require.NoError(t, err)
	assert.Contains(t, string(data), "backend: gcs")
	assert.NotContains(t, string(data), "secret")
}

func TestOptionalURL(t *testing.T) {
	assert.NoError(t, optionalURL(""))
	assert.NoError(t, optionalURL("http://localhost:9000"))
	assert.NoError(t, optionalURL("https://storage.googleapis.com/storage/v1/"))
	assert.Error(t, optionalURL("localhost:9000"))
	assert.Error(t, optionalURL("ftp://example.com"))
}

func TestRequired(t *testing.T) {
	validate := required("bucket")
	assert.EqualError(t, validate(""), "bucket is required")
	assert.NoError(t, validate("li3_aws"))
}
