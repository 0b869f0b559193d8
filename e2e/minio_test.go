//go:build integration

package e2e_test

import (
	"context"
	"sync"
	"testing"

	"github.com/testcontainers/testcontainers-go"
	miniocontainer "github.com/testcontainers/testcontainers-go/modules/minio"
)

var (
	minioOnce     sync.Once
	minioCtr      *miniocontainer.MinioContainer
	minioEndpoint string
	minioErr      error
)

// getSharedMinio returns the endpoint and credentials of a MinIO server.
// The container is reused across all tests for performance.
func getSharedMinio(t *testing.T) (endpoint, user, password string) {
	t.Helper()

	minioOnce.Do(func() {
		ctx := context.Background()

		minioCtr, minioErr = miniocontainer.Run(ctx,
			"minio/minio:RELEASE.2024-01-16T16-07-38Z",
			miniocontainer.WithUsername("bucketfs"),
			miniocontainer.WithPassword("bucketfs-secret"),
		)
		if minioErr != nil {
			return
		}

		var host string
		host, minioErr = minioCtr.ConnectionString(ctx)
		minioEndpoint = "http://" + host
	})

	if minioErr != nil {
		t.Fatalf("failed to start minio container: %v", minioErr)
	}
	return minioEndpoint, minioCtr.Username, minioCtr.Password
}

func terminateMinio() {
	if minioCtr != nil {
		_ = testcontainers.TerminateContainer(minioCtr)
	}
}
