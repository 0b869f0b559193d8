package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/sagarc03/bucketfs"
	"github.com/sagarc03/bucketfs/config"
	"github.com/sagarc03/bucketfs/gcsstore"
	"github.com/sagarc03/bucketfs/localstore"
	"github.com/sagarc03/bucketfs/metrics"
	"github.com/sagarc03/bucketfs/s3store"
)

// newStoreClient builds the object store client for cfg.Storage.Backend.
// The returned func releases it.
func newStoreClient(ctx context.Context, cfg *config.Config) (bucketfs.ObjectStoreClient, func(), error) {
	switch cfg.Storage.Backend {
	case "local":
		if err := os.MkdirAll(cfg.Storage.Path, 0o750); err != nil {
			return nil, nil, fmt.Errorf("create storage directory: %w", err)
		}
		root, err := os.OpenRoot(cfg.Storage.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("open storage root: %w", err)
		}
		return localstore.New(root), func() { _ = root.Close() }, nil
	case "gcs":
		client, err := gcsstore.NewFromConfig(ctx, gcsstore.Config{
			ProjectID:       cfg.Storage.ProjectID,
			CredentialsFile: cfg.Storage.CredentialsFile,
			Endpoint:        cfg.Storage.Endpoint,
			Anonymous:       cfg.Storage.Anonymous,
		})
		if err != nil {
			return nil, nil, err
		}
		return client, func() { _ = client.Close() }, nil
	default:
		client, err := s3store.NewFromConfig(ctx, s3store.Config{
			Region:       cfg.BucketfsConfig().Region,
			Key:          cfg.Adapter.Key,
			Secret:       cfg.Adapter.Secret,
			Endpoint:     cfg.Storage.Endpoint,
			UsePathStyle: cfg.Storage.PathStyle,
		})
		if err != nil {
			return nil, nil, err
		}
		return client, func() {}, nil
	}
}

// newFilesystem wires the adapter for cfg. When m is non-nil, store calls
// and operations are recorded.
func newFilesystem(ctx context.Context, cfg *config.Config, m *metrics.Metrics) (*bucketfs.Filesystem, func(), error) {
	client, closeFn, err := newStoreClient(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("create %s client: %w", cfg.Storage.Backend, err)
	}

	filters := []bucketfs.Filter{bucketfs.LogFilter(slog.Default())}
	if m != nil {
		client = m.WrapClient(client)
		filters = append(filters, m.Filter())
	}

	adapter := bucketfs.New(cfg.BucketfsConfig(), client)
	return bucketfs.NewFilesystem(adapter, filters...), closeFn, nil
}

// filesystemFromCommand loads the config stored by the root command.
func filesystemFromCommand(ctx context.Context) (*bucketfs.Filesystem, func(), error) {
	cfg, err := config.FromContext(ctx)
	if err != nil {
		return nil, nil, err
	}
	return newFilesystem(ctx, cfg, nil)
}
