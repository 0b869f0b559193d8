package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/sagarc03/bucketfs"
	"github.com/sagarc03/bucketfs/config"
	bucketfshttp "github.com/sagarc03/bucketfs/http"
	"github.com/sagarc03/bucketfs/keybackend"
	"github.com/sagarc03/bucketfs/metrics"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP gateway",
	Long: `Start an HTTP gateway over the configured bucket.

Routes:
  GET    /<key>        read an object
  PUT    /<key>        write an object
  DELETE /<key>        delete an object
  GET    /_url/<key>   public URL as JSON
  GET    /_sign/<key>  signed URL as JSON

With auth.read or auth.write set to private, requests must carry a
signature produced by "bucketfs sign" or /_sign.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().Int("port", 5708, "HTTP server port")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	cfg, err := config.FromContext(ctx)
	if err != nil {
		return err
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		m = metrics.New(reg)
	}

	fs, closeFn, err := newFilesystem(ctx, cfg, m)
	if err != nil {
		return err
	}
	defer closeFn()

	readVerifier, writeVerifier, err := verifiers(cfg)
	if err != nil {
		return err
	}

	handlerConfig := bucketfshttp.HandlerConfig{
		ReadVerifier:  readVerifier,
		WriteVerifier: writeVerifier,
		CORS:          cfg.CORS,
		MaxUploadSize: cfg.Server.MaxUploadSize,
	}

	router := chi.NewRouter()
	if m != nil {
		handlerConfig.Middlewares = append(handlerConfig.Middlewares, m.Middleware)
		router.Handle(cfg.Metrics.Path, m.Handler())
	}
	router.Mount("/", bucketfshttp.NewHandler(&handlerConfig, fs).Router())

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-sigCh:
		case <-ctx.Done():
		}

		slog.Info("shutting down server...")
		timeout := time.Duration(cfg.Server.ShutdownTimeout) * time.Second
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "err", err)
		}
		cancel()
	}()

	slog.Info("starting server",
		"addr", addr,
		"backend", cfg.Storage.Backend,
		"bucket", cfg.Adapter.Bucket,
		"read", cfg.Auth.Read,
		"write", cfg.Auth.Write,
		"metrics", cfg.Metrics.Enabled,
	)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// verifiers returns the signature verifiers for private read and write
// access. The adapter's own key is accepted so its signed URLs verify.
func verifiers(cfg *config.Config) (read, write bucketfshttp.RequestVerifier, err error) {
	if cfg.Auth.Read == "public" && cfg.Auth.Write == "public" {
		return nil, nil, nil
	}

	keys := cfg.Auth.Keys
	if cfg.Adapter.Key != "" && cfg.Adapter.Secret != "" {
		keys.Inline = slices.Insert(slices.Clone(keys.Inline), 0, keybackend.KeyPair{
			AccessKey: cfg.Adapter.Key,
			SecretKey: cfg.Adapter.Secret,
		})
	}

	store, err := keybackend.NewSecretStore(afero.NewOsFs(), keys)
	if err != nil {
		return nil, nil, fmt.Errorf("load access keys: %w", err)
	}
	if store.Len() == 0 {
		slog.Warn("private access configured without keys; all signed requests will be rejected")
	}

	verifier := bucketfs.NewSignatureVerifier(cfg.Adapter.Bucket, store)
	if cfg.Auth.Read == "private" {
		read = verifier
	}
	if cfg.Auth.Write == "private" {
		write = verifier
	}
	return read, write, nil
}
