package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/bucketfs/config"
)

var (
	version = "dev"

	cfgFiles   []string
	jsonOutput bool
	quiet      bool
)

var rootCmd = &cobra.Command{
	Version: version,
	Use:     "bucketfs",
	Short:   "Object store adapter with signed URL support",
	Long: `bucketfs writes, reads and deletes objects in an S3, GCS or local bucket,
builds public URLs and signs time-limited URLs with the S3 query string scheme.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(cfgFiles, cmd.Flags())
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		setupLogging(cfg)
		cmd.SetContext(config.WithContext(cmd.Context(), cfg))
		return nil
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringSliceVarP(&cfgFiles, "config", "c", nil, "config file path, repeatable (default: ./bucketfs.yaml)")
	flags.String("bucket", "", "bucket name (env: BUCKETFS_ADAPTER_BUCKET)")
	flags.String("region", "", "bucket region (default: us-east-1, env: BUCKETFS_ADAPTER_REGION)")
	flags.String("backend", "", "storage backend: s3, gcs, local (default: s3, env: BUCKETFS_STORAGE_BACKEND)")
	flags.String("storage-path", "", "local backend directory (default: ./data, env: BUCKETFS_STORAGE_PATH)")
	flags.String("endpoint", "", "storage API endpoint (env: BUCKETFS_STORAGE_ENDPOINT)")
	flags.Bool("path-style", false, "use path-style S3 addressing (env: BUCKETFS_STORAGE_PATH_STYLE)")
	flags.String("log-level", "", "log level: debug, info, warn, error (env: BUCKETFS_LOG_LEVEL)")
	flags.BoolVar(&jsonOutput, "json", false, "output as JSON")
	flags.BoolVarP(&quiet, "quiet", "q", false, "suppress non-essential output")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
