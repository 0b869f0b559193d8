package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/bucketfs"
)

var (
	putContentType  string
	putACL          string
	putCacheControl string
	putStorageClass string
	putMetadata     map[string]string
	putNoOverwrite  bool
	putNoCreate     bool

	getRange   string
	getVersion string

	rmVersion string
)

var putCmd = &cobra.Command{
	Use:   "put <local-path> <key>",
	Short: "Upload a file",
	Long: `Upload a local file to the configured bucket.

The bucket is created when missing unless --no-create-bucket is set.
Use - as local path to read from stdin.

Examples:
  bucketfs put ./photo.jpg images/photo.jpg
  bucketfs put --acl private --no-overwrite ./report.pdf reports/2024.pdf
  cat data.json | bucketfs put -t application/json - data.json`,
	Args: cobra.ExactArgs(2),
	RunE: runPut,
}

var getCmd = &cobra.Command{
	Use:   "get <key> [local-path]",
	Short: "Download an object",
	Long: `Download an object. Without a local path, or with -, the body is
written to stdout.

Examples:
  bucketfs get images/photo.jpg ./photo.jpg
  bucketfs get --range bytes=0-99 logs/app.log`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runGet,
}

var rmCmd = &cobra.Command{
	Use:     "rm <key>",
	Aliases: []string{"delete"},
	Short:   "Delete an object",
	Args:    cobra.ExactArgs(1),
	RunE:    runRm,
}

func init() {
	putCmd.Flags().StringVarP(&putContentType, "content-type", "t", "", "content type")
	putCmd.Flags().StringVar(&putACL, "acl", "", "canned ACL (default: "+bucketfs.DefaultACL+")")
	putCmd.Flags().StringVar(&putCacheControl, "cache-control", "", "Cache-Control header")
	putCmd.Flags().StringVar(&putStorageClass, "storage-class", "", "storage class")
	putCmd.Flags().StringToStringVar(&putMetadata, "meta", nil, "user metadata, key=value")
	putCmd.Flags().BoolVar(&putNoOverwrite, "no-overwrite", false, "fail if the object exists")
	putCmd.Flags().BoolVar(&putNoCreate, "no-create-bucket", false, "fail if the bucket is missing")

	getCmd.Flags().StringVar(&getRange, "range", "", "HTTP byte range, e.g. bytes=0-99")
	getCmd.Flags().StringVar(&getVersion, "version-id", "", "object version")

	rmCmd.Flags().StringVar(&rmVersion, "version-id", "", "object version")

	rootCmd.AddCommand(putCmd, getCmd, rmCmd)
}

func runPut(cmd *cobra.Command, args []string) error {
	localPath, key := args[0], args[1]
	ctx := cmd.Context()

	fs, closeFn, err := filesystemFromCommand(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	opts := bucketfs.WriteOptions{
		Overwrite:        bucketfs.Ptr(!putNoOverwrite),
		AutoCreateBucket: bucketfs.Ptr(!putNoCreate),
		PutOptions: bucketfs.PutOptions{
			ACL:          putACL,
			ContentType:  putContentType,
			CacheControl: putCacheControl,
			StorageClass: putStorageClass,
			Metadata:     putMetadata,
		},
	}

	var data io.Reader
	if localPath == "-" {
		data = cmd.InOrStdin()
	} else {
		info, statErr := os.Stat(localPath)
		if statErr != nil {
			return fmt.Errorf("stat %s: %w", localPath, statErr)
		}
		if info.IsDir() {
			return fmt.Errorf("%s is a directory", localPath)
		}
		opts.SourcePath = localPath
	}

	res, err := fs.Write(ctx, key, data, opts)
	if err != nil {
		_ = getFormatter().FormatError(cmd.ErrOrStderr(), err)
		return err
	}
	return getFormatter().FormatWrite(cmd.OutOrStdout(), key, res)
}

func runGet(cmd *cobra.Command, args []string) error {
	key := args[0]
	dest := "-"
	if len(args) == 2 {
		dest = args[1]
	}
	ctx := cmd.Context()

	fs, closeFn, err := filesystemFromCommand(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	res, err := fs.Read(ctx, key, bucketfs.ReadOptions{Range: getRange, VersionID: getVersion})
	if err != nil {
		_ = getFormatter().FormatError(cmd.ErrOrStderr(), err)
		return err
	}
	defer func() { _ = res.Body.Close() }()

	if dest == "-" {
		_, err = io.Copy(cmd.OutOrStdout(), res.Body)
		return err
	}

	f, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create %s: %w", dest, err)
	}
	n, err := io.Copy(f, res.Body)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", dest, err)
	}

	return getFormatter().FormatRead(cmd.OutOrStdout(), key, dest, n, res)
}

func runRm(cmd *cobra.Command, args []string) error {
	key := args[0]
	ctx := cmd.Context()

	fs, closeFn, err := filesystemFromCommand(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	res, err := fs.Delete(ctx, key, bucketfs.DeleteOptions{VersionID: rmVersion})
	if err != nil {
		_ = getFormatter().FormatError(cmd.ErrOrStderr(), err)
		return err
	}
	return getFormatter().FormatDelete(cmd.OutOrStdout(), key, res)
}
