package main

import (
	"github.com/spf13/cobra"

	"github.com/sagarc03/bucketfs"
)

var (
	urlProtocol  string
	urlCDN       bool
	urlCDNDomain string

	signTimeout       string
	signSignatureOnly bool
)

var urlCmd = &cobra.Command{
	Use:   "url <key>",
	Short: "Print the public URL of an object",
	Long: `Print the public URL of an object. No request is made to the store.

Examples:
  bucketfs url images/photo.jpg
  bucketfs url --protocol "" images/photo.jpg
  bucketfs url --cdn --cdn-domain d111.cloudfront.net images/photo.jpg`,
	Args: cobra.ExactArgs(1),
	RunE: runURL,
}

var signCmd = &cobra.Command{
	Use:   "sign <key>",
	Short: "Print a signed, time-limited URL",
	Long: `Print a URL carrying AWSAccessKeyId, Expires and Signature query
parameters. The timeout is a number of seconds or a time expression.

Examples:
  bucketfs sign reports/2024.pdf
  bucketfs sign --timeout "+2 hours" reports/2024.pdf
  bucketfs sign --timeout 600 --signature-only reports/2024.pdf`,
	Args: cobra.ExactArgs(1),
	RunE: runSign,
}

func init() {
	for _, cmd := range []*cobra.Command{urlCmd, signCmd} {
		cmd.Flags().StringVar(&urlProtocol, "protocol", "", "URL protocol; empty gives a protocol-relative URL")
		cmd.Flags().BoolVar(&urlCDN, "cdn", false, "use the CDN domain")
		cmd.Flags().StringVar(&urlCDNDomain, "cdn-domain", "", "CDN domain")
	}
	signCmd.Flags().StringVar(&signTimeout, "timeout", "", "URL lifetime (default: adapter timeout)")
	signCmd.Flags().BoolVar(&signSignatureOnly, "signature-only", false, "print only the query string")

	rootCmd.AddCommand(urlCmd, signCmd)
}

// urlOptions sets only the flags given on the command line.
func urlOptions(cmd *cobra.Command) bucketfs.URLOptions {
	var opts bucketfs.URLOptions
	if cmd.Flags().Changed("protocol") {
		opts.Protocol = bucketfs.Ptr(urlProtocol)
	}
	if cmd.Flags().Changed("cdn") {
		opts.UseCDN = bucketfs.Ptr(urlCDN)
	}
	if cmd.Flags().Changed("cdn-domain") {
		opts.CDNDomain = bucketfs.Ptr(urlCDNDomain)
	}
	return opts
}

func runURL(cmd *cobra.Command, args []string) error {
	fs, closeFn, err := filesystemFromCommand(cmd.Context())
	if err != nil {
		return err
	}
	defer closeFn()

	u, err := fs.URL(args[0], urlOptions(cmd))
	if err != nil {
		_ = getFormatter().FormatError(cmd.ErrOrStderr(), err)
		return err
	}
	return getFormatter().FormatURL(cmd.OutOrStdout(), u)
}

func runSign(cmd *cobra.Command, args []string) error {
	fs, closeFn, err := filesystemFromCommand(cmd.Context())
	if err != nil {
		return err
	}
	defer closeFn()

	opts := bucketfs.SignOptions{
		URLOptions:    urlOptions(cmd),
		SignatureOnly: signSignatureOnly,
	}
	if cmd.Flags().Changed("timeout") {
		opts.Timeout = bucketfs.Ptr(bucketfs.ParseTimeout(signTimeout))
	}

	u, err := fs.SignURL(args[0], opts)
	if err != nil {
		_ = getFormatter().FormatError(cmd.ErrOrStderr(), err)
		return err
	}
	return getFormatter().FormatURL(cmd.OutOrStdout(), u)
}
