package main

import (
	"errors"
	"fmt"
	"net/url"
	"os"

	"github.com/manifoldco/promptui"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sagarc03/bucketfs"
)

var configureOutput string

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Write a config file interactively",
	Long: `Prompt for the storage backend, bucket and credentials and write them
to a YAML config file (default: ./bucketfs.yaml).

An existing file is only replaced after confirmation.`,
	Args: cobra.NoArgs,
	RunE: runConfigure,
}

func init() {
	configureCmd.Flags().StringVarP(&configureOutput, "output", "o", "bucketfs.yaml", "config file to write")
	rootCmd.AddCommand(configureCmd)
}

// fileConfig is the subset of config.Config written by configure.
type fileConfig struct {
	Adapter fileAdapter `yaml:"adapter"`
	Storage fileStorage `yaml:"storage"`
}

type fileAdapter struct {
	Protocol  string `yaml:"protocol,omitempty"`
	Bucket    string `yaml:"bucket"`
	Key       string `yaml:"key,omitempty"`
	Secret    string `yaml:"secret,omitempty"`
	Region    string `yaml:"region,omitempty"`
	Timeout   string `yaml:"timeout,omitempty"`
	CDNDomain string `yaml:"cdn_domain,omitempty"`
	UseCDN    bool   `yaml:"use_cdn,omitempty"`
}

type fileStorage struct {
	Backend         string `yaml:"backend"`
	Path            string `yaml:"path,omitempty"`
	Endpoint        string `yaml:"endpoint,omitempty"`
	PathStyle       bool   `yaml:"path_style,omitempty"`
	ProjectID       string `yaml:"project_id,omitempty"`
	CredentialsFile string `yaml:"credentials_file,omitempty"`
}

func runConfigure(cmd *cobra.Command, _ []string) error {
	fsys := afero.NewOsFs()

	if exists, _ := afero.Exists(fsys, configureOutput); exists {
		prompt := promptui.Prompt{
			Label:     fmt.Sprintf("%s already exists. Overwrite it", configureOutput),
			IsConfirm: true,
		}
		if _, promptErr := prompt.Run(); promptErr != nil {
			fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
			return nil //nolint:nilerr // User cancelled, not an error
		}
	}

	cfg, err := promptConfig()
	if err != nil {
		return handlePromptError(err)
	}

	if err := writeFileConfig(fsys, configureOutput, cfg); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Configuration written to %s.\n", configureOutput)
	return nil
}

func promptConfig() (fileConfig, error) {
	var cfg fileConfig

	backendSelect := promptui.Select{
		Label: "Storage backend",
		Items: []string{"s3", "gcs", "local"},
	}
	_, backend, err := backendSelect.Run()
	if err != nil {
		return cfg, err
	}
	cfg.Storage.Backend = backend

	bucketPrompt := promptui.Prompt{
		Label:    "Bucket",
		Validate: required("bucket"),
	}
	if cfg.Adapter.Bucket, err = bucketPrompt.Run(); err != nil {
		return cfg, err
	}

	regionPrompt := promptui.Prompt{
		Label:   "Region",
		Default: bucketfs.DefaultRegion,
	}
	if cfg.Adapter.Region, err = regionPrompt.Run(); err != nil {
		return cfg, err
	}

	// The access key and secret sign URLs on both backends.
	accessKeyPrompt := promptui.Prompt{
		Label: "Access Key",
	}
	if cfg.Adapter.Key, err = accessKeyPrompt.Run(); err != nil {
		return cfg, err
	}

	secretKeyPrompt := promptui.Prompt{
		Label: "Secret Key",
		Mask:  '*',
	}
	if cfg.Adapter.Secret, err = secretKeyPrompt.Run(); err != nil {
		return cfg, err
	}

	if backend != "local" {
		endpointPrompt := promptui.Prompt{
			Label:    "Endpoint URL (empty for the provider default)",
			Validate: optionalURL,
		}
		if cfg.Storage.Endpoint, err = endpointPrompt.Run(); err != nil {
			return cfg, err
		}
	}

	switch backend {
	case "local":
		pathPrompt := promptui.Prompt{
			Label:    "Storage directory",
			Default:  "./data",
			Validate: required("storage directory"),
		}
		if cfg.Storage.Path, err = pathPrompt.Run(); err != nil {
			return cfg, err
		}
	case "s3":
		if cfg.Storage.Endpoint != "" {
			pathStylePrompt := promptui.Prompt{
				Label:     "Use path-style addressing",
				IsConfirm: true,
			}
			if _, promptErr := pathStylePrompt.Run(); promptErr == nil {
				cfg.Storage.PathStyle = true
			}
		}
	case "gcs":
		projectPrompt := promptui.Prompt{
			Label: "Project ID",
		}
		if cfg.Storage.ProjectID, err = projectPrompt.Run(); err != nil {
			return cfg, err
		}
		credsPrompt := promptui.Prompt{
			Label: "Credentials file (empty for application default)",
		}
		if cfg.Storage.CredentialsFile, err = credsPrompt.Run(); err != nil {
			return cfg, err
		}
	}

	cdnPrompt := promptui.Prompt{
		Label: "CDN domain (optional)",
	}
	if cfg.Adapter.CDNDomain, err = cdnPrompt.Run(); err != nil {
		return cfg, err
	}
	if cfg.Adapter.CDNDomain != "" {
		useCDNPrompt := promptui.Prompt{
			Label:     "Use the CDN by default",
			IsConfirm: true,
		}
		if _, promptErr := useCDNPrompt.Run(); promptErr == nil {
			cfg.Adapter.UseCDN = true
		}
	}

	return cfg, nil
}

// writeFileConfig writes cfg as YAML, readable only by the owner since it
// holds the secret key.
func writeFileConfig(fsys afero.Fs, path string, cfg fileConfig) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := afero.WriteFile(fsys, path, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func required(name string) func(string) error {
	return func(input string) error {
		if input == "" {
			return fmt.Errorf("%s is required", name)
		}
		return nil
	}
}

func optionalURL(input string) error {
	if input == "" {
		return nil
	}
	parsedURL, err := url.Parse(input)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return errors.New("URL must start with http:// or https://")
	}
	return nil
}

// handlePromptError handles promptui errors.
func handlePromptError(err error) error {
	if errors.Is(err, promptui.ErrInterrupt) {
		fmt.Println("\nCancelled.")
		os.Exit(0)
	}
	if errors.Is(err, promptui.ErrAbort) {
		fmt.Println("Cancelled.")
		return nil
	}
	return err
}
