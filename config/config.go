package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sagarc03/bucketfs"
	bucketfshttp "github.com/sagarc03/bucketfs/http"
	"github.com/sagarc03/bucketfs/keybackend"
)

// ErrNoConfig is returned by FromContext when no Config was attached.
var ErrNoConfig = errors.New("no config in context")

type ctxKey struct{}

// WithContext attaches cfg to ctx for subcommands to pick up.
func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, ctxKey{}, cfg)
}

// FromContext returns the Config attached by WithContext.
func FromContext(ctx context.Context) (*Config, error) {
	if cfg, ok := ctx.Value(ctxKey{}).(*Config); ok && cfg != nil {
		return cfg, nil
	}
	return nil, ErrNoConfig
}

// Config is the root configuration struct for bucketfs.
type Config struct {
	Env     string                  `mapstructure:"env" validate:"omitempty,oneof=dev development prod production"`
	Adapter AdapterConfig           `mapstructure:"adapter"`
	Storage StorageConfig           `mapstructure:"storage"`
	Server  ServerConfig            `mapstructure:"server"`
	Auth    AuthConfig              `mapstructure:"auth"`
	CORS    bucketfshttp.CORSConfig `mapstructure:"cors"`
	Metrics MetricsConfig           `mapstructure:"metrics"`
	Log     LogConfig               `mapstructure:"log"`
}

// AdapterConfig mirrors bucketfs.Config. Bucket and credentials are not
// required here; a missing bucket fails when the adapter is used.
type AdapterConfig struct {
	Protocol  string `mapstructure:"protocol" validate:"omitempty,oneof=http https"`
	Bucket    string `mapstructure:"bucket"`
	Key       string `mapstructure:"key"`
	Secret    string `mapstructure:"secret"`
	Region    string `mapstructure:"region"`
	Timeout   string `mapstructure:"timeout"`
	CDNDomain string `mapstructure:"cdn_domain"`
	UseCDN    bool   `mapstructure:"use_cdn"`
	Host      string `mapstructure:"host"`
}

// StorageConfig selects and configures the object store backend.
type StorageConfig struct {
	Backend string `mapstructure:"backend" validate:"required,oneof=s3 gcs local"`
	// Path is the root directory of the local backend.
	Path            string `mapstructure:"path" validate:"required_if=Backend local"`
	Endpoint        string `mapstructure:"endpoint" validate:"omitempty,url"`
	PathStyle       bool   `mapstructure:"path_style"`
	ProjectID       string `mapstructure:"project_id"`
	CredentialsFile string `mapstructure:"credentials_file"`
	Anonymous       bool   `mapstructure:"anonymous"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            int   `mapstructure:"port" validate:"required,min=1,max=65535"`
	MaxUploadSize   int64 `mapstructure:"max_upload_size" validate:"min=0"`
	ShutdownTimeout int   `mapstructure:"shutdown_timeout" validate:"min=1"`
}

// AuthConfig holds signed URL authentication for the HTTP gateway.
type AuthConfig struct {
	Read  string                `mapstructure:"read" validate:"required,oneof=public private"`
	Write string                `mapstructure:"write" validate:"required,oneof=public private"`
	Keys  keybackend.KeysConfig `mapstructure:"keys"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path" validate:"required,startswith=/"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
}

// BucketfsConfig converts the adapter section into a bucketfs.Config. Empty
// fields keep the bucketfs defaults. Protocol is copied as is, so an
// explicit empty value gives protocol-relative URLs.
func (c *Config) BucketfsConfig() bucketfs.Config {
	cfg := bucketfs.DefaultConfig()
	a := c.Adapter

	cfg.Protocol = a.Protocol
	cfg.Bucket = a.Bucket
	cfg.Key = a.Key
	cfg.Secret = a.Secret
	cfg.CDNDomain = a.CDNDomain
	cfg.UseCDN = a.UseCDN
	if a.Region != "" {
		cfg.Region = a.Region
	}
	if a.Timeout != "" {
		cfg.Timeout = bucketfs.ParseTimeout(a.Timeout)
	}
	if a.Host != "" {
		cfg.Host = a.Host
	}
	return cfg
}

// flagToViperKey maps CLI flag names to viper configuration keys.
var flagToViperKey = map[string]string{
	"bucket":       "adapter.bucket",
	"region":       "adapter.region",
	"protocol":     "adapter.protocol",
	"cdn-domain":   "adapter.cdn_domain",
	"timeout":      "adapter.timeout",
	"backend":      "storage.backend",
	"endpoint":     "storage.endpoint",
	"path-style":   "storage.path_style",
	"storage-path": "storage.path",
	"port":         "server.port",
	"log-level":    "log.level",
}

// bindFlags binds the mapped flags that were set on the command line, so
// unset flag defaults never shadow file or environment values.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	flags.Visit(func(f *pflag.Flag) {
		if key, ok := flagToViperKey[f.Name]; ok {
			_ = v.BindPFlag(key, f)
		}
	})
}

// setDefaults configures default values on the viper instance.
func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "dev")

	v.SetDefault("adapter.protocol", bucketfs.DefaultProtocol)
	v.SetDefault("adapter.bucket", "")
	v.SetDefault("adapter.key", "")
	v.SetDefault("adapter.secret", "")
	v.SetDefault("adapter.region", bucketfs.DefaultRegion)
	v.SetDefault("adapter.timeout", bucketfs.DefaultTimeout)
	v.SetDefault("adapter.cdn_domain", "")
	v.SetDefault("adapter.use_cdn", false)
	v.SetDefault("adapter.host", bucketfs.DefaultHost)

	v.SetDefault("storage.backend", "s3")
	v.SetDefault("storage.path", "./data")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.path_style", false)
	v.SetDefault("storage.project_id", "")
	v.SetDefault("storage.credentials_file", "")
	v.SetDefault("storage.anonymous", false)

	v.SetDefault("server.port", 5708)
	v.SetDefault("server.max_upload_size", 0)   // 0 means no limit
	v.SetDefault("server.shutdown_timeout", 30) // seconds

	v.SetDefault("auth.read", "public")
	v.SetDefault("auth.write", "private")
	v.SetDefault("auth.keys.file", "")

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("log.level", "info")
}

// Load merges defaults, configFiles, BUCKETFS_* environment variables and
// the explicitly set flags in flags (which may be nil), then validates the
// result. Files named in configFiles must exist. With no files,
// ./bucketfs.yaml is read when present.
func Load(configFiles []string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if err := readConfigFiles(v, configFiles); err != nil {
		return nil, err
	}

	v.SetEnvPrefix("BUCKETFS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		bindFlags(v, flags)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

func readConfigFiles(v *viper.Viper, files []string) error {
	if len(files) == 0 {
		v.SetConfigName("bucketfs")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		err := v.ReadInConfig()
		var notFound viper.ConfigFileNotFoundError
		if err != nil && !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
		return nil
	}

	for i, file := range files {
		v.SetConfigFile(file)
		read := v.MergeInConfig
		if i == 0 {
			read = v.ReadInConfig
		}
		if err := read(); err != nil {
			return fmt.Errorf("read config %s: %w", file, err)
		}
		slog.Debug("config file loaded", "file", file)
	}
	return nil
}
