package keybackend

import (
	"errors"
	"fmt"
	"maps"

	"github.com/spf13/afero"

	"github.com/sagarc03/bucketfs"
)

// ErrKeyNotFound is returned when an access key is not in the store.
var ErrKeyNotFound = errors.New("access key not found")

// KeyPair is one access key and its secret.
type KeyPair struct {
	AccessKey string `json:"access_key" yaml:"access_key" mapstructure:"access_key"`
	SecretKey string `json:"secret_key" yaml:"secret_key" mapstructure:"secret_key"`
}

// KeysConfig says where keys are loaded from.
type KeysConfig struct {
	Inline []KeyPair `mapstructure:"inline"`
	File   string    `mapstructure:"file"`
}

// Store is an in-memory map of access key to secret key.
type Store struct {
	keys map[string]string
}

var _ bucketfs.SecretStore = (*Store)(nil)

// NewStore creates a Store from keys. The map is copied.
func NewStore(keys map[string]string) *Store {
	return &Store{keys: maps.Clone(keys)}
}

// Lookup returns the secret for accessKey. A missing key matches both
// ErrKeyNotFound and bucketfs.ErrUnauthorized.
func (s *Store) Lookup(accessKey string) (string, error) {
	secretKey, found := s.keys[accessKey]
	if !found {
		return "", fmt.Errorf("%w: %w", ErrKeyNotFound, bucketfs.ErrUnauthorized)
	}
	return secretKey, nil
}

// Len returns the number of keys held.
func (s *Store) Len() int {
	return len(s.keys)
}

// NewSecretStore builds a Store from inline pairs and the key file, read
// from fsys. File keys win over inline keys with the same access key.
// Pairs with an empty access or secret key are skipped.
func NewSecretStore(fsys afero.Fs, cfg KeysConfig) (*Store, error) {
	keys := make(map[string]string, len(cfg.Inline))
	for _, p := range cfg.Inline {
		if p.AccessKey != "" && p.SecretKey != "" {
			keys[p.AccessKey] = p.SecretKey
		}
	}

	if cfg.File != "" {
		fileKeys, err := LoadKeysFromFile(fsys, cfg.File)
		if err != nil {
			return nil, err
		}
		maps.Copy(keys, fileKeys)
	}

	return &Store{keys: keys}, nil
}
