// Package conf loads imapfetch's YAML configuration, the way the teacher's
// own conf package loads raven.yaml: try a short list of well-known paths,
// unmarshal with gopkg.in/yaml.v2, and let zero-valued fields mean "default".
package conf

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"
)

// Config is imapfetch's process-wide configuration. Credentials are
// deliberately absent here — they come from the -user/-pass CLI flags,
// never from a file on disk; credentials embedded in a URL are not read.
type Config struct {
	TLSMode            string `yaml:"tls_mode"` // "opportunistic" (default), "required", "none"
	ConnectTimeoutSecs int    `yaml:"connect_timeout_secs"`
	RespTimeoutSecs    int    `yaml:"response_timeout_secs"`

	BlobStore BlobStoreConfig `yaml:"blob_store"`
	Receipt   ReceiptConfig   `yaml:"receipt"`
	Store     StoreConfig     `yaml:"store"`
}

// BlobStoreConfig configures the optional S3-backed body sink
// (internal/blobstore), SPEC_FULL.md §9.
type BlobStoreConfig struct {
	Enabled bool   `yaml:"enabled"`
	Bucket  string `yaml:"bucket"`
	Region  string `yaml:"region"`
	Prefix  string `yaml:"prefix"`
}

// ReceiptConfig configures the signed fetch receipt (internal/receipt),
// SPEC_FULL.md §9.
type ReceiptConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Issuer     string `yaml:"issuer"`
	SigningKey string `yaml:"signing_key"` // path to a PEM or raw HMAC secret file
}

// StoreConfig configures the local fetch ledger (internal/store).
type StoreConfig struct {
	Path string `yaml:"path"`
}

// LoadConfig tries each well-known path in turn and unmarshals the first one
// found. An empty file is valid and yields a zero-valued Config.
func LoadConfig() (*Config, error) {
	var cfg Config

	configPaths := []string{
		"/etc/imapfetch/imapfetch.yaml",
		"./config/imapfetch.yaml",
		"./imapfetch.yaml",
		"config/imapfetch.yaml",
	}

	var data []byte
	var err error
	for _, path := range configPaths {
		data, err = os.ReadFile(filepath.Clean(path))
		if err == nil {
			break
		}
	}
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
