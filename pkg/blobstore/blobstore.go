// Package blobstore persists binary blobs (resolved article images) and
// hands back a durable URL for them.
package blobstore

import (
	"context"
	"fmt"
	"strings"
)

// Supported backends.
const (
	ProviderLocal = "local"
	ProviderS3    = "aws-s3"
)

// Store uploads a blob and returns its public URL.
type Store interface {
	Upload(ctx context.Context, blobName string, data []byte, contentType string) (string, error)
}

// Config selects and configures a backend.
type Config struct {
	Provider string    `json:"provider" yaml:"provider"`
	Local    *LocalCfg `json:"local" yaml:"local"`
	S3       *S3Cfg    `json:"s3" yaml:"s3"`
}

// LocalCfg holds local-disk backend settings.
type LocalCfg struct {
	RootDir string `json:"root_dir" yaml:"root_dir"`
	BaseURL string `json:"base_url" yaml:"base_url"`
}

// S3Cfg holds AWS S3 backend settings.
type S3Cfg struct {
	Bucket          string `json:"bucket" yaml:"bucket"`
	Region          string `json:"region" yaml:"region"`
	AccessKeyID     string `json:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key" yaml:"secret_access_key"`
}

// New builds the store selected by cfg.Provider.
func New(ctx context.Context, cfg Config) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case ProviderLocal, "":
		return newLocalStore(cfg.Local)
	case ProviderS3:
		return newS3Store(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("blob storage provider %q is not supported", cfg.Provider)
	}
}
