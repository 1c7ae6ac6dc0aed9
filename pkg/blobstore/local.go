package blobstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// localStore writes blobs under a root directory and serves them from a
// configured base URL.
type localStore struct {
	rootDir string
	baseURL string
}

func newLocalStore(cfg *LocalCfg) (Store, error) {
	rootDir := "./blob_storage"
	baseURL := ""
	if cfg != nil {
		if strings.TrimSpace(cfg.RootDir) != "" {
			rootDir = cfg.RootDir
		}
		if strings.TrimSpace(cfg.BaseURL) != "" {
			baseURL = strings.TrimRight(cfg.BaseURL, "/")
		}
	}
	if baseURL == "" {
		baseURL = "file://" + rootDir
	}

	if err := os.MkdirAll(rootDir, 0o755); err != nil {
		return nil, fmt.Errorf("create blob storage root: %w", err)
	}

	return &localStore{rootDir: rootDir, baseURL: baseURL}, nil
}

// Upload writes the blob to disk. Content-hash-derived blob names make
// rewrites idempotent, so an existing file is simply overwritten.
func (s *localStore) Upload(_ context.Context, blobName string, data []byte, _ string) (string, error) {
	blobName = strings.TrimLeft(blobName, "/")
	path := filepath.Join(s.rootDir, filepath.FromSlash(blobName))

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create blob directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write blob %s: %w", blobName, err)
	}

	return s.baseURL + "/" + blobName, nil
}
