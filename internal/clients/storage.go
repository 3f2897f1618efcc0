package clients

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

type StorageClient struct {
	BaseDir      string // directory the files are written to
	PublicPrefix string // URL prefix the files are served under, e.g. "/files"
	BaseURL      string // optional scheme+host[:port] for absolute URLs
}

// NewLocalStorage creates a storage client; baseDir will be created if missing.
func NewLocalStorage(baseDir, publicPrefix, baseURL string) (*StorageClient, error) {
	if baseDir == "" {
		baseDir = "./slips"
	}
	publicPrefix = "/" + strings.Trim(publicPrefix, "/")
	if publicPrefix == "/" {
		publicPrefix = "/files"
	}

	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to ensure storage dir %q: %w", baseDir, err)
	}

	return &StorageClient{BaseDir: baseDir, PublicPrefix: publicPrefix, BaseURL: baseURL}, nil
}

// uniqueName prefixes the base of fileName with 16 random hex characters.
func uniqueName(fileName string) (string, error) {
	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return "", fmt.Errorf("failed to generate file name: %w", err)
	}
	return fmt.Sprintf("%s_%s", hex.EncodeToString(randBytes), filepath.Base(fileName)), nil
}

// OriginalName strips the random prefix added by Save.
func OriginalName(saved string) string {
	if idx := strings.IndexByte(saved, '_'); idx >= 0 {
		return saved[idx+1:]
	}
	return saved
}

// Save writes data under a unique name and returns that name.
func (s *StorageClient) Save(ctx context.Context, fileName, contentType string, data []byte) (string, error) {
	final, err := uniqueName(fileName)
	if err != nil {
		return "", err
	}

	path := filepath.Join(s.BaseDir, final)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("failed to finalize file: %w", err)
	}

	return final, nil
}

// GetURL returns the public URL of a saved file: absolute when BaseURL is
// set, otherwise PublicPrefix/name.
func (s *StorageClient) GetURL(fileName string) string {
	prefix := s.PublicPrefix
	if prefix == "" {
		prefix = "/files"
	}
	if prefix[0] != '/' {
		prefix = "/" + prefix
	}

	if s.BaseURL != "" {
		return fmt.Sprintf("%s%s/%s", strings.TrimRight(s.BaseURL, "/"), prefix, fileName)
	}
	return fmt.Sprintf("%s/%s", prefix, fileName)
}

func (s *StorageClient) URL(ctx context.Context, fileName string) (string, error) {
	return s.GetURL(fileName), nil
}

// Path resolves a saved file name inside BaseDir. Names with path
// separators are rejected.
func (s *StorageClient) Path(fileName string) (string, bool) {
	if fileName == "" || fileName != filepath.Base(fileName) || fileName == ".." {
		return "", false
	}
	return filepath.Join(s.BaseDir, fileName), true
}

// CleanupOlderThan deletes files older than d in BaseDir.
func (s *StorageClient) CleanupOlderThan(d time.Duration) error {
	now := time.Now()
	return filepath.WalkDir(s.BaseDir, func(path string, de fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if de.IsDir() {
			return nil
		}
		info, err := de.Info()
		if err != nil {
			return nil
		}
		if now.Sub(info.ModTime()) > d {
			_ = os.Remove(path) // best-effort
		}
		return nil
	})
}
