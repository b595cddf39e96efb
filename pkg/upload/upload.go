// Package upload is the proof-of-payment receipt service. The storefront
// treats it as an opaque contract: bytes in, stable URL out.
package upload

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Service accepts a binary receipt image and returns a stable URL for it.
type Service interface {
	Store(name string, r io.Reader) (string, error)
}

// DiskService writes receipts under a local directory and serves them under
// a base URL path.
type DiskService struct {
	dir     string
	baseURL string
}

// NewDiskService creates the receipt directory if needed.
func NewDiskService(dir, baseURL string) (*DiskService, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create receipt dir %s: %w", dir, err)
	}
	return &DiskService{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Store writes the receipt and returns its URL. The stored name is a fresh
// uuid with the original extension, so uploads can never collide or traverse.
func (s *DiskService) Store(name string, r io.Reader) (string, error) {
	ext := filepath.Ext(name)
	if len(ext) > 10 {
		ext = ""
	}
	fileName := uuid.New().String() + ext
	path := filepath.Join(s.dir, fileName)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create receipt file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write receipt file: %w", err)
	}
	return s.baseURL + "/" + fileName, nil
}

// MemoryService keeps receipts in memory for tests.
type MemoryService struct {
	Receipts map[string][]byte
	Fail     bool
}

// NewMemoryService creates a new empty MemoryService.
func NewMemoryService() *MemoryService {
	return &MemoryService{Receipts: make(map[string][]byte)}
}

// Store records the receipt bytes and returns a synthetic URL.
func (s *MemoryService) Store(name string, r io.Reader) (string, error) {
	if s.Fail {
		return "", fmt.Errorf("upload service unavailable")
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	url := "mem://receipts/" + uuid.New().String()
	s.Receipts[url] = data
	return url, nil
}
