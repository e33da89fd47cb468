package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"carrental-backend/internal/logger"
)

var ErrInvalidKey = errors.New("invalid storage key")

// MockStorageService keeps evidence pictures on the local filesystem and
// hands out URLs served by the evidence HTTP handler.
type MockStorageService struct {
	baseURL     string
	evidenceDir string
}

func NewMockStorageService(baseURL, uploadsDir string) (*MockStorageService, error) {
	evidenceDir := filepath.Join(uploadsDir, "evidence")
	if err := os.MkdirAll(evidenceDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create evidence directory: %w", err)
	}
	return &MockStorageService{
		baseURL:     strings.TrimRight(baseURL, "/"),
		evidenceDir: evidenceDir,
	}, nil
}

// EvidenceKey builds a unique object key for a booking's evidence picture.
func EvidenceKey(bookingNumber, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return path.Join("bookings", bookingNumber, uuid.NewString()+ext)
}

func (m *MockStorageService) GeneratePresignedUploadURL(_ context.Context, key string, _ string, _ time.Duration) (string, error) {
	if _, err := m.localPath(key); err != nil {
		return "", err
	}
	token := uuid.NewString()
	return fmt.Sprintf("%s/api/v1/upload/%s?key=%s", m.baseURL, token, url.QueryEscape(key)), nil
}

func (m *MockStorageService) GeneratePresignedDownloadURL(_ context.Context, key string, _ time.Duration) (string, error) {
	if _, err := m.localPath(key); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/api/v1/download/%s?key=%s", m.baseURL, path.Base(key), url.QueryEscape(key)), nil
}

func (m *MockStorageService) FileExists(_ context.Context, key string) (bool, int64, error) {
	fullPath, err := m.localPath(key)
	if err != nil {
		return false, 0, err
	}
	info, err := os.Stat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Debug("Evidence not found", "key", key)
			return false, 0, nil
		}
		return false, 0, err
	}
	return true, info.Size(), nil
}

func (m *MockStorageService) SaveFile(key string, reader io.Reader) error {
	fullPath, err := m.localPath(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, reader); err != nil {
		_ = os.Remove(fullPath)
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

func (m *MockStorageService) ReadFile(key string) (io.ReadCloser, error) {
	fullPath, err := m.localPath(key)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}

// localPath maps a key below the evidence directory, refusing keys that escape it.
func (m *MockStorageService) localPath(key string) (string, error) {
	clean := path.Clean("/" + key)
	if key == "" || clean == "/" || strings.Contains(key, "..") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return filepath.Join(m.evidenceDir, filepath.FromSlash(clean)), nil
}
