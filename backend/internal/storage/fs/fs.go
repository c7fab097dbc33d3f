package fs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/xhunter74/collectionmanager/backend/internal/service"
)

// Storage keeps blobs on the local disk as <root>/<ownerKey>/<fileId>.
type Storage struct {
	rootPath string
}

var _ service.FileStorage = (*Storage)(nil)

func New(rootPath string) (*Storage, error) {
	p := filepath.Clean(rootPath)
	if err := os.MkdirAll(p, 0755); err != nil {
		return nil, fmt.Errorf("failed to create root storage directory %s: %w", p, err)
	}
	return &Storage{rootPath: p}, nil
}

func (s *Storage) path(ownerKey, fileId uuid.UUID) string {
	return filepath.Join(s.rootPath, ownerKey.String(), fileId.String())
}

// UploadFile writes to a temp file first so readers never see a partial blob.
func (s *Storage) UploadFile(ctx context.Context, ownerKey, fileId uuid.UUID, data []byte) error {
	fullPath := s.path(ownerKey, fileId)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create subdirectories: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(fullPath), fileId.String()+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write file data: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), fullPath); err != nil {
		return fmt.Errorf("failed to move file in place: %w", err)
	}
	return nil
}

func (s *Storage) GetFile(ctx context.Context, ownerKey, fileId uuid.UUID) ([]byte, error) {
	data, err := os.ReadFile(s.path(ownerKey, fileId))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, service.ErrFileNotFound
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, nil
}

// DeleteFile is a no-op for a missing file.
func (s *Storage) DeleteFile(ctx context.Context, ownerKey, fileId uuid.UUID) error {
	err := os.Remove(s.path(ownerKey, fileId))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// DeleteOwner removes every blob stored under ownerKey.
func (s *Storage) DeleteOwner(ctx context.Context, ownerKey uuid.UUID) error {
	if err := os.RemoveAll(filepath.Join(s.rootPath, ownerKey.String())); err != nil {
		return fmt.Errorf("failed to delete owner directory: %w", err)
	}
	return nil
}
