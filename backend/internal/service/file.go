package service

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/xhunter74/collectionmanager/shared/domain"
	internal_errors "github.com/xhunter74/collectionmanager/shared/errors"
	"github.com/xhunter74/collectionmanager/shared/logger"
)

type FileService interface {
	UploadFile(ctx context.Context, userId domain.UserId, collectionId domain.CollectionId, name string, data []byte) (uuid.UUID, error)
	DownloadFile(ctx context.Context, userId domain.UserId, fileId uuid.UUID) (string, []byte, error)
	DeleteFile(ctx context.Context, userId domain.UserId, fileId uuid.UUID) error
	UploadCollectionImage(ctx context.Context, userId domain.UserId, collectionId domain.CollectionId, name string, data []byte) (uuid.UUID, error)
	DownloadCollectionImage(ctx context.Context, userId domain.UserId, collectionId domain.CollectionId, imageId uuid.UUID) (string, []byte, error)
}

type FileRecordStorage interface {
	OwnershipStorage
	SaveFile(ctx context.Context, f domain.File) error
	FileForOwner(ctx context.Context, id uuid.UUID, ownerId domain.UserId, collectionId *domain.CollectionId) (domain.File, error)
	DeleteFileRecord(ctx context.Context, id uuid.UUID) error
}

type File struct {
	storage FileRecordStorage
	blobs   FileStorage
	images  ImageConverter
	gate    *Gate
}

func NewFile(storage FileRecordStorage, blobs FileStorage, images ImageConverter) *File {
	return &File{storage: storage, blobs: blobs, images: images, gate: NewGate(storage)}
}

// UploadFile stores the bytes under the user and records the file in the
// collection.
func (s *File) UploadFile(ctx context.Context, userId domain.UserId, collectionId domain.CollectionId, name string, data []byte) (uuid.UUID, error) {
	if _, err := s.gate.AssertOwned(ctx, userId, collectionId); err != nil {
		return uuid.Nil, err
	}
	return s.store(ctx, userId, domain.File{Name: cleanName(name), CollectionId: collectionId}, data, "Failed to upload file.")
}

// DownloadFile serves plain files and collection images alike.
func (s *File) DownloadFile(ctx context.Context, userId domain.UserId, fileId uuid.UUID) (string, []byte, error) {
	f, err := s.storage.FileForOwner(ctx, fileId, userId, nil)
	if err != nil {
		return "", nil, err
	}
	data, err := s.load(ctx, ownerKey(userId, f), f.Id)
	if err != nil {
		return "", nil, err
	}
	return f.Name, data, nil
}

func (s *File) DeleteFile(ctx context.Context, userId domain.UserId, fileId uuid.UUID) error {
	f, err := s.storage.FileForOwner(ctx, fileId, userId, nil)
	if err != nil {
		return err
	}
	if err := s.storage.DeleteFileRecord(ctx, f.Id); err != nil {
		return err
	}
	if err := s.blobs.DeleteFile(ctx, ownerKey(userId, f), f.Id); err != nil {
		logger.Log.Error("failed to delete file content", "file_id", f.Id, "collection_id", f.CollectionId, "is_image", f.IsImage, "error", err)
	}
	return nil
}

// UploadCollectionImage converts the picture to png and stores it under the
// collection.
func (s *File) UploadCollectionImage(ctx context.Context, userId domain.UserId, collectionId domain.CollectionId, name string, data []byte) (uuid.UUID, error) {
	if _, err := s.gate.AssertOwned(ctx, userId, collectionId); err != nil {
		return uuid.Nil, err
	}
	png, err := s.images.ConvertToPng(ctx, data)
	if err != nil {
		return uuid.Nil, err
	}
	name = cleanName(name)
	name = strings.TrimSuffix(name, filepath.Ext(name)) + ".png"
	return s.store(ctx, userId, domain.File{Name: name, CollectionId: collectionId, IsImage: true}, png, "Failed to upload image.")
}

func (s *File) DownloadCollectionImage(ctx context.Context, userId domain.UserId, collectionId domain.CollectionId, imageId uuid.UUID) (string, []byte, error) {
	f, err := s.storage.FileForOwner(ctx, imageId, userId, &collectionId)
	if err != nil {
		return "", nil, err
	}
	if !f.IsImage {
		return "", nil, internal_errors.NotFound("File not found")
	}
	data, err := s.load(ctx, collectionId, f.Id)
	if err != nil {
		return "", nil, err
	}
	return f.Name, data, nil
}

// ownerKey is the blob folder of f: the collection for images, the user otherwise.
func ownerKey(userId domain.UserId, f domain.File) uuid.UUID {
	if f.IsImage {
		return f.CollectionId
	}
	return userId
}

func (s *File) store(ctx context.Context, userId domain.UserId, f domain.File, data []byte, failure string) (uuid.UUID, error) {
	f.Id = uuid.New()
	key := ownerKey(userId, f)
	if err := s.blobs.UploadFile(ctx, key, f.Id, data); err != nil {
		logger.Log.Error("failed to store file content", "file_id", f.Id, "collection_id", f.CollectionId, "error", err)
		return uuid.Nil, internal_errors.AppError(failure)
	}
	if err := s.storage.SaveFile(ctx, f); err != nil {
		if delErr := s.blobs.DeleteFile(ctx, key, f.Id); delErr != nil {
			logger.Log.Error("failed to clean up file content", "file_id", f.Id, "error", delErr)
		}
		return uuid.Nil, err
	}
	return f.Id, nil
}

func (s *File) load(ctx context.Context, ownerKey, fileId uuid.UUID) ([]byte, error) {
	data, err := s.blobs.GetFile(ctx, ownerKey, fileId)
	if err != nil {
		if errors.Is(err, ErrFileNotFound) {
			logger.Log.Warn("file content missing", "file_id", fileId, "owner_key", ownerKey)
			return nil, internal_errors.NotFound("File content not found")
		}
		logger.Log.Error("failed to read file content", "file_id", fileId, "error", err)
		return nil, internal_errors.AppError("Failed to download file.")
	}
	return data, nil
}

func cleanName(name string) string {
	name = strings.TrimSpace(filepath.Base(name))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return "file"
	}
	return name
}
