package service

import (
	"context"
	"errors"
	"html"
	"strings"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/xhunter74/collectionmanager/shared/domain"
)

var ErrFileNotFound = errors.New("file not found")

// FileStorage keeps blobs under an owner key (user id for files and avatars,
// collection id for collection images).
type FileStorage interface {
	UploadFile(ctx context.Context, ownerKey, fileId uuid.UUID, data []byte) error
	// GetFile returns ErrFileNotFound when nothing is stored under the key.
	GetFile(ctx context.Context, ownerKey, fileId uuid.UUID) ([]byte, error)
	DeleteFile(ctx context.Context, ownerKey, fileId uuid.UUID) error
	DeleteOwner(ctx context.Context, ownerKey uuid.UUID) error
}

type ImageConverter interface {
	ConvertToPng(ctx context.Context, data []byte) ([]byte, error)
}

type EmailSender interface {
	Send(recipientEmail, subject, htmlBody string) error
}

// ItemStore persists item documents. Every call writes a single document.
type ItemStore interface {
	Add(ctx context.Context, doc domain.ItemDocument) (domain.ItemDocument, error)
	// GetById returns nil without error when the item does not exist.
	GetById(ctx context.Context, id domain.ItemId) (*domain.ItemDocument, error)
	GetAll(ctx context.Context, collectionId domain.CollectionId, projection domain.Projection) ([]domain.ItemDocument, error)
	Update(ctx context.Context, doc domain.ItemDocument) (domain.ItemDocument, error)
	Remove(ctx context.Context, id domain.ItemId) error
	RemoveByCollection(ctx context.Context, collectionId domain.CollectionId) (int64, error)
}

var strictPolicy = bluemonday.StrictPolicy()

// sanitizeText strips every html tag and keeps the plain text.
func sanitizeText(s string) string {
	return strings.TrimSpace(html.UnescapeString(strictPolicy.Sanitize(s)))
}
