package service

import (
	"context"

	"github.com/xhunter74/collectionmanager/shared/domain"
	"github.com/xhunter74/collectionmanager/shared/errors"
	"github.com/xhunter74/collectionmanager/shared/logger"
)

type CollectionService interface {
	GetAll(ctx context.Context, userId domain.UserId) ([]domain.Collection, error)
	GetById(ctx context.Context, userId domain.UserId, id domain.CollectionId) (domain.Collection, error)
	Create(ctx context.Context, userId domain.UserId, name, description string) (domain.Collection, error)
	Update(ctx context.Context, userId domain.UserId, data domain.CollectionUpdateData) (domain.Collection, error)
	Delete(ctx context.Context, userId domain.UserId, id domain.CollectionId) error
}

type CollectionStorage interface {
	OwnershipStorage
	Collections(ctx context.Context, ownerId domain.UserId) ([]domain.Collection, error)
	CreateCollection(ctx context.Context, data domain.CollectionCreationData) (domain.Collection, error)
	UpdateCollection(ctx context.Context, ownerId domain.UserId, data domain.CollectionUpdateData) (domain.Collection, error)
	DeleteCollection(ctx context.Context, id domain.CollectionId, ownerId domain.UserId) error
	CollectionFiles(ctx context.Context, collectionId domain.CollectionId) ([]domain.File, error)
}

type Collection struct {
	storage CollectionStorage
	items   ItemStore
	files   FileStorage
	gate    *Gate
}

func NewCollection(storage CollectionStorage, items ItemStore, files FileStorage) *Collection {
	return &Collection{storage: storage, items: items, files: files, gate: NewGate(storage)}
}

func (c *Collection) GetAll(ctx context.Context, userId domain.UserId) ([]domain.Collection, error) {
	return c.storage.Collections(ctx, userId)
}

func (c *Collection) GetById(ctx context.Context, userId domain.UserId, id domain.CollectionId) (domain.Collection, error) {
	return c.gate.AssertOwned(ctx, userId, id)
}

// Create stores the collection together with its DisplayName and Picture
// system fields.
func (c *Collection) Create(ctx context.Context, userId domain.UserId, name, description string) (domain.Collection, error) {
	name = sanitizeText(name)
	if name == "" {
		return domain.Collection{}, errors.BadRequest("Collection name is required")
	}
	return c.storage.CreateCollection(ctx, domain.CollectionCreationData{
		Name:        name,
		Description: sanitizeText(description),
		OwnerId:     userId,
	})
}

func (c *Collection) Update(ctx context.Context, userId domain.UserId, data domain.CollectionUpdateData) (domain.Collection, error) {
	data.Name = sanitizeText(data.Name)
	if data.Name == "" {
		return domain.Collection{}, errors.BadRequest("Collection name is required")
	}
	data.Description = sanitizeText(data.Description)

	if _, err := c.gate.AssertOwned(ctx, userId, data.Id); err != nil {
		return domain.Collection{}, err
	}
	if data.Image != nil {
		files, err := c.storage.CollectionFiles(ctx, data.Id)
		if err != nil {
			return domain.Collection{}, err
		}
		found := false
		for _, f := range files {
			if f.Id == *data.Image && f.IsImage {
				found = true
				break
			}
		}
		if !found {
			return domain.Collection{}, errors.BadRequest("Image does not belong to the collection")
		}
	}
	return c.storage.UpdateCollection(ctx, userId, data)
}

// Delete removes the collection rows first. Item documents and stored blobs
// are removed afterwards, their failures are only logged.
func (c *Collection) Delete(ctx context.Context, userId domain.UserId, id domain.CollectionId) error {
	if _, err := c.gate.AssertOwned(ctx, userId, id); err != nil {
		return err
	}
	files, err := c.storage.CollectionFiles(ctx, id)
	if err != nil {
		return err
	}
	if err := c.storage.DeleteCollection(ctx, id, userId); err != nil {
		return err
	}

	removed, err := c.items.RemoveByCollection(ctx, id)
	if err != nil {
		logger.Log.Error("failed to remove items of deleted collection", "collection_id", id, "error", err)
	} else {
		logger.Log.Info("collection deleted", "collection_id", id, "user_id", userId, "items_removed", removed)
	}
	for _, f := range files {
		if f.IsImage {
			continue // removed with the collection folder below
		}
		if err := c.files.DeleteFile(ctx, ownerKey(userId, f), f.Id); err != nil {
			logger.Log.Error("failed to delete file of deleted collection", "collection_id", id, "file_id", f.Id, "error", err)
		}
	}
	if err := c.files.DeleteOwner(ctx, id); err != nil {
		logger.Log.Error("failed to delete images of deleted collection", "collection_id", id, "error", err)
	}
	return nil
}
