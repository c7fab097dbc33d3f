package service

import (
	"context"

	"github.com/xhunter74/collectionmanager/backend/internal/itemdoc"
	"github.com/xhunter74/collectionmanager/shared/api"
	"github.com/xhunter74/collectionmanager/shared/domain"
	"github.com/xhunter74/collectionmanager/shared/errors"
	"github.com/xhunter74/collectionmanager/shared/logger"
)

type ItemService interface {
	Create(ctx context.Context, userId domain.UserId, collectionId domain.CollectionId, input []api.ItemFieldInput) (domain.FlatRecord, error)
	GetAll(ctx context.Context, userId domain.UserId, collectionId domain.CollectionId, fields []string) ([]domain.FlatRecord, error)
	GetById(ctx context.Context, userId domain.UserId, id domain.ItemId) (domain.ItemDto, error)
	Update(ctx context.Context, userId domain.UserId, id domain.ItemId, input []api.ItemFieldInput) (domain.ItemDto, error)
	Delete(ctx context.Context, userId domain.UserId, id domain.ItemId) error
}

type SchemaStorage interface {
	OwnershipStorage
	CollectionFields(ctx context.Context, collectionId domain.CollectionId) ([]domain.CollectionField, error)
}

type Item struct {
	schema SchemaStorage
	items  ItemStore
	gate   *Gate
	opts   itemdoc.MapperOptions
}

func NewItem(schema SchemaStorage, items ItemStore, opts itemdoc.MapperOptions) *Item {
	return &Item{schema: schema, items: items, gate: NewGate(schema), opts: opts}
}

func (s *Item) ownedSchema(ctx context.Context, userId domain.UserId, collectionId domain.CollectionId) ([]domain.CollectionField, error) {
	if _, err := s.gate.AssertOwned(ctx, userId, collectionId); err != nil {
		return nil, err
	}
	return s.schema.CollectionFields(ctx, collectionId)
}

// ownedItem resolves item -> collection -> owner. Foreign items are NotFound.
func (s *Item) ownedItem(ctx context.Context, userId domain.UserId, id domain.ItemId) (*domain.ItemDocument, []domain.CollectionField, error) {
	doc, err := s.items.GetById(ctx, id)
	if err != nil {
		logger.Log.Error("failed to load item", "item_id", id, "error", err)
		return nil, nil, errors.AppError("Failed to load item.")
	}
	if doc == nil {
		return nil, nil, errors.NotFound("Item not found")
	}
	schema, err := s.ownedSchema(ctx, userId, doc.CollectionId)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, nil, errors.NotFound("Item not found")
		}
		return nil, nil, err
	}
	return doc, schema, nil
}

func (s *Item) Create(ctx context.Context, userId domain.UserId, collectionId domain.CollectionId, input []api.ItemFieldInput) (domain.FlatRecord, error) {
	schema, err := s.ownedSchema(ctx, userId, collectionId)
	if err != nil {
		return nil, err
	}
	fields, err := itemdoc.BuildItemDocument(schema, input, s.opts)
	if err != nil {
		return nil, err
	}

	doc, err := s.items.Add(ctx, domain.ItemDocument{CollectionId: collectionId, Fields: fields})
	if err != nil {
		logger.Log.Error("failed to add item", "collection_id", collectionId, "user_id", userId, "error", err)
		return nil, errors.AppError("Failed to save item.")
	}
	return itemdoc.FlattenNamed(schema, doc), nil
}

// GetAll lists flattened items. Non-empty fields limits the output to the
// named fields, unknown names are ignored.
func (s *Item) GetAll(ctx context.Context, userId domain.UserId, collectionId domain.CollectionId, fields []string) ([]domain.FlatRecord, error) {
	schema, err := s.ownedSchema(ctx, userId, collectionId)
	if err != nil {
		return nil, err
	}

	docs, err := s.items.GetAll(ctx, collectionId, itemdoc.ProjectionFor(schema, fields))
	if err != nil {
		logger.Log.Error("failed to list items", "collection_id", collectionId, "error", err)
		return nil, errors.AppError("Failed to load items.")
	}
	records := make([]domain.FlatRecord, 0, len(docs))
	for _, doc := range docs {
		records = append(records, itemdoc.FlattenNamed(schema, doc))
	}
	return records, nil
}

func (s *Item) GetById(ctx context.Context, userId domain.UserId, id domain.ItemId) (domain.ItemDto, error) {
	doc, schema, err := s.ownedItem(ctx, userId, id)
	if err != nil {
		return domain.ItemDto{}, err
	}
	return itemdoc.ToItemDto(schema, *doc), nil
}

// Update replaces every field of the item through the same mapping as Create.
func (s *Item) Update(ctx context.Context, userId domain.UserId, id domain.ItemId, input []api.ItemFieldInput) (domain.ItemDto, error) {
	doc, schema, err := s.ownedItem(ctx, userId, id)
	if err != nil {
		return domain.ItemDto{}, err
	}
	fields, err := itemdoc.BuildItemDocument(schema, input, s.opts)
	if err != nil {
		return domain.ItemDto{}, err
	}

	doc.Fields = fields
	updated, err := s.items.Update(ctx, *doc)
	if err != nil {
		if errors.IsNotFound(err) {
			return domain.ItemDto{}, err
		}
		logger.Log.Error("failed to update item", "item_id", id, "collection_id", doc.CollectionId, "error", err)
		return domain.ItemDto{}, errors.AppError("Failed to save item.")
	}
	return itemdoc.ToItemDto(schema, updated), nil
}

func (s *Item) Delete(ctx context.Context, userId domain.UserId, id domain.ItemId) error {
	if _, _, err := s.ownedItem(ctx, userId, id); err != nil {
		return err
	}
	if err := s.items.Remove(ctx, id); err != nil {
		if errors.IsNotFound(err) {
			return err
		}
		logger.Log.Error("failed to remove item", "item_id", id, "error", err)
		return errors.AppError("Failed to delete item.")
	}
	return nil
}
