package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/xhunter74/collectionmanager/backend/internal/itemdoc"
	"github.com/xhunter74/collectionmanager/shared/domain"
	"github.com/xhunter74/collectionmanager/shared/errors"
)

type FieldService interface {
	GetCollectionFields(ctx context.Context, userId domain.UserId, collectionId domain.CollectionId) ([]domain.CollectionField, error)
	GetFieldById(ctx context.Context, userId domain.UserId, id domain.FieldId) (domain.CollectionField, error)
	Create(ctx context.Context, userId domain.UserId, data domain.FieldCreationData) (domain.CollectionField, error)
	Update(ctx context.Context, userId domain.UserId, data domain.FieldUpdateData) (domain.CollectionField, error)
	ChangeOrder(ctx context.Context, userId domain.UserId, id domain.FieldId, order int) (domain.CollectionField, error)
	Delete(ctx context.Context, userId domain.UserId, id domain.FieldId) error

	GetPossibleValues(ctx context.Context, userId domain.UserId, fieldId domain.FieldId) ([]domain.PossibleValue, error)
	GetPossibleValueById(ctx context.Context, userId domain.UserId, id uuid.UUID) (domain.PossibleValue, error)
	CreatePossibleValue(ctx context.Context, userId domain.UserId, fieldId domain.FieldId, value string) (domain.PossibleValue, error)
	UpdatePossibleValue(ctx context.Context, userId domain.UserId, id uuid.UUID, value string) (domain.PossibleValue, error)
	DeletePossibleValue(ctx context.Context, userId domain.UserId, id uuid.UUID) error
}

type FieldStorage interface {
	OwnershipStorage
	CollectionFields(ctx context.Context, collectionId domain.CollectionId) ([]domain.CollectionField, error)
	FieldForOwner(ctx context.Context, id domain.FieldId, ownerId domain.UserId) (domain.CollectionField, error)
	CreateField(ctx context.Context, data domain.FieldCreationData) (domain.CollectionField, error)
	UpdateField(ctx context.Context, data domain.FieldUpdateData) (domain.CollectionField, error)
	ChangeFieldOrder(ctx context.Context, id domain.FieldId, order int) (domain.CollectionField, error)
	DeleteField(ctx context.Context, id domain.FieldId) error

	PossibleValues(ctx context.Context, fieldId domain.FieldId) ([]domain.PossibleValue, error)
	PossibleValueForOwner(ctx context.Context, id uuid.UUID, ownerId domain.UserId) (domain.PossibleValue, error)
	CreatePossibleValue(ctx context.Context, fieldId domain.FieldId, value string) (domain.PossibleValue, error)
	UpdatePossibleValue(ctx context.Context, id uuid.UUID, value string) (domain.PossibleValue, error)
	DeletePossibleValue(ctx context.Context, id uuid.UUID) error
}

type Field struct {
	storage FieldStorage
	gate    *Gate
}

func NewField(storage FieldStorage) *Field {
	return &Field{storage: storage, gate: NewGate(storage)}
}

func (f *Field) GetCollectionFields(ctx context.Context, userId domain.UserId, collectionId domain.CollectionId) ([]domain.CollectionField, error) {
	if _, err := f.gate.AssertOwned(ctx, userId, collectionId); err != nil {
		return nil, err
	}
	return f.storage.CollectionFields(ctx, collectionId)
}

func (f *Field) GetFieldById(ctx context.Context, userId domain.UserId, id domain.FieldId) (domain.CollectionField, error) {
	return f.storage.FieldForOwner(ctx, id, userId)
}

func (f *Field) Create(ctx context.Context, userId domain.UserId, data domain.FieldCreationData) (domain.CollectionField, error) {
	name, err := fieldName(data.Name)
	if err != nil {
		return domain.CollectionField{}, err
	}
	if !data.Type.Valid() {
		return domain.CollectionField{}, errors.BadRequest("Invalid field type")
	}
	if data.Order != nil && *data.Order < 0 {
		return domain.CollectionField{}, errors.BadRequest("Order must not be negative")
	}
	if _, err := f.gate.AssertOwned(ctx, userId, data.CollectionId); err != nil {
		return domain.CollectionField{}, err
	}
	data.Name = name
	return f.storage.CreateField(ctx, data)
}

// Update rewrites the field. System fields keep their name and type.
func (f *Field) Update(ctx context.Context, userId domain.UserId, data domain.FieldUpdateData) (domain.CollectionField, error) {
	name, err := fieldName(data.Name)
	if err != nil {
		return domain.CollectionField{}, err
	}
	if !data.Type.Valid() {
		return domain.CollectionField{}, errors.BadRequest("Invalid field type")
	}
	if data.Order < 0 {
		return domain.CollectionField{}, errors.BadRequest("Order must not be negative")
	}

	current, err := f.storage.FieldForOwner(ctx, data.Id, userId)
	if err != nil {
		return domain.CollectionField{}, err
	}
	if current.IsSystem && (!strings.EqualFold(current.Name, name) || current.Type != data.Type) {
		return domain.CollectionField{}, errors.BadRequest("System field name and type cannot be changed")
	}
	if current.IsSystem {
		name = current.Name
	}
	data.Name = name
	return f.storage.UpdateField(ctx, data)
}

// ChangeOrder moves the field, the field holding that order takes the old one.
func (f *Field) ChangeOrder(ctx context.Context, userId domain.UserId, id domain.FieldId, order int) (domain.CollectionField, error) {
	if order < 0 {
		return domain.CollectionField{}, errors.BadRequest("Order must not be negative")
	}
	if _, err := f.storage.FieldForOwner(ctx, id, userId); err != nil {
		return domain.CollectionField{}, err
	}
	return f.storage.ChangeFieldOrder(ctx, id, order)
}

// Delete does not touch values already stored in item documents.
func (f *Field) Delete(ctx context.Context, userId domain.UserId, id domain.FieldId) error {
	current, err := f.storage.FieldForOwner(ctx, id, userId)
	if err != nil {
		return err
	}
	if current.IsSystem {
		return errors.BadRequest("System field cannot be deleted")
	}
	return f.storage.DeleteField(ctx, id)
}

func (f *Field) GetPossibleValues(ctx context.Context, userId domain.UserId, fieldId domain.FieldId) ([]domain.PossibleValue, error) {
	if _, err := f.storage.FieldForOwner(ctx, fieldId, userId); err != nil {
		return nil, err
	}
	return f.storage.PossibleValues(ctx, fieldId)
}

func (f *Field) GetPossibleValueById(ctx context.Context, userId domain.UserId, id uuid.UUID) (domain.PossibleValue, error) {
	return f.storage.PossibleValueForOwner(ctx, id, userId)
}

func (f *Field) CreatePossibleValue(ctx context.Context, userId domain.UserId, fieldId domain.FieldId, value string) (domain.PossibleValue, error) {
	value, err := possibleValue(value)
	if err != nil {
		return domain.PossibleValue{}, err
	}
	if _, err := f.storage.FieldForOwner(ctx, fieldId, userId); err != nil {
		return domain.PossibleValue{}, err
	}
	return f.storage.CreatePossibleValue(ctx, fieldId, value)
}

func (f *Field) UpdatePossibleValue(ctx context.Context, userId domain.UserId, id uuid.UUID, value string) (domain.PossibleValue, error) {
	value, err := possibleValue(value)
	if err != nil {
		return domain.PossibleValue{}, err
	}
	if _, err := f.storage.PossibleValueForOwner(ctx, id, userId); err != nil {
		return domain.PossibleValue{}, err
	}
	return f.storage.UpdatePossibleValue(ctx, id, value)
}

func (f *Field) DeletePossibleValue(ctx context.Context, userId domain.UserId, id uuid.UUID) error {
	if _, err := f.storage.PossibleValueForOwner(ctx, id, userId); err != nil {
		return err
	}
	return f.storage.DeletePossibleValue(ctx, id)
}

func fieldName(name string) (string, error) {
	name = sanitizeText(name)
	if name == "" {
		return "", errors.BadRequest("Field name is required")
	}
	if itemdoc.IsHeaderKey(name) {
		return "", errors.BadRequest(fmt.Sprintf("Field name '%s' is reserved", name))
	}
	return name, nil
}

func possibleValue(value string) (string, error) {
	value = sanitizeText(value)
	if value == "" {
		return "", errors.BadRequest("Value is required")
	}
	return value, nil
}
