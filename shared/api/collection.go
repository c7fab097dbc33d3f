package api

import (
	"github.com/google/uuid"
	"github.com/xhunter74/collectionmanager/shared/domain"
)

type CreateCollectionRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description" validate:"max=4000"`
}

type UpdateCollectionRequest struct {
	Name        string     `json:"name" validate:"required,max=200"`
	Description string     `json:"description" validate:"max=4000"`
	Image       *uuid.UUID `json:"image,omitempty"`
}

type CreateFieldRequest struct {
	Name       string            `json:"displayName" validate:"required,max=200"`
	Type       *domain.FieldType `json:"type" validate:"required"`
	IsRequired bool              `json:"isRequired"`
	Order      *int              `json:"order,omitempty" validate:"omitempty,gte=0"`
}

type UpdateFieldRequest struct {
	Name       string            `json:"displayName" validate:"required,max=200"`
	Type       *domain.FieldType `json:"type" validate:"required"`
	IsRequired bool              `json:"isRequired"`
	Order      *int              `json:"order" validate:"required,gte=0"`
}

type ChangeOrderRequest struct {
	Order *int `json:"order" validate:"required,gte=0"`
}

type PossibleValueRequest struct {
	Value string `json:"value" validate:"required,max=500"`
}

// FieldResponse renders a collection field with the name under displayName
type FieldResponse struct {
	Id           uuid.UUID        `json:"id"`
	DisplayName  string           `json:"displayName"`
	Type         domain.FieldType `json:"type"`
	IsSystem     bool             `json:"isSystem"`
	IsRequired   bool             `json:"isRequired"`
	Order        int              `json:"order"`
	CollectionId uuid.UUID        `json:"collectionId"`
}

func NewFieldResponse(f domain.CollectionField) FieldResponse {
	return FieldResponse{
		Id:           f.Id,
		DisplayName:  f.Name,
		Type:         f.Type,
		IsSystem:     f.IsSystem,
		IsRequired:   f.IsRequired,
		Order:        f.Order,
		CollectionId: f.CollectionId,
	}
}
