package api

import (
	"github.com/google/uuid"
	"github.com/xhunter74/collectionmanager/shared/domain"
)

// ItemFieldInput is one element of the create/update item body, matched to a
// collection field by case-insensitive name.
type ItemFieldInput struct {
	Name  string            `json:"name" validate:"required"`
	Value domain.FieldValue `json:"value"`
}

type UploadResponse struct {
	FileId uuid.UUID `json:"fileId"`
}
