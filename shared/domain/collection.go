package domain

import (
	"time"

	"github.com/google/uuid"
)

type CollectionId = uuid.UUID

type Collection struct {
	Id          CollectionId `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	OwnerId     UserId       `json:"ownerId"`
	Image       *uuid.UUID   `json:"image,omitempty"`
	Created     time.Time    `json:"created"`
	Updated     time.Time    `json:"updated"`
}

// to iterate thru layers: handler -> service -> storage
type CollectionCreationData struct {
	Name        string
	Description string
	OwnerId     UserId
}

type CollectionUpdateData struct {
	Id          CollectionId
	Name        string
	Description string
	Image       *uuid.UUID
}

// File is a stored upload of a collection. Images are collection pictures,
// their bytes live under the collection id rather than the owner id.
type File struct {
	Id           uuid.UUID    `json:"id"`
	Name         string       `json:"name"`
	CollectionId CollectionId `json:"collectionId"`
	IsImage      bool         `json:"isImage"`
	Created      time.Time    `json:"created"`
}
