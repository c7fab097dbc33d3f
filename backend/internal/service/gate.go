package service

import (
	"context"

	"github.com/xhunter74/collectionmanager/shared/domain"
	"github.com/xhunter74/collectionmanager/shared/errors"
	"github.com/xhunter74/collectionmanager/shared/logger"
)

type OwnershipStorage interface {
	CollectionForOwner(ctx context.Context, id domain.CollectionId, ownerId domain.UserId) (domain.Collection, error)
}

// Gate answers NotFound both for missing collections and for collections of
// other users.
type Gate struct {
	storage OwnershipStorage
}

func NewGate(storage OwnershipStorage) *Gate {
	return &Gate{storage: storage}
}

func (g *Gate) AssertOwned(ctx context.Context, userId domain.UserId, collectionId domain.CollectionId) (domain.Collection, error) {
	collection, err := g.storage.CollectionForOwner(ctx, collectionId, userId)
	if err != nil {
		if errors.IsNotFound(err) {
			logger.Log.Warn("collection not found for user", "collection_id", collectionId, "user_id", userId)
		}
		return domain.Collection{}, err
	}
	return collection, nil
}
