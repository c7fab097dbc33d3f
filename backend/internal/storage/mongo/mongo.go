// Package mongo keeps item documents in a MongoDB collection, one document
// per item with the item fields at the top level next to CollectionId,
// Created and Updated.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/xhunter74/collectionmanager/shared/domain"
	internal_errors "github.com/xhunter74/collectionmanager/shared/errors"
	"github.com/xhunter74/collectionmanager/shared/logger"
	"github.com/xhunter74/collectionmanager/shared/middleware/metrics"
	"go.mongodb.org/mongo-driver/bson"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	DefaultCollection = "collection_items"
	collectionIdIndex = "idx_collection_id"

	keyId           = "_id"
	keyCollectionId = "CollectionId"
	keyCreated      = "Created"
	keyUpdated      = "Updated"

	driverName = "mongo"
)

var reservedKeys = map[string]struct{}{
	keyId: {}, keyCollectionId: {}, keyCreated: {}, keyUpdated: {},
}

type ItemStore struct {
	client *mongodriver.Client
	items  *mongodriver.Collection
}

// Connect opens a client, pings it and makes sure the collection index exists.
func Connect(ctx context.Context, uri, database, collection string) (*ItemStore, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongodriver.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	if collection == "" {
		collection = DefaultCollection
	}
	store := &ItemStore{client: client, items: client.Database(database).Collection(collection)}
	if err := store.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	logger.Log.Info("connected to mongo", "database", database, "collection", collection)
	return store, nil
}

func (s *ItemStore) ensureIndexes(ctx context.Context) error {
	_, err := s.items.Indexes().CreateOne(ctx, mongodriver.IndexModel{
		Keys:    bson.D{{Key: keyCollectionId, Value: 1}, {Key: keyCreated, Value: 1}},
		Options: options.Index().SetName(collectionIdIndex),
	})
	if err != nil {
		return fmt.Errorf("failed to create %s index: %w", collectionIdIndex, err)
	}
	return nil
}

func (s *ItemStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *ItemStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func now() time.Time {
	// mongo keeps milliseconds
	return time.Now().UTC().Truncate(time.Millisecond)
}

func (s *ItemStore) Add(ctx context.Context, doc domain.ItemDocument) (stored domain.ItemDocument, err error) {
	defer metrics.ObserveItemStore(driverName, "add", time.Now(), &err)

	if doc.Id == uuid.Nil {
		doc.Id = uuid.New()
	}
	doc.Created = now()
	doc.Updated = doc.Created

	raw, err := toBSON(doc)
	if err != nil {
		return domain.ItemDocument{}, err
	}
	if _, err := s.items.InsertOne(ctx, raw); err != nil {
		return domain.ItemDocument{}, fmt.Errorf("failed to insert item %s: %w", doc.Id, err)
	}
	return doc, nil
}

// GetById returns nil without error when the item does not exist.
func (s *ItemStore) GetById(ctx context.Context, id domain.ItemId) (doc *domain.ItemDocument, err error) {
	defer metrics.ObserveItemStore(driverName, "get", time.Now(), &err)

	var raw bson.M
	err = s.items.FindOne(ctx, bson.M{keyId: id.String()}).Decode(&raw)
	if err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find item %s: %w", id, err)
	}
	decoded, err := fromBSON(raw)
	if err != nil {
		return nil, err
	}
	return &decoded, nil
}

// GetAll lists the items of a collection oldest first. A non-nil projection
// limits the returned field keys.
func (s *ItemStore) GetAll(ctx context.Context, collectionId domain.CollectionId, projection domain.Projection) (docs []domain.ItemDocument, err error) {
	defer metrics.ObserveItemStore(driverName, "list", time.Now(), &err)

	opts := options.Find().SetSort(bson.D{{Key: keyCreated, Value: 1}})
	if projection != nil {
		fields := bson.D{{Key: keyCollectionId, Value: 1}, {Key: keyCreated, Value: 1}, {Key: keyUpdated, Value: 1}}
		for _, key := range projection {
			if _, reserved := reservedKeys[key]; reserved {
				continue
			}
			fields = append(fields, bson.E{Key: key, Value: 1})
		}
		opts.SetProjection(fields)
	}

	cursor, err := s.items.Find(ctx, bson.M{keyCollectionId: collectionId.String()}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query items of collection %s: %w", collectionId, err)
	}
	defer cursor.Close(ctx)

	docs = []domain.ItemDocument{}
	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, fmt.Errorf("failed to decode item: %w", err)
		}
		doc, err := fromBSON(raw)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}
	return docs, nil
}

// Update replaces the whole document. Created is kept from doc, Updated is
// refreshed.
func (s *ItemStore) Update(ctx context.Context, doc domain.ItemDocument) (stored domain.ItemDocument, err error) {
	defer metrics.ObserveItemStore(driverName, "update", time.Now(), &err)

	doc.Created = doc.Created.UTC().Truncate(time.Millisecond)
	doc.Updated = now()
	raw, err := toBSON(doc)
	if err != nil {
		return domain.ItemDocument{}, err
	}

	res, err := s.items.ReplaceOne(ctx, bson.M{keyId: doc.Id.String()}, raw)
	if err != nil {
		return domain.ItemDocument{}, fmt.Errorf("failed to replace item %s: %w", doc.Id, err)
	}
	if res.MatchedCount == 0 {
		return domain.ItemDocument{}, internal_errors.NotFound("Item not found")
	}
	return doc, nil
}

func (s *ItemStore) Remove(ctx context.Context, id domain.ItemId) (err error) {
	defer metrics.ObserveItemStore(driverName, "remove", time.Now(), &err)

	res, err := s.items.DeleteOne(ctx, bson.M{keyId: id.String()})
	if err != nil {
		return fmt.Errorf("failed to delete item %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return internal_errors.NotFound("Item not found")
	}
	return nil
}

func (s *ItemStore) RemoveByCollection(ctx context.Context, collectionId domain.CollectionId) (removed int64, err error) {
	defer metrics.ObserveItemStore(driverName, "remove_collection", time.Now(), &err)

	res, err := s.items.DeleteMany(ctx, bson.M{keyCollectionId: collectionId.String()})
	if err != nil {
		return 0, fmt.Errorf("failed to delete items of collection %s: %w", collectionId, err)
	}
	return res.DeletedCount, nil
}

func toBSON(doc domain.ItemDocument) (bson.D, error) {
	raw := bson.D{
		{Key: keyId, Value: doc.Id.String()},
		{Key: keyCollectionId, Value: doc.CollectionId.String()},
		{Key: keyCreated, Value: doc.Created},
		{Key: keyUpdated, Value: doc.Updated},
	}

	keys := make([]string, 0, len(doc.Fields))
	for key := range doc.Fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if _, reserved := reservedKeys[key]; reserved {
			return nil, fmt.Errorf("field key %q is reserved", key)
		}
		value, err := encodeValue(doc.Fields[key])
		if err != nil {
			return nil, fmt.Errorf("failed to encode field %s: %w", key, err)
		}
		raw = append(raw, bson.E{Key: key, Value: value})
	}
	return raw, nil
}

func fromBSON(raw bson.M) (domain.ItemDocument, error) {
	var doc domain.ItemDocument

	id, err := uuid.Parse(fmt.Sprint(raw[keyId]))
	if err != nil {
		return doc, fmt.Errorf("invalid item id %v: %w", raw[keyId], err)
	}
	doc.Id = id
	if cid, ok := raw[keyCollectionId].(string); ok {
		if doc.CollectionId, err = uuid.Parse(cid); err != nil {
			return doc, fmt.Errorf("invalid collection id of item %s: %w", id, err)
		}
	}
	doc.Created = decodeTime(raw[keyCreated])
	doc.Updated = decodeTime(raw[keyUpdated])

	doc.Fields = make(domain.FieldDictionary, len(raw))
	for key, value := range raw {
		if _, reserved := reservedKeys[key]; reserved {
			continue
		}
		doc.Fields[key] = decodeValue(value)
	}
	return doc, nil
}
