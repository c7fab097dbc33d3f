// Package dynamo keeps item documents in a DynamoDB table keyed by item id.
// Items of one collection are listed through the collection_id-index GSI,
// field values live in the "fields" map attribute.
package dynamo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"github.com/xhunter74/collectionmanager/shared/domain"
	internal_errors "github.com/xhunter74/collectionmanager/shared/errors"
	"github.com/xhunter74/collectionmanager/shared/logger"
	"github.com/xhunter74/collectionmanager/shared/middleware/metrics"
)

const (
	CollectionIndex = "collection_id-index"

	attrId           = "id"
	attrCollectionId = "collection_id"
	attrCreated      = "created"
	attrUpdated      = "updated"
	attrFields       = "fields"

	// fixed width so the GSI sort key orders chronologically
	timeLayout = "2006-01-02T15:04:05.000000000Z"

	batchSize  = 25
	driverName = "dynamodb"
)

// API is the subset of the DynamoDB client used by the store.
type API interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

type Options struct {
	Table           string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

type ItemStore struct {
	client API
	table  string
	now    func() time.Time
}

// header is the fixed part of a stored item. Fields are encoded by hand.
type header struct {
	Id           string `dynamodbav:"id"`
	CollectionId string `dynamodbav:"collection_id"`
	Created      string `dynamodbav:"created"`
	Updated      string `dynamodbav:"updated"`
}

func New(client API, table string) *ItemStore {
	return &ItemStore{
		client: client,
		table:  table,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Connect builds a client from the default AWS chain. Static keys and a custom
// endpoint (dynamodb-local, localstack) override the chain when set.
func Connect(ctx context.Context, opts Options) (*ItemStore, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}
	if opts.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
	})
	store := New(client, opts.Table)
	if err := store.Ping(ctx); err != nil {
		return nil, err
	}
	logger.Log.Info("connected to dynamodb", "table", opts.Table, "region", cfg.Region)
	return store, nil
}

func (s *ItemStore) Ping(ctx context.Context) error {
	_, err := s.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(s.table)})
	if err != nil {
		return fmt.Errorf("failed to describe table %s: %w", s.table, err)
	}
	return nil
}

func (s *ItemStore) Close(ctx context.Context) error {
	return nil
}

func (s *ItemStore) Add(ctx context.Context, doc domain.ItemDocument) (stored domain.ItemDocument, err error) {
	defer metrics.ObserveItemStore(driverName, "add", time.Now(), &err)

	if doc.Id == uuid.Nil {
		doc.Id = uuid.New()
	}
	doc.Created = s.now()
	doc.Updated = doc.Created

	item, err := marshalItem(doc)
	if err != nil {
		return domain.ItemDocument{}, err
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(s.table),
		Item:                     item,
		ConditionExpression:      aws.String("attribute_not_exists(#id)"),
		ExpressionAttributeNames: map[string]string{"#id": attrId},
	})
	if err != nil {
		return domain.ItemDocument{}, fmt.Errorf("failed to put item %s: %w", doc.Id, err)
	}
	return doc, nil
}

// GetById returns nil without error when the item does not exist.
func (s *ItemStore) GetById(ctx context.Context, id domain.ItemId) (doc *domain.ItemDocument, err error) {
	defer metrics.ObserveItemStore(driverName, "get", time.Now(), &err)

	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.table),
		Key:            itemKey(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get item %s: %w", id, err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	decoded, err := unmarshalItem(out.Item)
	if err != nil {
		return nil, err
	}
	return &decoded, nil
}

// GetAll lists the items of a collection oldest first through the collection
// index. A non-nil projection limits the returned field keys.
func (s *ItemStore) GetAll(ctx context.Context, collectionId domain.CollectionId, projection domain.Projection) (docs []domain.ItemDocument, err error) {
	defer metrics.ObserveItemStore(driverName, "list", time.Now(), &err)

	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.table),
		IndexName:              aws.String(CollectionIndex),
		KeyConditionExpression: aws.String("#cid = :cid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":cid": &types.AttributeValueMemberS{Value: collectionId.String()},
		},
		ScanIndexForward: aws.Bool(true),
	}
	expr, names := projectionExpression(projection)
	input.ExpressionAttributeNames = names
	if expr != "" {
		input.ProjectionExpression = aws.String(expr)
	}

	docs = []domain.ItemDocument{}
	paginator := dynamodb.NewQueryPaginator(s.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to query items of collection %s: %w", collectionId, err)
		}
		for _, raw := range page.Items {
			doc, err := unmarshalItem(raw)
			if err != nil {
				return nil, err
			}
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

// Update replaces the whole item. Created is kept from doc, Updated is
// refreshed.
func (s *ItemStore) Update(ctx context.Context, doc domain.ItemDocument) (stored domain.ItemDocument, err error) {
	defer metrics.ObserveItemStore(driverName, "update", time.Now(), &err)

	doc.Created = doc.Created.UTC()
	doc.Updated = s.now()
	item, err := marshalItem(doc)
	if err != nil {
		return domain.ItemDocument{}, err
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(s.table),
		Item:                     item,
		ConditionExpression:      aws.String("attribute_exists(#id)"),
		ExpressionAttributeNames: map[string]string{"#id": attrId},
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return domain.ItemDocument{}, internal_errors.NotFound("Item not found")
		}
		return domain.ItemDocument{}, fmt.Errorf("failed to replace item %s: %w", doc.Id, err)
	}
	return doc, nil
}

func (s *ItemStore) Remove(ctx context.Context, id domain.ItemId) (err error) {
	defer metrics.ObserveItemStore(driverName, "remove", time.Now(), &err)

	out, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:    aws.String(s.table),
		Key:          itemKey(id),
		ReturnValues: types.ReturnValueAllOld,
	})
	if err != nil {
		return fmt.Errorf("failed to delete item %s: %w", id, err)
	}
	if len(out.Attributes) == 0 {
		return internal_errors.NotFound("Item not found")
	}
	return nil
}

// RemoveByCollection deletes every item of a collection in batches of 25.
func (s *ItemStore) RemoveByCollection(ctx context.Context, collectionId domain.CollectionId) (removed int64, err error) {
	defer metrics.ObserveItemStore(driverName, "remove_collection", time.Now(), &err)

	input := &dynamodb.QueryInput{
		TableName:                aws.String(s.table),
		IndexName:                aws.String(CollectionIndex),
		KeyConditionExpression:   aws.String("#cid = :cid"),
		ProjectionExpression:     aws.String("#id"),
		ExpressionAttributeNames: map[string]string{"#cid": attrCollectionId, "#id": attrId},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":cid": &types.AttributeValueMemberS{Value: collectionId.String()},
		},
	}

	var pending []types.WriteRequest
	paginator := dynamodb.NewQueryPaginator(s.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return removed, fmt.Errorf("failed to query items of collection %s: %w", collectionId, err)
		}
		for _, raw := range page.Items {
			pending = append(pending, types.WriteRequest{
				DeleteRequest: &types.DeleteRequest{Key: map[string]types.AttributeValue{attrId: raw[attrId]}},
			})
		}
	}

	for start := 0; start < len(pending); start += batchSize {
		end := min(start+batchSize, len(pending))
		if err := s.writeBatch(ctx, pending[start:end]); err != nil {
			return removed, err
		}
		removed += int64(end - start)
	}
	return removed, nil
}

func (s *ItemStore) writeBatch(ctx context.Context, requests []types.WriteRequest) error {
	const maxAttempts = 5
	for attempt := 0; len(requests) > 0; attempt++ {
		if attempt == maxAttempts {
			return fmt.Errorf("failed to delete %d items: unprocessed after %d attempts", len(requests), maxAttempts)
		}
		out, err := s.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]types.WriteRequest{s.table: requests},
		})
		if err != nil {
			return fmt.Errorf("failed to batch delete items: %w", err)
		}
		requests = out.UnprocessedItems[s.table]
		if len(requests) > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt+1) * 50 * time.Millisecond):
			}
		}
	}
	return nil
}

func itemKey(id domain.ItemId) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{attrId: &types.AttributeValueMemberS{Value: id.String()}}
}

// projectionExpression always names the key attributes since the GSI query
// shares the attribute names map.
func projectionExpression(projection domain.Projection) (string, map[string]string) {
	names := map[string]string{"#cid": attrCollectionId}
	if projection == nil {
		return "", names
	}
	names["#id"] = attrId
	names["#created"] = attrCreated
	names["#updated"] = attrUpdated
	names["#fields"] = attrFields
	expr := "#id, #cid, #created, #updated"
	for i, key := range projection {
		alias := "#f" + strconv.Itoa(i)
		names[alias] = key
		expr += ", #fields." + alias
	}
	return expr, names
}

func marshalItem(doc domain.ItemDocument) (map[string]types.AttributeValue, error) {
	item, err := attributevalue.MarshalMap(header{
		Id:           doc.Id.String(),
		CollectionId: doc.CollectionId.String(),
		Created:      doc.Created.UTC().Format(timeLayout),
		Updated:      doc.Updated.UTC().Format(timeLayout),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal item %s: %w", doc.Id, err)
	}

	fields := make(map[string]types.AttributeValue, len(doc.Fields))
	for key, value := range doc.Fields {
		fields[key] = encodeValue(value)
	}
	item[attrFields] = &types.AttributeValueMemberM{Value: fields}
	return item, nil
}

func unmarshalItem(raw map[string]types.AttributeValue) (domain.ItemDocument, error) {
	var doc domain.ItemDocument
	var h header
	if err := attributevalue.UnmarshalMap(raw, &h); err != nil {
		return doc, fmt.Errorf("failed to unmarshal item: %w", err)
	}

	id, err := uuid.Parse(h.Id)
	if err != nil {
		return doc, fmt.Errorf("invalid item id %q: %w", h.Id, err)
	}
	doc.Id = id
	if h.CollectionId != "" {
		if doc.CollectionId, err = uuid.Parse(h.CollectionId); err != nil {
			return doc, fmt.Errorf("invalid collection id of item %s: %w", id, err)
		}
	}
	doc.Created, _ = time.Parse(timeLayout, h.Created)
	doc.Updated, _ = time.Parse(timeLayout, h.Updated)

	doc.Fields = domain.FieldDictionary{}
	if m, ok := raw[attrFields].(*types.AttributeValueMemberM); ok {
		for key, value := range m.Value {
			doc.Fields[key] = decodeValue(value)
		}
	}
	return doc, nil
}
