package dynamodb

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"inspect-backend/application/ports"
	"inspect-backend/domain/inspection"
	apperrors "inspect-backend/pkg/errors"
)

// sortKeySeparator joins roomId and itemId into the composite sort key.
// The format is deterministic and reversible as long as room ids contain no
// separator, which id generation guarantees.
const sortKeySeparator = "#"

const batchDeleteChunkSize = 25

// itemRecord is the DynamoDB attribute shape of a checklist item. The key
// attributes are intentionally absent: their names vary per deployment and
// are written from the resolved key schema instead.
type itemRecord struct {
	RoomID    string `dynamodbav:"roomId"`
	RoomName  string `dynamodbav:"roomName"`
	ItemID    string `dynamodbav:"itemId"`
	ItemName  string `dynamodbav:"itemName"`
	Status    string `dynamodbav:"status"`
	Comments  string `dynamodbav:"comments"`
	VenueID   string `dynamodbav:"venueId"`
	VenueName string `dynamodbav:"venueName"`
	CreatedAt string `dynamodbav:"createdAt"`
	UpdatedAt string `dynamodbav:"updatedAt"`
}

// ItemStore implements ports.ItemStore on a DynamoDB table keyed by
// inspection id with a room#item sort key.
type ItemStore struct {
	client    API
	tableName string
	schemas   *KeySchemaCache
	logger    *zap.Logger
}

// NewItemStore creates an item store for the given table
func NewItemStore(client API, tableName string, schemas *KeySchemaCache, logger *zap.Logger) *ItemStore {
	return &ItemStore{
		client:    client,
		tableName: tableName,
		schemas:   schemas,
		logger:    logger,
	}
}

var _ ports.ItemStore = (*ItemStore)(nil)

func itemSortKey(roomID, itemID string) string {
	return roomID + sortKeySeparator + itemID
}

func parseItemSortKey(sk string) (roomID, itemID string) {
	parts := strings.SplitN(sk, sortKeySeparator, 2)
	if len(parts) != 2 {
		return "", sk
	}

	return parts[0], parts[1]
}

// Upsert creates or updates one item record. createdAt is written through
// if_not_exists so a re-submission never resets it; every other field is
// overwritten. The write targets exactly the discovered key shape - a table
// without a sort key cannot hold per-item records, so that is a hard error
// rather than a silent overwrite of unrelated data.
func (s *ItemStore) Upsert(ctx context.Context, inspectionID string, u inspection.ItemUpdate, timestamp string) (*inspection.Item, error) {
	if inspectionID == "" {
		return nil, apperrors.NewValidationError("inspection_id is required")
	}

	if u.RoomID == "" || u.ItemID == "" {
		return nil, apperrors.NewValidationError("roomId and itemId are required")
	}

	schema, err := s.schemas.Resolve(ctx, s.tableName)
	if err != nil {
		return nil, err
	}

	if !schema.HasSortKey() {
		return nil, apperrors.NewStoreWriteError("upsert item",
			fmt.Errorf("table %s has no sort key; cannot address item records", s.tableName))
	}

	update := expression.
		Set(expression.Name("updatedAt"), expression.Value(timestamp)).
		Set(expression.Name("createdAt"), expression.IfNotExists(expression.Name("createdAt"), expression.Value(timestamp))).
		Set(expression.Name("status"), expression.Value(string(inspection.NormalizeStatus(u.Status)))).
		Set(expression.Name("comments"), expression.Value(u.Comments)).
		Set(expression.Name("roomId"), expression.Value(u.RoomID)).
		Set(expression.Name("roomName"), expression.Value(u.RoomName)).
		Set(expression.Name("itemId"), expression.Value(u.ItemID)).
		Set(expression.Name("itemName"), expression.Value(u.ItemName))

	if u.VenueID != nil {
		update = update.Set(expression.Name("venueId"), expression.Value(*u.VenueID))
	}

	if u.VenueName != nil {
		update = update.Set(expression.Name("venueName"), expression.Value(*u.VenueName))
	}

	expr, err := expression.NewBuilder().WithUpdate(update).Build()
	if err != nil {
		return nil, apperrors.NewStoreWriteError("build item update expression", err)
	}

	key := map[string]types.AttributeValue{
		schema.PartitionKey: &types.AttributeValueMemberS{Value: inspectionID},
		schema.SortKey:      &types.AttributeValueMemberS{Value: itemSortKey(u.RoomID, u.ItemID)},
	}

	out, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.tableName),
		Key:                       key,
		UpdateExpression:          expr.Update(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		s.logger.Error("Failed to upsert inspection item",
			zap.Error(err),
			zap.String("inspectionID", inspectionID),
			zap.String("roomID", u.RoomID),
			zap.String("itemID", u.ItemID),
		)
		return nil, apperrors.NewStoreWriteError("upsert item", err)
	}

	item := s.toItem(inspectionID, out.Attributes, schema)

	return &item, nil
}

// List returns every item record for the inspection, following pagination
// tokens until the query is exhausted.
func (s *ItemStore) List(ctx context.Context, inspectionID string) ([]inspection.Item, error) {
	if inspectionID == "" {
		return nil, apperrors.NewValidationError("inspection_id is required")
	}

	schema, err := s.schemas.Resolve(ctx, s.tableName)
	if err != nil {
		return nil, err
	}

	expr, err := expression.NewBuilder().
		WithKeyCondition(expression.Key(schema.PartitionKey).Equal(expression.Value(inspectionID))).
		Build()
	if err != nil {
		return nil, apperrors.NewStoreReadError("build item query expression", err)
	}

	var items []inspection.Item

	var startKey map[string]types.AttributeValue

	for {
		out, err := s.client.Query(ctx, &dynamodb.QueryInput{
			TableName:                 aws.String(s.tableName),
			KeyConditionExpression:    expr.KeyCondition(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ExclusiveStartKey:         startKey,
		})
		if err != nil {
			return nil, apperrors.NewStoreReadError("query items", err)
		}

		for _, raw := range out.Items {
			items = append(items, s.toItem(inspectionID, raw, schema))
		}

		if len(out.LastEvaluatedKey) == 0 {
			break
		}

		startKey = out.LastEvaluatedKey
	}

	return items, nil
}

// DeleteAll removes every item record of an inspection in chunked batch
// writes; used by the cascade delete.
func (s *ItemStore) DeleteAll(ctx context.Context, inspectionID string) (int, error) {
	items, err := s.List(ctx, inspectionID)
	if err != nil {
		return 0, err
	}

	if len(items) == 0 {
		return 0, nil
	}

	schema, err := s.schemas.Resolve(ctx, s.tableName)
	if err != nil {
		return 0, err
	}

	requests := make([]types.WriteRequest, 0, len(items))

	for _, it := range items {
		key := map[string]types.AttributeValue{
			schema.PartitionKey: &types.AttributeValueMemberS{Value: inspectionID},
		}
		if schema.HasSortKey() {
			key[schema.SortKey] = &types.AttributeValueMemberS{Value: itemSortKey(it.RoomID, it.ItemID)}
		}

		requests = append(requests, types.WriteRequest{
			DeleteRequest: &types.DeleteRequest{Key: key},
		})
	}

	deleted := 0

	for start := 0; start < len(requests); start += batchDeleteChunkSize {
		end := start + batchDeleteChunkSize
		if end > len(requests) {
			end = len(requests)
		}

		pending := requests[start:end]

		for len(pending) > 0 {
			out, err := s.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
				RequestItems: map[string][]types.WriteRequest{s.tableName: pending},
			})
			if err != nil {
				return deleted, apperrors.NewStoreWriteError("batch delete items", err)
			}

			deleted += len(pending) - len(out.UnprocessedItems[s.tableName])
			pending = out.UnprocessedItems[s.tableName]
		}
	}

	s.logger.Info("Deleted inspection items",
		zap.String("inspectionID", inspectionID),
		zap.Int("count", deleted),
	)

	return deleted, nil
}

// toItem converts a raw DynamoDB item into a domain item. Legacy records
// written before roomId/itemId were stored as attributes recover both ids
// from the sort key.
func (s *ItemStore) toItem(inspectionID string, raw map[string]types.AttributeValue, schema KeySchema) inspection.Item {
	var rec itemRecord

	if err := attributevalue.UnmarshalMap(raw, &rec); err != nil {
		s.logger.Warn("Failed to unmarshal item record",
			zap.Error(err),
			zap.String("inspectionID", inspectionID),
		)
	}

	if rec.RoomID == "" || rec.ItemID == "" {
		if sk, ok := raw[schema.SortKey].(*types.AttributeValueMemberS); ok {
			roomID, itemID := parseItemSortKey(sk.Value)
			if rec.RoomID == "" {
				rec.RoomID = roomID
			}
			if rec.ItemID == "" {
				rec.ItemID = itemID
			}
		}
	}

	return inspection.Item{
		InspectionID: inspectionID,
		RoomID:       rec.RoomID,
		RoomName:     rec.RoomName,
		ItemID:       rec.ItemID,
		ItemName:     rec.ItemName,
		Status:       rec.Status,
		Comments:     rec.Comments,
		VenueID:      rec.VenueID,
		VenueName:    rec.VenueName,
		CreatedAt:    rec.CreatedAt,
		UpdatedAt:    rec.UpdatedAt,
	}
}
