package dynamodb

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"

	"inspect-backend/application/ports"
	"inspect-backend/domain/inspection"
	apperrors "inspect-backend/pkg/errors"
	"inspect-backend/pkg/utils"
)

// metadataRecord is the DynamoDB attribute shape of the denormalized
// per-inspection record. completedAt follows the sparse-index convention:
// absent while in progress, set once on completion, so the completed GSI
// only ever contains completed inspections.
type metadataRecord struct {
	Status      string                             `dynamodbav:"status"`
	VenueID     string                             `dynamodbav:"venueId"`
	VenueName   string                             `dynamodbav:"venueName"`
	CreatedBy   string                             `dynamodbav:"createdBy"`
	UpdatedBy   string                             `dynamodbav:"updatedBy"`
	CreatedAt   string                             `dynamodbav:"createdAt"`
	UpdatedAt   string                             `dynamodbav:"updatedAt"`
	CompletedAt string                             `dynamodbav:"completedAt"`
	Totals      *inspection.StatusCounts           `dynamodbav:"totals"`
	ByRoom      map[string]inspection.StatusCounts `dynamodbav:"byRoom"`
}

// MetadataStore implements ports.MetadataStore on a DynamoDB table keyed by
// inspection id, with a sparse GSI over (status, completedAt) serving the
// completed listing.
type MetadataStore struct {
	client             API
	tableName          string
	completedIndexName string
	schemas            *KeySchemaCache
	logger             *zap.Logger
}

// NewMetadataStore creates a metadata store for the given table and index
func NewMetadataStore(client API, tableName, completedIndexName string, schemas *KeySchemaCache, logger *zap.Logger) *MetadataStore {
	return &MetadataStore{
		client:             client,
		tableName:          tableName,
		completedIndexName: completedIndexName,
		schemas:            schemas,
		logger:             logger,
	}
}

var _ ports.MetadataStore = (*MetadataStore)(nil)

// Get reads the metadata record with a strong read so the completed guard
// in the save path never acts on a stale status.
func (s *MetadataStore) Get(ctx context.Context, inspectionID string) (*inspection.Metadata, error) {
	raw, schema, err := s.getRaw(ctx, inspectionID)
	if err != nil {
		return nil, err
	}

	if raw == nil {
		return nil, nil
	}

	meta := s.toMetadata(raw, schema)

	return &meta, nil
}

func (s *MetadataStore) getRaw(ctx context.Context, inspectionID string) (map[string]types.AttributeValue, KeySchema, error) {
	if inspectionID == "" {
		return nil, KeySchema{}, apperrors.NewValidationError("inspection_id is required")
	}

	schema, err := s.schemas.Resolve(ctx, s.tableName)
	if err != nil {
		return nil, KeySchema{}, err
	}

	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.tableName),
		Key:            s.key(schema, inspectionID),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, KeySchema{}, apperrors.NewStoreReadError("get metadata", err)
	}

	if len(out.Item) == 0 {
		return nil, schema, nil
	}

	return out.Item, schema, nil
}

// Touch merge-upserts the metadata record. createdAt and createdBy are
// first-writer-wins through if_not_exists; venue fields are written only
// when the patch carries them, so a partial save can never null out a venue
// recorded earlier; updatedAt/updatedBy refresh on every touch. Records
// written by old handlers sometimes carry completedAt as an explicit NULL,
// which would keep them stuck in the completed index shape - those get the
// attribute removed on the way through.
func (s *MetadataStore) Touch(ctx context.Context, inspectionID string, patch inspection.MetadataPatch, timestamp string) (*inspection.Metadata, error) {
	raw, schema, err := s.getRaw(ctx, inspectionID)
	if err != nil {
		return nil, err
	}

	update := expression.
		Set(expression.Name("updatedAt"), expression.Value(timestamp)).
		Set(expression.Name("createdAt"), expression.IfNotExists(expression.Name("createdAt"), expression.Value(timestamp)))

	if patch.CreatedBy != "" {
		update = update.Set(expression.Name("createdBy"),
			expression.IfNotExists(expression.Name("createdBy"), expression.Value(patch.CreatedBy)))
	}

	updatedBy := patch.UpdatedBy
	if updatedBy == "" {
		updatedBy = patch.CreatedBy
	}
	if updatedBy != "" {
		update = update.Set(expression.Name("updatedBy"), expression.Value(updatedBy))
	}

	if patch.VenueID != nil {
		update = update.Set(expression.Name("venueId"), expression.Value(*patch.VenueID))
	}

	if patch.VenueName != nil {
		update = update.Set(expression.Name("venueName"), expression.Value(*patch.VenueName))
	}

	if patch.Status != nil {
		update = update.Set(expression.Name("status"), expression.Value(*patch.Status))
	} else {
		update = update.Set(expression.Name("status"),
			expression.IfNotExists(expression.Name("status"), expression.Value(string(inspection.InspectionInProgress))))
	}

	if hasNullAttribute(raw, "completedAt") {
		update = update.Remove(expression.Name("completedAt"))
		s.logger.Info("Removing legacy NULL completedAt",
			zap.String("inspectionID", inspectionID),
		)
	}

	expr, err := expression.NewBuilder().WithUpdate(update).Build()
	if err != nil {
		return nil, apperrors.NewStoreWriteError("build metadata update expression", err)
	}

	out, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.tableName),
		Key:                       s.key(schema, inspectionID),
		UpdateExpression:          expr.Update(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		s.logger.Error("Failed to touch inspection metadata",
			zap.Error(err),
			zap.String("inspectionID", inspectionID),
		)
		return nil, apperrors.NewStoreWriteError("touch metadata", err)
	}

	meta := s.toMetadata(out.Attributes, schema)

	return &meta, nil
}

// CacheSummary overwrites the cached totals/byRoom snapshot. This is the
// only writer of those fields; the orchestrator calls it at the end of
// every successful save batch.
func (s *MetadataStore) CacheSummary(ctx context.Context, inspectionID string, summary inspection.Summary) error {
	schema, err := s.schemas.Resolve(ctx, s.tableName)
	if err != nil {
		return err
	}

	expr, err := expression.NewBuilder().WithUpdate(expression.
		Set(expression.Name("totals"), expression.Value(summary.Totals)).
		Set(expression.Name("byRoom"), expression.Value(summary.ByRoom)),
	).Build()
	if err != nil {
		return apperrors.NewStoreWriteError("build summary cache expression", err)
	}

	_, err = s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.tableName),
		Key:                       s.key(schema, inspectionID),
		UpdateExpression:          expr.Update(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		return apperrors.NewStoreWriteError("cache summary", err)
	}

	return nil
}

// MarkCompleted flips the record to completed. completedAt goes through
// if_not_exists, so when two saves race to complete the same inspection the
// first stamp survives; everything else is last-write-wins.
func (s *MetadataStore) MarkCompleted(ctx context.Context, inspectionID, updatedBy, timestamp string) error {
	schema, err := s.schemas.Resolve(ctx, s.tableName)
	if err != nil {
		return err
	}

	expr, err := expression.NewBuilder().WithUpdate(expression.
		Set(expression.Name("status"), expression.Value(string(inspection.InspectionCompleted))).
		Set(expression.Name("updatedAt"), expression.Value(timestamp)).
		Set(expression.Name("updatedBy"), expression.Value(updatedBy)).
		Set(expression.Name("completedAt"), expression.IfNotExists(expression.Name("completedAt"), expression.Value(timestamp))),
	).Build()
	if err != nil {
		return apperrors.NewStoreWriteError("build completion expression", err)
	}

	_, err = s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.tableName),
		Key:                       s.key(schema, inspectionID),
		UpdateExpression:          expr.Update(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		return apperrors.NewStoreWriteError("mark completed", err)
	}

	s.logger.Info("Inspection marked completed",
		zap.String("inspectionID", inspectionID),
		zap.String("completedAt", timestamp),
	)

	return nil
}

// Reopen flips a completed record back to in-progress. completedAt is
// removed entirely, not nulled, so the record drops out of the sparse
// completed index.
func (s *MetadataStore) Reopen(ctx context.Context, inspectionID, updatedBy, timestamp string) error {
	schema, err := s.schemas.Resolve(ctx, s.tableName)
	if err != nil {
		return err
	}

	update := expression.
		Set(expression.Name("status"), expression.Value(string(inspection.InspectionInProgress))).
		Set(expression.Name("updatedAt"), expression.Value(timestamp)).
		Remove(expression.Name("completedAt"))

	if updatedBy != "" {
		update = update.Set(expression.Name("updatedBy"), expression.Value(updatedBy))
	}

	expr, err := expression.NewBuilder().
		WithUpdate(update).
		WithCondition(expression.AttributeExists(expression.Name(schema.PartitionKey))).
		Build()
	if err != nil {
		return apperrors.NewStoreWriteError("build reopen expression", err)
	}

	_, err = s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.tableName),
		Key:                       s.key(schema, inspectionID),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return apperrors.NewNotFoundError("inspection")
		}

		return apperrors.NewStoreWriteError("reopen inspection", err)
	}

	return nil
}

// List partitions metadata records for the home view: the top
// completedLimit completed inspections by completedAt descending, plus
// every ongoing inspection. The completed side is served from the sparse
// GSI when available; when the index query fails the store falls back to a
// scan-sort-slice over the whole table.
func (s *MetadataStore) List(ctx context.Context, completedLimit int) (*ports.InspectionLists, error) {
	schema, err := s.schemas.Resolve(ctx, s.tableName)
	if err != nil {
		return nil, err
	}

	completed := []inspection.Metadata{}

	if completedLimit != 0 {
		completed, err = s.listCompleted(ctx, schema, completedLimit)
		if err != nil {
			return nil, err
		}
	}

	ongoing, err := s.listOngoing(ctx, schema)
	if err != nil {
		return nil, err
	}

	return &ports.InspectionLists{Completed: completed, Ongoing: ongoing}, nil
}

func (s *MetadataStore) listCompleted(ctx context.Context, schema KeySchema, limit int) ([]inspection.Metadata, error) {
	records, err := s.queryCompletedIndex(ctx, schema, limit)
	if err == nil {
		return records, nil
	}

	s.logger.Warn("Completed index query failed, falling back to scan",
		zap.Error(err),
		zap.String("index", s.completedIndexName),
	)

	return s.scanCompleted(ctx, schema, limit)
}

func (s *MetadataStore) queryCompletedIndex(ctx context.Context, schema KeySchema, limit int) ([]inspection.Metadata, error) {
	expr, err := expression.NewBuilder().
		WithKeyCondition(expression.Key("status").Equal(expression.Value(string(inspection.InspectionCompleted)))).
		Build()
	if err != nil {
		return nil, apperrors.NewStoreReadError("build completed query expression", err)
	}

	var records []inspection.Metadata

	var startKey map[string]types.AttributeValue

	for {
		input := &dynamodb.QueryInput{
			TableName:                 aws.String(s.tableName),
			IndexName:                 aws.String(s.completedIndexName),
			KeyConditionExpression:    expr.KeyCondition(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ScanIndexForward:          aws.Bool(false),
			ExclusiveStartKey:         startKey,
		}

		if limit > 0 {
			input.Limit = aws.Int32(int32(limit - len(records)))
		}

		out, err := s.client.Query(ctx, input)
		if err != nil {
			return nil, apperrors.NewStoreReadError("query completed index", err)
		}

		for _, raw := range out.Items {
			records = append(records, s.toMetadata(raw, schema))
		}

		if len(out.LastEvaluatedKey) == 0 || (limit > 0 && len(records) >= limit) {
			break
		}

		startKey = out.LastEvaluatedKey
	}

	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}

	return records, nil
}

func (s *MetadataStore) scanCompleted(ctx context.Context, schema KeySchema, limit int) ([]inspection.Metadata, error) {
	filter := expression.Name("status").Equal(expression.Value(string(inspection.InspectionCompleted)))

	records, err := s.scanWithFilter(ctx, schema, filter)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(records, func(i, j int) bool {
		return completionSortKey(records[i]).After(completionSortKey(records[j]))
	})

	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}

	return records, nil
}

func (s *MetadataStore) listOngoing(ctx context.Context, schema KeySchema) ([]inspection.Metadata, error) {
	filter := expression.AttributeNotExists(expression.Name("status")).
		Or(expression.Name("status").NotEqual(expression.Value(string(inspection.InspectionCompleted))))

	return s.scanWithFilter(ctx, schema, filter)
}

func (s *MetadataStore) scanWithFilter(ctx context.Context, schema KeySchema, filter expression.ConditionBuilder) ([]inspection.Metadata, error) {
	expr, err := expression.NewBuilder().WithFilter(filter).Build()
	if err != nil {
		return nil, apperrors.NewStoreReadError("build metadata scan expression", err)
	}

	records := []inspection.Metadata{}

	var startKey map[string]types.AttributeValue

	for {
		out, err := s.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:                 aws.String(s.tableName),
			FilterExpression:          expr.Filter(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ConsistentRead:            aws.Bool(true),
			ExclusiveStartKey:         startKey,
		})
		if err != nil {
			return nil, apperrors.NewStoreReadError("scan metadata", err)
		}

		for _, raw := range out.Items {
			records = append(records, s.toMetadata(raw, schema))
		}

		if len(out.LastEvaluatedKey) == 0 {
			break
		}

		startKey = out.LastEvaluatedKey
	}

	return records, nil
}

// Delete removes the metadata record; item records are the caller's
// responsibility (the cascade lives in the service layer).
func (s *MetadataStore) Delete(ctx context.Context, inspectionID string) error {
	schema, err := s.schemas.Resolve(ctx, s.tableName)
	if err != nil {
		return err
	}

	_, err = s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableName),
		Key:       s.key(schema, inspectionID),
	})
	if err != nil {
		return apperrors.NewStoreWriteError("delete metadata", err)
	}

	return nil
}

func (s *MetadataStore) key(schema KeySchema, inspectionID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		schema.PartitionKey: &types.AttributeValueMemberS{Value: inspectionID},
	}
}

func (s *MetadataStore) toMetadata(raw map[string]types.AttributeValue, schema KeySchema) inspection.Metadata {
	var rec metadataRecord

	if err := attributevalue.UnmarshalMap(raw, &rec); err != nil {
		s.logger.Warn("Failed to unmarshal metadata record", zap.Error(err))
	}

	inspectionID := ""
	if pk, ok := raw[schema.PartitionKey].(*types.AttributeValueMemberS); ok {
		inspectionID = pk.Value
	}

	status := inspection.MetadataStatus(rec.Status)
	if status == "" {
		status = inspection.InspectionInProgress
	}

	return inspection.Metadata{
		InspectionID: inspectionID,
		VenueID:      rec.VenueID,
		VenueName:    rec.VenueName,
		Status:       status,
		CreatedBy:    rec.CreatedBy,
		UpdatedBy:    rec.UpdatedBy,
		CreatedAt:    rec.CreatedAt,
		UpdatedAt:    rec.UpdatedAt,
		CompletedAt:  rec.CompletedAt,
		Totals:       rec.Totals,
		ByRoom:       rec.ByRoom,
	}
}

// completionSortKey orders completed records newest-first in the scan
// fallback; records missing completedAt fall back to update/create stamps.
func completionSortKey(meta inspection.Metadata) time.Time {
	for _, stamp := range []string{meta.CompletedAt, meta.UpdatedAt, meta.CreatedAt} {
		if stamp != "" {
			return utils.ParseTimestamp(stamp)
		}
	}

	return time.Time{}
}

func hasNullAttribute(raw map[string]types.AttributeValue, name string) bool {
	if raw == nil {
		return false
	}

	_, isNull := raw[name].(*types.AttributeValueMemberNULL)

	return isNull
}

func isConditionalCheckFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return true
	}

	var apiErr smithy.APIError

	return errors.As(err, &apiErr) && apiErr.ErrorCode() == "ConditionalCheckFailedException"
}
