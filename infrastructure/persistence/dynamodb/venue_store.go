package dynamodb

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"inspect-backend/application/ports"
	"inspect-backend/domain/inspection"
	apperrors "inspect-backend/pkg/errors"
)

// VenueStore implements ports.VenueStore on a DynamoDB table keyed by
// venue id. The completeness evaluator only ever reads from here.
type VenueStore struct {
	client    API
	tableName string
	schemas   *KeySchemaCache
	logger    *zap.Logger
}

// NewVenueStore creates a venue store for the given table
func NewVenueStore(client API, tableName string, schemas *KeySchemaCache, logger *zap.Logger) *VenueStore {
	return &VenueStore{
		client:    client,
		tableName: tableName,
		schemas:   schemas,
		logger:    logger,
	}
}

var _ ports.VenueStore = (*VenueStore)(nil)

// Get reads a venue definition. A missing venue returns (nil, nil): the
// completeness policy treats it as "no expected items", not a failure. A
// transient read error propagates unchanged so it is never mistaken for an
// empty venue.
func (s *VenueStore) Get(ctx context.Context, venueID string) (*inspection.Venue, error) {
	if venueID == "" {
		return nil, apperrors.NewValidationError("venue_id is required")
	}

	schema, err := s.schemas.Resolve(ctx, s.tableName)
	if err != nil {
		return nil, err
	}

	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			schema.PartitionKey: &types.AttributeValueMemberS{Value: venueID},
		},
	})
	if err != nil {
		return nil, apperrors.NewStoreReadError("get venue", err)
	}

	if len(out.Item) == 0 {
		return nil, nil
	}

	var venue inspection.Venue
	if err := attributevalue.UnmarshalMap(out.Item, &venue); err != nil {
		return nil, apperrors.NewStoreReadError("unmarshal venue", err)
	}

	if venue.VenueID == "" {
		venue.VenueID = venueID
	}

	return &venue, nil
}

// Put stores a venue definition, replacing any previous version whole
func (s *VenueStore) Put(ctx context.Context, venue *inspection.Venue) error {
	if venue == nil || venue.VenueID == "" {
		return apperrors.NewValidationError("venueId is required")
	}

	item, err := attributevalue.MarshalMap(venue)
	if err != nil {
		return apperrors.NewStoreWriteError("marshal venue", err)
	}

	if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	}); err != nil {
		s.logger.Error("Failed to put venue",
			zap.Error(err),
			zap.String("venueID", venue.VenueID),
		)
		return apperrors.NewStoreWriteError("put venue", err)
	}

	return nil
}

// ListAll scans every venue definition; the venue table is small
func (s *VenueStore) ListAll(ctx context.Context) ([]inspection.Venue, error) {
	venues := []inspection.Venue{}

	var startKey map[string]types.AttributeValue

	for {
		out, err := s.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(s.tableName),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, apperrors.NewStoreReadError("scan venues", err)
		}

		for _, raw := range out.Items {
			var venue inspection.Venue
			if err := attributevalue.UnmarshalMap(raw, &venue); err != nil {
				s.logger.Warn("Skipping unreadable venue record", zap.Error(err))
				continue
			}

			venues = append(venues, venue)
		}

		if len(out.LastEvaluatedKey) == 0 {
			break
		}

		startKey = out.LastEvaluatedKey
	}

	return venues, nil
}
