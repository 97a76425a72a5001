package di

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"

	"inspect-backend/application/inspections"
	"inspect-backend/application/ports"
	"inspect-backend/infrastructure/config"
	"inspect-backend/infrastructure/persistence/dynamodb"
	"inspect-backend/interfaces/http/rest"
	"inspect-backend/pkg/utils"
)

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var logger *zap.Logger
	var err error

	if cfg.Environment == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}

	if err != nil {
		return nil, err
	}

	return logger, nil
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideClock creates the timestamp source, pinned to the configured
// venue-local UTC offset
func ProvideClock(cfg *config.Config) utils.Clock {
	return utils.NewClock(cfg.TimezoneOffsetHours)
}

// ProvideKeySchemaCache creates the shared key-schema discovery cache
func ProvideKeySchemaCache(client *awsdynamodb.Client, logger *zap.Logger) *dynamodb.KeySchemaCache {
	return dynamodb.NewKeySchemaCache(client, logger)
}

// ProvideItemStore creates the checklist item store
func ProvideItemStore(
	client *awsdynamodb.Client,
	schemas *dynamodb.KeySchemaCache,
	cfg *config.Config,
	logger *zap.Logger,
) ports.ItemStore {
	return dynamodb.NewItemStore(client, cfg.ItemsTable, schemas, logger)
}

// ProvideMetadataStore creates the inspection metadata store
func ProvideMetadataStore(
	client *awsdynamodb.Client,
	schemas *dynamodb.KeySchemaCache,
	cfg *config.Config,
	logger *zap.Logger,
) ports.MetadataStore {
	return dynamodb.NewMetadataStore(client, cfg.MetadataTable, cfg.CompletedIndexName, schemas, logger)
}

// ProvideVenueStore creates the venue definition store
func ProvideVenueStore(
	client *awsdynamodb.Client,
	schemas *dynamodb.KeySchemaCache,
	cfg *config.Config,
	logger *zap.Logger,
) ports.VenueStore {
	return dynamodb.NewVenueStore(client, cfg.VenuesTable, schemas, logger)
}

// ProvideInspectionService creates the inspection save orchestrator
func ProvideInspectionService(
	items ports.ItemStore,
	meta ports.MetadataStore,
	venues ports.VenueStore,
	clock utils.Clock,
	logger *zap.Logger,
) *inspections.Service {
	return inspections.NewService(items, meta, venues, clock, logger)
}

// ProvideVenueService creates the venue definition service
func ProvideVenueService(
	venues ports.VenueStore,
	clock utils.Clock,
	logger *zap.Logger,
) *inspections.VenueService {
	return inspections.NewVenueService(venues, clock, logger)
}

// ProvideRouter creates the HTTP router
func ProvideRouter(
	inspectionService *inspections.Service,
	venueService *inspections.VenueService,
	cfg *config.Config,
	logger *zap.Logger,
) *rest.Router {
	return rest.NewRouter(inspectionService, venueService, cfg.EnableCORS, logger)
}
