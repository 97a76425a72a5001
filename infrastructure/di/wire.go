//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"
	"go.uber.org/zap"

	"inspect-backend/application/inspections"
	"inspect-backend/application/ports"
	"inspect-backend/infrastructure/config"
	"inspect-backend/interfaces/http/rest"
)

// Container holds all application dependencies
type Container struct {
	Config            *config.Config
	Logger            *zap.Logger
	ItemStore         ports.ItemStore
	MetadataStore     ports.MetadataStore
	VenueStore        ports.VenueStore
	InspectionService *inspections.Service
	VenueService      *inspections.VenueService
	Router            *rest.Router
}

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideAWSConfig,
	ProvideDynamoDBClient,
	ProvideClock,
	ProvideKeySchemaCache,
	ProvideItemStore,
	ProvideMetadataStore,
	ProvideVenueStore,
	ProvideInspectionService,
	ProvideVenueService,
	ProvideRouter,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil // Wire will replace this
}
