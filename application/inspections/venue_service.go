package inspections

import (
	"context"

	"go.uber.org/zap"

	"inspect-backend/application/ports"
	"inspect-backend/domain/inspection"
	apperrors "inspect-backend/pkg/errors"
	"inspect-backend/pkg/utils"
)

// VenueService manages venue definitions, the checklist templates that
// inspections are evaluated against.
type VenueService struct {
	venues ports.VenueStore
	clock  utils.Clock
	logger *zap.Logger
}

// NewVenueService creates the venue service
func NewVenueService(venues ports.VenueStore, clock utils.Clock, logger *zap.Logger) *VenueService {
	return &VenueService{
		venues: venues,
		clock:  clock,
		logger: logger,
	}
}

// PutVenue stores a venue definition whole, replacing any previous
// version. createdAt survives replacement; updatedAt always refreshes.
func (s *VenueService) PutVenue(ctx context.Context, venue *inspection.Venue) (*inspection.Venue, error) {
	if venue == nil || venue.VenueID == "" {
		return nil, apperrors.NewValidationError("venueId is required")
	}

	now := s.clock.NowISO()

	existing, err := s.venues.Get(ctx, venue.VenueID)
	if err != nil {
		return nil, err
	}

	if existing != nil && existing.CreatedAt != "" {
		venue.CreatedAt = existing.CreatedAt
	} else {
		venue.CreatedAt = now
	}
	venue.UpdatedAt = now

	if err := s.venues.Put(ctx, venue); err != nil {
		return nil, err
	}

	s.logger.Info("Stored venue definition",
		zap.String("venueID", venue.VenueID),
		zap.Int("rooms", len(venue.Rooms)),
		zap.Int("expectedItems", len(venue.ExpectedItems())),
	)

	return venue, nil
}

// GetVenue reads one venue definition; unknown ids are a not-found error
// at this level, unlike the completeness path which tolerates them.
func (s *VenueService) GetVenue(ctx context.Context, venueID string) (*inspection.Venue, error) {
	if venueID == "" {
		return nil, apperrors.NewValidationError("venue_id is required")
	}

	venue, err := s.venues.Get(ctx, venueID)
	if err != nil {
		return nil, err
	}

	if venue == nil {
		return nil, apperrors.NewNotFoundError("venue")
	}

	return venue, nil
}

// ListVenues returns every venue definition
func (s *VenueService) ListVenues(ctx context.Context) ([]inspection.Venue, error) {
	return s.venues.ListAll(ctx)
}
