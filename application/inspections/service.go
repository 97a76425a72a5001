// Package inspections contains the application services around inspection
// records: the save orchestrator, the completeness check, summary
// computation and the listing/read paths.
package inspections

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"inspect-backend/application/ports"
	"inspect-backend/domain/inspection"
	apperrors "inspect-backend/pkg/errors"
	"inspect-backend/pkg/utils"
)

// DefaultCompletedLimit bounds the completed list on the home view when
// the caller does not ask for a specific count.
const DefaultCompletedLimit = 6

// Service orchestrates reads and writes across the item, metadata and
// venue stores. The stores share no transactions; consistency of the
// cached summary comes from the orchestrator re-deriving and overwriting
// it at the end of every save.
type Service struct {
	items  ports.ItemStore
	meta   ports.MetadataStore
	venues ports.VenueStore
	clock  utils.Clock
	logger *zap.Logger
}

// NewService creates the inspection service
func NewService(items ports.ItemStore, meta ports.MetadataStore, venues ports.VenueStore, clock utils.Clock, logger *zap.Logger) *Service {
	return &Service{
		items:  items,
		meta:   meta,
		venues: venues,
		clock:  clock,
		logger: logger,
	}
}

// SaveItemInput is one checklist result inside a save batch
type SaveItemInput struct {
	ItemID   string
	ItemName string
	Status   string
	Comments string
}

// SaveInput is the canonical save payload. The HTTP boundary has already
// folded field aliases (inspection_id/id, venueId/venue_id, notes/comments)
// into these names; the core never sees aliases.
type SaveInput struct {
	InspectionID string
	RoomID       string
	RoomName     string
	VenueID      *string
	VenueName    *string
	Status       *string
	CreatedBy    string
	UpdatedBy    string
	Items        []SaveItemInput
}

// SaveResult is the outcome of a save: how many items were written, the
// completeness verdict (nil when not evaluated), and the refreshed
// metadata record. CompletenessError distinguishes "not evaluated because
// of a store fault" from "evaluated false" - the items are durable either
// way.
type SaveResult struct {
	Written           int                            `json:"written"`
	Complete          *inspection.CompletenessResult `json:"complete"`
	CompletenessError string                         `json:"completenessError,omitempty"`
	Metadata          *inspection.Metadata           `json:"inspectionData"`
}

// SaveInspection runs the save pipeline: completed guard, item upserts
// with one shared batch timestamp, summary recompute and cache, metadata
// touch, completeness evaluation and the completed transition.
//
// Two concurrent saves to the same inspection interleave under
// last-write-wins: each computes its own summary snapshot after its own
// writes and whichever finishes last owns the cache. For this domain's
// write concurrency that is an accepted race, not a defect to chase here.
func (s *Service) SaveInspection(ctx context.Context, in SaveInput) (*SaveResult, error) {
	if in.InspectionID == "" {
		return nil, apperrors.NewValidationError("inspection_id is required")
	}

	// The guard runs before any item write so a completed inspection is
	// never partially modified.
	existing, err := s.meta.Get(ctx, in.InspectionID)
	if err != nil {
		return nil, err
	}

	if existing.IsCompleted() {
		s.logger.Warn("Rejected save against completed inspection",
			zap.String("inspectionID", in.InspectionID),
		)
		return nil, apperrors.NewLockedError(in.InspectionID)
	}

	now := s.clock.NowISO()

	if len(in.Items) == 0 {
		return s.saveMetadataOnly(ctx, in, now)
	}

	if in.RoomID == "" {
		return nil, apperrors.NewValidationError("roomId is required when items are provided")
	}

	// One timestamp for the whole batch: every item of one save shares the
	// same updatedAt, which is what groups "the last save" downstream.
	written := 0

	for _, item := range in.Items {
		if item.ItemID == "" {
			continue
		}

		update := inspection.ItemUpdate{
			RoomID:    in.RoomID,
			RoomName:  in.RoomName,
			ItemID:    item.ItemID,
			ItemName:  item.ItemName,
			Status:    item.Status,
			Comments:  item.Comments,
			VenueID:   in.VenueID,
			VenueName: in.VenueName,
		}

		if _, err := s.items.Upsert(ctx, in.InspectionID, update, now); err != nil {
			// Abort the whole batch on the first failure. Callers resubmit
			// the full batch; upserts are idempotent so that is safe.
			return nil, err
		}

		written++
	}

	s.refreshSummaryCache(ctx, in.InspectionID)

	if _, err := s.meta.Touch(ctx, in.InspectionID, inspection.MetadataPatch{
		VenueID:   in.VenueID,
		VenueName: in.VenueName,
		CreatedBy: fallbackAuthor(in.CreatedBy, in.UpdatedBy),
		UpdatedBy: in.UpdatedBy,
	}, now); err != nil {
		s.logger.Error("Failed to refresh inspection metadata after save",
			zap.Error(err),
			zap.String("inspectionID", in.InspectionID),
		)
	}

	result := &SaveResult{Written: written}

	s.evaluateAfterSave(ctx, in, now, result)

	meta, err := s.meta.Get(ctx, in.InspectionID)
	if err != nil {
		s.logger.Error("Failed to re-read metadata after save",
			zap.Error(err),
			zap.String("inspectionID", in.InspectionID),
		)
	}
	result.Metadata = meta

	return result, nil
}

// fallbackAuthor picks the createdBy value stamped on first write. Older
// clients send only one of the author fields, so either serves.
func fallbackAuthor(createdBy, updatedBy string) string {
	if createdBy != "" {
		return createdBy
	}
	if updatedBy != "" {
		return updatedBy
	}
	return "Unknown"
}

// saveMetadataOnly handles a save with no items: a metadata touch that
// merges venue/author fields without ever invoking the completeness logic.
func (s *Service) saveMetadataOnly(ctx context.Context, in SaveInput, now string) (*SaveResult, error) {
	createdBy := fallbackAuthor(in.CreatedBy, in.UpdatedBy)

	meta, err := s.meta.Touch(ctx, in.InspectionID, inspection.MetadataPatch{
		VenueID:   in.VenueID,
		VenueName: in.VenueName,
		Status:    in.Status,
		CreatedBy: createdBy,
		UpdatedBy: in.UpdatedBy,
	}, now)
	if err != nil {
		return nil, err
	}

	return &SaveResult{Metadata: meta}, nil
}

// refreshSummaryCache recomputes the aggregate counts and overwrites the
// cached copy. A failure here leaves the cache stale until the next
// successful save; the items themselves are already durable, so the save
// is not failed over it.
func (s *Service) refreshSummaryCache(ctx context.Context, inspectionID string) {
	summary, err := s.GetSummary(ctx, inspectionID)
	if err != nil {
		s.logger.Error("Failed to compute summary after save",
			zap.Error(err),
			zap.String("inspectionID", inspectionID),
		)
		return
	}

	if err := s.meta.CacheSummary(ctx, inspectionID, summary); err != nil {
		s.logger.Error("Failed to cache summary after save",
			zap.Error(err),
			zap.String("inspectionID", inspectionID),
		)
		return
	}

	s.logger.Debug("Cached inspection summary",
		zap.String("inspectionID", inspectionID),
		zap.Int("total", summary.Totals.Total),
	)
}

// evaluateAfterSave runs the completeness check and, when it passes, the
// completed transition. Without a venue id the expected set is undefined
// and the save can never auto-complete. When the batch itself contains a
// non-pass status the full re-check is skipped: the caller already told us
// the answer, no point re-scanning the store.
func (s *Service) evaluateAfterSave(ctx context.Context, in SaveInput, now string, result *SaveResult) {
	if in.VenueID == nil || *in.VenueID == "" {
		return
	}

	for _, item := range in.Items {
		if item.ItemID != "" && !inspection.IsPass(item.Status) {
			result.Complete = &inspection.CompletenessResult{
				Complete: false,
				Reason:   "non-pass item in provided payload",
				Missing:  []inspection.MissingItem{},
			}
			return
		}
	}

	complete, err := s.CheckComplete(ctx, in.InspectionID, *in.VenueID)
	if err != nil {
		// The items are already written; a failed check degrades the
		// response, not the save.
		s.logger.Error("Completeness check failed after save",
			zap.Error(err),
			zap.String("inspectionID", in.InspectionID),
			zap.String("venueID", *in.VenueID),
		)
		result.CompletenessError = err.Error()
		return
	}

	result.Complete = &complete

	if !complete.Complete {
		return
	}

	updatedBy := in.UpdatedBy
	if updatedBy == "" {
		updatedBy = in.CreatedBy
	}

	if err := s.meta.MarkCompleted(ctx, in.InspectionID, updatedBy, now); err != nil {
		s.logger.Error("Failed to mark inspection completed",
			zap.Error(err),
			zap.String("inspectionID", in.InspectionID),
		)
		result.CompletenessError = err.Error()
	}
}

// GetSummary computes totals and the per-room breakdown fresh from the
// item records, bypassing the cached copy.
func (s *Service) GetSummary(ctx context.Context, inspectionID string) (inspection.Summary, error) {
	if inspectionID == "" {
		return inspection.Summary{}, apperrors.NewValidationError("inspection_id is required")
	}

	items, err := s.items.List(ctx, inspectionID)
	if err != nil {
		return inspection.Summary{}, err
	}

	return inspection.Summarize(items), nil
}

// CheckComplete evaluates the completeness predicate for an inspection
// against a venue's expected set. Pure read path; writes nothing.
func (s *Service) CheckComplete(ctx context.Context, inspectionID, venueID string) (inspection.CompletenessResult, error) {
	if inspectionID == "" {
		return inspection.CompletenessResult{}, apperrors.NewValidationError("inspection_id is required")
	}

	if venueID == "" {
		return inspection.CompletenessResult{}, apperrors.NewValidationError("venue_id is required")
	}

	venue, err := s.venues.Get(ctx, venueID)
	if err != nil {
		return inspection.CompletenessResult{}, err
	}

	expected := venue.ExpectedItems()
	if len(expected) == 0 {
		s.logger.Info("No expected items for venue",
			zap.String("inspectionID", inspectionID),
			zap.String("venueID", venueID),
		)
		return inspection.EvaluateCompleteness(nil, nil), nil
	}

	items, err := s.items.List(ctx, inspectionID)
	if err != nil {
		return inspection.CompletenessResult{}, err
	}

	result := inspection.EvaluateCompleteness(expected, items)

	s.logger.Debug("Evaluated inspection completeness",
		zap.String("inspectionID", inspectionID),
		zap.String("venueID", venueID),
		zap.Bool("complete", result.Complete),
		zap.Int("totalExpected", result.TotalExpected),
		zap.Int("completedCount", result.CompletedCount),
	)

	return result, nil
}

// ListInspections returns the partitioned home view from metadata alone;
// the cached totals make item reads unnecessary here.
func (s *Service) ListInspections(ctx context.Context, completedLimit *int) (*ports.InspectionLists, error) {
	limit := DefaultCompletedLimit
	if completedLimit != nil {
		limit = *completedLimit
	}

	return s.meta.List(ctx, limit)
}

// GetItems returns the item records of an inspection, optionally filtered
// to one room.
func (s *Service) GetItems(ctx context.Context, inspectionID, roomID string) ([]inspection.Item, error) {
	if inspectionID == "" {
		return nil, apperrors.NewValidationError("inspection_id is required")
	}

	items, err := s.items.List(ctx, inspectionID)
	if err != nil {
		return nil, err
	}

	if roomID == "" {
		return items, nil
	}

	filtered := make([]inspection.Item, 0, len(items))
	for _, it := range items {
		if it.RoomID == roomID {
			filtered = append(filtered, it)
		}
	}

	return filtered, nil
}

// CreateInput is the canonical create-inspection payload
type CreateInput struct {
	InspectionID string
	VenueID      *string
	VenueName    *string
	CreatedBy    string
}

// CreateInspection creates the metadata record for a new inspection,
// generating an id when the caller did not bring one. Creating an id that
// already exists degenerates to a touch, which is harmless.
func (s *Service) CreateInspection(ctx context.Context, in CreateInput) (*inspection.Metadata, error) {
	id := in.InspectionID
	if id == "" {
		id = fmt.Sprintf("ins-%s", uuid.New().String())
	}

	createdBy := in.CreatedBy
	if createdBy == "" {
		createdBy = "Unknown"
	}

	meta, err := s.meta.Touch(ctx, id, inspection.MetadataPatch{
		VenueID:   in.VenueID,
		VenueName: in.VenueName,
		CreatedBy: createdBy,
		UpdatedBy: createdBy,
	}, s.clock.NowISO())
	if err != nil {
		return nil, err
	}

	s.logger.Info("Created inspection",
		zap.String("inspectionID", id),
		zap.String("createdBy", createdBy),
	)

	return meta, nil
}

// DeleteInspection removes an inspection: every item record first, then
// the metadata record. There is no cross-table transaction; a crash
// between the two steps leaves orphaned metadata that the next delete
// attempt cleans up.
func (s *Service) DeleteInspection(ctx context.Context, inspectionID string) (int, error) {
	if inspectionID == "" {
		return 0, apperrors.NewValidationError("inspection_id is required")
	}

	deleted, err := s.items.DeleteAll(ctx, inspectionID)
	if err != nil {
		return deleted, err
	}

	if err := s.meta.Delete(ctx, inspectionID); err != nil {
		return deleted, err
	}

	s.logger.Info("Deleted inspection",
		zap.String("inspectionID", inspectionID),
		zap.Int("itemsDeleted", deleted),
	)

	return deleted, nil
}

// ReopenInspection flips a completed inspection back to in-progress. This
// is the only path out of the completed state: completion never reverts
// implicitly, an inspector has to ask for it.
func (s *Service) ReopenInspection(ctx context.Context, inspectionID, updatedBy string) (*inspection.Metadata, error) {
	if inspectionID == "" {
		return nil, apperrors.NewValidationError("inspection_id is required")
	}

	if err := s.meta.Reopen(ctx, inspectionID, updatedBy, s.clock.NowISO()); err != nil {
		return nil, err
	}

	return s.meta.Get(ctx, inspectionID)
}
