package ports

import (
	"context"

	"inspect-backend/domain/inspection"
)

// ItemStore defines the interface for checklist item persistence.
// This is a port in hexagonal architecture - the domain doesn't know about
// the implementation.
type ItemStore interface {
	// Upsert creates the record if absent, else updates the mutable fields
	// while preserving createdAt. The caller supplies the timestamp so every
	// item of one save batch shares the same updatedAt. Safe to call
	// concurrently for different item ids of the same inspection.
	Upsert(ctx context.Context, inspectionID string, update inspection.ItemUpdate, timestamp string) (*inspection.Item, error)

	// List returns every item record for the inspection, paging through the
	// store transparently.
	List(ctx context.Context, inspectionID string) ([]inspection.Item, error)

	// DeleteAll removes every item record for the inspection and returns
	// the number of records deleted.
	DeleteAll(ctx context.Context, inspectionID string) (int, error)
}

// InspectionLists partitions metadata records for the listing view
type InspectionLists struct {
	Completed []inspection.Metadata `json:"completed"`
	Ongoing   []inspection.Metadata `json:"ongoing"`
}

// MetadataStore defines the interface for the denormalized per-inspection
// metadata record.
type MetadataStore interface {
	// Get reads the metadata record with a strong read. Returns (nil, nil)
	// when no record exists.
	Get(ctx context.Context, inspectionID string) (*inspection.Metadata, error)

	// Touch merge-upserts the record: createdAt/createdBy set only when
	// absent, venue fields set only when the patch supplies them, updatedAt
	// and updatedBy always refreshed. Returns the record after the write.
	Touch(ctx context.Context, inspectionID string, patch inspection.MetadataPatch, timestamp string) (*inspection.Metadata, error)

	// CacheSummary overwrites the cached totals/byRoom snapshot
	CacheSummary(ctx context.Context, inspectionID string, summary inspection.Summary) error

	// MarkCompleted flips the record to completed. completedAt is set only
	// the first time; repeated completions keep the original stamp.
	MarkCompleted(ctx context.Context, inspectionID, updatedBy, timestamp string) error

	// Reopen flips a completed record back to in-progress and removes
	// completedAt entirely so it drops out of the completed index.
	Reopen(ctx context.Context, inspectionID, updatedBy, timestamp string) error

	// List returns the top completedLimit completed inspections by
	// completedAt descending plus every ongoing inspection. A limit of 0
	// skips the completed list; a negative limit means unbounded.
	List(ctx context.Context, completedLimit int) (*InspectionLists, error)

	// Delete removes the metadata record
	Delete(ctx context.Context, inspectionID string) error
}

// VenueStore defines the interface for venue definition persistence
type VenueStore interface {
	// Get reads a venue definition. Returns (nil, nil) when the venue does
	// not exist; a transient read failure propagates as an error and must
	// not be collapsed into "no venue".
	Get(ctx context.Context, venueID string) (*inspection.Venue, error)

	// Put stores a venue definition
	Put(ctx context.Context, venue *inspection.Venue) error

	// ListAll returns every venue definition
	ListAll(ctx context.Context) ([]inspection.Venue, error)
}
