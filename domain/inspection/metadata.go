package inspection

// StatusCounts is the {pass, fail, na, pending, total} bucket shape used
// both for inspection-wide totals and per-room breakdowns.
type StatusCounts struct {
	Pass    int `json:"pass" dynamodbav:"pass"`
	Fail    int `json:"fail" dynamodbav:"fail"`
	NA      int `json:"na" dynamodbav:"na"`
	Pending int `json:"pending" dynamodbav:"pending"`
	Total   int `json:"total" dynamodbav:"total"`
}

// Add buckets one normalized status into the counts
func (c *StatusCounts) Add(s Status) {
	switch s {
	case StatusPass:
		c.Pass++
	case StatusFail:
		c.Fail++
	case StatusNA:
		c.NA++
	default:
		c.Pending++
	}

	c.Total++
}

// Summary is the aggregate view of an inspection's item records
type Summary struct {
	Totals StatusCounts            `json:"totals"`
	ByRoom map[string]StatusCounts `json:"byRoom"`
}

// Metadata is the denormalized per-inspection record. Totals and ByRoom are
// cached snapshots of the last summary computation; they can be stale
// relative to the item records if the last save partially failed, and
// readers must tolerate that.
//
// CompletedAt follows the sparse-index convention: the field is absent
// entirely while the inspection is in progress and set exactly once when
// completeness first evaluates true.
type Metadata struct {
	InspectionID string                  `json:"inspection_id"`
	VenueID      string                  `json:"venueId,omitempty"`
	VenueName    string                  `json:"venueName,omitempty"`
	Status       MetadataStatus          `json:"status"`
	CreatedBy    string                  `json:"createdBy,omitempty"`
	UpdatedBy    string                  `json:"updatedBy,omitempty"`
	CreatedAt    string                  `json:"createdAt,omitempty"`
	UpdatedAt    string                  `json:"updatedAt,omitempty"`
	CompletedAt  string                  `json:"completedAt,omitempty"`
	Totals       *StatusCounts           `json:"totals,omitempty"`
	ByRoom       map[string]StatusCounts `json:"byRoom,omitempty"`
}

// IsCompleted reports whether the inspection is locked against writes.
// Either signal counts: an explicit completed status, or a completedAt
// stamp left by a previous completion.
func (m *Metadata) IsCompleted() bool {
	if m == nil {
		return false
	}

	return m.Status == InspectionCompleted || m.CompletedAt != ""
}

// MetadataPatch carries the caller-supplied metadata fields of a save.
// Pointer fields distinguish "not provided" from "provided empty": a nil
// VenueName must never overwrite an existing name (merge, not replace).
type MetadataPatch struct {
	VenueID   *string
	VenueName *string
	Status    *string
	CreatedBy string
	UpdatedBy string
}
