// Package inspection holds the pure core of the venue-inspection domain:
// checklist item records, per-inspection metadata, summary aggregation and
// the completeness predicate. Nothing in this package touches storage.
package inspection

import "strings"

// Status represents the recorded result of a single checklist item
type Status string

const (
	StatusPass    Status = "pass"
	StatusFail    Status = "fail"
	StatusNA      Status = "na"
	StatusPending Status = "pending"
)

// MetadataStatus represents the lifecycle state of an inspection
type MetadataStatus string

const (
	InspectionInProgress MetadataStatus = "in-progress"
	InspectionCompleted  MetadataStatus = "completed"
)

// NormalizeStatus folds free-text input into one of the four known
// statuses. Matching is case-insensitive; anything unrecognized (including
// the empty string) buckets into pending.
func NormalizeStatus(raw string) Status {
	switch Status(strings.ToLower(strings.TrimSpace(raw))) {
	case StatusPass:
		return StatusPass
	case StatusFail:
		return StatusFail
	case StatusNA:
		return StatusNA
	default:
		return StatusPending
	}
}

// IsPass reports whether the raw status value normalizes to pass
func IsPass(raw string) bool {
	return NormalizeStatus(raw) == StatusPass
}
