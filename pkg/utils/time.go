package utils

import "time"

// Clock produces the timestamps stamped onto store records. The save
// orchestrator draws one timestamp per batch from it, so tests can inject a
// fixed clock and assert exact values.
type Clock interface {
	NowISO() string
}

type zoneClock struct {
	loc *time.Location
}

// NewClock returns a clock stamping RFC3339 timestamps in a fixed UTC
// offset. Inspection records have historically been stamped in venue-local
// time rather than UTC, so the offset is configuration, not a constant.
func NewClock(offsetHours int) Clock {
	return zoneClock{loc: time.FixedZone("venue-local", offsetHours*3600)}
}

func (c zoneClock) NowISO() string {
	return time.Now().In(c.loc).Format(time.RFC3339)
}

// FixedClock always returns the same timestamp; test use only
type FixedClock string

func (c FixedClock) NowISO() string {
	return string(c)
}

// ParseTimestamp parses a stored timestamp for sorting. Records written by
// older handlers are not uniformly RFC3339, so unparseable values sort to
// the zero time instead of failing the whole listing.
func ParseTimestamp(s string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}

	return time.Time{}
}
