package inspection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarizeBucketsByStatusAndRoom(t *testing.T) {
	items := []Item{
		{ItemID: "i1", RoomID: "r1", Status: "pass"},
		{ItemID: "i2", RoomID: "r1", Status: "FAIL"},
		{ItemID: "i3", RoomID: "r2", Status: "na"},
		{ItemID: "i4", RoomID: "r2", Status: "pending"},
		{ItemID: "i5", RoomID: "r2", Status: "bogus"},
		{ItemID: "i6", RoomID: "r2", Status: ""},
	}

	s := Summarize(items)

	assert.Equal(t, StatusCounts{Pass: 1, Fail: 1, NA: 1, Pending: 3, Total: 6}, s.Totals)
	require.Len(t, s.ByRoom, 2)
	assert.Equal(t, StatusCounts{Pass: 1, Fail: 1, Total: 2}, s.ByRoom["r1"])
	assert.Equal(t, StatusCounts{NA: 1, Pending: 3, Total: 4}, s.ByRoom["r2"])
}

func TestSummarizeSkipsRecordsWithoutItemID(t *testing.T) {
	items := []Item{
		{ItemID: "", RoomID: "r1", Status: "pass"},
		{ItemID: "i1", RoomID: "r1", Status: "pass"},
	}

	s := Summarize(items)

	assert.Equal(t, 1, s.Totals.Total)
	assert.Equal(t, 1, s.ByRoom["r1"].Total)
}

func TestSummarizeCountsRoomlessItemsInTotalsOnly(t *testing.T) {
	items := []Item{
		{ItemID: "i1", Status: "pass"},
		{ItemID: "i2", RoomID: "r1", Status: "fail"},
	}

	s := Summarize(items)

	assert.Equal(t, 2, s.Totals.Total)
	assert.Len(t, s.ByRoom, 1)
	assert.Equal(t, 1, s.ByRoom["r1"].Total)
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)

	assert.Equal(t, StatusCounts{}, s.Totals)
	assert.Empty(t, s.ByRoom)
}

func TestSummaryTotalsMatchRoomSums(t *testing.T) {
	items := []Item{
		{ItemID: "i1", RoomID: "r1", Status: "pass"},
		{ItemID: "i2", RoomID: "r1", Status: "pass"},
		{ItemID: "i3", RoomID: "r2", Status: "fail"},
	}

	s := Summarize(items)

	roomTotal := 0
	for _, counts := range s.ByRoom {
		roomTotal += counts.Total
	}

	assert.Equal(t, s.Totals.Total, roomTotal)
}
