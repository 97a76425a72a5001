package inspection

// Summarize buckets every item record into totals and a per-room
// breakdown. This is a single linear scan: the cost is O(item count) per
// call, which is fine because it runs once per save batch and list requests
// read the cached copy instead.
//
// Records without an item id are ignored entirely; records without a room
// id still count toward the totals but have no room bucket to land in.
func Summarize(items []Item) Summary {
	summary := Summary{ByRoom: map[string]StatusCounts{}}

	for _, it := range items {
		if it.ItemID == "" {
			continue
		}

		status := NormalizeStatus(it.Status)
		summary.Totals.Add(status)

		if it.RoomID == "" {
			continue
		}

		room := summary.ByRoom[it.RoomID]
		room.Add(status)
		summary.ByRoom[it.RoomID] = room
	}

	return summary
}
