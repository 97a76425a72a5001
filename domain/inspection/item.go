package inspection

// Item is one recorded checklist result: the unit of work an inspector
// submits. Exactly one record exists per (InspectionID, RoomID, ItemID)
// triple; re-submission overwrites the mutable fields but CreatedAt is set
// once and never touched again.
type Item struct {
	InspectionID string `json:"inspection_id"`
	RoomID       string `json:"roomId"`
	RoomName     string `json:"roomName,omitempty"`
	ItemID       string `json:"itemId"`
	ItemName     string `json:"itemName,omitempty"`
	Status       string `json:"status"`
	Comments     string `json:"comments,omitempty"`
	VenueID      string `json:"venueId,omitempty"`
	VenueName    string `json:"venueName,omitempty"`
	CreatedAt    string `json:"createdAt,omitempty"`
	UpdatedAt    string `json:"updatedAt,omitempty"`
}

// ItemKey identifies a checklist entry within a venue's room structure
type ItemKey struct {
	RoomID string
	ItemID string
}

// Key returns the (room, item) pair the record answers for
func (i Item) Key() ItemKey {
	return ItemKey{RoomID: i.RoomID, ItemID: i.ItemID}
}

// ItemUpdate carries the fields an inspector can set on an item. The
// orchestrator assigns one timestamp per batch, so Update carries none.
type ItemUpdate struct {
	RoomID    string
	RoomName  string
	ItemID    string
	ItemName  string
	Status    string
	Comments  string
	VenueID   *string
	VenueName *string
}
