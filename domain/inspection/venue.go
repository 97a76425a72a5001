package inspection

// ChecklistItem is one entry in a room's checklist template
type ChecklistItem struct {
	ItemID   string `json:"itemId" dynamodbav:"itemId"`
	ItemName string `json:"itemName,omitempty" dynamodbav:"itemName,omitempty"`
}

// Room groups checklist items within a venue definition
type Room struct {
	RoomID   string          `json:"roomId" dynamodbav:"roomId"`
	RoomName string          `json:"roomName,omitempty" dynamodbav:"roomName,omitempty"`
	Items    []ChecklistItem `json:"items" dynamodbav:"items"`
}

// Venue is the static room/item checklist template an inspection is judged
// against. Only the (roomId, itemId) pairs matter for completeness; names
// are cosmetic.
type Venue struct {
	VenueID   string `json:"venueId" dynamodbav:"venueId"`
	VenueName string `json:"venueName,omitempty" dynamodbav:"venueName,omitempty"`
	Rooms     []Room `json:"rooms" dynamodbav:"rooms"`
	CreatedAt string `json:"createdAt,omitempty" dynamodbav:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty" dynamodbav:"updatedAt,omitempty"`
}

// ExpectedItems flattens the venue's rooms into the ordered list of
// (roomId, itemId) pairs a complete inspection must cover. Entries missing
// either id are skipped; a nil venue yields nil.
func (v *Venue) ExpectedItems() []ItemKey {
	if v == nil {
		return nil
	}

	var expected []ItemKey

	for _, room := range v.Rooms {
		if room.RoomID == "" {
			continue
		}

		for _, it := range room.Items {
			if it.ItemID == "" {
				continue
			}

			expected = append(expected, ItemKey{RoomID: room.RoomID, ItemID: it.ItemID})
		}
	}

	return expected
}
