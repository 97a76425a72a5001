package inspection

// ReasonNoExpectedItems marks an evaluation against an unknown or empty
// venue definition. Such inspections can never auto-complete: swallowing a
// missing venue into "zero expected items -> complete" would turn a data
// gap into a passed compliance gate.
const ReasonNoExpectedItems = "no expected items found"

// MissingItem is one expected (room, item) pair not satisfied by a PASS
// record. Found carries whatever status was recorded, or "" if nothing was.
type MissingItem struct {
	RoomID string `json:"roomId"`
	ItemID string `json:"itemId"`
	Found  string `json:"found,omitempty"`
}

// CompletenessResult is the outcome of the completeness predicate
type CompletenessResult struct {
	Complete       bool          `json:"complete"`
	Reason         string        `json:"reason,omitempty"`
	Missing        []MissingItem `json:"missing"`
	TotalExpected  int           `json:"total_expected"`
	CompletedCount int           `json:"completed_count"`
}

// EvaluateCompleteness decides whether every expected (room, item) pair has
// been recorded with a PASS status. Completeness is a compliance gate, not
// merely "recorded": fail, na, pending and absent all count as unsatisfied.
// The predicate is pure; it writes nothing.
func EvaluateCompleteness(expected []ItemKey, items []Item) CompletenessResult {
	if len(expected) == 0 {
		return CompletenessResult{
			Complete: false,
			Reason:   ReasonNoExpectedItems,
			Missing:  []MissingItem{},
		}
	}

	recorded := make(map[ItemKey]Status, len(items))
	passCount := 0

	for _, it := range items {
		if it.RoomID == "" || it.ItemID == "" {
			continue
		}

		status := NormalizeStatus(it.Status)
		recorded[it.Key()] = status

		if status == StatusPass {
			passCount++
		}
	}

	missing := []MissingItem{}

	for _, key := range expected {
		status, found := recorded[key]
		if found && status == StatusPass {
			continue
		}

		entry := MissingItem{RoomID: key.RoomID, ItemID: key.ItemID}
		if found {
			entry.Found = string(status)
		}

		missing = append(missing, entry)
	}

	return CompletenessResult{
		Complete:       len(missing) == 0,
		Missing:        missing,
		TotalExpected:  len(expected),
		CompletedCount: passCount,
	}
}
