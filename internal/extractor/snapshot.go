package extractor

import "github.com/hyeonso/EnhanceBot_Go/internal/domain"

// Snapshot is the latest gold and item derivable from an event sequence,
// used by the external control loop to know where the bot stands right now.
type Snapshot struct {
	Gold *int
	Item *domain.Item
}

// CurrentSnapshot folds the event sequence: any non-nil GoldAfter updates the
// gold; any non-nil ItemAfter updates the item (success/keep/sell/break all
// set ItemAfter, so the fold stays consistent across kinds).
func CurrentSnapshot(events []domain.GameEvent) Snapshot {
	var snap Snapshot
	for i := range events {
		if events[i].GoldAfter != nil {
			snap.Gold = events[i].GoldAfter
		}
		if events[i].ItemAfter != nil {
			snap.Item = events[i].ItemAfter
		}
	}
	return snap
}
