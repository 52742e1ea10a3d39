package domain

import "time"

// EventType enumerates the recognized bot reply outcomes. There is
// deliberately no UNKNOWN variant: messages that match no pattern are skipped
// at extraction time, never emitted.
type EventType string

const (
	EventEnhanceSuccess  EventType = "enhance_success"
	EventEnhanceKeep     EventType = "enhance_keep"
	EventEnhanceBreak    EventType = "enhance_break"
	EventSell            EventType = "sell"
	EventBusy            EventType = "busy"
	EventInsufficientGold EventType = "insufficient_gold"
)

// EnhanceOutcomes are the three outcomes counted by the estimator.
var EnhanceOutcomes = []EventType{EventEnhanceSuccess, EventEnhanceKeep, EventEnhanceBreak}

// GameEvent is one reconstructed game event. Produced once by the extractor
// and afterwards only enriched (tree ids backfilled), never reinterpreted.
//
// BUSY and INSUFFICIENT_GOLD never carry item fields. For ENHANCE_SUCCESS with
// both items known, ItemAfter.Level == ItemBefore.Level+1.
type GameEvent struct {
	Type EventType `json:"type"`

	GoldAfter *int `json:"gold_after,omitempty"`
	Cost      *int `json:"cost,omitempty"`   // enhance/break spend
	Reward    *int `json:"reward,omitempty"` // sell income

	ItemBefore *Item `json:"item_before,omitempty"`
	ItemAfter  *Item `json:"item_after,omitempty"`

	// Source text retained for audit. RawAux holds the auxiliary message a
	// lookahead merged in (break notice, gold guidance).
	RawMain string `json:"raw_main,omitempty"`
	RawAux  string `json:"raw_aux,omitempty"`

	Timestamp time.Time `json:"ts"`
}

// GoldBefore derives the gold held before the event from the after-balance
// and the amount spent; nil when either side is unknown.
func (e GameEvent) GoldBefore() *int {
	if e.GoldAfter == nil || e.Cost == nil {
		return nil
	}
	v := *e.GoldAfter + *e.Cost
	return &v
}

// IsEnhance reports whether the event is one of the three enhancement
// outcomes.
func (e GameEvent) IsEnhance() bool {
	switch e.Type {
	case EventEnhanceSuccess, EventEnhanceKeep, EventEnhanceBreak:
		return true
	}
	return false
}

// IsTerminal reports whether the event closes an item track (the physical
// item stops existing as itself: sold, or shattered and replaced).
func (e GameEvent) IsTerminal() bool {
	return e.Type == EventSell || e.Type == EventEnhanceBreak
}

// CarriesItems reports whether this event kind may carry item fields at all.
func (e GameEvent) CarriesItems() bool {
	return e.IsEnhance() || e.Type == EventSell
}
