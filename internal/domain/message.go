package domain

import "time"

// Message is one normalized chat record. Acquisition (chat export readers,
// clipboard capture) happens outside the core; the pipeline only consumes this
// shape. Ordering by (Timestamp, Seq) is the canonical processing order; Seq
// disambiguates messages sharing a timestamp.
type Message struct {
	Timestamp time.Time `json:"ts"`
	Seq       int       `json:"seq"`
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
}
