package ports

import "time"

// EventSink receives lifecycle notifications from the timer and the
// workblock service. Delivery is best-effort and must never block a
// state transition; implementations tolerate at-most-once delivery.
type EventSink interface {
	IntervalComplete(workblockID, intervalID int64, number int)
	AutoAway(intervalID int64)
	WorkblockComplete(workblockID int64)
	PromptShow(intervalID int64)
	PromptHide()
}

// NopSink discards all events
type NopSink struct{}

func (NopSink) IntervalComplete(int64, int64, int) {}
func (NopSink) AutoAway(int64)                     {}
func (NopSink) WorkblockComplete(int64)            {}
func (NopSink) PromptShow(int64)                   {}
func (NopSink) PromptHide()                        {}

// Clock abstracts wall-clock reads for testability
type Clock interface {
	Now() time.Time
}

// SystemClock reads the real wall clock
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
