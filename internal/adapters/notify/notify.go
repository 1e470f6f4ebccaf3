// Package notify decorates an event sink with desktop notifications.
package notify

import (
	"fmt"

	"github.com/gen2brain/beeep"

	"github.com/quarterlog/quarterlog/internal/ports"
	"github.com/quarterlog/quarterlog/logging"
)

// Sink wraps another event sink and raises a desktop notification for
// the events a user away from the terminal should see. Notification
// failures are logged and swallowed; they never affect the wrapped
// sink.
type Sink struct {
	next ports.EventSink
}

// NewSink creates a notifying sink wrapping next
func NewSink(next ports.EventSink) *Sink {
	return &Sink{next: next}
}

func (s *Sink) IntervalComplete(workblockID, intervalID int64, number int) {
	s.notify("Interval complete", fmt.Sprintf("Interval %d is done. What did you work on?", number))
	s.next.IntervalComplete(workblockID, intervalID, number)
}

func (s *Sink) AutoAway(intervalID int64) {
	s.notify("Marked away", "No answer within the grace window; interval recorded as away.")
	s.next.AutoAway(intervalID)
}

func (s *Sink) WorkblockComplete(workblockID int64) {
	s.notify("Workblock complete", "Your workblock has finished. Summary is ready.")
	s.next.WorkblockComplete(workblockID)
}

func (s *Sink) PromptShow(intervalID int64) {
	s.next.PromptShow(intervalID)
}

func (s *Sink) PromptHide() {
	s.next.PromptHide()
}

func (s *Sink) notify(title, message string) {
	if err := beeep.Notify(title, message, ""); err != nil {
		logging.Logger.Warn("Unable to display notification",
			"title", title,
			"error", err)
	}
}
