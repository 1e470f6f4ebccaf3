package services

import (
	"time"

	"github.com/quarterlog/quarterlog/internal/domain"
)

// TimerSnapshot is a point-in-time copy of the in-memory timer state
type TimerSnapshot struct {
	WorkblockID    int64
	IntervalID     int64
	IntervalNumber int
	TotalIntervals int
	IntervalStart  time.Time
	PromptShownAt  time.Time
	Running        bool
}

// SubmitResult contains the outcome of recording an interval entry
type SubmitResult struct {
	Interval *domain.Interval
	// IsLast reports whether the recorded interval was the final one,
	// in which case the workblock was completed as part of the submit.
	IsLast    bool
	Workblock *domain.Workblock
}
