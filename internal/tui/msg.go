package tui

import (
	"time"

	"github.com/quarterlog/quarterlog/internal/domain"
)

// Timer event messages, forwarded into the program by the Sink.

// IntervalCompleteMsg announces that an interval's slice has elapsed
// and the user should be prompted for an entry.
type IntervalCompleteMsg struct {
	WorkblockID    int64
	IntervalID     int64
	IntervalNumber int
}

// AutoAwayMsg announces that an interval was recorded as away
type AutoAwayMsg struct {
	IntervalID int64
}

// WorkblockCompleteMsg announces that a workblock reached a terminal
// status
type WorkblockCompleteMsg struct {
	WorkblockID int64
}

// PromptShowMsg requests showing the entry prompt
type PromptShowMsg struct {
	IntervalID int64
}

// PromptHideMsg requests dismissing the entry prompt
type PromptHideMsg struct{}

// tickMsg drives the countdown refresh
type tickMsg time.Time

// workblockStartedMsg carries the result of starting a workblock
type workblockStartedMsg struct {
	workblock *domain.Workblock
	err       error
}

// workblockStoppedMsg carries the result of stopping or cancelling
type workblockStoppedMsg struct {
	workblock *domain.Workblock
	err       error
}

// entrySubmittedMsg carries the result of recording an interval entry
type entrySubmittedMsg struct {
	isLast bool
	err    error
}

// summaryLoadedMsg carries the finished workblock visualization
type summaryLoadedMsg struct {
	visualization *domain.WorkblockVisualization
	workblock     *domain.Workblock
	err           error
}

// restoredMsg carries the result of re-adopting an active workblock at
// startup
type restoredMsg struct {
	snapshotRunning bool
	err             error
}

// dayLoadedMsg carries the merged view of a date
type dayLoadedMsg struct {
	date      string
	aggregate *domain.DailyAggregate
	err       error
}
