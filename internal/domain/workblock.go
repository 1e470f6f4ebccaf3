package domain

import (
	"strings"
	"time"
)

// WorkblockStatus represents the lifecycle state of a workblock
type WorkblockStatus string

const (
	StatusActive    WorkblockStatus = "active"
	StatusCompleted WorkblockStatus = "completed"
	StatusCancelled WorkblockStatus = "cancelled"
)

// IntervalStatus represents the outcome of a single interval
type IntervalStatus string

const (
	IntervalPending  IntervalStatus = "pending"
	IntervalRecorded IntervalStatus = "recorded"
	IntervalAutoAway IntervalStatus = "auto_away"
)

// AwayContent is the sentinel recorded when the grace window expires
// without a user submission.
const AwayContent = "Away from workspace"

// DateFormat is the calendar-date key used for grouping and archival.
const DateFormat = "2006-01-02"

// Workblock represents one user-initiated work session (domain entity)
type Workblock struct {
	ID              int64
	Date            string // YYYY-MM-DD, local calendar date of the start
	StartTime       time.Time
	EndTime         *time.Time
	DurationMinutes int
	Status          WorkblockStatus
	IsArchived      bool
	CreatedAt       time.Time
}

// Interval represents one time-slice within a workblock, numbered from 1
type Interval struct {
	ID          int64
	WorkblockID int64
	Number      int
	StartTime   time.Time
	EndTime     *time.Time
	Content     string
	Status      IntervalStatus
	RecordedAt  *time.Time
}

// DailyArchive is the finalized summary of one calendar date
type DailyArchive struct {
	ID              int64
	Date            string
	TotalWorkblocks int
	TotalMinutes    int
	Visualization   []byte // serialized DailyVisualization
	ArchivedAt      time.Time
}

// TotalIntervals returns how many full slices fit in a planned duration.
// A trailing partial slice is not scheduled.
func TotalIntervals(durationMinutes int, slice time.Duration) int {
	if slice <= 0 || durationMinutes <= 0 {
		return 0
	}
	return int(time.Duration(durationMinutes) * time.Minute / slice)
}

// IsLastInterval reports whether the given interval number is the final
// slice of a workblock with the given planned duration.
func IsLastInterval(number, durationMinutes int, slice time.Duration) bool {
	total := TotalIntervals(durationMinutes, slice)
	return total > 0 && number >= total
}

// NormalizeContent canonicalizes interval content for aggregation:
// lower-cased and trimmed, with the whole phrase treated as one unit.
func NormalizeContent(content string) string {
	return strings.TrimSpace(strings.ToLower(content))
}
