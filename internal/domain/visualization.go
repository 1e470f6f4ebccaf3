package domain

import "time"

// TimelineEntry is one interval on a workblock timeline
type TimelineEntry struct {
	Number          int        `json:"interval_number"`
	StartTime       time.Time  `json:"start_time"`
	EndTime         *time.Time `json:"end_time,omitempty"`
	Content         string     `json:"content,omitempty"`
	DurationMinutes int        `json:"duration_minutes"`
	Cancelled       bool       `json:"cancelled,omitempty"`
}

// ActivityEntry groups intervals by normalized content
type ActivityEntry struct {
	Content      string  `json:"content"`
	TotalMinutes int     `json:"total_minutes"`
	Percentage   float64 `json:"percentage"`
}

// PhraseCount counts occurrences of one normalized content phrase
type PhraseCount struct {
	Phrase string `json:"phrase"`
	Count  int    `json:"count"`
}

// WorkblockVisualization is the summary view of a single workblock
type WorkblockVisualization struct {
	WorkblockID     int64           `json:"workblock_id"`
	Timeline        []TimelineEntry `json:"timeline"`
	Activity        []ActivityEntry `json:"activity"`
	PhraseFrequency []PhraseCount   `json:"phrase_frequency"`
}

// DayTimelineEntry is a timeline entry in the merged daily view,
// carrying the owning workblock
type DayTimelineEntry struct {
	WorkblockID int64 `json:"workblock_id"`
	TimelineEntry
}

// DailyAggregate merges all of one date's workblocks into a single view
type DailyAggregate struct {
	TotalWorkblocks int                `json:"total_workblocks"`
	TotalMinutes    int                `json:"total_minutes"`
	Timeline        []DayTimelineEntry `json:"timeline"`
	Activity        []ActivityEntry    `json:"activity"`
	PhraseFrequency []PhraseCount      `json:"phrase_frequency"`
}

// DailyVisualization is the full archived payload for one date
type DailyVisualization struct {
	Workblocks []WorkblockVisualization `json:"workblocks"`
	Aggregate  DailyAggregate           `json:"daily_aggregate"`
}
