package services

import (
	"context"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/quarterlog/quarterlog/internal/domain"
	"github.com/quarterlog/quarterlog/internal/ports"
)

// Aggregator builds visualization data from stored workblocks and
// intervals.
type Aggregator struct {
	workblocks ports.WorkblockReader
	intervals  ports.IntervalStore
	slice      time.Duration
}

// NewAggregator creates a new Aggregator
func NewAggregator(
	workblocks ports.WorkblockReader,
	intervals ports.IntervalStore,
	slice time.Duration,
) *Aggregator {
	return &Aggregator{
		workblocks: workblocks,
		intervals:  intervals,
		slice:      slice,
	}
}

// WorkblockVisualization builds the timeline, activity breakdown and
// phrase frequency for a single workblock.
func (a *Aggregator) WorkblockVisualization(ctx context.Context, workblockID int64) (*domain.WorkblockVisualization, error) {
	workblock, err := a.workblocks.Workblock(ctx, workblockID)
	if err != nil {
		return nil, err
	}

	intervals, err := a.intervals.IntervalsForWorkblock(ctx, workblockID)
	if err != nil {
		return nil, err
	}

	intervals = retainBeforeCancellation(workblock, intervals)
	lastNumber := cancelledIntervalNumber(workblock, intervals)

	timeline := make([]domain.TimelineEntry, 0, len(intervals))
	activity := newActivityTally()
	for _, interval := range intervals {
		duration := a.intervalMinutes(interval)
		timeline = append(timeline, domain.TimelineEntry{
			Number:          interval.Number,
			StartTime:       interval.StartTime,
			EndTime:         interval.EndTime,
			Content:         interval.Content,
			DurationMinutes: duration,
			Cancelled:       lastNumber == interval.Number,
		})
		activity.add(interval.Content, duration)
	}

	return &domain.WorkblockVisualization{
		WorkblockID:     workblockID,
		Timeline:        timeline,
		Activity:        activity.entries(),
		PhraseFrequency: activity.frequency(),
	}, nil
}

// DailyAggregate merges every workblock of a date into a single
// chronological timeline with day-wide activity totals.
func (a *Aggregator) DailyAggregate(ctx context.Context, date string) (*domain.DailyAggregate, error) {
	workblocks, err := a.workblocks.WorkblocksForDate(ctx, date)
	if err != nil {
		return nil, err
	}

	var timeline []domain.DayTimelineEntry
	activity := newActivityTally()
	totalMinutes := 0

	for _, workblock := range workblocks {
		totalMinutes += workblock.DurationMinutes

		intervals, err := a.intervals.IntervalsForWorkblock(ctx, workblock.ID)
		if err != nil {
			return nil, err
		}

		intervals = retainBeforeCancellation(&workblock, intervals)
		lastNumber := cancelledIntervalNumber(&workblock, intervals)

		for _, interval := range intervals {
			duration := a.intervalMinutes(interval)
			timeline = append(timeline, domain.DayTimelineEntry{
				WorkblockID: workblock.ID,
				TimelineEntry: domain.TimelineEntry{
					Number:          interval.Number,
					StartTime:       interval.StartTime,
					EndTime:         interval.EndTime,
					Content:         interval.Content,
					DurationMinutes: duration,
					Cancelled:       lastNumber == interval.Number,
				},
			})
			activity.add(interval.Content, duration)
		}
	}

	sort.SliceStable(timeline, func(i, j int) bool {
		return timeline[i].StartTime.Before(timeline[j].StartTime)
	})

	return &domain.DailyAggregate{
		TotalWorkblocks: len(workblocks),
		TotalMinutes:    totalMinutes,
		Timeline:        timeline,
		Activity:        activity.entries(),
		PhraseFrequency: activity.frequency(),
	}, nil
}

// DailyVisualization builds per-workblock visualizations plus the daily
// aggregate. Workblock visualizations are computed concurrently, order
// preserved.
func (a *Aggregator) DailyVisualization(ctx context.Context, date string) (*domain.DailyVisualization, error) {
	workblocks, err := a.workblocks.WorkblocksForDate(ctx, date)
	if err != nil {
		return nil, err
	}

	visualizations := make([]domain.WorkblockVisualization, len(workblocks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	for i, workblock := range workblocks {
		g.Go(func() error {
			viz, err := a.WorkblockVisualization(gctx, workblock.ID)
			if err != nil {
				return err
			}
			visualizations[i] = *viz
			return nil
		})
	}

	var aggregate *domain.DailyAggregate
	g.Go(func() error {
		var err error
		aggregate, err = a.DailyAggregate(gctx, date)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &domain.DailyVisualization{
		Workblocks: visualizations,
		Aggregate:  *aggregate,
	}, nil
}

// intervalMinutes returns the recorded duration of an interval, or the
// full slice length when it was never closed.
func (a *Aggregator) intervalMinutes(interval domain.Interval) int {
	if interval.EndTime == nil {
		return int(a.slice.Minutes())
	}
	return int(interval.EndTime.Sub(interval.StartTime).Minutes())
}

// retainBeforeCancellation drops intervals created after a cancelled
// workblock ended. Other statuses pass through untouched.
func retainBeforeCancellation(workblock *domain.Workblock, intervals []domain.Interval) []domain.Interval {
	if workblock.Status != domain.StatusCancelled || workblock.EndTime == nil {
		return intervals
	}

	kept := intervals[:0]
	for _, interval := range intervals {
		if !interval.StartTime.After(*workblock.EndTime) {
			kept = append(kept, interval)
		}
	}
	return kept
}

// cancelledIntervalNumber returns the interval number to flag as
// cancelled, or 0 when the workblock was not cancelled.
func cancelledIntervalNumber(workblock *domain.Workblock, intervals []domain.Interval) int {
	if workblock.Status != domain.StatusCancelled {
		return 0
	}
	last := 0
	for _, interval := range intervals {
		if interval.Number > last {
			last = interval.Number
		}
	}
	return last
}

// activityTally accumulates per-phrase minutes and occurrence counts,
// keyed by normalized content. Empty content is ignored.
type activityTally struct {
	minutes map[string]int
	counts  map[string]int
}

func newActivityTally() *activityTally {
	return &activityTally{
		minutes: make(map[string]int),
		counts:  make(map[string]int),
	}
}

func (t *activityTally) add(content string, minutes int) {
	normalized := domain.NormalizeContent(content)
	if normalized == "" {
		return
	}
	t.minutes[normalized] += minutes
	t.counts[normalized]++
}

// entries returns the activity breakdown sorted by minutes descending,
// ties broken alphabetically for stable output.
func (t *activityTally) entries() []domain.ActivityEntry {
	total := 0
	for _, m := range t.minutes {
		total += m
	}

	result := make([]domain.ActivityEntry, 0, len(t.minutes))
	for content, minutes := range t.minutes {
		percentage := 0.0
		if total > 0 {
			percentage = float64(minutes) / float64(total) * 100.0
		}
		result = append(result, domain.ActivityEntry{
			Content:      content,
			TotalMinutes: minutes,
			Percentage:   percentage,
		})
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].TotalMinutes != result[j].TotalMinutes {
			return result[i].TotalMinutes > result[j].TotalMinutes
		}
		return result[i].Content < result[j].Content
	})
	return result
}

// frequency returns phrase counts sorted by count descending, ties
// broken alphabetically. A whole phrase counts as one unit.
func (t *activityTally) frequency() []domain.PhraseCount {
	result := make([]domain.PhraseCount, 0, len(t.counts))
	for phrase, count := range t.counts {
		result = append(result, domain.PhraseCount{
			Phrase: phrase,
			Count:  count,
		})
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Phrase < result[j].Phrase
	})
	return result
}
