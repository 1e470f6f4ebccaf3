package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarterlog/quarterlog/internal/domain"
)

// stubStore serves hand-crafted workblocks and intervals for
// aggregation tests, where exact durations matter.
type stubStore struct {
	workblocks map[int64]domain.Workblock
	intervals  map[int64][]domain.Interval
	order      []int64
}

func newStubStore() *stubStore {
	return &stubStore{
		workblocks: make(map[int64]domain.Workblock),
		intervals:  make(map[int64][]domain.Interval),
	}
}

func (s *stubStore) addWorkblock(wb domain.Workblock, intervals ...domain.Interval) {
	s.workblocks[wb.ID] = wb
	s.intervals[wb.ID] = intervals
	s.order = append(s.order, wb.ID)
}

func (s *stubStore) Workblock(_ context.Context, id int64) (*domain.Workblock, error) {
	wb, ok := s.workblocks[id]
	if !ok {
		return nil, domain.ErrWorkblockNotFound
	}
	return &wb, nil
}

func (s *stubStore) ActiveWorkblock(context.Context) (*domain.Workblock, error) {
	return nil, nil
}

func (s *stubStore) WorkblocksForDate(_ context.Context, date string) ([]domain.Workblock, error) {
	var result []domain.Workblock
	for _, id := range s.order {
		if s.workblocks[id].Date == date {
			result = append(result, s.workblocks[id])
		}
	}
	return result, nil
}

func (s *stubStore) AddInterval(context.Context, int64, int) (*domain.Interval, error) {
	panic("not used")
}

func (s *stubStore) RecordInterval(context.Context, int64, string, domain.IntervalStatus) (*domain.Interval, error) {
	panic("not used")
}

func (s *stubStore) Interval(context.Context, int64) (*domain.Interval, error) {
	panic("not used")
}

func (s *stubStore) CurrentInterval(context.Context, int64) (*domain.Interval, error) {
	return nil, nil
}

func (s *stubStore) IntervalsForWorkblock(_ context.Context, workblockID int64) ([]domain.Interval, error) {
	return s.intervals[workblockID], nil
}

func at(base time.Time, minutes int) time.Time {
	return base.Add(time.Duration(minutes) * time.Minute)
}

func atPtr(base time.Time, minutes int) *time.Time {
	t := at(base, minutes)
	return &t
}

func recordedInterval(id, wbID int64, number int, base time.Time, startMin, endMin int, content string) domain.Interval {
	return domain.Interval{
		ID:          id,
		WorkblockID: wbID,
		Number:      number,
		StartTime:   at(base, startMin),
		EndTime:     atPtr(base, endMin),
		Content:     content,
		Status:      domain.IntervalRecorded,
	}
}

func TestWorkblockVisualization_Timeline(t *testing.T) {
	store := newStubStore()
	base := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	store.addWorkblock(
		domain.Workblock{ID: 1, Date: "2026-08-30", StartTime: base, DurationMinutes: 30, Status: domain.StatusCompleted},
		recordedInterval(10, 1, 1, base, 0, 15, "coding"),
		recordedInterval(11, 1, 2, base, 15, 30, "review"),
	)

	agg := NewAggregator(store, store, 15*time.Minute)
	viz, err := agg.WorkblockVisualization(context.Background(), 1)

	require.NoError(t, err)
	require.Len(t, viz.Timeline, 2)
	assert.Equal(t, 1, viz.Timeline[0].Number)
	assert.Equal(t, 15, viz.Timeline[0].DurationMinutes)
	assert.Equal(t, "coding", viz.Timeline[0].Content)
	assert.False(t, viz.Timeline[0].Cancelled)
	assert.Equal(t, "review", viz.Timeline[1].Content)
}

func TestWorkblockVisualization_GroupsNormalizedContent(t *testing.T) {
	store := newStubStore()
	base := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	store.addWorkblock(
		domain.Workblock{ID: 1, Date: "2026-08-30", StartTime: base, DurationMinutes: 45, Status: domain.StatusCompleted},
		recordedInterval(10, 1, 1, base, 0, 15, "Coding"),
		recordedInterval(11, 1, 2, base, 15, 30, "  coding "),
		recordedInterval(12, 1, 3, base, 30, 45, "Meeting"),
	)

	agg := NewAggregator(store, store, 15*time.Minute)
	viz, err := agg.WorkblockVisualization(context.Background(), 1)

	require.NoError(t, err)
	require.Len(t, viz.Activity, 2)
	assert.Equal(t, "coding", viz.Activity[0].Content)
	assert.Equal(t, 30, viz.Activity[0].TotalMinutes)
	assert.InDelta(t, 66.7, viz.Activity[0].Percentage, 0.1)
	assert.Equal(t, "meeting", viz.Activity[1].Content)
	assert.InDelta(t, 33.3, viz.Activity[1].Percentage, 0.1)

	require.Len(t, viz.PhraseFrequency, 2)
	assert.Equal(t, "coding", viz.PhraseFrequency[0].Phrase)
	assert.Equal(t, 2, viz.PhraseFrequency[0].Count)
}

func TestWorkblockVisualization_WholePhraseCountsOnce(t *testing.T) {
	store := newStubStore()
	base := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	store.addWorkblock(
		domain.Workblock{ID: 1, Date: "2026-08-30", StartTime: base, DurationMinutes: 30, Status: domain.StatusCompleted},
		recordedInterval(10, 1, 1, base, 0, 15, "code review"),
		recordedInterval(11, 1, 2, base, 15, 30, "code"),
	)

	agg := NewAggregator(store, store, 15*time.Minute)
	viz, err := agg.WorkblockVisualization(context.Background(), 1)

	require.NoError(t, err)
	// "code review" is one phrase, not folded into "code"
	require.Len(t, viz.PhraseFrequency, 2)
	for _, pc := range viz.PhraseFrequency {
		assert.Equal(t, 1, pc.Count)
	}
}

func TestWorkblockVisualization_OpenIntervalDefaultsToSliceLength(t *testing.T) {
	store := newStubStore()
	base := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	store.addWorkblock(
		domain.Workblock{ID: 1, Date: "2026-08-30", StartTime: base, DurationMinutes: 60, Status: domain.StatusActive},
		domain.Interval{ID: 10, WorkblockID: 1, Number: 1, StartTime: base, Status: domain.IntervalPending},
	)

	agg := NewAggregator(store, store, 15*time.Minute)
	viz, err := agg.WorkblockVisualization(context.Background(), 1)

	require.NoError(t, err)
	require.Len(t, viz.Timeline, 1)
	assert.Equal(t, 15, viz.Timeline[0].DurationMinutes)
	assert.Nil(t, viz.Timeline[0].EndTime)
}

func TestWorkblockVisualization_ZeroTotalYieldsZeroPercentage(t *testing.T) {
	store := newStubStore()
	base := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	store.addWorkblock(
		domain.Workblock{ID: 1, Date: "2026-08-30", StartTime: base, DurationMinutes: 15, Status: domain.StatusCompleted},
		recordedInterval(10, 1, 1, base, 0, 0, "blink"),
	)

	agg := NewAggregator(store, store, 15*time.Minute)
	viz, err := agg.WorkblockVisualization(context.Background(), 1)

	require.NoError(t, err)
	require.Len(t, viz.Activity, 1)
	assert.Equal(t, 0, viz.Activity[0].TotalMinutes)
	assert.Equal(t, 0.0, viz.Activity[0].Percentage)
}

func TestWorkblockVisualization_CancelledTrailingIntervalsExcluded(t *testing.T) {
	store := newStubStore()
	base := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	store.addWorkblock(
		domain.Workblock{
			ID:              1,
			Date:            "2026-08-30",
			StartTime:       base,
			EndTime:         atPtr(base, 20),
			DurationMinutes: 20,
			Status:          domain.StatusCancelled,
		},
		recordedInterval(10, 1, 1, base, 0, 15, "coding"),
		domain.Interval{ID: 11, WorkblockID: 1, Number: 2, StartTime: at(base, 15), Status: domain.IntervalPending},
		domain.Interval{ID: 12, WorkblockID: 1, Number: 3, StartTime: at(base, 25), Status: domain.IntervalPending},
	)

	agg := NewAggregator(store, store, 15*time.Minute)
	viz, err := agg.WorkblockVisualization(context.Background(), 1)

	require.NoError(t, err)
	// Interval 3 started after cancellation and is dropped; the last
	// retained interval carries the cancelled flag
	require.Len(t, viz.Timeline, 2)
	assert.False(t, viz.Timeline[0].Cancelled)
	assert.Equal(t, 2, viz.Timeline[1].Number)
	assert.True(t, viz.Timeline[1].Cancelled)
}

func TestDailyAggregate_MergesWorkblocksChronologically(t *testing.T) {
	store := newStubStore()
	base := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	store.addWorkblock(
		domain.Workblock{ID: 1, Date: "2026-08-30", StartTime: base, DurationMinutes: 30, Status: domain.StatusCompleted},
		recordedInterval(10, 1, 1, base, 0, 15, "coding"),
		recordedInterval(11, 1, 2, base, 15, 30, "coding"),
	)
	store.addWorkblock(
		domain.Workblock{ID: 2, Date: "2026-08-30", StartTime: at(base, 120), DurationMinutes: 15, Status: domain.StatusCompleted},
		recordedInterval(20, 2, 1, base, 120, 135, "email"),
	)

	agg := NewAggregator(store, store, 15*time.Minute)
	aggregate, err := agg.DailyAggregate(context.Background(), "2026-08-30")

	require.NoError(t, err)
	assert.Equal(t, 2, aggregate.TotalWorkblocks)
	assert.Equal(t, 45, aggregate.TotalMinutes)
	require.Len(t, aggregate.Timeline, 3)
	assert.Equal(t, int64(1), aggregate.Timeline[0].WorkblockID)
	assert.Equal(t, int64(2), aggregate.Timeline[2].WorkblockID)
	assert.True(t, aggregate.Timeline[0].StartTime.Before(aggregate.Timeline[2].StartTime))

	require.Len(t, aggregate.Activity, 2)
	assert.Equal(t, "coding", aggregate.Activity[0].Content)
	assert.Equal(t, 30, aggregate.Activity[0].TotalMinutes)
}

func TestDailyAggregate_EmptyDate(t *testing.T) {
	store := newStubStore()

	agg := NewAggregator(store, store, 15*time.Minute)
	aggregate, err := agg.DailyAggregate(context.Background(), "2026-01-01")

	require.NoError(t, err)
	assert.Equal(t, 0, aggregate.TotalWorkblocks)
	assert.Equal(t, 0, aggregate.TotalMinutes)
	assert.Empty(t, aggregate.Timeline)
}

func TestDailyVisualization_PreservesWorkblockOrder(t *testing.T) {
	store := newStubStore()
	base := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	for i := int64(1); i <= 3; i++ {
		store.addWorkblock(
			domain.Workblock{ID: i, Date: "2026-08-30", StartTime: at(base, int(i)*60), DurationMinutes: 15, Status: domain.StatusCompleted},
			recordedInterval(i*10, i, 1, base, int(i)*60, int(i)*60+15, "work"),
		)
	}

	agg := NewAggregator(store, store, 15*time.Minute)
	viz, err := agg.DailyVisualization(context.Background(), "2026-08-30")

	require.NoError(t, err)
	require.Len(t, viz.Workblocks, 3)
	for i, wbViz := range viz.Workblocks {
		assert.Equal(t, int64(i+1), wbViz.WorkblockID)
	}
	assert.Equal(t, 3, viz.Aggregate.TotalWorkblocks)
}
