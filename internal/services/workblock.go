package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/quarterlog/quarterlog/internal/domain"
	"github.com/quarterlog/quarterlog/internal/ports"
	"github.com/quarterlog/quarterlog/logging"
)

// WorkblockService is the application facade: it coordinates the
// repository, the timer and the aggregator for every user-facing
// operation.
type WorkblockService struct {
	repo       ports.WorkblockRepository
	timer      *Timer
	aggregator *Aggregator
	sink       ports.EventSink
	clock      ports.Clock
}

// NewWorkblockService creates a new WorkblockService
func NewWorkblockService(
	repo ports.WorkblockRepository,
	timer *Timer,
	aggregator *Aggregator,
	sink ports.EventSink,
	clock ports.Clock,
) *WorkblockService {
	return &WorkblockService{
		repo:       repo,
		timer:      timer,
		aggregator: aggregator,
		sink:       sink,
		clock:      clock,
	}
}

// Start creates a workblock and begins its interval cycle. Only one
// workblock may be active at a time.
func (s *WorkblockService) Start(ctx context.Context, durationMinutes int) (*domain.Workblock, error) {
	if domain.TotalIntervals(durationMinutes, s.timer.Slice()) <= 0 {
		return nil, fmt.Errorf("%w: %d minutes with %s slices", domain.ErrInvalidDuration, durationMinutes, s.timer.Slice())
	}

	// Day rollover happens before any new work is accepted
	if _, err := s.CheckAndResetDaily(ctx); err != nil {
		return nil, fmt.Errorf("daily reset failed: %w", err)
	}

	active, err := s.repo.ActiveWorkblock(ctx)
	if err != nil {
		return nil, err
	}
	if active != nil {
		return nil, fmt.Errorf("%w: workblock %d", domain.ErrWorkblockActive, active.ID)
	}

	workblock, err := s.repo.CreateWorkblock(ctx, durationMinutes)
	if err != nil {
		return nil, err
	}

	if err := s.timer.Start(ctx, workblock); err != nil {
		// Roll back so a dead workblock doesn't block future starts
		if _, cancelErr := s.repo.CancelWorkblock(ctx, workblock.ID); cancelErr != nil {
			logging.Logger.Error("Failed to roll back workblock after timer error",
				"workblock_id", workblock.ID,
				"error", cancelErr)
		}
		return nil, err
	}

	logging.Logger.Info("Workblock started",
		"workblock_id", workblock.ID,
		"duration_minutes", durationMinutes)
	return workblock, nil
}

// Stop completes the active workblock early
func (s *WorkblockService) Stop(ctx context.Context) (*domain.Workblock, error) {
	active, err := s.requireActive(ctx)
	if err != nil {
		return nil, err
	}

	workblock, err := s.timer.Complete(ctx, active.ID)
	if errors.Is(err, domain.ErrTimerMismatch) {
		// This process's timer never owned the workblock; finish it in
		// the store directly.
		workblock, err = s.repo.CompleteWorkblock(ctx, active.ID)
		if err == nil {
			s.sink.WorkblockComplete(active.ID)
		}
	}
	return workblock, err
}

// Cancel abandons the active workblock
func (s *WorkblockService) Cancel(ctx context.Context) (*domain.Workblock, error) {
	active, err := s.requireActive(ctx)
	if err != nil {
		return nil, err
	}

	workblock, err := s.timer.Cancel(ctx, active.ID)
	if errors.Is(err, domain.ErrTimerMismatch) {
		workblock, err = s.repo.CancelWorkblock(ctx, active.ID)
		if err == nil {
			s.sink.WorkblockComplete(active.ID)
		}
	}
	return workblock, err
}

func (s *WorkblockService) requireActive(ctx context.Context) (*domain.Workblock, error) {
	active, err := s.repo.ActiveWorkblock(ctx)
	if err != nil {
		return nil, err
	}
	if active == nil {
		return nil, fmt.Errorf("%w: no active workblock", domain.ErrWorkblockNotFound)
	}
	return active, nil
}

// Submit records the user's entry for an interval. Submitting the final
// interval completes the workblock.
func (s *WorkblockService) Submit(ctx context.Context, intervalID int64, content string) (*SubmitResult, error) {
	s.timer.CancelAutoAway()

	interval, err := s.repo.RecordInterval(ctx, intervalID, content, domain.IntervalRecorded)
	if err != nil {
		return nil, err
	}

	isLast, err := s.timer.IsLastInterval(ctx, interval.WorkblockID, interval.Number)
	if err != nil {
		return nil, err
	}

	result := &SubmitResult{Interval: interval, IsLast: isLast}

	if !isLast {
		s.sink.PromptHide()
		return result, nil
	}

	workblock, err := s.timer.Complete(ctx, interval.WorkblockID)
	if errors.Is(err, domain.ErrTimerMismatch) {
		// Timer doesn't own this workblock (e.g. submit from another
		// process); complete it directly.
		workblock, err = s.repo.CompleteWorkblock(ctx, interval.WorkblockID)
		if err == nil {
			s.sink.WorkblockComplete(interval.WorkblockID)
		}
	}
	if err != nil {
		return nil, err
	}

	result.Workblock = workblock
	logging.Logger.Info("Final interval recorded, workblock completed",
		"workblock_id", interval.WorkblockID)
	return result, nil
}

// ShowPrompt announces the prompt for an interval and arms the
// grace-window timer.
func (s *WorkblockService) ShowPrompt(intervalID int64) {
	s.sink.PromptShow(intervalID)
	s.timer.StartAutoAway(intervalID)
}

// HidePrompt dismisses the prompt without recording anything. The
// grace-window timer keeps running so the interval can still auto-away.
func (s *WorkblockService) HidePrompt() {
	s.sink.PromptHide()
}

// AutoAwayNow records the away sentinel immediately, without waiting
// for the grace window.
func (s *WorkblockService) AutoAwayNow(ctx context.Context, intervalID int64) error {
	s.timer.CancelAutoAway()
	return s.timer.MarkAway(ctx, intervalID)
}

// Restore re-adopts an active workblock after a restart
func (s *WorkblockService) Restore(ctx context.Context) error {
	return s.timer.Restore(ctx)
}

// CheckAndResetDaily archives old data when the calendar day has
// changed. Returns the archived date, or "" when nothing was done.
func (s *WorkblockService) CheckAndResetDaily(ctx context.Context) (string, error) {
	today := s.clock.Now().Format(domain.DateFormat)

	stale, err := s.repo.StaleActiveDate(ctx, today)
	if err != nil {
		return "", err
	}
	if stale != "" {
		logging.Logger.Info("Stale active workblock found, archiving day", "date", stale)
		if _, err := s.ArchiveDay(ctx, stale); err != nil {
			return "", err
		}
		if err := s.repo.ForceCompleteActiveBefore(ctx, today); err != nil {
			return "", err
		}
		return stale, nil
	}

	yesterday := s.clock.Now().AddDate(0, 0, -1).Format(domain.DateFormat)
	count, err := s.repo.UnarchivedCount(ctx, yesterday)
	if err != nil {
		return "", err
	}
	if count > 0 {
		logging.Logger.Info("Unarchived workblocks from yesterday, archiving", "date", yesterday)
		if _, err := s.ArchiveDay(ctx, yesterday); err != nil {
			return "", err
		}
		return yesterday, nil
	}

	return "", nil
}

// ArchiveDay snapshots a date into the daily archive: totals plus the
// full visualization JSON. Re-archiving a date replaces the snapshot.
func (s *WorkblockService) ArchiveDay(ctx context.Context, date string) (*domain.DailyArchive, error) {
	workblocks, err := s.repo.WorkblocksForDate(ctx, date)
	if err != nil {
		return nil, err
	}
	if len(workblocks) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrArchiveEmpty, date)
	}

	if err := s.repo.MarkArchived(ctx, date); err != nil {
		return nil, err
	}

	totalMinutes := 0
	for _, workblock := range workblocks {
		totalMinutes += workblock.DurationMinutes
	}

	visualization, err := s.aggregator.DailyVisualization(ctx, date)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(visualization)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal visualization: %w", err)
	}

	archive, err := s.repo.SaveArchive(ctx, domain.DailyArchive{
		Date:            date,
		TotalWorkblocks: len(workblocks),
		TotalMinutes:    totalMinutes,
		Visualization:   data,
	})
	if err != nil {
		return nil, err
	}

	logging.Logger.Info("Day archived",
		"date", date,
		"total_workblocks", archive.TotalWorkblocks,
		"total_minutes", archive.TotalMinutes)
	return archive, nil
}

// ActiveWorkblock returns the active workblock, or nil when none
func (s *WorkblockService) ActiveWorkblock(ctx context.Context) (*domain.Workblock, error) {
	return s.repo.ActiveWorkblock(ctx)
}

// Workblock returns a workblock by id
func (s *WorkblockService) Workblock(ctx context.Context, id int64) (*domain.Workblock, error) {
	return s.repo.Workblock(ctx, id)
}

// WorkblocksForDate returns the workblocks of a calendar date
func (s *WorkblockService) WorkblocksForDate(ctx context.Context, date string) ([]domain.Workblock, error) {
	return s.repo.WorkblocksForDate(ctx, date)
}

// IntervalsForWorkblock returns the intervals of a workblock in order
func (s *WorkblockService) IntervalsForWorkblock(ctx context.Context, workblockID int64) ([]domain.Interval, error) {
	return s.repo.IntervalsForWorkblock(ctx, workblockID)
}

// CurrentInterval returns the pending interval of a workblock, or nil
func (s *WorkblockService) CurrentInterval(ctx context.Context, workblockID int64) (*domain.Interval, error) {
	return s.repo.CurrentInterval(ctx, workblockID)
}

// Interval returns an interval by id
func (s *WorkblockService) Interval(ctx context.Context, id int64) (*domain.Interval, error) {
	return s.repo.Interval(ctx, id)
}

// ArchivedDay returns the archive of a date
func (s *WorkblockService) ArchivedDay(ctx context.Context, date string) (*domain.DailyArchive, error) {
	return s.repo.Archive(ctx, date)
}

// Archives lists all daily archives, newest first
func (s *WorkblockService) Archives(ctx context.Context) ([]domain.DailyArchive, error) {
	return s.repo.Archives(ctx)
}

// TimerState returns a snapshot of the in-memory timer state
func (s *WorkblockService) TimerState() TimerSnapshot {
	return s.timer.State()
}

// TimeRemaining returns the seconds left in the current interval, or
// nil when no interval is running
func (s *WorkblockService) TimeRemaining() *int {
	return s.timer.TimeRemaining()
}

// WorkblockVisualization builds the visualization for one workblock
func (s *WorkblockService) WorkblockVisualization(ctx context.Context, workblockID int64) (*domain.WorkblockVisualization, error) {
	return s.aggregator.WorkblockVisualization(ctx, workblockID)
}

// DailyAggregate builds the merged view of a date
func (s *WorkblockService) DailyAggregate(ctx context.Context, date string) (*domain.DailyAggregate, error) {
	return s.aggregator.DailyAggregate(ctx, date)
}

// DailyVisualization builds the complete daily view of a date
func (s *WorkblockService) DailyVisualization(ctx context.Context, date string) (*domain.DailyVisualization, error) {
	return s.aggregator.DailyVisualization(ctx, date)
}
