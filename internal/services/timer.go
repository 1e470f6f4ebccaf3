package services

import (
	"context"
	"sync"
	"time"

	"github.com/quarterlog/quarterlog/internal/domain"
	"github.com/quarterlog/quarterlog/internal/ports"
	"github.com/quarterlog/quarterlog/logging"
)

// timerState is the in-memory view of the running workblock. It is
// guarded by Timer.mu and reset to the zero value whenever the
// workblock reaches a terminal status.
type timerState struct {
	workblockID    int64
	intervalID     int64
	intervalNumber int
	intervalStart  time.Time
	promptShownAt  time.Time
	running        bool
}

// Timer drives the interval cycle of the active workblock: it slices
// the workblock into fixed-length intervals, announces each elapsed
// interval through the event sink, and records auto-away entries when
// a prompt goes unanswered past the grace window.
type Timer struct {
	repo  ports.WorkblockRepository
	sink  ports.EventSink
	clock ports.Clock
	slice time.Duration
	grace time.Duration

	mu         sync.Mutex
	state      timerState
	total      int
	tickCancel context.CancelFunc
	awayCancel context.CancelFunc
}

// NewTimer creates a new Timer
func NewTimer(
	repo ports.WorkblockRepository,
	sink ports.EventSink,
	clock ports.Clock,
	slice time.Duration,
	grace time.Duration,
) *Timer {
	return &Timer{
		repo:  repo,
		sink:  sink,
		clock: clock,
		slice: slice,
		grace: grace,
	}
}

// Slice returns the configured interval length
func (t *Timer) Slice() time.Duration {
	return t.slice
}

// Start begins the interval cycle for a workblock
func (t *Timer) Start(ctx context.Context, workblock *domain.Workblock) error {
	total := domain.TotalIntervals(workblock.DurationMinutes, t.slice)
	if total <= 0 {
		return domain.ErrInvalidDuration
	}
	return t.start(ctx, workblock.ID, total)
}

// start initializes state, creates the first interval and launches the
// tick loop. total is the number of intervals the workblock spans.
func (t *Timer) start(ctx context.Context, workblockID int64, total int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state.running {
		return domain.ErrTimerRunning
	}

	interval, err := t.repo.AddInterval(ctx, workblockID, 1)
	if err != nil {
		return err
	}

	t.adoptLocked(workblockID, interval, total)

	logging.Logger.Info("Timer started",
		"workblock_id", workblockID,
		"total_intervals", total,
		"slice", t.slice)
	return nil
}

// adoptLocked installs an interval as the current one and launches the
// tick loop. Caller must hold t.mu.
func (t *Timer) adoptLocked(workblockID int64, interval *domain.Interval, total int) {
	t.state = timerState{
		workblockID:    workblockID,
		intervalID:     interval.ID,
		intervalNumber: interval.Number,
		intervalStart:  t.clock.Now(),
		running:        true,
	}
	t.total = total

	runCtx, cancel := context.WithCancel(context.Background())
	t.tickCancel = cancel
	go t.run(runCtx)
}

// run is the tick loop. Each tick means a full slice has elapsed for
// the current interval.
func (t *Timer) run(ctx context.Context) {
	ticker := time.NewTicker(t.slice)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if done := t.tick(ctx); done {
				return
			}
		}
	}
}

// tick handles one elapsed interval. Returns true when the loop should
// stop.
func (t *Timer) tick(ctx context.Context) bool {
	t.mu.Lock()
	if !t.state.running {
		t.mu.Unlock()
		return true
	}
	workblockID := t.state.workblockID
	intervalID := t.state.intervalID
	number := t.state.intervalNumber
	total := t.total
	t.state.promptShownAt = t.clock.Now()
	t.mu.Unlock()

	logging.Logger.Debug("Interval elapsed",
		"workblock_id", workblockID,
		"interval_id", intervalID,
		"interval_number", number)
	t.sink.IntervalComplete(workblockID, intervalID, number)

	if number >= total {
		// Final interval has elapsed. The workblock is NOT completed
		// here: completion waits for the final entry to be recorded,
		// by the user or by the auto-away timer.
		logging.Logger.Info("Final interval elapsed, awaiting last entry",
			"workblock_id", workblockID,
			"interval_number", number)
		return true
	}

	next, err := t.repo.AddInterval(ctx, workblockID, number+1)
	if err != nil {
		logging.Logger.Error("Failed to create next interval, halting timer",
			"workblock_id", workblockID,
			"interval_number", number+1,
			"error", err)
		return true
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	// Re-check after the store round trip; a stop or cancel may have
	// won the race while we were writing.
	if !t.state.running || t.state.workblockID != workblockID {
		return true
	}
	t.state.intervalID = next.ID
	t.state.intervalNumber = next.Number
	t.state.intervalStart = t.clock.Now()
	return false
}

// Complete finishes the workblock normally
func (t *Timer) Complete(ctx context.Context, workblockID int64) (*domain.Workblock, error) {
	return t.finish(ctx, workblockID, t.repo.CompleteWorkblock)
}

// Cancel abandons the workblock
func (t *Timer) Cancel(ctx context.Context, workblockID int64) (*domain.Workblock, error) {
	return t.finish(ctx, workblockID, t.repo.CancelWorkblock)
}

func (t *Timer) finish(
	ctx context.Context,
	workblockID int64,
	terminal func(context.Context, int64) (*domain.Workblock, error),
) (*domain.Workblock, error) {
	t.mu.Lock()
	if t.state.workblockID != workblockID {
		t.mu.Unlock()
		return nil, domain.ErrTimerMismatch
	}
	t.state.running = false
	t.stopTasksLocked()
	t.mu.Unlock()

	workblock, err := terminal(ctx, workblockID)
	if err != nil {
		return nil, err
	}

	t.sink.WorkblockComplete(workblockID)

	t.mu.Lock()
	t.state = timerState{}
	t.total = 0
	t.mu.Unlock()

	return workblock, nil
}

// stopTasksLocked cancels the tick loop and the auto-away timer.
// Caller must hold t.mu.
func (t *Timer) stopTasksLocked() {
	if t.tickCancel != nil {
		t.tickCancel()
		t.tickCancel = nil
	}
	if t.awayCancel != nil {
		t.awayCancel()
		t.awayCancel = nil
	}
}

// StartAutoAway arms the grace-window timer for an interval whose
// prompt is showing. Arming again replaces any previous timer.
func (t *Timer) StartAutoAway(intervalID int64) {
	t.mu.Lock()
	if t.awayCancel != nil {
		t.awayCancel()
	}
	awayCtx, cancel := context.WithCancel(context.Background())
	t.awayCancel = cancel
	t.mu.Unlock()

	go func() {
		timer := time.NewTimer(t.grace)
		defer timer.Stop()

		select {
		case <-awayCtx.Done():
			return
		case <-timer.C:
		}

		if err := t.MarkAway(awayCtx, intervalID); err != nil {
			logging.Logger.Error("Auto-away failed",
				"interval_id", intervalID,
				"error", err)
		}
	}()
}

// CancelAutoAway disarms the grace-window timer. Safe to call when no
// timer is armed.
func (t *Timer) CancelAutoAway() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.awayCancel != nil {
		t.awayCancel()
		t.awayCancel = nil
	}
}

// MarkAway records the away sentinel for an interval that was never
// answered. If the interval turns out to be the last one of its
// workblock, the workblock is completed here since the tick loop has
// already stopped.
func (t *Timer) MarkAway(ctx context.Context, intervalID int64) error {
	interval, err := t.repo.Interval(ctx, intervalID)
	if err != nil {
		return err
	}
	if interval.Status != domain.IntervalPending {
		// User got there first, nothing to do
		return nil
	}

	if _, err := t.repo.RecordInterval(ctx, intervalID, domain.AwayContent, domain.IntervalAutoAway); err != nil {
		return err
	}

	logging.Logger.Info("Auto-away recorded",
		"interval_id", intervalID,
		"workblock_id", interval.WorkblockID)
	t.sink.AutoAway(intervalID)
	t.sink.PromptHide()

	isLast, err := t.IsLastInterval(ctx, interval.WorkblockID, interval.Number)
	if err != nil {
		return err
	}
	if !isLast {
		return nil
	}

	if _, err := t.repo.CompleteWorkblock(ctx, interval.WorkblockID); err != nil {
		return err
	}
	t.sink.WorkblockComplete(interval.WorkblockID)

	t.mu.Lock()
	t.stopTasksLocked()
	t.state = timerState{}
	t.total = 0
	t.mu.Unlock()

	return nil
}

// IsLastInterval reports whether the given interval number is the final
// one for the workblock. Uses the in-memory total when the timer owns
// the workblock, falling back to the stored duration otherwise.
func (t *Timer) IsLastInterval(ctx context.Context, workblockID int64, number int) (bool, error) {
	t.mu.Lock()
	if t.state.workblockID == workblockID && t.total > 0 {
		total := t.total
		t.mu.Unlock()
		return number >= total, nil
	}
	t.mu.Unlock()

	workblock, err := t.repo.Workblock(ctx, workblockID)
	if err != nil {
		return false, err
	}
	return domain.IsLastInterval(number, workblock.DurationMinutes, t.slice), nil
}

// Restore re-adopts the active workblock after a restart. The current
// interval slice restarts from zero; exact mid-slice resumption is not
// attempted.
func (t *Timer) Restore(ctx context.Context) error {
	workblock, err := t.repo.ActiveWorkblock(ctx)
	if err != nil {
		return err
	}
	if workblock == nil {
		t.mu.Lock()
		t.state = timerState{}
		t.total = 0
		t.mu.Unlock()
		return nil
	}

	total := domain.TotalIntervals(workblock.DurationMinutes, t.slice)
	if total <= 0 {
		return domain.ErrInvalidDuration
	}

	current, err := t.repo.CurrentInterval(ctx, workblock.ID)
	if err != nil {
		return err
	}

	if current == nil {
		// No pending interval survived; continue numbering after the
		// last recorded one.
		recorded, err := t.repo.IntervalsForWorkblock(ctx, workblock.ID)
		if err != nil {
			return err
		}
		next := len(recorded) + 1
		if next > total {
			// Everything recorded already; finish the workblock.
			if _, err := t.repo.CompleteWorkblock(ctx, workblock.ID); err != nil {
				return err
			}
			t.sink.WorkblockComplete(workblock.ID)
			return nil
		}
		current, err = t.repo.AddInterval(ctx, workblock.ID, next)
		if err != nil {
			return err
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state.running {
		return domain.ErrTimerRunning
	}
	t.adoptLocked(workblock.ID, current, total)

	logging.Logger.Info("Timer restored",
		"workblock_id", workblock.ID,
		"interval_number", current.Number,
		"total_intervals", total)
	return nil
}

// State returns a snapshot of the timer state
func (t *Timer) State() TimerSnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return TimerSnapshot{
		WorkblockID:    t.state.workblockID,
		IntervalID:     t.state.intervalID,
		IntervalNumber: t.state.intervalNumber,
		TotalIntervals: t.total,
		IntervalStart:  t.state.intervalStart,
		PromptShownAt:  t.state.promptShownAt,
		Running:        t.state.running,
	}
}

// TimeRemaining returns the seconds left in the current interval,
// floored at zero, or nil when no interval is running.
func (t *Timer) TimeRemaining() *int {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.state.running || t.state.intervalStart.IsZero() {
		return nil
	}

	elapsed := t.clock.Now().Sub(t.state.intervalStart)
	remaining := int((t.slice - elapsed).Seconds())
	if remaining < 0 {
		remaining = 0
	}
	return &remaining
}
