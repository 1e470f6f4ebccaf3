package ports

import (
	"context"

	"github.com/quarterlog/quarterlog/internal/domain"
)

// WorkblockReader reads workblock data
type WorkblockReader interface {
	Workblock(ctx context.Context, id int64) (*domain.Workblock, error)
	ActiveWorkblock(ctx context.Context) (*domain.Workblock, error)
	WorkblocksForDate(ctx context.Context, date string) ([]domain.Workblock, error)
}

// WorkblockWriter creates and terminates workblocks
type WorkblockWriter interface {
	CreateWorkblock(ctx context.Context, durationMinutes int) (*domain.Workblock, error)
	CompleteWorkblock(ctx context.Context, id int64) (*domain.Workblock, error)
	CancelWorkblock(ctx context.Context, id int64) (*domain.Workblock, error)
}

// IntervalStore creates and records intervals
type IntervalStore interface {
	AddInterval(ctx context.Context, workblockID int64, number int) (*domain.Interval, error)
	RecordInterval(ctx context.Context, id int64, content string, status domain.IntervalStatus) (*domain.Interval, error)
	Interval(ctx context.Context, id int64) (*domain.Interval, error)
	CurrentInterval(ctx context.Context, workblockID int64) (*domain.Interval, error)
	IntervalsForWorkblock(ctx context.Context, workblockID int64) ([]domain.Interval, error)
}

// ArchiveStore persists daily archives and supports the rollover scan
type ArchiveStore interface {
	SaveArchive(ctx context.Context, archive domain.DailyArchive) (*domain.DailyArchive, error)
	Archive(ctx context.Context, date string) (*domain.DailyArchive, error)
	Archives(ctx context.Context) ([]domain.DailyArchive, error)
	MarkArchived(ctx context.Context, date string) error

	// StaleActiveDate returns the date of any active workblock whose
	// calendar date differs from today, or "" when there is none.
	StaleActiveDate(ctx context.Context, today string) (string, error)
	// ForceCompleteActiveBefore completes every active workblock whose
	// date differs from today.
	ForceCompleteActiveBefore(ctx context.Context, today string) error
	// UnarchivedCount counts workblocks for a date not yet archived.
	UnarchivedCount(ctx context.Context, date string) (int64, error)
}

// WorkblockRepository is the composite interface
type WorkblockRepository interface {
	WorkblockReader
	WorkblockWriter
	IntervalStore
	ArchiveStore
	Close() error
}
