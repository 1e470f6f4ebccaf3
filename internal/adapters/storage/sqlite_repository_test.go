package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarterlog/quarterlog/internal/domain"
	"github.com/quarterlog/quarterlog/logging"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()

	_, err := logging.Initialize(false, "", 0)
	require.NoError(t, err)

	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	return repo
}

func TestCreateWorkblock(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	workblock, err := repo.CreateWorkblock(ctx, 60)

	require.NoError(t, err)
	assert.NotZero(t, workblock.ID)
	assert.Equal(t, domain.StatusActive, workblock.Status)
	assert.Equal(t, 60, workblock.DurationMinutes)
	assert.Equal(t, time.Now().Format(domain.DateFormat), workblock.Date)
	assert.Nil(t, workblock.EndTime)
	assert.False(t, workblock.IsArchived)
}

func TestWorkblock_NotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.Workblock(context.Background(), 999)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrWorkblockNotFound)
}

func TestActiveWorkblock_NoneReturnsNil(t *testing.T) {
	repo := newTestRepo(t)

	active, err := repo.ActiveWorkblock(context.Background())

	require.NoError(t, err)
	assert.Nil(t, active)
}

func TestActiveWorkblock_ReturnsActive(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created, err := repo.CreateWorkblock(ctx, 30)
	require.NoError(t, err)

	active, err := repo.ActiveWorkblock(ctx)

	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, created.ID, active.ID)
}

func TestCompleteWorkblock_SetsEndTimeAndActualDuration(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created, err := repo.CreateWorkblock(ctx, 60)
	require.NoError(t, err)

	completed, err := repo.CompleteWorkblock(ctx, created.ID)

	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, completed.Status)
	require.NotNil(t, completed.EndTime)
	// Duration is overwritten with the actual elapsed minutes
	assert.Equal(t, 0, completed.DurationMinutes)

	active, err := repo.ActiveWorkblock(ctx)
	require.NoError(t, err)
	assert.Nil(t, active)
}

func TestCancelWorkblock(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created, err := repo.CreateWorkblock(ctx, 60)
	require.NoError(t, err)

	cancelled, err := repo.CancelWorkblock(ctx, created.ID)

	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, cancelled.Status)
	assert.NotNil(t, cancelled.EndTime)
}

func TestAddInterval(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	workblock, err := repo.CreateWorkblock(ctx, 60)
	require.NoError(t, err)

	interval, err := repo.AddInterval(ctx, workblock.ID, 1)

	require.NoError(t, err)
	assert.NotZero(t, interval.ID)
	assert.Equal(t, workblock.ID, interval.WorkblockID)
	assert.Equal(t, 1, interval.Number)
	assert.Equal(t, domain.IntervalPending, interval.Status)
	assert.Empty(t, interval.Content)
	assert.Nil(t, interval.EndTime)
}

func TestRecordInterval(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	workblock, err := repo.CreateWorkblock(ctx, 60)
	require.NoError(t, err)
	created, err := repo.AddInterval(ctx, workblock.ID, 1)
	require.NoError(t, err)

	recorded, err := repo.RecordInterval(ctx, created.ID, "writing code", domain.IntervalRecorded)

	require.NoError(t, err)
	assert.Equal(t, "writing code", recorded.Content)
	assert.Equal(t, domain.IntervalRecorded, recorded.Status)
	assert.NotNil(t, recorded.EndTime)
	assert.NotNil(t, recorded.RecordedAt)
}

func TestRecordInterval_NotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.RecordInterval(context.Background(), 999, "x", domain.IntervalRecorded)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrIntervalNotFound)
}

func TestCurrentInterval(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	workblock, err := repo.CreateWorkblock(ctx, 60)
	require.NoError(t, err)

	// No intervals yet
	current, err := repo.CurrentInterval(ctx, workblock.ID)
	require.NoError(t, err)
	assert.Nil(t, current)

	first, err := repo.AddInterval(ctx, workblock.ID, 1)
	require.NoError(t, err)
	_, err = repo.RecordInterval(ctx, first.ID, "meeting", domain.IntervalRecorded)
	require.NoError(t, err)
	second, err := repo.AddInterval(ctx, workblock.ID, 2)
	require.NoError(t, err)

	current, err = repo.CurrentInterval(ctx, workblock.ID)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, second.ID, current.ID)
	assert.Equal(t, 2, current.Number)

	// Once the pending interval is recorded there is no current one
	_, err = repo.RecordInterval(ctx, second.ID, "review", domain.IntervalRecorded)
	require.NoError(t, err)
	current, err = repo.CurrentInterval(ctx, workblock.ID)
	require.NoError(t, err)
	assert.Nil(t, current)
}

func TestIntervalsForWorkblock_OrderedByNumber(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	workblock, err := repo.CreateWorkblock(ctx, 60)
	require.NoError(t, err)
	for n := 1; n <= 3; n++ {
		_, err = repo.AddInterval(ctx, workblock.ID, n)
		require.NoError(t, err)
	}

	intervals, err := repo.IntervalsForWorkblock(ctx, workblock.ID)

	require.NoError(t, err)
	require.Len(t, intervals, 3)
	for i, interval := range intervals {
		assert.Equal(t, i+1, interval.Number)
	}
}

func TestSaveArchive_ReplacesExistingDate(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first, err := repo.SaveArchive(ctx, domain.DailyArchive{
		Date:            "2026-08-29",
		TotalWorkblocks: 1,
		TotalMinutes:    60,
		Visualization:   []byte(`{"v":1}`),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, first.TotalWorkblocks)

	second, err := repo.SaveArchive(ctx, domain.DailyArchive{
		Date:            "2026-08-29",
		TotalWorkblocks: 3,
		TotalMinutes:    180,
		Visualization:   []byte(`{"v":2}`),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, second.TotalWorkblocks)
	assert.Equal(t, []byte(`{"v":2}`), second.Visualization)

	archives, err := repo.Archives(ctx)
	require.NoError(t, err)
	assert.Len(t, archives, 1)
}

func TestArchive_NotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.Archive(context.Background(), "2020-01-01")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrArchiveNotFound)
}

func TestArchives_NewestFirst(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for _, date := range []string{"2026-08-27", "2026-08-29", "2026-08-28"} {
		_, err := repo.SaveArchive(ctx, domain.DailyArchive{Date: date})
		require.NoError(t, err)
	}

	archives, err := repo.Archives(ctx)

	require.NoError(t, err)
	require.Len(t, archives, 3)
	assert.Equal(t, "2026-08-29", archives[0].Date)
	assert.Equal(t, "2026-08-27", archives[2].Date)
}

func TestMarkArchivedAndUnarchivedCount(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	workblock, err := repo.CreateWorkblock(ctx, 60)
	require.NoError(t, err)

	count, err := repo.UnarchivedCount(ctx, workblock.Date)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	require.NoError(t, repo.MarkArchived(ctx, workblock.Date))

	count, err = repo.UnarchivedCount(ctx, workblock.Date)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestStaleActiveDate(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	today := time.Now().Format(domain.DateFormat)

	// Nothing active
	stale, err := repo.StaleActiveDate(ctx, today)
	require.NoError(t, err)
	assert.Empty(t, stale)

	// Active workblock from today is not stale
	workblock, err := repo.CreateWorkblock(ctx, 60)
	require.NoError(t, err)
	stale, err = repo.StaleActiveDate(ctx, today)
	require.NoError(t, err)
	assert.Empty(t, stale)

	// Backdate it to simulate a workblock left running overnight
	yesterday := time.Now().AddDate(0, 0, -1).Format(domain.DateFormat)
	err = repo.db.Exec("UPDATE workblocks SET date = ? WHERE id = ?", yesterday, workblock.ID).Error
	require.NoError(t, err)

	stale, err = repo.StaleActiveDate(ctx, today)
	require.NoError(t, err)
	assert.Equal(t, yesterday, stale)
}

func TestForceCompleteActiveBefore(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	today := time.Now().Format(domain.DateFormat)
	yesterday := time.Now().AddDate(0, 0, -1).Format(domain.DateFormat)

	workblock, err := repo.CreateWorkblock(ctx, 60)
	require.NoError(t, err)
	err = repo.db.Exec("UPDATE workblocks SET date = ? WHERE id = ?", yesterday, workblock.ID).Error
	require.NoError(t, err)

	require.NoError(t, repo.ForceCompleteActiveBefore(ctx, today))

	updated, err := repo.Workblock(ctx, workblock.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, updated.Status)
	assert.NotNil(t, updated.EndTime)
}
