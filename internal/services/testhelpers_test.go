package services

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/quarterlog/quarterlog/internal/adapters/storage"
	"github.com/quarterlog/quarterlog/internal/ports"
	"github.com/quarterlog/quarterlog/logging"
)

// recordingSink captures events for assertions
type recordingSink struct {
	mu              sync.Mutex
	intervalNumbers []int
	autoAways       []int64
	completedBlocks []int64
	promptShows     []int64
	promptHides     int
}

func (r *recordingSink) IntervalComplete(_, _ int64, number int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.intervalNumbers = append(r.intervalNumbers, number)
}

func (r *recordingSink) AutoAway(intervalID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.autoAways = append(r.autoAways, intervalID)
}

func (r *recordingSink) WorkblockComplete(workblockID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completedBlocks = append(r.completedBlocks, workblockID)
}

func (r *recordingSink) PromptShow(intervalID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.promptShows = append(r.promptShows, intervalID)
}

func (r *recordingSink) PromptHide() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.promptHides++
}

func (r *recordingSink) intervalCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.intervalNumbers)
}

func (r *recordingSink) awayCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.autoAways)
}

func (r *recordingSink) completedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.completedBlocks)
}

// testEnv bundles a real SQLite repository with a timer and facade
// wired for fast test ticks
type testEnv struct {
	repo    ports.WorkblockRepository
	timer   *Timer
	service *WorkblockService
	sink    *recordingSink
	dbPath  string
}

func newTestEnv(t *testing.T, slice, grace time.Duration) *testEnv {
	t.Helper()

	_, err := logging.Initialize(false, "", 0)
	require.NoError(t, err)

	dbPath := filepath.Join(t.TempDir(), "test.db")
	repo, err := storage.NewSQLiteRepository(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	sink := &recordingSink{}
	clock := ports.SystemClock{}
	timer := NewTimer(repo, sink, clock, slice, grace)
	aggregator := NewAggregator(repo, repo, slice)
	service := NewWorkblockService(repo, timer, aggregator, sink, clock)

	return &testEnv{
		repo:    repo,
		timer:   timer,
		service: service,
		sink:    sink,
		dbPath:  dbPath,
	}
}
