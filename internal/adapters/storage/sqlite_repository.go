package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-sqlite3"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/quarterlog/quarterlog/internal/domain"
	"github.com/quarterlog/quarterlog/internal/ports"
	"github.com/quarterlog/quarterlog/logging"
)

// SQLiteRepository implements ports.WorkblockRepository using GORM
type SQLiteRepository struct {
	db    *gorm.DB
	clock ports.Clock
}

// Verify interface compliance at compile time
var _ ports.WorkblockRepository = (*SQLiteRepository)(nil)

// gormLogger wraps the quarterlog logger for GORM
type gormLogger struct {
	level logger.LogLevel
}

func (l *gormLogger) LogMode(level logger.LogLevel) logger.Interface {
	return &gormLogger{level: level}
}

func (l *gormLogger) Info(ctx context.Context, msg string, data ...any) {
	if l.level >= logger.Info {
		logging.Logger.Info(fmt.Sprintf(msg, data...))
	}
}

func (l *gormLogger) Warn(ctx context.Context, msg string, data ...any) {
	if l.level >= logger.Warn {
		logging.Logger.Warn(fmt.Sprintf(msg, data...))
	}
}

func (l *gormLogger) Error(ctx context.Context, msg string, data ...any) {
	if l.level >= logger.Error {
		logging.Logger.Error(fmt.Sprintf(msg, data...))
	}
}

func (l *gormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.level < logger.Info {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()

	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		logging.Logger.Error("gorm query error",
			"error", err,
			"duration", elapsed,
			"sql", sql,
			"rows", rows,
		)
	} else if elapsed > 200*time.Millisecond {
		logging.Logger.Warn("slow query",
			"duration", elapsed,
			"sql", sql,
			"rows", rows,
		)
	} else {
		logging.Logger.Debug("gorm query",
			"duration", elapsed,
			"sql", sql,
			"rows", rows,
		)
	}
}

func newGormLogger() logger.Interface {
	if os.Getenv("QUARTERLOG_DEBUG") == "1" {
		return (&gormLogger{}).LogMode(logger.Info)
	}
	return (&gormLogger{}).LogMode(logger.Silent)
}

// NewSQLiteRepository creates a new SQLiteRepository
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	// Expand home directory if present
	if len(dbPath) > 0 && dbPath[0] == '~' {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dbPath = filepath.Join(homeDir, dbPath[1:])
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	// Open database with WAL mode
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		PrepareStmt: false,
		NowFunc:     func() time.Time { return time.Now().UTC() },
		Logger:      newGormLogger(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode for concurrent access
	db.Exec("PRAGMA journal_mode=WAL")
	db.Exec("PRAGMA busy_timeout=5000")
	db.Exec("PRAGMA synchronous=NORMAL")
	db.Exec("PRAGMA foreign_keys=ON")

	// Auto-migrate workblocks and daily_archives
	if err := db.AutoMigrate(&WorkblockModel{}, &DailyArchiveModel{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	// Manually create the intervals table so the cascade delete is explicit
	migrator := db.Migrator()

	if !migrator.HasTable(&IntervalModel{}) {
		if err := db.Exec(`
			CREATE TABLE IF NOT EXISTS intervals (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				workblock_id INTEGER NOT NULL,
				interval_number INTEGER NOT NULL,
				start_time DATETIME NOT NULL,
				end_time DATETIME,
				content TEXT,
				status TEXT NOT NULL DEFAULT 'pending',
				recorded_at DATETIME,
				FOREIGN KEY (workblock_id) REFERENCES workblocks(id) ON DELETE CASCADE
			)
		`).Error; err != nil {
			return nil, fmt.Errorf("failed to create intervals table: %w", err)
		}

		if err := db.Exec(
			"CREATE INDEX IF NOT EXISTS idx_intervals_workblock_id ON intervals(workblock_id)",
		).Error; err != nil {
			return nil, fmt.Errorf("failed to create intervals index: %w", err)
		}
	}

	// Configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(0)

	return &SQLiteRepository{db: db, clock: ports.SystemClock{}}, nil
}

// Close closes the database connection
func (r *SQLiteRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// CreateWorkblock implements WorkblockWriter.CreateWorkblock
func (r *SQLiteRepository) CreateWorkblock(ctx context.Context, durationMinutes int) (*domain.Workblock, error) {
	now := r.clock.Now()
	model := WorkblockModel{
		Date:            now.Format(domain.DateFormat),
		StartTime:       now,
		DurationMinutes: durationMinutes,
		Status:          string(domain.StatusActive),
	}

	err := withRetry(func() error {
		return r.db.WithContext(ctx).Create(&model).Error
	}, 3)
	if err != nil {
		return nil, fmt.Errorf("failed to create workblock: %w", err)
	}

	wb := workblockModelToDomain(model)
	return &wb, nil
}

// Workblock implements WorkblockReader.Workblock
func (r *SQLiteRepository) Workblock(ctx context.Context, id int64) (*domain.Workblock, error) {
	var model WorkblockModel

	err := withRetry(func() error {
		return r.db.WithContext(ctx).First(&model, id).Error
	}, 3)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %d", domain.ErrWorkblockNotFound, id)
		}
		return nil, err
	}

	wb := workblockModelToDomain(model)
	return &wb, nil
}

// ActiveWorkblock implements WorkblockReader.ActiveWorkblock.
// Returns nil without error when no workblock is active.
func (r *SQLiteRepository) ActiveWorkblock(ctx context.Context) (*domain.Workblock, error) {
	var model WorkblockModel

	err := withRetry(func() error {
		return r.db.WithContext(ctx).
			Where("status = ?", string(domain.StatusActive)).
			Order("start_time DESC").
			First(&model).Error
	}, 3)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	wb := workblockModelToDomain(model)
	return &wb, nil
}

// WorkblocksForDate implements WorkblockReader.WorkblocksForDate
func (r *SQLiteRepository) WorkblocksForDate(ctx context.Context, date string) ([]domain.Workblock, error) {
	var models []WorkblockModel

	err := withRetry(func() error {
		return r.db.WithContext(ctx).
			Where("date = ?", date).
			Order("start_time ASC").
			Find(&models).Error
	}, 3)
	if err != nil {
		return nil, err
	}

	result := make([]domain.Workblock, len(models))
	for i, m := range models {
		result[i] = workblockModelToDomain(m)
	}
	return result, nil
}

// CompleteWorkblock implements WorkblockWriter.CompleteWorkblock
func (r *SQLiteRepository) CompleteWorkblock(ctx context.Context, id int64) (*domain.Workblock, error) {
	return r.finishWorkblock(ctx, id, domain.StatusCompleted)
}

// CancelWorkblock implements WorkblockWriter.CancelWorkblock
func (r *SQLiteRepository) CancelWorkblock(ctx context.Context, id int64) (*domain.Workblock, error) {
	return r.finishWorkblock(ctx, id, domain.StatusCancelled)
}

// finishWorkblock sets the terminal status, the end time, and the actual
// elapsed duration in minutes.
func (r *SQLiteRepository) finishWorkblock(ctx context.Context, id int64, status domain.WorkblockStatus) (*domain.Workblock, error) {
	now := r.clock.Now()

	err := withRetry(func() error {
		return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var model WorkblockModel
			if err := tx.First(&model, id).Error; err != nil {
				return err
			}

			duration := int(now.Sub(model.StartTime).Minutes())
			return tx.Model(&WorkblockModel{}).Where("id = ?", id).Updates(map[string]any{
				"end_time":         now,
				"duration_minutes": duration,
				"status":           string(status),
			}).Error
		})
	}, 3)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %d", domain.ErrWorkblockNotFound, id)
		}
		return nil, fmt.Errorf("failed to update workblock %d: %w", id, err)
	}

	return r.Workblock(ctx, id)
}

// AddInterval implements IntervalStore.AddInterval
func (r *SQLiteRepository) AddInterval(ctx context.Context, workblockID int64, number int) (*domain.Interval, error) {
	model := IntervalModel{
		WorkblockID:    workblockID,
		IntervalNumber: number,
		StartTime:      r.clock.Now(),
		Status:         string(domain.IntervalPending),
	}

	err := withRetry(func() error {
		return r.db.WithContext(ctx).Create(&model).Error
	}, 3)
	if err != nil {
		return nil, fmt.Errorf("failed to create interval %d for workblock %d: %w", number, workblockID, err)
	}

	iv := intervalModelToDomain(model)
	return &iv, nil
}

// RecordInterval implements IntervalStore.RecordInterval
func (r *SQLiteRepository) RecordInterval(ctx context.Context, id int64, content string, status domain.IntervalStatus) (*domain.Interval, error) {
	now := r.clock.Now()

	err := withRetry(func() error {
		result := r.db.WithContext(ctx).Model(&IntervalModel{}).Where("id = ?", id).Updates(map[string]any{
			"content":     content,
			"status":      string(status),
			"end_time":    now,
			"recorded_at": now,
		})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	}, 3)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %d", domain.ErrIntervalNotFound, id)
		}
		return nil, fmt.Errorf("failed to record interval %d: %w", id, err)
	}

	return r.Interval(ctx, id)
}

// Interval implements IntervalStore.Interval
func (r *SQLiteRepository) Interval(ctx context.Context, id int64) (*domain.Interval, error) {
	var model IntervalModel

	err := withRetry(func() error {
		return r.db.WithContext(ctx).First(&model, id).Error
	}, 3)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %d", domain.ErrIntervalNotFound, id)
		}
		return nil, err
	}

	iv := intervalModelToDomain(model)
	return &iv, nil
}

// CurrentInterval implements IntervalStore.CurrentInterval.
// Returns nil without error when the workblock has no pending interval.
func (r *SQLiteRepository) CurrentInterval(ctx context.Context, workblockID int64) (*domain.Interval, error) {
	var model IntervalModel

	err := withRetry(func() error {
		return r.db.WithContext(ctx).
			Where("workblock_id = ? AND status = ?", workblockID, string(domain.IntervalPending)).
			Order("interval_number DESC").
			First(&model).Error
	}, 3)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	iv := intervalModelToDomain(model)
	return &iv, nil
}

// IntervalsForWorkblock implements IntervalStore.IntervalsForWorkblock
func (r *SQLiteRepository) IntervalsForWorkblock(ctx context.Context, workblockID int64) ([]domain.Interval, error) {
	var models []IntervalModel

	err := withRetry(func() error {
		return r.db.WithContext(ctx).
			Where("workblock_id = ?", workblockID).
			Order("interval_number ASC").
			Find(&models).Error
	}, 3)
	if err != nil {
		return nil, err
	}

	result := make([]domain.Interval, len(models))
	for i, m := range models {
		result[i] = intervalModelToDomain(m)
	}
	return result, nil
}

// SaveArchive implements ArchiveStore.SaveArchive. Re-archiving a date
// overwrites the previous archive in full.
func (r *SQLiteRepository) SaveArchive(ctx context.Context, archive domain.DailyArchive) (*domain.DailyArchive, error) {
	now := r.clock.Now()

	err := withRetry(func() error {
		return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("date = ?", archive.Date).Delete(&DailyArchiveModel{}).Error; err != nil {
				return err
			}
			return tx.Create(&DailyArchiveModel{
				Date:              archive.Date,
				TotalWorkblocks:   archive.TotalWorkblocks,
				TotalMinutes:      archive.TotalMinutes,
				VisualizationData: archive.Visualization,
				ArchivedAt:        now,
			}).Error
		})
	}, 3)
	if err != nil {
		return nil, fmt.Errorf("failed to save archive for %s: %w", archive.Date, err)
	}

	return r.Archive(ctx, archive.Date)
}

// Archive implements ArchiveStore.Archive
func (r *SQLiteRepository) Archive(ctx context.Context, date string) (*domain.DailyArchive, error) {
	var model DailyArchiveModel

	err := withRetry(func() error {
		return r.db.WithContext(ctx).Where("date = ?", date).First(&model).Error
	}, 3)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrArchiveNotFound, date)
		}
		return nil, err
	}

	archive := archiveModelToDomain(model)
	return &archive, nil
}

// Archives implements ArchiveStore.Archives
func (r *SQLiteRepository) Archives(ctx context.Context) ([]domain.DailyArchive, error) {
	var models []DailyArchiveModel

	err := withRetry(func() error {
		return r.db.WithContext(ctx).Order("date DESC").Find(&models).Error
	}, 3)
	if err != nil {
		return nil, err
	}

	result := make([]domain.DailyArchive, len(models))
	for i, m := range models {
		result[i] = archiveModelToDomain(m)
	}
	return result, nil
}

// MarkArchived implements ArchiveStore.MarkArchived
func (r *SQLiteRepository) MarkArchived(ctx context.Context, date string) error {
	return withRetry(func() error {
		return r.db.WithContext(ctx).Model(&WorkblockModel{}).
			Where("date = ?", date).
			Update("is_archived", true).Error
	}, 3)
}

// StaleActiveDate implements ArchiveStore.StaleActiveDate
func (r *SQLiteRepository) StaleActiveDate(ctx context.Context, today string) (string, error) {
	var model WorkblockModel

	err := withRetry(func() error {
		return r.db.WithContext(ctx).
			Where("status = ? AND date != ?", string(domain.StatusActive), today).
			First(&model).Error
	}, 3)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}

	return model.Date, nil
}

// ForceCompleteActiveBefore implements ArchiveStore.ForceCompleteActiveBefore
func (r *SQLiteRepository) ForceCompleteActiveBefore(ctx context.Context, today string) error {
	now := r.clock.Now()

	return withRetry(func() error {
		return r.db.WithContext(ctx).Model(&WorkblockModel{}).
			Where("status = ? AND date != ?", string(domain.StatusActive), today).
			Updates(map[string]any{
				"status":   string(domain.StatusCompleted),
				"end_time": now,
			}).Error
	}, 3)
}

// UnarchivedCount implements ArchiveStore.UnarchivedCount
func (r *SQLiteRepository) UnarchivedCount(ctx context.Context, date string) (int64, error) {
	var count int64

	err := withRetry(func() error {
		return r.db.WithContext(ctx).Model(&WorkblockModel{}).
			Where("date = ? AND is_archived = ?", date, false).
			Count(&count).Error
	}, 3)
	if err != nil {
		return 0, err
	}

	return count, nil
}

// withRetry retries operations on SQLITE_BUSY with exponential backoff
func withRetry(fn func() error, maxRetries int) error {
	for i := 0; i < maxRetries; i++ {
		err := fn()
		if err == nil {
			return nil
		}

		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && (sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked) {
			time.Sleep(time.Millisecond * time.Duration(50*(i+1)))
			continue
		}

		return err
	}
	return fmt.Errorf("operation failed after %d retries", maxRetries)
}
