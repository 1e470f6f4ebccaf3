package storage

import "time"

// WorkblockModel is the GORM model for the workblocks table
type WorkblockModel struct {
	ID              int64      `gorm:"primaryKey;autoIncrement"`
	Date            string     `gorm:"not null;index:idx_workblocks_date"`
	StartTime       time.Time  `gorm:"not null"`
	EndTime         *time.Time
	DurationMinutes int
	Status          string     `gorm:"not null;index:idx_workblocks_status;check:status IN ('active','completed','cancelled')"`
	IsArchived      bool       `gorm:"not null;default:false"`
	CreatedAt       time.Time
}

// TableName specifies the table name for GORM
func (WorkblockModel) TableName() string { return "workblocks" }

// IntervalModel is the GORM model for the intervals table
type IntervalModel struct {
	ID             int64      `gorm:"primaryKey;autoIncrement"`
	WorkblockID    int64      `gorm:"not null;index:idx_intervals_workblock_id"`
	IntervalNumber int        `gorm:"not null"`
	StartTime      time.Time  `gorm:"not null"`
	EndTime        *time.Time
	Content        *string
	Status         string     `gorm:"not null;default:'pending';check:status IN ('pending','recorded','auto_away')"`
	RecordedAt     *time.Time
}

// TableName specifies the table name for GORM
func (IntervalModel) TableName() string { return "intervals" }

// DailyArchiveModel is the GORM model for the daily_archives table
type DailyArchiveModel struct {
	ID                int64  `gorm:"primaryKey;autoIncrement"`
	Date              string `gorm:"not null;uniqueIndex:idx_daily_archives_date"`
	TotalWorkblocks   int    `gorm:"not null;default:0"`
	TotalMinutes      int    `gorm:"not null;default:0"`
	VisualizationData []byte
	ArchivedAt        time.Time
}

// TableName specifies the table name for GORM
func (DailyArchiveModel) TableName() string { return "daily_archives" }
