package storage

import (
	"github.com/quarterlog/quarterlog/internal/domain"
)

// workblockModelToDomain converts a WorkblockModel (GORM) to domain.Workblock
func workblockModelToDomain(m WorkblockModel) domain.Workblock {
	return domain.Workblock{
		ID:              m.ID,
		Date:            m.Date,
		StartTime:       m.StartTime,
		EndTime:         m.EndTime,
		DurationMinutes: m.DurationMinutes,
		Status:          domain.WorkblockStatus(m.Status),
		IsArchived:      m.IsArchived,
		CreatedAt:       m.CreatedAt,
	}
}

// intervalModelToDomain converts an IntervalModel (GORM) to domain.Interval
func intervalModelToDomain(m IntervalModel) domain.Interval {
	var content string
	if m.Content != nil {
		content = *m.Content
	}
	return domain.Interval{
		ID:          m.ID,
		WorkblockID: m.WorkblockID,
		Number:      m.IntervalNumber,
		StartTime:   m.StartTime,
		EndTime:     m.EndTime,
		Content:     content,
		Status:      domain.IntervalStatus(m.Status),
		RecordedAt:  m.RecordedAt,
	}
}

// archiveModelToDomain converts a DailyArchiveModel (GORM) to domain.DailyArchive
func archiveModelToDomain(m DailyArchiveModel) domain.DailyArchive {
	return domain.DailyArchive{
		ID:              m.ID,
		Date:            m.Date,
		TotalWorkblocks: m.TotalWorkblocks,
		TotalMinutes:    m.TotalMinutes,
		Visualization:   m.VisualizationData,
		ArchivedAt:      m.ArchivedAt,
	}
}
