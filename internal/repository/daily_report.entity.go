package repository

import (
	"time"

	"github.com/nimasrn/inquiry-gateway/internal/model"
)

type DailyReportEntity struct {
	ID                 int64     `db:"id"                   gorm:"primaryKey;autoIncrement;column:id"`
	ReportDate         string    `db:"report_date"          gorm:"column:report_date;not null;uniqueIndex"`
	WindowStart        time.Time `db:"window_start"         gorm:"column:window_start;not null"`
	WindowEnd          time.Time `db:"window_end"           gorm:"column:window_end;not null"`
	InquiryCount       int64     `db:"inquiry_count"        gorm:"column:inquiry_count;not null"`
	UniqueVisitorCount int64     `db:"unique_visitor_count" gorm:"column:unique_visitor_count;not null"`
	TotalVisitCount    int64     `db:"total_visit_count"    gorm:"column:total_visit_count;not null"`
	Provider           string    `db:"provider"             gorm:"column:provider;not null"`
	EmailID            string    `db:"email_id"             gorm:"column:email_id;not null"`
	Recipient          string    `db:"recipient"            gorm:"column:recipient;not null"`
	SentAt             time.Time `db:"sent_at"              gorm:"column:sent_at;not null"`
}

func (DailyReportEntity) TableName() string {
	return "daily_reports"
}

func toDailyReportEntity(m *model.DigestRun) *DailyReportEntity {
	if m == nil {
		return nil
	}
	return &DailyReportEntity{
		ID:                 m.ID,
		ReportDate:         m.ReportDate,
		WindowStart:        m.WindowStart.UTC(),
		WindowEnd:          m.WindowEnd.UTC(),
		InquiryCount:       m.InquiryCount,
		UniqueVisitorCount: m.UniqueVisitorCount,
		TotalVisitCount:    m.TotalVisitCount,
		Provider:           m.Provider,
		EmailID:            m.EmailID,
		Recipient:          m.Recipient,
		SentAt:             m.SentAt.UTC(),
	}
}

func toDigestRunModel(e *DailyReportEntity) *model.DigestRun {
	if e == nil {
		return nil
	}
	return &model.DigestRun{
		ID:                 e.ID,
		ReportDate:         e.ReportDate,
		WindowStart:        e.WindowStart,
		WindowEnd:          e.WindowEnd,
		InquiryCount:       e.InquiryCount,
		UniqueVisitorCount: e.UniqueVisitorCount,
		TotalVisitCount:    e.TotalVisitCount,
		Provider:           e.Provider,
		EmailID:            e.EmailID,
		Recipient:          e.Recipient,
		SentAt:             e.SentAt,
	}
}
