package model

import "time"

// DailyReport is the aggregate snapshot for one digest window. It is
// derived on every run and never stored as is.
type DailyReport struct {
	WindowStart        time.Time  `json:"window_start"`
	WindowEnd          time.Time  `json:"window_end"`
	InquiryCount       int64      `json:"inquiry_count"`
	UniqueVisitorCount int64      `json:"unique_visitor_count"`
	TotalVisitCount    int64      `json:"total_visit_count"`
	Inquiries          []*Inquiry `json:"inquiries"`
}

// DigestRun is the watermark written after a digest was accepted by the
// email provider. One row per report date.
type DigestRun struct {
	ID                 int64     `json:"id"`
	ReportDate         string    `json:"report_date"`
	WindowStart        time.Time `json:"window_start"`
	WindowEnd          time.Time `json:"window_end"`
	InquiryCount       int64     `json:"inquiry_count"`
	UniqueVisitorCount int64     `json:"unique_visitor_count"`
	TotalVisitCount    int64     `json:"total_visit_count"`
	Provider           string    `json:"provider"`
	EmailID            string    `json:"email_id"`
	Recipient          string    `json:"recipient"`
	SentAt             time.Time `json:"sent_at"`
}
