package model

import "time"

type Visitor struct {
	ID        int64     `json:"id"`
	IPAddress string    `json:"ip_address"`
	UserAgent string    `json:"user_agent,omitempty"`
	VisitedAt time.Time `json:"visited_at"`
}

type VisitorStats struct {
	TotalVisits    int64 `json:"totalVisits"`
	UniqueVisitors int64 `json:"uniqueVisitors"`
}

// VisitorFilter bounds stats queries; nil bounds are open.
type VisitorFilter struct {
	From *time.Time
	To   *time.Time
}
