package repository

import (
	"time"

	"github.com/nimasrn/inquiry-gateway/internal/model"
)

type VisitorEntity struct {
	ID        int64     `db:"id"         gorm:"primaryKey;autoIncrement;column:id"`
	IPAddress string    `db:"ip_address" gorm:"column:ip_address;not null;index"`
	UserAgent string    `db:"user_agent" gorm:"column:user_agent;not null"`
	VisitedAt time.Time `db:"visited_at" gorm:"column:visited_at;not null;index"`
}

func (VisitorEntity) TableName() string {
	return "visitors"
}

func toVisitorEntity(m *model.Visitor) *VisitorEntity {
	if m == nil {
		return nil
	}
	return &VisitorEntity{
		ID:        m.ID,
		IPAddress: m.IPAddress,
		UserAgent: m.UserAgent,
		VisitedAt: m.VisitedAt.UTC(),
	}
}

func toVisitorModel(e *VisitorEntity) *model.Visitor {
	if e == nil {
		return nil
	}
	return &model.Visitor{
		ID:        e.ID,
		IPAddress: e.IPAddress,
		UserAgent: e.UserAgent,
		VisitedAt: e.VisitedAt,
	}
}
