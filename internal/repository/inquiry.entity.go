package repository

import (
	"time"

	"github.com/nimasrn/inquiry-gateway/internal/model"
	"github.com/nimasrn/inquiry-gateway/pkg/pg"
)

type InquiryEntity struct {
	pg.Model
	Name        string    `db:"name"         gorm:"column:name;not null"`
	Email       string    `db:"email"        gorm:"column:email;not null"`
	Phone       string    `db:"phone"        gorm:"column:phone;not null"`
	ArtType     string    `db:"art_type"     gorm:"column:art_type;not null"`
	Size        string    `db:"size"         gorm:"column:size;not null"`
	Budget      string    `db:"budget"       gorm:"column:budget;not null"`
	Timeline    string    `db:"timeline"     gorm:"column:timeline;not null"`
	Message     string    `db:"message"      gorm:"column:message;not null"`
	Status      string    `db:"status"       gorm:"column:status;not null;default:pending;index"`
	IPAddress   string    `db:"ip_address"   gorm:"column:ip_address;not null"`
	UserAgent   string    `db:"user_agent"   gorm:"column:user_agent;not null"`
	SubmittedAt time.Time `db:"submitted_at" gorm:"column:submitted_at;not null;index"`
}

func (InquiryEntity) TableName() string {
	return "inquiries"
}

func toInquiryEntity(m *model.Inquiry) *InquiryEntity {
	if m == nil {
		return nil
	}
	e := &InquiryEntity{
		Name:        m.Name,
		Email:       m.Email,
		Phone:       m.Phone,
		ArtType:     m.ArtType,
		Size:        m.Size,
		Budget:      m.Budget,
		Timeline:    m.Timeline,
		Message:     m.Message,
		Status:      string(m.Status),
		IPAddress:   m.IPAddress,
		UserAgent:   m.UserAgent,
		SubmittedAt: m.SubmittedAt.UTC(),
	}
	e.ID = m.ID
	e.UpdatedAt = m.UpdatedAt
	return e
}

func toInquiryModel(e *InquiryEntity) *model.Inquiry {
	if e == nil {
		return nil
	}
	return &model.Inquiry{
		ID:          e.ID,
		Name:        e.Name,
		Email:       e.Email,
		Phone:       e.Phone,
		ArtType:     e.ArtType,
		Size:        e.Size,
		Budget:      e.Budget,
		Timeline:    e.Timeline,
		Message:     e.Message,
		Status:      model.InquiryStatus(e.Status),
		IPAddress:   e.IPAddress,
		UserAgent:   e.UserAgent,
		SubmittedAt: e.SubmittedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func toInquiryModels(entities []*InquiryEntity) []*model.Inquiry {
	models := make([]*model.Inquiry, len(entities))
	for i, e := range entities {
		models[i] = toInquiryModel(e)
	}
	return models
}
