package repository

import (
	"time"

	"github.com/nimasrn/inquiry-gateway/internal/model"
)

// emailConfigRowID pins the table to a single row.
const emailConfigRowID = 1

type EmailConfigEntity struct {
	ID             int64     `db:"id"              gorm:"primaryKey;column:id"`
	RecipientEmail string    `db:"recipient_email" gorm:"column:recipient_email;not null"`
	SenderName     string    `db:"sender_name"     gorm:"column:sender_name;not null"`
	SenderEmail    string    `db:"sender_email"    gorm:"column:sender_email;not null"`
	Enabled        bool      `db:"enabled"         gorm:"column:enabled;not null"`
	UpdatedAt      time.Time `db:"updated_at"      gorm:"column:updated_at;autoUpdateTime"`
}

func (EmailConfigEntity) TableName() string {
	return "email_config"
}

func toEmailConfigEntity(m *model.EmailConfig) *EmailConfigEntity {
	if m == nil {
		return nil
	}
	return &EmailConfigEntity{
		ID:             emailConfigRowID,
		RecipientEmail: m.RecipientEmail,
		SenderName:     m.SenderName,
		SenderEmail:    m.SenderEmail,
		Enabled:        m.Enabled,
		UpdatedAt:      m.UpdatedAt,
	}
}

func toEmailConfigModel(e *EmailConfigEntity) *model.EmailConfig {
	if e == nil {
		return nil
	}
	return &model.EmailConfig{
		RecipientEmail: e.RecipientEmail,
		SenderName:     e.SenderName,
		SenderEmail:    e.SenderEmail,
		Enabled:        e.Enabled,
		UpdatedAt:      e.UpdatedAt,
	}
}
