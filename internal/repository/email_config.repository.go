package repository

import (
	"context"
	"errors"
	"time"

	"github.com/nimasrn/inquiry-gateway/internal/model"
	"github.com/nimasrn/inquiry-gateway/pkg/pg"
	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EmailConfigRepository struct {
	*pg.DB
}

func NewEmailConfigRepository(db *pg.DB) *EmailConfigRepository {
	return &EmailConfigRepository{
		db,
	}
}

// Get returns ErrNotFound until the row was written once.
func (r *EmailConfigRepository) Get(ctx context.Context) (*model.EmailConfig, error) {
	var entity EmailConfigEntity
	err := r.Read(ctx).Where("id = ?", emailConfigRowID).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, pkgerrors.Wrap(err, "get email config")
	}
	return toEmailConfigModel(&entity), nil
}

func (r *EmailConfigRepository) Upsert(ctx context.Context, cfg *model.EmailConfig) (*model.EmailConfig, error) {
	entity := toEmailConfigEntity(cfg)
	entity.UpdatedAt = time.Now().UTC()

	err := r.Write(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"recipient_email", "sender_name", "sender_email", "enabled", "updated_at",
			}),
		}).
		Create(entity).Error
	if err != nil {
		return nil, pkgerrors.Wrap(err, "upsert email config")
	}
	return toEmailConfigModel(entity), nil
}
