package repository

import (
	"context"
	"errors"

	"github.com/nimasrn/inquiry-gateway/internal/model"
	"github.com/nimasrn/inquiry-gateway/pkg/pg"
	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrAlreadyRecorded is returned when a digest row for the date exists.
var ErrAlreadyRecorded = errors.New("daily report already recorded")

type DailyReportRepository struct {
	*pg.DB
}

func NewDailyReportRepository(db *pg.DB) *DailyReportRepository {
	return &DailyReportRepository{
		db,
	}
}

func (r *DailyReportRepository) GetByDate(ctx context.Context, date string) (*model.DigestRun, error) {
	var entity DailyReportEntity
	err := r.Read(ctx).Where("report_date = ?", date).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, pkgerrors.Wrapf(err, "get daily report %s", date)
	}
	return toDigestRunModel(&entity), nil
}

// Create inserts the row for run.ReportDate. A concurrent writer that got
// there first makes this return ErrAlreadyRecorded.
func (r *DailyReportRepository) Create(ctx context.Context, run *model.DigestRun) (*model.DigestRun, error) {
	entity := toDailyReportEntity(run)

	result := r.Write(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "report_date"}},
			DoNothing: true,
		}).
		Create(entity)
	if result.Error != nil {
		return nil, pkgerrors.Wrap(result.Error, "insert daily report")
	}
	if result.RowsAffected == 0 {
		return nil, ErrAlreadyRecorded
	}
	return toDigestRunModel(entity), nil
}
