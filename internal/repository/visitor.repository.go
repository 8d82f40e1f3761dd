package repository

import (
	"context"
	"time"

	"github.com/nimasrn/inquiry-gateway/internal/model"
	"github.com/nimasrn/inquiry-gateway/pkg/pg"
	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"
)

type VisitorRepository struct {
	*pg.DB
}

func NewVisitorRepository(db *pg.DB) *VisitorRepository {
	return &VisitorRepository{
		db,
	}
}

func (r *VisitorRepository) Create(ctx context.Context, v *model.Visitor) (*model.Visitor, error) {
	entity := toVisitorEntity(v)
	if entity.VisitedAt.IsZero() {
		entity.VisitedAt = time.Now().UTC()
	}

	if err := r.Write(ctx).Create(entity).Error; err != nil {
		return nil, pkgerrors.Wrap(err, "insert visitor")
	}

	return toVisitorModel(entity), nil
}

func (r *VisitorRepository) window(ctx context.Context, f model.VisitorFilter) *gorm.DB {
	q := r.Read(ctx).Model(&VisitorEntity{})
	if f.From != nil {
		q = q.Where("visited_at >= ?", f.From.UTC())
	}
	if f.To != nil {
		q = q.Where("visited_at < ?", f.To.UTC())
	}
	return q
}

// CountBetween counts visit rows in [from, to).
func (r *VisitorRepository) CountBetween(ctx context.Context, from, to time.Time) (int64, error) {
	var n int64
	if err := r.window(ctx, model.VisitorFilter{From: &from, To: &to}).Count(&n).Error; err != nil {
		return 0, pkgerrors.Wrap(err, "count visits")
	}
	return n, nil
}

// CountDistinctIPBetween counts distinct addresses among the visit rows in
// [from, to).
func (r *VisitorRepository) CountDistinctIPBetween(ctx context.Context, from, to time.Time) (int64, error) {
	var n int64
	if err := r.window(ctx, model.VisitorFilter{From: &from, To: &to}).Distinct("ip_address").Count(&n).Error; err != nil {
		return 0, pkgerrors.Wrap(err, "count unique visitors")
	}
	return n, nil
}

func (r *VisitorRepository) Stats(ctx context.Context, f model.VisitorFilter) (*model.VisitorStats, error) {
	stats := &model.VisitorStats{}
	if err := r.window(ctx, f).Count(&stats.TotalVisits).Error; err != nil {
		return nil, pkgerrors.Wrap(err, "count visits")
	}
	if err := r.window(ctx, f).Distinct("ip_address").Count(&stats.UniqueVisitors).Error; err != nil {
		return nil, pkgerrors.Wrap(err, "count unique visitors")
	}
	return stats, nil
}
