package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/nimasrn/inquiry-gateway/internal/model"
	"github.com/nimasrn/inquiry-gateway/pkg/pg"
	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when a row does not exist.
	ErrNotFound = errors.New("record not found")
)

type InquiryRepository struct {
	*pg.DB
}

func NewInquiryRepository(db *pg.DB) *InquiryRepository {
	return &InquiryRepository{
		db,
	}
}

func (r *InquiryRepository) Create(ctx context.Context, inq *model.Inquiry) (*model.Inquiry, error) {
	entity := toInquiryEntity(inq)
	if entity.Status == "" {
		entity.Status = string(model.InquiryStatusPending)
	}
	if entity.SubmittedAt.IsZero() {
		entity.SubmittedAt = time.Now().UTC()
	}

	if err := r.Write(ctx).Create(entity).Error; err != nil {
		return nil, pkgerrors.Wrap(err, "insert inquiry")
	}

	return toInquiryModel(entity), nil
}

func (r *InquiryRepository) GetByID(ctx context.Context, id string) (*model.Inquiry, error) {
	// postgres rejects malformed uuids with a syntax error, which is still
	// a miss from the caller's point of view
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}

	var entity InquiryEntity
	err := r.Read(ctx).Where("id = ?", id).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, pkgerrors.Wrapf(err, "get inquiry %s", id)
	}
	return toInquiryModel(&entity), nil
}

// List returns the page selected by f together with the total number of
// matching rows.
func (r *InquiryRepository) List(ctx context.Context, f model.InquiryFilter) ([]*model.Inquiry, int64, error) {
	q := r.Read(ctx).Model(&InquiryEntity{})

	if len(f.Statuses) > 0 {
		statuses := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			statuses[i] = string(s)
		}
		q = q.Where("status IN ?", statuses)
	}
	if f.From != nil {
		q = q.Where("submitted_at >= ?", f.From.UTC())
	}
	if f.To != nil {
		q = q.Where("submitted_at < ?", f.To.UTC())
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, pkgerrors.Wrap(err, "count inquiries")
	}

	order := "submitted_at DESC"
	if f.Asc {
		order = "submitted_at ASC"
	}
	q = q.Order(order)

	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}

	var entities []*InquiryEntity
	if err := q.Find(&entities).Error; err != nil {
		return nil, 0, pkgerrors.Wrap(err, "list inquiries")
	}

	return toInquiryModels(entities), total, nil
}

// ListSubmittedBetween returns every inquiry submitted in [from, to), newest
// first and without a page cap.
func (r *InquiryRepository) ListSubmittedBetween(ctx context.Context, from, to time.Time) ([]*model.Inquiry, error) {
	items, _, err := r.List(ctx, model.InquiryFilter{From: &from, To: &to})
	return items, err
}

// UpdateStatus never inserts: an unknown id yields ErrNotFound.
func (r *InquiryRepository) UpdateStatus(ctx context.Context, id string, status model.InquiryStatus) (*model.Inquiry, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}

	result := r.Write(ctx).
		Model(&InquiryEntity{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     string(status),
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return nil, pkgerrors.Wrapf(result.Error, "update inquiry %s status", id)
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}

	return r.GetByID(ctx, id)
}

func (r *InquiryRepository) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}

	result := r.Write(ctx).Where("id = ?", id).Delete(&InquiryEntity{})
	if result.Error != nil {
		return pkgerrors.Wrapf(result.Error, "delete inquiry %s", id)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
