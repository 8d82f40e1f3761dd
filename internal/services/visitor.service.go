package services

import (
	"context"
	"strings"

	"github.com/nimasrn/inquiry-gateway/internal/model"
	"github.com/nimasrn/inquiry-gateway/pkg/prom"
	pkgerrors "github.com/pkg/errors"
)

type VisitorRepository interface {
	Create(ctx context.Context, v *model.Visitor) (*model.Visitor, error)
	Stats(ctx context.Context, f model.VisitorFilter) (*model.VisitorStats, error)
}

type VisitorService struct {
	repo VisitorRepository
}

func NewVisitorService(repo VisitorRepository) *VisitorService {
	return &VisitorService{repo: repo}
}

func (s *VisitorService) Log(ctx context.Context, ip, userAgent string) (*model.Visitor, error) {
	v, err := s.repo.Create(ctx, &model.Visitor{
		IPAddress: strings.TrimSpace(ip),
		UserAgent: userAgent,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(err, "log visit")
	}
	prom.IncVisitLogged()
	return v, nil
}

func (s *VisitorService) Stats(ctx context.Context, f model.VisitorFilter) (*model.VisitorStats, error) {
	if f.From != nil && f.To != nil && !f.From.Before(*f.To) {
		return nil, validationf("from must be before to")
	}
	return s.repo.Stats(ctx, f)
}
