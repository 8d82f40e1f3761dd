package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/nimasrn/inquiry-gateway/internal/model"
	"github.com/nimasrn/inquiry-gateway/internal/repository"
	"github.com/nimasrn/inquiry-gateway/pkg/logger"
	"github.com/nimasrn/inquiry-gateway/pkg/prom"
	pkgerrors "github.com/pkg/errors"
)

var (
	ErrNotificationFailed = errors.New("failed to send email")
	ErrEmailDisabled      = errors.New("email notifications are disabled")
)

type InquiryRepository interface {
	Create(ctx context.Context, inq *model.Inquiry) (*model.Inquiry, error)
	GetByID(ctx context.Context, id string) (*model.Inquiry, error)
	List(ctx context.Context, f model.InquiryFilter) ([]*model.Inquiry, int64, error) // results, totalCount
	UpdateStatus(ctx context.Context, id string, status model.InquiryStatus) (*model.Inquiry, error)
	Delete(ctx context.Context, id string) error
}

type InquiryNotifier interface {
	NotifyInquiry(ctx context.Context, inq *model.Inquiry) model.NotificationResult
}

type ArtTypeNormalizer interface {
	Normalize(slug string) string
}

type InquiryService struct {
	repo     InquiryRepository
	notifier InquiryNotifier
	direct   InquiryNotifier
	artTypes ArtTypeNormalizer
	now      func() time.Time
}

// NewInquiryService wires the service. notifier handles the alert after a
// submission and may be asynchronous; direct serves explicit email requests
// and falls back to notifier when nil.
func NewInquiryService(repo InquiryRepository, notifier, direct InquiryNotifier, artTypes ArtTypeNormalizer) *InquiryService {
	if direct == nil {
		direct = notifier
	}
	return &InquiryService{
		repo:     repo,
		notifier: notifier,
		direct:   direct,
		artTypes: artTypes,
		now:      time.Now,
	}
}

// Create persists the inquiry and then attempts the instant notification.
// The notification outcome never turns a saved inquiry into an error.
func (s *InquiryService) Create(ctx context.Context, p model.InquiryCreateRequest) (*model.Inquiry, model.NotificationResult, error) {
	p.Normalize()
	if err := p.Validate(); err != nil {
		return nil, model.NotificationResult{}, &ValidationError{Message: err.Error()}
	}

	inq := p.ToInquiry(s.now().UTC())
	created, err := s.repo.Create(ctx, inq)
	if err != nil {
		return nil, model.NotificationResult{}, pkgerrors.Wrap(err, "create inquiry")
	}

	label := created.ArtType
	if s.artTypes != nil {
		label = s.artTypes.Normalize(label)
	}
	prom.IncInquiryCreated(label)

	logger.Info("inquiry created", "inquiry_id", created.ID, "art_type", created.ArtType)

	result := s.notify(ctx, s.notifier, created)
	if result.Failed() {
		logger.Error("inquiry notification failed",
			"inquiry_id", created.ID,
			"provider", result.Provider,
			"error", result.Error)
	}
	return created, result, nil
}

func (s *InquiryService) notify(ctx context.Context, n InquiryNotifier, inq *model.Inquiry) model.NotificationResult {
	if n == nil {
		return model.NotificationResult{Status: model.NotificationSkipped}
	}
	return n.NotifyInquiry(ctx, inq)
}

func (s *InquiryService) List(ctx context.Context, f model.InquiryFilter) ([]*model.Inquiry, int64, error) {
	for _, st := range f.Statuses {
		if !st.Valid() {
			return nil, 0, invalidStatus(st)
		}
	}
	if f.Limit < 0 || f.Offset < 0 {
		return nil, 0, validationf("limit and offset must not be negative")
	}
	return s.repo.List(ctx, f)
}

func (s *InquiryService) Get(ctx context.Context, id string) (*model.Inquiry, error) {
	inq, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return inq, nil
}

func (s *InquiryService) UpdateStatus(ctx context.Context, id string, status string) (*model.Inquiry, error) {
	st := model.InquiryStatus(strings.TrimSpace(status))
	if !st.Valid() {
		return nil, invalidStatus(st)
	}
	inq, err := s.repo.UpdateStatus(ctx, id, st)
	if err != nil {
		return nil, mapNotFound(err)
	}
	logger.Info("inquiry status updated", "inquiry_id", id, "status", st)
	return inq, nil
}

func (s *InquiryService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapNotFound(err)
	}
	logger.Info("inquiry deleted", "inquiry_id", id)
	return nil
}

// SendEmailRequest names a stored inquiry by ID or carries the fields
// inline.
type SendEmailRequest struct {
	ID      string
	Inquiry model.InquiryCreateRequest
}

// SendEmail sends the inquiry alert on demand and reports the provider
// outcome as an error.
func (s *InquiryService) SendEmail(ctx context.Context, req SendEmailRequest) (model.NotificationResult, error) {
	var inq *model.Inquiry
	if id := strings.TrimSpace(req.ID); id != "" {
		stored, err := s.Get(ctx, id)
		if err != nil {
			return model.NotificationResult{}, err
		}
		inq = stored
	} else {
		p := req.Inquiry
		p.Normalize()
		if f := p.MissingField(); f != "" {
			return model.NotificationResult{}, validationf("Missing field: %s", f)
		}
		inq = p.ToInquiry(s.now().UTC())
	}

	result := s.notify(ctx, s.direct, inq)
	switch result.Status {
	case model.NotificationFailed:
		return result, pkgerrors.Wrap(ErrNotificationFailed, result.Error)
	case model.NotificationSkipped:
		return result, ErrEmailDisabled
	}
	return result, nil
}

func invalidStatus(st model.InquiryStatus) error {
	return validationf("Invalid status %q. Must be one of: %s", string(st), strings.Join(model.InquiryStatusNames(), ", "))
}

func mapNotFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
