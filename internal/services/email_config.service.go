package services

import (
	"context"
	"errors"

	"github.com/nimasrn/inquiry-gateway/internal/model"
	"github.com/nimasrn/inquiry-gateway/internal/repository"
	"github.com/nimasrn/inquiry-gateway/pkg/logger"
)

type EmailConfigRepository interface {
	Get(ctx context.Context) (*model.EmailConfig, error)
	Upsert(ctx context.Context, cfg *model.EmailConfig) (*model.EmailConfig, error)
}

type EmailConfigService struct {
	repo     EmailConfigRepository
	defaults model.EmailConfig
}

// NewEmailConfigService takes the environment defaults reported when no
// override row exists.
func NewEmailConfigService(repo EmailConfigRepository, defaults model.EmailConfig) *EmailConfigService {
	return &EmailConfigService{repo: repo, defaults: defaults}
}

func (s *EmailConfigService) Get(ctx context.Context) (*model.EmailConfig, error) {
	cfg, err := s.repo.Get(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		def := s.defaults
		return &def, nil
	}
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func (s *EmailConfigService) Update(ctx context.Context, cfg model.EmailConfig) (*model.EmailConfig, error) {
	if err := cfg.Validate(); err != nil {
		return nil, &ValidationError{Message: err.Error()}
	}
	saved, err := s.repo.Upsert(ctx, &cfg)
	if err != nil {
		return nil, err
	}
	logger.Info("email config updated", "recipient", saved.RecipientEmail, "enabled", saved.Enabled)
	return saved, nil
}
