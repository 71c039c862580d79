package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/osvita-dev/kids-registry-api/internal/models"
	appErrors "github.com/osvita-dev/kids-registry-api/pkg/errors"
)

type preferenceRepository interface {
	Load(ctx context.Context, operator string) (models.FilterPreferences, error)
	Save(ctx context.Context, operator string, prefs models.FilterPreferences) error
	Clear(ctx context.Context, operator string) error
}

// PreferenceService persists the durable subset of list-view state between
// sessions: search term, gender filter, sort and year. Date bounds and the
// current page are never stored.
type PreferenceService struct {
	repo   preferenceRepository
	logger *zap.Logger
}

// NewPreferenceService constructs a PreferenceService.
func NewPreferenceService(repo preferenceRepository, logger *zap.Logger) *PreferenceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PreferenceService{repo: repo, logger: logger}
}

// Load returns the stored preferences for an operator; a missing blob is
// zero-value defaults, and a store failure falls back to defaults too so
// startup never blocks on preferences.
func (s *PreferenceService) Load(ctx context.Context, operator string) models.FilterPreferences {
	prefs, err := s.repo.Load(ctx, operator)
	if err != nil {
		s.logger.Warn("failed to load filter preferences", zap.Error(err))
		return models.FilterPreferences{}
	}
	return prefs
}

// Save overwrites the stored preferences; called on every filter change.
func (s *PreferenceService) Save(ctx context.Context, operator string, prefs models.FilterPreferences) error {
	if err := s.repo.Save(ctx, operator, prefs); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save filter preferences")
	}
	return nil
}

// Clear drops the stored preferences, as on logout.
func (s *PreferenceService) Clear(ctx context.Context, operator string) error {
	if err := s.repo.Clear(ctx, operator); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear filter preferences")
	}
	return nil
}
