package application

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/carhub/service-rental/internal/domain/preference"
	"github.com/carhub/service-rental/pkg/domain"
)

// UpdatePreferencesRequest changes the non-empty settings.
type UpdatePreferencesRequest struct {
	Language string `json:"language"`
	Theme    string `json:"theme"`
}

// PreferencesDTO is the API response representation of user settings.
type PreferencesDTO struct {
	Language         string   `json:"language"`
	Theme            string   `json:"theme"`
	DismissedBanners []string `json:"dismissed_banners"`
}

// PreferenceService manages user settings and dismissed banners.
type PreferenceService struct {
	repo   preference.Repository
	logger *zap.Logger
}

// NewPreferenceService creates a new PreferenceService.
func NewPreferenceService(repo preference.Repository, logger *zap.Logger) *PreferenceService {
	return &PreferenceService{repo: repo, logger: logger}
}

// Get returns the user's settings and dismissed banners.
func (s *PreferenceService) Get(ctx context.Context, userID string) (*PreferencesDTO, error) {
	p, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load preferences: %w", err)
	}
	banners, err := s.repo.Banners(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load dismissed banners: %w", err)
	}
	return &PreferencesDTO{
		Language:         string(p.Language),
		Theme:            string(p.Theme),
		DismissedBanners: []string(banners),
	}, nil
}

// Update changes the user's language and/or theme.
func (s *PreferenceService) Update(ctx context.Context, userID string, req UpdatePreferencesRequest) (*PreferencesDTO, error) {
	p, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load preferences: %w", err)
	}
	if err := p.Apply(preference.Language(req.Language), preference.Theme(req.Theme)); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, userID, p); err != nil {
		return nil, fmt.Errorf("failed to save preferences: %w", err)
	}
	return s.Get(ctx, userID)
}

// DismissBanner hides a banner for the user. It returns false if it was already hidden.
func (s *PreferenceService) DismissBanner(ctx context.Context, userID, bannerID string) (bool, error) {
	bannerID = strings.TrimSpace(bannerID)
	if bannerID == "" {
		return false, domain.NewValidationError("banner ID is required")
	}

	var dismissed bool
	err := s.repo.UpdateBanners(ctx, userID, func(b *preference.Banners) (bool, error) {
		dismissed = b.Dismiss(bannerID)
		return dismissed, nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to dismiss banner: %w", err)
	}
	return dismissed, nil
}

// IsBannerDismissed reports whether the user hid the banner.
func (s *PreferenceService) IsBannerDismissed(ctx context.Context, userID, bannerID string) (bool, error) {
	banners, err := s.repo.Banners(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("failed to load dismissed banners: %w", err)
	}
	return banners.IsDismissed(bannerID), nil
}

// ResetBanners shows every banner again.
func (s *PreferenceService) ResetBanners(ctx context.Context, userID string) error {
	if err := s.repo.ResetBanners(ctx, userID); err != nil {
		return fmt.Errorf("failed to reset banners: %w", err)
	}
	return nil
}
