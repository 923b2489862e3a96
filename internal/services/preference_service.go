// Package services – PreferenceService
//
// Preferences follow a first-touch model: reading preferences for a user
// who has none creates the defaults and reloads them, so callers never see
// an absent row. All writes normalize the legacy "no price limit" sentinels
// into the single convention used across the engine: MaxPrice <= 0 means
// unbounded.
package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/ofertasgt/go-deals-backend/internal/domain"
	"github.com/ofertasgt/go-deals-backend/internal/repo"
)

// legacyNoLimit is the smallest historical "no upper bound" sentinel. The
// old menus wrote 999999 and the old summary screen treated anything from
// 10000 up as unlimited; both collapse to 0 here.
const legacyNoLimit = 10000

// PreferenceRepo defines the repository contract required by
// PreferenceService.
type PreferenceRepo interface {
	GetPreferences(ctx context.Context, db *gorm.DB, telegramID int64) (*domain.Preferences, error)
	CreateDefaultPreferences(ctx context.Context, db *gorm.DB, p domain.Preferences) error
	UpdatePreferences(ctx context.Context, db *gorm.DB, p domain.Preferences) error
}

// PreferenceService manages per-user offer filters.
type PreferenceService struct {
	DB   *gorm.DB
	Repo PreferenceRepo

	// Defaults applied on first touch.
	DefaultMinDiscount int
	DefaultMinPrice    float64
	DefaultMaxPrice    float64
}

// NewPreferenceService constructs a PreferenceService with the given
// first-touch defaults.
func NewPreferenceService(db *gorm.DB, r PreferenceRepo, minDiscount int, minPrice, maxPrice float64) *PreferenceService {
	return &PreferenceService{
		DB:                 db,
		Repo:               r,
		DefaultMinDiscount: minDiscount,
		DefaultMinPrice:    minPrice,
		DefaultMaxPrice:    maxPrice,
	}
}

// Ensure returns the user's preferences, creating the defaults first when
// none exist yet. The returned values are normalized.
func (s *PreferenceService) Ensure(ctx context.Context, telegramID int64) (*domain.Preferences, error) {
	p, err := s.Repo.GetPreferences(ctx, s.DB, telegramID)
	if errors.Is(err, repo.ErrNotFound) {
		if err := s.Repo.CreateDefaultPreferences(ctx, s.DB, s.defaults(telegramID)); err != nil {
			return nil, err
		}
		p, err = s.Repo.GetPreferences(ctx, s.DB, telegramID)
	}
	if err != nil {
		return nil, err
	}
	normalize(p)
	return p, nil
}

// EnsureDefaults creates the defaults row when absent, without loading it.
// Used by user registration.
func (s *PreferenceService) EnsureDefaults(ctx context.Context, telegramID int64) error {
	return s.Repo.CreateDefaultPreferences(ctx, s.DB, s.defaults(telegramID))
}

// Update validates, normalizes, and persists new preference values for the
// user, creating the row first when needed.
func (s *PreferenceService) Update(ctx context.Context, telegramID int64, p domain.Preferences) error {
	p.UserTelegramID = telegramID
	if p.MinDiscount < 0 || p.MinDiscount > 100 || p.MinPrice < 0 {
		return ErrInvalidPreferences
	}
	normalize(&p)
	if p.MaxPrice > 0 && p.MaxPrice < p.MinPrice {
		return ErrInvalidPreferences
	}

	err := s.Repo.UpdatePreferences(ctx, s.DB, p)
	if errors.Is(err, repo.ErrNotFound) {
		if err := s.Repo.CreateDefaultPreferences(ctx, s.DB, s.defaults(telegramID)); err != nil {
			return err
		}
		err = s.Repo.UpdatePreferences(ctx, s.DB, p)
	}
	return err
}

func (s *PreferenceService) defaults(telegramID int64) domain.Preferences {
	p := domain.Preferences{
		UserTelegramID: telegramID,
		MinDiscount:    s.DefaultMinDiscount,
		MinPrice:       s.DefaultMinPrice,
		MaxPrice:       s.DefaultMaxPrice,
	}
	normalize(&p)
	return p
}

// UnboundedCeiling reports whether a raw price ceiling means "no upper
// bound". Callers presenting ceilings to users must not offer finite
// values in this range: they would be stored as unbounded.
func UnboundedCeiling(v float64) bool {
	return v <= 0 || v >= legacyNoLimit
}

// normalize folds the legacy sentinels into the uniform convention:
// MaxPrice <= 0 (or any legacy "unlimited" value) becomes 0, meaning no
// upper bound.
func normalize(p *domain.Preferences) {
	if UnboundedCeiling(p.MaxPrice) {
		p.MaxPrice = 0
	}
	if p.MinPrice < 0 {
		p.MinPrice = 0
	}
	if p.MinDiscount < 0 {
		p.MinDiscount = 0
	}
	if p.MinDiscount > 100 {
		p.MinDiscount = 100
	}
}
