// Package services – SourceService
//
// A user must never be left with zero sources: resolving an empty selection
// assigns the full catalog and persists it (auto-healing), mirroring the
// first-touch behavior of preferences.
package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/ofertasgt/go-deals-backend/internal/domain"
	"github.com/ofertasgt/go-deals-backend/internal/repo"
)

// SourceRepo defines the repository contract required by SourceService.
type SourceRepo interface {
	ListSources(ctx context.Context, db *gorm.DB) ([]domain.Source, error)
	GetSource(ctx context.Context, db *gorm.DB, id uint) (*domain.Source, error)
	ListUserSources(ctx context.Context, db *gorm.DB, telegramID int64) ([]domain.Source, error)
	ReplaceUserSources(ctx context.Context, db *gorm.DB, telegramID int64, sourceIDs []uint) error
}

// SourceService manages the source catalog and per-user selections.
type SourceService struct {
	DB   *gorm.DB
	Repo SourceRepo
}

// NewSourceService constructs a SourceService.
func NewSourceService(db *gorm.DB, r SourceRepo) *SourceService {
	return &SourceService{DB: db, Repo: r}
}

// List returns the full source catalog.
func (s *SourceService) List(ctx context.Context) ([]domain.Source, error) {
	return s.Repo.ListSources(ctx, s.DB)
}

// Get fetches one source by id.
func (s *SourceService) Get(ctx context.Context, id uint) (*domain.Source, error) {
	src, err := s.Repo.GetSource(ctx, s.DB, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrSourceNotFound
	}
	return src, err
}

// EnsureSelection returns the user's selected sources. An empty selection
// is healed by assigning every known source and reloading.
func (s *SourceService) EnsureSelection(ctx context.Context, telegramID int64) ([]domain.Source, error) {
	selected, err := s.Repo.ListUserSources(ctx, s.DB, telegramID)
	if err != nil || len(selected) > 0 {
		return selected, err
	}

	all, err := s.Repo.ListSources(ctx, s.DB)
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, nil
	}
	ids := make([]uint, 0, len(all))
	for _, src := range all {
		ids = append(ids, src.ID)
	}
	if err := s.Repo.ReplaceUserSources(ctx, s.DB, telegramID, ids); err != nil {
		return nil, err
	}
	return s.Repo.ListUserSources(ctx, s.DB, telegramID)
}

// ReplaceSelection swaps the user's selection for sourceIDs after checking
// that every id exists.
func (s *SourceService) ReplaceSelection(ctx context.Context, telegramID int64, sourceIDs []uint) error {
	for _, id := range sourceIDs {
		if _, err := s.Get(ctx, id); err != nil {
			return err
		}
	}
	return s.Repo.ReplaceUserSources(ctx, s.DB, telegramID, sourceIDs)
}
