// Package services – CategoryService
package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/ofertasgt/go-deals-backend/internal/domain"
	"github.com/ofertasgt/go-deals-backend/internal/repo"
)

// CategoryRepo defines the repository contract required by CategoryService.
type CategoryRepo interface {
	ListCategories(ctx context.Context, db *gorm.DB) ([]domain.Category, error)
	GetCategoryByName(ctx context.Context, db *gorm.DB, name string) (*domain.Category, error)
	CreateCategory(ctx context.Context, db *gorm.DB, c *domain.Category) error
	ListUserCategoryIDs(ctx context.Context, db *gorm.DB, telegramID int64) (map[uint]struct{}, error)
	ReplaceUserCategories(ctx context.Context, db *gorm.DB, telegramID int64, categoryIDs []uint) error
	ToggleUserCategory(ctx context.Context, db *gorm.DB, telegramID int64, categoryID uint) error
}

// CategoryService manages the category catalog and per-user selections.
type CategoryService struct {
	DB   *gorm.DB
	Repo CategoryRepo
}

// NewCategoryService constructs a CategoryService.
func NewCategoryService(db *gorm.DB, r CategoryRepo) *CategoryService {
	return &CategoryService{DB: db, Repo: r}
}

// Catalog returns every category, ordered by name.
func (s *CategoryService) Catalog(ctx context.Context) ([]domain.Category, error) {
	return s.Repo.ListCategories(ctx, s.DB)
}

// SelectedIDs returns the set of category ids selected by the user.
func (s *CategoryService) SelectedIDs(ctx context.Context, telegramID int64) (map[uint]struct{}, error) {
	return s.Repo.ListUserCategoryIDs(ctx, s.DB, telegramID)
}

// ReplaceSelection swaps the user's category selection.
func (s *CategoryService) ReplaceSelection(ctx context.Context, telegramID int64, categoryIDs []uint) error {
	return s.Repo.ReplaceUserCategories(ctx, s.DB, telegramID, categoryIDs)
}

// Toggle flips one category in the user's selection.
func (s *CategoryService) Toggle(ctx context.Context, telegramID int64, categoryID uint) error {
	return s.Repo.ToggleUserCategory(ctx, s.DB, telegramID, categoryID)
}

// Create adds a catalog entry. Names are trimmed and must be unique;
// ErrCategoryExists is returned on a duplicate.
func (s *CategoryService) Create(ctx context.Context, name string, emoji *string, parentID *uint) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrCategoryNotFound
	}

	if _, err := s.Repo.GetCategoryByName(ctx, s.DB, name); err == nil {
		return nil, ErrCategoryExists
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}

	c := &domain.Category{Name: name, Emoji: emoji, ParentID: parentID}
	if err := s.Repo.CreateCategory(ctx, s.DB, c); err != nil {
		return nil, err
	}
	return c, nil
}
