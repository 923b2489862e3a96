// Package services – UserService
package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/ofertasgt/go-deals-backend/internal/domain"
	"github.com/ofertasgt/go-deals-backend/internal/repo"
)

// UserRepo defines the repository contract required by UserService.
type UserRepo interface {
	UpsertUser(ctx context.Context, db *gorm.DB, u domain.User) error
	GetUser(ctx context.Context, db *gorm.DB, telegramID int64) (*domain.User, error)
	UpdateUserName(ctx context.Context, db *gorm.DB, telegramID int64, name string) error
	MarkSetupComplete(ctx context.Context, db *gorm.DB, telegramID int64) error
	SetLastSummaryMessageID(ctx context.Context, db *gorm.DB, telegramID int64, messageID *int) error
}

// PreferenceInitializer creates the default preferences row for a user.
type PreferenceInitializer interface {
	EnsureDefaults(ctx context.Context, telegramID int64) error
}

// UserService manages Telegram subscribers.
type UserService struct {
	DB    *gorm.DB
	Repo  UserRepo
	Prefs PreferenceInitializer
}

// NewUserService constructs a UserService.
func NewUserService(db *gorm.DB, r UserRepo, prefs PreferenceInitializer) *UserService {
	return &UserService{DB: db, Repo: r, Prefs: prefs}
}

// Register upserts the user's profile and guarantees a preferences row
// exists, so later pipeline calls never hit a missing-preferences path.
func (s *UserService) Register(ctx context.Context, u domain.User) error {
	if err := s.Repo.UpsertUser(ctx, s.DB, u); err != nil {
		return err
	}
	return s.Prefs.EnsureDefaults(ctx, u.TelegramID)
}

// Get fetches a registered user, or ErrUserNotFound.
func (s *UserService) Get(ctx context.Context, telegramID int64) (*domain.User, error) {
	u, err := s.Repo.GetUser(ctx, s.DB, telegramID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return u, err
}

// IsAdmin reports whether the user exists and holds the admin role.
func (s *UserService) IsAdmin(ctx context.Context, telegramID int64) bool {
	u, err := s.Get(ctx, telegramID)
	return err == nil && u.Role == domain.RoleAdmin
}

// UpdateName changes the user's display name.
func (s *UserService) UpdateName(ctx context.Context, telegramID int64, name string) error {
	return s.Repo.UpdateUserName(ctx, s.DB, telegramID, name)
}

// CompleteSetup marks initial configuration as finished.
func (s *UserService) CompleteSetup(ctx context.Context, telegramID int64) error {
	return s.Repo.MarkSetupComplete(ctx, s.DB, telegramID)
}

// RememberSummaryMessage stores the id of the last configuration summary
// sent by the bot, so the next summary can delete it first.
func (s *UserService) RememberSummaryMessage(ctx context.Context, telegramID int64, messageID *int) error {
	return s.Repo.SetLastSummaryMessageID(ctx, s.DB, telegramID, messageID)
}
