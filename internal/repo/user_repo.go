// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for Telegram
// subscribers.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ofertasgt/go-deals-backend/internal/domain"
)

// UpsertUser inserts the user or refreshes its profile fields on conflict.
// Role and setup state are never overwritten by an upsert.
func UpsertUser(ctx context.Context, db *gorm.DB, u domain.User) error {
	if u.Role == "" {
		u.Role = domain.RoleUser
	}
	u.CreatedAt = time.Now().UTC()
	u.UpdatedAt = u.CreatedAt
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "telegram_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"nombre", "username", "is_bot", "updated_at"}),
		}).
		Create(&u).Error
}

// GetUser fetches a user by Telegram id, or ErrNotFound.
func GetUser(ctx context.Context, db *gorm.DB, telegramID int64) (*domain.User, error) {
	var u domain.User
	if err := db.WithContext(ctx).First(&u, "telegram_id = ?", telegramID).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateUserName sets the display name of an existing user.
func UpdateUserName(ctx context.Context, db *gorm.DB, telegramID int64, name string) error {
	return db.WithContext(ctx).
		Model(&domain.User{}).
		Where("telegram_id = ?", telegramID).
		Update("nombre", name).Error
}

// MarkSetupComplete records that the user finished initial configuration.
func MarkSetupComplete(ctx context.Context, db *gorm.DB, telegramID int64) error {
	return db.WithContext(ctx).
		Model(&domain.User{}).
		Where("telegram_id = ?", telegramID).
		Update("configuracion_inicial_completa", true).Error
}

// SetLastSummaryMessageID remembers the bot's last configuration-summary
// message so the next one can replace it. A nil id clears the marker.
func SetLastSummaryMessageID(ctx context.Context, db *gorm.DB, telegramID int64, messageID *int) error {
	return db.WithContext(ctx).
		Model(&domain.User{}).
		Where("telegram_id = ?", telegramID).
		Update("last_summary_message_id", messageID).Error
}
