// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for per-user
// offer preferences.
package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ofertasgt/go-deals-backend/internal/domain"
)

// GetPreferences fetches the preferences row for telegramID, or ErrNotFound
// on first touch.
func GetPreferences(ctx context.Context, db *gorm.DB, telegramID int64) (*domain.Preferences, error) {
	var p domain.Preferences
	err := db.WithContext(ctx).
		Where("usuario_telegram_id = ?", telegramID).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateDefaultPreferences inserts a defaults row for telegramID if none
// exists yet. Existing rows are left untouched (INSERT OR IGNORE semantics).
func CreateDefaultPreferences(ctx context.Context, db *gorm.DB, p domain.Preferences) error {
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&p).Error
}

// UpdatePreferences applies the non-key fields of p to the user's row.
// Returns ErrNotFound when no row exists for the user.
func UpdatePreferences(ctx context.Context, db *gorm.DB, p domain.Preferences) error {
	res := db.WithContext(ctx).
		Model(&domain.Preferences{}).
		Where("usuario_telegram_id = ?", p.UserTelegramID).
		Updates(map[string]any{
			"porcentaje_descuento_min": p.MinDiscount,
			"precio_min":               p.MinPrice,
			"precio_max":               p.MaxPrice,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
