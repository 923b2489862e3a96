// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the category
// catalog and the per-user category selection.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/ofertasgt/go-deals-backend/internal/domain"
)

// ListCategories returns the full catalog ordered by name.
func ListCategories(ctx context.Context, db *gorm.DB) ([]domain.Category, error) {
	var out []domain.Category
	err := db.WithContext(ctx).Order("nombre").Find(&out).Error
	return out, err
}

// GetCategoryByName fetches a category by its unique name, or ErrNotFound.
func GetCategoryByName(ctx context.Context, db *gorm.DB, name string) (*domain.Category, error) {
	var c domain.Category
	if err := db.WithContext(ctx).Where("nombre = ?", name).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateCategory inserts a new catalog entry. Name uniqueness is enforced by
// the schema; the raw constraint error is propagated for the service layer
// to translate.
func CreateCategory(ctx context.Context, db *gorm.DB, c *domain.Category) error {
	return db.WithContext(ctx).Create(c).Error
}

// ListUserCategoryIDs returns the set of category ids the user selected.
func ListUserCategoryIDs(ctx context.Context, db *gorm.DB, telegramID int64) (map[uint]struct{}, error) {
	var rows []domain.UserCategory
	err := db.WithContext(ctx).
		Where("usuario_telegram_id = ?", telegramID).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[uint]struct{}, len(rows))
	for _, r := range rows {
		out[r.CategoryID] = struct{}{}
	}
	return out, nil
}

// ReplaceUserCategories swaps the user's category selection for categoryIDs
// inside one transaction. An empty categoryIDs clears the selection.
func ReplaceUserCategories(ctx context.Context, db *gorm.DB, telegramID int64, categoryIDs []uint) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("usuario_telegram_id = ?", telegramID).Delete(&domain.UserCategory{}).Error; err != nil {
			return err
		}
		if len(categoryIDs) == 0 {
			return nil
		}
		rows := make([]domain.UserCategory, 0, len(categoryIDs))
		for _, id := range categoryIDs {
			rows = append(rows, domain.UserCategory{UserTelegramID: telegramID, CategoryID: id})
		}
		return tx.Create(&rows).Error
	})
}

// ToggleUserCategory flips the selection state of one category for the user.
func ToggleUserCategory(ctx context.Context, db *gorm.DB, telegramID int64, categoryID uint) error {
	row := domain.UserCategory{UserTelegramID: telegramID, CategoryID: categoryID}
	res := db.WithContext(ctx).
		Where("usuario_telegram_id = ? AND categoria_id = ?", telegramID, categoryID).
		Delete(&domain.UserCategory{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}
	return db.WithContext(ctx).Create(&row).Error
}
