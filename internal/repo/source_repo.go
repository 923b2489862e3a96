// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for deal sources
// and the per-user source selection.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/ofertasgt/go-deals-backend/internal/domain"
)

// ListSources returns every configured source, ordered by name.
func ListSources(ctx context.Context, db *gorm.DB) ([]domain.Source, error) {
	var out []domain.Source
	err := db.WithContext(ctx).Order("nombre").Find(&out).Error
	return out, err
}

// GetSource fetches a single source by id, or ErrNotFound.
func GetSource(ctx context.Context, db *gorm.DB, id uint) (*domain.Source, error) {
	var s domain.Source
	if err := db.WithContext(ctx).First(&s, id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// ListUserSources returns the sources selected by the user, ordered by name.
// An empty result is not an error; the service layer treats it as a trigger
// for default assignment.
func ListUserSources(ctx context.Context, db *gorm.DB, telegramID int64) ([]domain.Source, error) {
	var out []domain.Source
	err := db.WithContext(ctx).
		Joins("JOIN UsuarioFuentes uf ON uf.fuente_id = Fuentes.id").
		Where("uf.usuario_id = ?", telegramID).
		Order("Fuentes.nombre").
		Find(&out).Error
	return out, err
}

// ReplaceUserSources swaps the user's source selection for sourceIDs inside
// one transaction. An empty sourceIDs clears the selection.
func ReplaceUserSources(ctx context.Context, db *gorm.DB, telegramID int64, sourceIDs []uint) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("usuario_id = ?", telegramID).Delete(&domain.UserSource{}).Error; err != nil {
			return err
		}
		if len(sourceIDs) == 0 {
			return nil
		}
		rows := make([]domain.UserSource, 0, len(sourceIDs))
		for _, id := range sourceIDs {
			rows = append(rows, domain.UserSource{UserTelegramID: telegramID, SourceID: id})
		}
		return tx.Create(&rows).Error
	})
}

// CreateSource inserts a new source row.
func CreateSource(ctx context.Context, db *gorm.DB, s *domain.Source) error {
	return db.WithContext(ctx).Create(s).Error
}
