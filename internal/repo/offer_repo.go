// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the offer cache: freshness-bounded
// reads per source and idempotent batched upserts keyed by the offer link.
//
// Error semantics follow the rest of the package: raw gorm errors are
// propagated; a batch that fails is reported to the caller, who decides
// whether sibling batches proceed.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ofertasgt/go-deals-backend/internal/domain"
)

// ListFreshOffers returns the cached offers for sourceID captured within the
// ttl window, ordered by discount percentage descending. It never fetches;
// stale rows are simply excluded and remain in place until overwritten.
func ListFreshOffers(ctx context.Context, db *gorm.DB, sourceID uint, ttl time.Duration) ([]domain.Offer, error) {
	var out []domain.Offer
	cutoff := time.Now().UTC().Add(-ttl)
	err := db.WithContext(ctx).
		Where("fuente_id = ? AND fecha_captura > ?", sourceID, cutoff).
		Order("porcentaje_descuento desc").
		Find(&out).Error
	return out, err
}

// UpsertOffers writes offers for sourceID in batches of at most batchSize
// rows. Conflicts on the enlace natural key overwrite the sale price, the
// discount percentage, and the capture timestamp, leaving the rest of the
// row intact. Each batch is atomic on its own; a failed batch does not roll
// back previously written ones. The first batch error is returned after all
// batches were attempted.
func UpsertOffers(ctx context.Context, db *gorm.DB, sourceID uint, offers []domain.Offer, batchSize int) error {
	if len(offers) == 0 {
		return nil
	}
	if batchSize < 1 {
		batchSize = 20
	}

	now := time.Now().UTC()
	rows := make([]domain.Offer, len(offers))
	for i, o := range offers {
		o.ID = 0
		o.SourceID = sourceID
		o.CapturedAt = now
		rows[i] = o
	}

	var firstErr error
	for start := 0; start < len(rows); start += batchSize {
		end := start + batchSize
		if end > len(rows) {
			end = len(rows)
		}
		err := db.WithContext(ctx).
			Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "enlace"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"precio_oferta", "porcentaje_descuento", "fecha_captura",
				}),
			}).
			Create(rows[start:end]).Error
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// CountOffers returns the total number of cached offers, fresh or stale.
func CountOffers(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Model(&domain.Offer{}).Count(&total).Error
	return total, err
}

// ClearOffers removes every cached offer. Operator action only; the
// pipeline itself never deletes rows.
func ClearOffers(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).Where("1 = 1").Delete(&domain.Offer{}).Error
}
