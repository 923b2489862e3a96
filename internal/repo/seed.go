// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file seeds the reference data the pipeline depends
// on: the all-categories tag and the initial source catalog.
package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/ofertasgt/go-deals-backend/internal/domain"
)

// Seed inserts reference rows that must exist for a working deployment.
// It is idempotent: existing rows are detected by their unique names and
// left untouched.
func Seed(ctx context.Context, db *gorm.DB) error {
	if err := seedAllCategoriesTag(ctx, db); err != nil {
		return err
	}
	return seedDefaultSources(ctx, db)
}

func seedAllCategoriesTag(ctx context.Context, db *gorm.DB) error {
	_, err := GetCategoryByName(ctx, db, domain.AllCategoriesName)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrNotFound) {
		return err
	}
	emoji := "♾️"
	return CreateCategory(ctx, db, &domain.Category{
		Name:  domain.AllCategoriesName,
		Emoji: &emoji,
	})
}

func seedDefaultSources(ctx context.Context, db *gorm.DB) error {
	for _, s := range defaultSources {
		var existing domain.Source
		err := db.WithContext(ctx).Where("nombre = ?", s.Name).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, ErrNotFound) {
			return err
		}
		s := s
		if err := CreateSource(ctx, db, &s); err != nil {
			return err
		}
	}
	return nil
}

// defaultSources is the initial source catalog. The mapping spec keys are
// the legacy ones still used by production rows; the scraper accepts both
// spellings.
var defaultSources = []domain.Source{
	{
		Name:         "GuatemalaDigital",
		URL:          "https://guatemaladigital.com:85/api/Ofertas",
		Method:       "GET",
		ResponseKind: domain.ResponseKindJSON,
		Headers:      `{"User-Agent":"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"}`,
		FieldMap: `{
			"lista": "Response.Articulos",
			"id": "CodigoProducto",
			"titulo": "Nombre",
			"descripcion": "Descripcion",
			"precio_oferta": "PrecioOferta",
			"precio_normal": "PrecioNormal",
			"imagen": "UrlImagen",
			"categoria": "Categoria",
			"link_base": "https://guatemaladigital.com/Producto/"
		}`,
		// Amazon-style CDN resizing suffixes (e.g. "._AC_SL1300_.") inflate
		// or break image previews; strip them before caching.
		ImageStripPattern: `\._[A-Z][A-Z0-9_]*_`,
	},
}
