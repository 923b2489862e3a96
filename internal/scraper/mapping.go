// Package scraper implements the source-driven ingestion core: it interprets
// declarative per-source field mappings to project raw JSON responses into
// normalized offers, and performs the HTTP fetches that produce them.
package scraper

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// validate checks mapping specs after parsing. A spec without the required
// projections can never yield usable offers, so it is rejected up front
// instead of silently producing empty rows.
var validate = validator.New()

// MappingSpec is the typed form of a source's stored field mapping. Each
// field holds a dot-separated path into one raw item, except ListPath
// (a path into the response root that must resolve to an array) and
// LinkBase (a fixed URL prefix concatenated with the item id).
//
// The stored JSON accepts two spellings per key: the current English names
// and the legacy names still present in production rows (lista, titulo,
// precio_oferta, ...).
type MappingSpec struct {
	ListPath        string `validate:"required"`
	ID              string `validate:"required"`
	Title           string `validate:"required"`
	Description     string
	SalePrice       string `validate:"required"`
	RegularPrice    string
	DiscountPercent string
	Image           string
	Category        string
	Link            string
	LinkBase        string
}

// mappingSpecJSON mirrors MappingSpec with both key spellings. Legacy keys
// win only when the current key is absent.
type mappingSpecJSON struct {
	ListPath        string `json:"list_path"`
	ID              string `json:"id"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	SalePrice       string `json:"sale_price"`
	RegularPrice    string `json:"regular_price"`
	DiscountPercent string `json:"discount_percent"`
	Image           string `json:"image"`
	Category        string `json:"category"`
	Link            string `json:"link"`
	LinkBase        string `json:"link_base"`

	LegacyList         string `json:"lista"`
	LegacyTitle        string `json:"titulo"`
	LegacyDescription  string `json:"descripcion"`
	LegacySalePrice    string `json:"precio_oferta"`
	LegacyRegularPrice string `json:"precio_normal"`
	LegacyDiscount     string `json:"porcentaje"`
	LegacyImage        string `json:"imagen"`
	LegacyCategory     string `json:"categoria"`
	LegacyLink         string `json:"enlace"`
}

// ParseMappingSpec decodes and validates a stored mapping-spec blob.
func ParseMappingSpec(raw string) (*MappingSpec, error) {
	var j mappingSpecJSON
	if err := json.Unmarshal([]byte(raw), &j); err != nil {
		return nil, fmt.Errorf("mapping spec: %w", err)
	}
	spec := &MappingSpec{
		ListPath:        firstNonEmpty(j.ListPath, j.LegacyList),
		ID:              j.ID,
		Title:           firstNonEmpty(j.Title, j.LegacyTitle),
		Description:     firstNonEmpty(j.Description, j.LegacyDescription),
		SalePrice:       firstNonEmpty(j.SalePrice, j.LegacySalePrice),
		RegularPrice:    firstNonEmpty(j.RegularPrice, j.LegacyRegularPrice),
		DiscountPercent: firstNonEmpty(j.DiscountPercent, j.LegacyDiscount),
		Image:           firstNonEmpty(j.Image, j.LegacyImage),
		Category:        firstNonEmpty(j.Category, j.LegacyCategory),
		Link:            firstNonEmpty(j.Link, j.LegacyLink),
		LinkBase:        j.LinkBase,
	}
	if err := validate.Struct(spec); err != nil {
		return nil, fmt.Errorf("mapping spec: %w", err)
	}
	return spec, nil
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
