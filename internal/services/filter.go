// Package services – preference filter.
//
// FilterOffers is the pure selection step at the end of the ingestion
// pipeline: no I/O, no ordering. Callers sort and truncate afterwards.
package services

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/ofertasgt/go-deals-backend/internal/domain"
)

// foldCaser performs Unicode case folding for caseless matching. Category
// names are Spanish, so ASCII lowercasing is not enough.
var foldCaser = cases.Fold()

// FilterOffers applies a user's price, discount, and category constraints
// to a merged offer set and returns the surviving subset.
//
// Rules:
//   - Sale price below MinPrice drops the offer.
//   - MaxPrice bounds the price only when positive; 0 means unbounded.
//   - Discount below MinDiscount drops the offer.
//   - When the all-categories tag is selected, category filtering is off.
//     Otherwise an empty selection keeps nothing, and a non-empty selection
//     keeps offers whose title or category label contains the name of at
//     least one selected category. Matching is a caseless substring check,
//     since sources carry free-text labels rather than category ids.
func FilterOffers(
	offers []domain.Offer,
	prefs domain.Preferences,
	selectedIDs map[uint]struct{},
	catalog []domain.Category,
) []domain.Offer {
	allSelected := AllCategoriesSelected(catalog, selectedIDs)
	terms := selectedCategoryTerms(catalog, selectedIDs)

	out := make([]domain.Offer, 0, len(offers))
	for _, o := range offers {
		if o.SalePrice < prefs.MinPrice {
			continue
		}
		if prefs.MaxPrice > 0 && o.SalePrice > prefs.MaxPrice {
			continue
		}
		if o.DiscountPercent < prefs.MinDiscount {
			continue
		}
		if !allSelected && !matchesAnyCategory(o, terms) {
			continue
		}
		out = append(out, o)
	}
	return out
}

// AllCategoriesSelected reports whether the catalog's sentinel
// all-categories tag is among the selected ids.
func AllCategoriesSelected(catalog []domain.Category, selectedIDs map[uint]struct{}) bool {
	for _, c := range catalog {
		if !c.IsAllCategories() {
			continue
		}
		_, ok := selectedIDs[c.ID]
		return ok
	}
	return false
}

// selectedCategoryTerms folds the names of the selected categories for
// caseless matching. The sentinel tag itself is never a matching term.
func selectedCategoryTerms(catalog []domain.Category, selectedIDs map[uint]struct{}) []string {
	terms := make([]string, 0, len(selectedIDs))
	for _, c := range catalog {
		if c.IsAllCategories() {
			continue
		}
		if _, ok := selectedIDs[c.ID]; ok {
			terms = append(terms, foldCaser.String(c.Name))
		}
	}
	return terms
}

func matchesAnyCategory(o domain.Offer, terms []string) bool {
	if len(terms) == 0 {
		return false
	}
	haystack := foldCaser.String(o.Title)
	if o.Category != nil {
		haystack += " " + foldCaser.String(*o.Category)
	}
	for _, t := range terms {
		if strings.Contains(haystack, t) {
			return true
		}
	}
	return false
}
