package scraper

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/ofertasgt/go-deals-backend/internal/domain"
)

// MapOffers projects a parsed JSON response into normalized offers using the
// source's mapping spec.
//
// Shape mismatches are never errors: a missing or non-array list path yields
// an empty slice, and a missing attribute path yields a nil field. Items
// without a parseable, positive sale price or without a title are dropped.
//
// Link precedence (it determines de-duplication, so the order is part of the
// contract):
//  1. LinkBase configured: LinkBase + item id.
//  2. Link holds a literal URL in the spec itself: that fixed URL for every
//     item (degenerate, collapses the whole feed into one cache row).
//  3. Link resolved as a per-item path.
//  4. The source's endpoint URL.
func MapOffers(raw any, spec *MappingSpec, src domain.Source) []domain.Offer {
	list, ok := resolvePath(raw, spec.ListPath).([]any)
	if !ok {
		return nil
	}

	strip := compileStripRule(src.ImageStripPattern)

	offers := make([]domain.Offer, 0, len(list))
	for _, item := range list {
		id := stringifyValue(resolvePath(item, spec.ID))

		sale, ok := floatValue(resolvePath(item, spec.SalePrice))
		if !ok || sale <= 0 {
			continue
		}

		o := domain.Offer{
			SourceID:   src.ID,
			ExternalID: id,
			Title:      stringifyValue(resolvePath(item, spec.Title)),
			SalePrice:  sale,
			Link:       resolveLink(item, spec, src, id),
		}
		if o.Title == "" {
			continue
		}

		o.Description = optionalString(resolvePath(item, spec.Description))
		o.Category = optionalString(resolvePath(item, spec.Category))

		if regular, ok := floatValue(resolvePath(item, spec.RegularPrice)); ok && regular > 0 {
			o.RegularPrice = &regular
		}
		o.DiscountPercent = discountPercent(item, spec, o.RegularPrice, sale)

		if img := stringifyValue(resolvePath(item, spec.Image)); img != "" {
			cleaned := cleanImageURL(img, strip)
			o.Image = &cleaned
		}

		offers = append(offers, o)
	}
	return offers
}

// discountPercent prefers a directly mapped percentage and falls back to
// deriving it from the regular/sale prices when the mapped value is absent
// or zero. The result is clamped to [0,100].
func discountPercent(item any, spec *MappingSpec, regular *float64, sale float64) int {
	var pct int
	if spec.DiscountPercent != "" {
		if f, ok := floatValue(resolvePath(item, spec.DiscountPercent)); ok {
			pct = int(math.Round(f))
		}
	}
	if pct == 0 && regular != nil && *regular > 0 {
		pct = int(math.Round((*regular - sale) / *regular * 100))
	}
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

func resolveLink(item any, spec *MappingSpec, src domain.Source, id string) string {
	if spec.LinkBase != "" {
		return spec.LinkBase + id
	}
	if hasURLScheme(spec.Link) {
		return spec.Link
	}
	if spec.Link != "" {
		if link := stringifyValue(resolvePath(item, spec.Link)); link != "" {
			return link
		}
	}
	return src.URL
}

func hasURLScheme(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// compileStripRule compiles the per-source image cleanup pattern. An empty
// or invalid pattern disables cleanup; a misconfigured rule must not take
// the whole source down.
func compileStripRule(pattern string) *regexp.Regexp {
	if pattern == "" {
		return nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil
	}
	return re
}

func cleanImageURL(url string, strip *regexp.Regexp) string {
	if strip == nil {
		return url
	}
	return strip.ReplaceAllString(url, "")
}

// stringifyValue renders a mapped leaf as a string. JSON numbers arrive as
// float64; integral values must not grow a decimal point because ids are
// concatenated into links.
func stringifyValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

// floatValue parses a mapped leaf as a price. Strings are accepted because
// several feeds quote their numbers.
func floatValue(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// optionalString converts a mapped leaf into a nullable column value.
func optionalString(v any) *string {
	s := stringifyValue(v)
	if s == "" {
		return nil
	}
	return &s
}
