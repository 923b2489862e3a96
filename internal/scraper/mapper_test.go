package scraper

import (
	"encoding/json"
	"testing"

	"github.com/ofertasgt/go-deals-backend/internal/domain"
)

func decodeJSON(t *testing.T, raw string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		t.Fatalf("decode fixture: %v", err)
	}
	return v
}

func mustSpec(t *testing.T, raw string) *MappingSpec {
	t.Helper()
	spec, err := ParseMappingSpec(raw)
	if err != nil {
		t.Fatalf("ParseMappingSpec: %v", err)
	}
	return spec
}

func TestMapOffers_NestedPathsAndDerivedDiscount(t *testing.T) {
	raw := decodeJSON(t, `{
		"Response": {
			"Articulos": [
				{
					"id": 12345,
					"nombre": "Audífonos BT",
					"precios": {"normal": 100, "oferta": 80},
					"media": {"imagen": "https://cdn.example/a.jpg"}
				}
			]
		}
	}`)
	spec := mustSpec(t, `{
		"list_path": "Response.Articulos",
		"id": "id",
		"title": "nombre",
		"sale_price": "precios.oferta",
		"regular_price": "precios.normal",
		"image": "media.imagen",
		"link_base": "https://tienda.example/p/"
	}`)

	offers := MapOffers(raw, spec, domain.Source{ID: 7})
	if len(offers) != 1 {
		t.Fatalf("got %d offers, want 1", len(offers))
	}
	o := offers[0]
	if o.SourceID != 7 {
		t.Errorf("SourceID = %d", o.SourceID)
	}
	if o.Title != "Audífonos BT" {
		t.Errorf("Title = %q", o.Title)
	}
	if o.SalePrice != 80 {
		t.Errorf("SalePrice = %v", o.SalePrice)
	}
	if o.RegularPrice == nil || *o.RegularPrice != 100 {
		t.Errorf("RegularPrice = %v", o.RegularPrice)
	}
	if o.DiscountPercent != 20 {
		t.Errorf("DiscountPercent = %d, want 20 (derived from prices)", o.DiscountPercent)
	}
	// Numeric id must not grow a decimal point inside the link.
	if o.Link != "https://tienda.example/p/12345" {
		t.Errorf("Link = %q", o.Link)
	}
	if o.ExternalID != "12345" {
		t.Errorf("ExternalID = %q", o.ExternalID)
	}
}

func TestMapOffers_MappedDiscountFallsBackToDerived(t *testing.T) {
	raw := decodeJSON(t, `{"items": [
		{"id": "a", "t": "Sin campo", "p": 80, "pn": 100},
		{"id": "b", "t": "Con cero", "p": 60, "pn": 100, "d": 0},
		{"id": "c", "t": "Con valor", "p": 50, "pn": 100, "d": 35}
	]}`)
	spec := mustSpec(t, `{
		"list_path": "items", "id": "id", "title": "t",
		"sale_price": "p", "regular_price": "pn", "discount_percent": "d",
		"link_base": "https://x.example/"
	}`)

	offers := MapOffers(raw, spec, domain.Source{ID: 1})
	if len(offers) != 3 {
		t.Fatalf("got %d offers, want 3", len(offers))
	}
	if offers[0].DiscountPercent != 20 {
		t.Errorf("missing mapped field: DiscountPercent = %d, want 20 derived", offers[0].DiscountPercent)
	}
	if offers[1].DiscountPercent != 40 {
		t.Errorf("mapped zero: DiscountPercent = %d, want 40 derived", offers[1].DiscountPercent)
	}
	if offers[2].DiscountPercent != 35 {
		t.Errorf("mapped value: DiscountPercent = %d, want 35 mapped", offers[2].DiscountPercent)
	}
}

func TestMapOffers_MappedDiscountWinsAndClamps(t *testing.T) {
	raw := decodeJSON(t, `{"items": [
		{"id": "a", "t": "Uno", "p": 50, "d": 130},
		{"id": "b", "t": "Dos", "p": 50, "d": -10}
	]}`)
	spec := mustSpec(t, `{
		"list_path": "items", "id": "id", "title": "t",
		"sale_price": "p", "discount_percent": "d",
		"link_base": "https://x.example/"
	}`)

	offers := MapOffers(raw, spec, domain.Source{})
	if len(offers) != 2 {
		t.Fatalf("got %d offers, want 2", len(offers))
	}
	if offers[0].DiscountPercent != 100 {
		t.Errorf("discount above 100 not clamped: %d", offers[0].DiscountPercent)
	}
	if offers[1].DiscountPercent != 0 {
		t.Errorf("negative discount not clamped: %d", offers[1].DiscountPercent)
	}
}

func TestMapOffers_DropsUnusableItems(t *testing.T) {
	raw := decodeJSON(t, `{"items": [
		{"id": "1", "t": "Sin precio"},
		{"id": "2", "t": "Precio cero", "p": 0},
		{"id": "3", "t": "Precio texto", "p": "no-numero"},
		{"id": "4",           "p": 10},
		{"id": "5", "t": "Válido", "p": "25.50"}
	]}`)
	spec := mustSpec(t, `{"list_path": "items", "id": "id", "title": "t", "sale_price": "p", "link_base": "https://x.example/"}`)

	offers := MapOffers(raw, spec, domain.Source{})
	if len(offers) != 1 {
		t.Fatalf("got %d offers, want 1 (only the valid item)", len(offers))
	}
	if offers[0].SalePrice != 25.50 {
		t.Errorf("quoted price not parsed: %v", offers[0].SalePrice)
	}
}

func TestMapOffers_MissingListPath(t *testing.T) {
	raw := decodeJSON(t, `{"otra_cosa": true}`)
	spec := mustSpec(t, `{"list_path": "items", "id": "id", "title": "t", "sale_price": "p"}`)

	if offers := MapOffers(raw, spec, domain.Source{}); len(offers) != 0 {
		t.Fatalf("got %d offers for missing list path, want 0", len(offers))
	}
}

func TestMapOffers_ListPathNotArray(t *testing.T) {
	raw := decodeJSON(t, `{"items": {"id": "1"}}`)
	spec := mustSpec(t, `{"list_path": "items", "id": "id", "title": "t", "sale_price": "p"}`)

	if offers := MapOffers(raw, spec, domain.Source{}); len(offers) != 0 {
		t.Fatalf("got %d offers for object list path, want 0", len(offers))
	}
}

func TestMapOffers_LinkPrecedence(t *testing.T) {
	item := `{"id": "9", "t": "Prod", "p": 10, "u": "https://item.example/9"}`
	raw := decodeJSON(t, `{"items": [`+item+`]}`)
	src := domain.Source{URL: "https://feed.example/api"}

	cases := []struct {
		name string
		spec string
		want string
	}{
		{
			name: "link base plus id",
			spec: `{"list_path":"items","id":"id","title":"t","sale_price":"p","link_base":"https://base.example/","link":"u"}`,
			want: "https://base.example/9",
		},
		{
			name: "literal url in spec",
			spec: `{"list_path":"items","id":"id","title":"t","sale_price":"p","link":"https://fixed.example/landing"}`,
			want: "https://fixed.example/landing",
		},
		{
			name: "per item path",
			spec: `{"list_path":"items","id":"id","title":"t","sale_price":"p","link":"u"}`,
			want: "https://item.example/9",
		},
		{
			name: "source url fallback",
			spec: `{"list_path":"items","id":"id","title":"t","sale_price":"p"}`,
			want: "https://feed.example/api",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			offers := MapOffers(raw, mustSpec(t, tc.spec), src)
			if len(offers) != 1 {
				t.Fatalf("got %d offers", len(offers))
			}
			if offers[0].Link != tc.want {
				t.Errorf("Link = %q, want %q", offers[0].Link, tc.want)
			}
		})
	}
}

func TestMapOffers_ImageStripPattern(t *testing.T) {
	raw := decodeJSON(t, `{"items": [
		{"id": "1", "t": "Prod", "p": 10, "img": "https://m.media.example/I/41abc._AC_SL1300_.jpg"}
	]}`)
	spec := mustSpec(t, `{"list_path":"items","id":"id","title":"t","sale_price":"p","image":"img","link_base":"https://x.example/"}`)
	src := domain.Source{ImageStripPattern: `\._[A-Z][A-Z0-9_]*_`}

	offers := MapOffers(raw, spec, src)
	if len(offers) != 1 {
		t.Fatalf("got %d offers", len(offers))
	}
	if offers[0].Image == nil || *offers[0].Image != "https://m.media.example/I/41abc.jpg" {
		t.Errorf("Image = %v, want resizing suffix removed", offers[0].Image)
	}
}

func TestMapOffers_InvalidStripPatternKeepsImage(t *testing.T) {
	raw := decodeJSON(t, `{"items": [{"id": "1", "t": "Prod", "p": 10, "img": "https://x.example/a.jpg"}]}`)
	spec := mustSpec(t, `{"list_path":"items","id":"id","title":"t","sale_price":"p","image":"img","link_base":"https://x.example/"}`)
	src := domain.Source{ImageStripPattern: `[invalid(`}

	offers := MapOffers(raw, spec, src)
	if len(offers) != 1 || offers[0].Image == nil || *offers[0].Image != "https://x.example/a.jpg" {
		t.Fatalf("invalid pattern must disable cleanup, got %+v", offers)
	}
}

func TestResolvePath(t *testing.T) {
	root := decodeJSON(t, `{"a": {"b": {"c": 1}}}`)

	if v := resolvePath(root, "a.b.c"); v != float64(1) {
		t.Errorf("a.b.c = %v", v)
	}
	if v := resolvePath(root, "a.x.c"); v != nil {
		t.Errorf("missing segment = %v, want nil", v)
	}
	if v := resolvePath(root, "a.b.c.d"); v != nil {
		t.Errorf("traversal through leaf = %v, want nil", v)
	}
	if v := resolvePath(root, ""); v != nil {
		t.Errorf("empty path = %v, want nil", v)
	}
}
