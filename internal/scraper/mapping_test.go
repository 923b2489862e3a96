package scraper

import (
	"strings"
	"testing"
)

func TestParseMappingSpec_EnglishKeys(t *testing.T) {
	raw := `{
		"list_path": "Response.Articulos",
		"id": "id",
		"title": "nombre",
		"sale_price": "precios.oferta",
		"regular_price": "precios.normal",
		"image": "media.imagen",
		"link_base": "https://tienda.example/p/"
	}`

	spec, err := ParseMappingSpec(raw)
	if err != nil {
		t.Fatalf("ParseMappingSpec: %v", err)
	}
	if spec.ListPath != "Response.Articulos" {
		t.Errorf("ListPath = %q", spec.ListPath)
	}
	if spec.SalePrice != "precios.oferta" {
		t.Errorf("SalePrice = %q", spec.SalePrice)
	}
	if spec.LinkBase != "https://tienda.example/p/" {
		t.Errorf("LinkBase = %q", spec.LinkBase)
	}
}

func TestParseMappingSpec_LegacyKeys(t *testing.T) {
	raw := `{
		"lista": "items",
		"id": "sku",
		"titulo": "nombre",
		"precio_oferta": "precio",
		"porcentaje": "descuento",
		"imagen": "foto",
		"enlace": "url"
	}`

	spec, err := ParseMappingSpec(raw)
	if err != nil {
		t.Fatalf("ParseMappingSpec: %v", err)
	}
	if spec.ListPath != "items" {
		t.Errorf("ListPath = %q, want items", spec.ListPath)
	}
	if spec.Title != "nombre" {
		t.Errorf("Title = %q, want nombre", spec.Title)
	}
	if spec.SalePrice != "precio" {
		t.Errorf("SalePrice = %q, want precio", spec.SalePrice)
	}
	if spec.DiscountPercent != "descuento" {
		t.Errorf("DiscountPercent = %q, want descuento", spec.DiscountPercent)
	}
	if spec.Link != "url" {
		t.Errorf("Link = %q, want url", spec.Link)
	}
}

func TestParseMappingSpec_CurrentKeyWinsOverLegacy(t *testing.T) {
	raw := `{
		"list_path": "new",
		"lista": "old",
		"id": "id",
		"title": "t",
		"sale_price": "p"
	}`

	spec, err := ParseMappingSpec(raw)
	if err != nil {
		t.Fatalf("ParseMappingSpec: %v", err)
	}
	if spec.ListPath != "new" {
		t.Errorf("ListPath = %q, want new (current key must win)", spec.ListPath)
	}
}

func TestParseMappingSpec_MissingRequiredField(t *testing.T) {
	// No sale price mapping.
	raw := `{"list_path": "items", "id": "id", "title": "t"}`

	if _, err := ParseMappingSpec(raw); err == nil {
		t.Fatal("expected validation error for missing sale price")
	}
}

func TestParseMappingSpec_MalformedJSON(t *testing.T) {
	_, err := ParseMappingSpec(`{"list_path": `)
	if err == nil || !strings.Contains(err.Error(), "mapping spec") {
		t.Fatalf("expected wrapped parse error, got %v", err)
	}
}
