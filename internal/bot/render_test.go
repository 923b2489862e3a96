package bot

import (
	"strings"
	"testing"

	"github.com/ofertasgt/go-deals-backend/internal/domain"
)

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

func TestRenderSummary(t *testing.T) {
	prefs := &domain.Preferences{MinDiscount: 40, MinPrice: 100, MaxPrice: 2000}
	catalog := []domain.Category{
		{ID: 1, Name: "Electrónica", Emoji: strPtr("📱")},
		{ID: 2, Name: "Hogar"},
		{ID: 3, Name: "Juguetes"},
	}
	selected := map[uint]struct{}{1: {}, 2: {}}

	got := renderSummary("Ana", prefs, catalog, selected)

	for _, want := range []string{
		"¡Hola de nuevo, *Ana*!",
		"*Descuento mínimo:* 40%",
		"*Rango de precios:* Q100 - Q2000",
		"📱 Electrónica",
		"Hogar",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("summary missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "Juguetes") {
		t.Errorf("summary lists unselected category:\n%s", got)
	}
}

func TestRenderSummary_UnboundedCeiling(t *testing.T) {
	prefs := &domain.Preferences{MinDiscount: 50, MinPrice: 0, MaxPrice: 0}

	got := renderSummary("Ana", prefs, nil, nil)

	if !strings.Contains(got, "Q0 - Sin límite") {
		t.Errorf("expected unbounded price range:\n%s", got)
	}
	if !strings.Contains(got, "Ninguna seleccionada") {
		t.Errorf("expected empty category fallback:\n%s", got)
	}
}

func TestRenderOfferCaption(t *testing.T) {
	o := domain.Offer{
		Title:           "Audífonos inalámbricos",
		RegularPrice:    floatPtr(500),
		SalePrice:       300,
		DiscountPercent: 40,
		Category:        strPtr("Electrónica"),
		Link:            "https://tienda.example/p/123",
	}

	got := renderOfferCaption(o)

	for _, want := range []string{
		"*Audífonos inalámbricos*",
		"Precio Normal: ~Q500.00~",
		"Precio Oferta: *Q300.00*",
		"Ahorras: *40%* (Q200.00)",
		"Categoría: *Electrónica*",
		"[VER OFERTA EN TIENDA](https://tienda.example/p/123)",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("caption missing %q:\n%s", want, got)
		}
	}
}

func TestRenderOfferCaption_NoRegularPrice(t *testing.T) {
	o := domain.Offer{
		Title:           "Licuadora",
		SalePrice:       150,
		DiscountPercent: 25,
		Link:            "https://tienda.example/p/9",
	}

	got := renderOfferCaption(o)

	if strings.Contains(got, "Precio Normal") {
		t.Errorf("caption has struck price without regular price:\n%s", got)
	}
	if !strings.Contains(got, "Descuento: *25%*") {
		t.Errorf("caption missing discount-only line:\n%s", got)
	}
	if !strings.Contains(got, "Categoría: *General*") {
		t.Errorf("caption missing default category:\n%s", got)
	}
}
