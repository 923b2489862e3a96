package bot

import (
	"fmt"
	"strings"

	"github.com/ofertasgt/go-deals-backend/internal/domain"
)

// renderSummary builds the /start configuration summary text.
func renderSummary(firstName string, prefs *domain.Preferences, catalog []domain.Category, selected map[uint]struct{}) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "¡Hola de nuevo, *%s*! 🎉\n\n", firstName)
	sb.WriteString("Aquí está el resumen de tu configuración actual:\n\n")
	fmt.Fprintf(&sb, "📉 *Descuento mínimo:* %d%%\n", prefs.MinDiscount)

	maxLabel := "Sin límite"
	if prefs.MaxPrice > 0 {
		maxLabel = fmt.Sprintf("Q%.0f", prefs.MaxPrice)
	}
	fmt.Fprintf(&sb, "💰 *Rango de precios:* Q%.0f - %s\n", prefs.MinPrice, maxLabel)

	var names []string
	for _, c := range catalog {
		if _, ok := selected[c.ID]; !ok {
			continue
		}
		label := c.Name
		if c.Emoji != nil && *c.Emoji != "" {
			label = *c.Emoji + " " + c.Name
		}
		names = append(names, label)
	}
	categories := "Ninguna seleccionada"
	if len(names) > 0 {
		categories = strings.Join(names, ", ")
	}
	fmt.Fprintf(&sb, "🏷️ *Categorías:* %s\n\n", categories)
	sb.WriteString("Puedes ajustar esto en cualquier momento entrando al menú y presionando el botón de configuración.")
	return sb.String()
}

// renderOfferCaption builds the per-offer card text. Offers without a known
// regular price omit the struck-through line and the absolute savings.
func renderOfferCaption(o domain.Offer) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "✨ *%s* ✨\n\n", o.Title)

	if o.RegularPrice != nil && *o.RegularPrice > o.SalePrice {
		fmt.Fprintf(&sb, "❌ Precio Normal: ~Q%.2f~\n", *o.RegularPrice)
	}
	fmt.Fprintf(&sb, "💰 Precio Oferta: *Q%.2f*\n", o.SalePrice)

	if savings := o.Savings(); savings > 0 {
		fmt.Fprintf(&sb, "🔥 Ahorras: *%d%%* (Q%.2f)\n", o.DiscountPercent, savings)
	} else if o.DiscountPercent > 0 {
		fmt.Fprintf(&sb, "🔥 Descuento: *%d%%*\n", o.DiscountPercent)
	}

	category := "General"
	if o.Category != nil && *o.Category != "" {
		category = *o.Category
	}
	fmt.Fprintf(&sb, "\n🏷️ Categoría: *%s*\n\n", category)
	fmt.Fprintf(&sb, "🔗 [VER OFERTA EN TIENDA](%s)", o.Link)
	return sb.String()
}
