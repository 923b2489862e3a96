package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Callback data values used by the inline keyboards. Prefixed entries carry
// a numeric suffix (e.g. "set_desc_40").
const (
	cbBrowseOffers  = "ver_ofertas_ahora"
	cbConfigure     = "configurar_preferencias"
	cbFinishConfig  = "terminar_config"
	cbDiscountMenu  = "config_descuento"
	cbPricesMenu    = "config_precios"
	cbAdminAddCat   = "admin_add_cat"
	prefixDiscount  = "set_desc_"
	prefixPriceMin  = "set_precio_min_"
	prefixPriceMax  = "set_precio_max_"
	prefixCount     = "cantidad_"
	prefixOrder     = "orden_"
	prefixCatParent = "set_parent_"
	catParentNone   = "set_parent_null"
)

// legacyNoLimitLabel is the price-ceiling button that means "no upper
// bound". The preferences service normalizes it to 0 on write.
const legacyNoLimitLabel = 999999

// maxPriceChoices holds only ceilings the preferences service will store
// as finite bounds, plus the explicit no-limit sentinel. Values at or above
// the legacy unlimited threshold are normalized to "unbounded", so offering
// them as finite picks would mislead the user.
var (
	minPriceChoices = []float64{0, 100, 250, 500, 1000, 2000}
	maxPriceChoices = []float64{250, 500, 1000, 2000, 5000, legacyNoLimitLabel}
)

// welcomeMenu is shown to users who have not completed initial setup.
func welcomeMenu() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🚀 ¡Vamos a configurar!", cbConfigure),
		),
	)
}

// summaryMenu is shown under the configuration summary.
func summaryMenu() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔎 Ver Ofertas Ahora", cbBrowseOffers),
		),
	)
}

// configureMenu is the /configurar hub. The category entry links to the
// picker web page, which saves through the HTTP configuration endpoint;
// the finish label reflects whether anything changed yet.
func (b *Bot) configureMenu(changed bool) tgbotapi.InlineKeyboardMarkup {
	finish := "✅ Terminar con valores por defecto"
	if changed {
		finish = "✅ ¡Listo! Guardar y Terminar"
	}
	rows := [][]tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📉 Porcentaje de Descuento", cbDiscountMenu),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💰 Rango de Precios", cbPricesMenu),
		),
	}
	if b.miniAppURL != "" {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("🏷️ Categorías (App)", b.miniAppURL),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(finish, cbFinishConfig),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// discountMenu offers the minimum-discount presets.
func discountMenu() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("10%+", prefixDiscount+"10"),
			tgbotapi.NewInlineKeyboardButtonData("25%+", prefixDiscount+"25"),
			tgbotapi.NewInlineKeyboardButtonData("40%+", prefixDiscount+"40"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("50%+", prefixDiscount+"50"),
			tgbotapi.NewInlineKeyboardButtonData("70%+", prefixDiscount+"70"),
			tgbotapi.NewInlineKeyboardButtonData("Cualquiera", prefixDiscount+"0"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔙 Volver", cbConfigure),
		),
	)
}

// priceMinMenu offers the price-floor presets in one row.
func priceMinMenu() tgbotapi.InlineKeyboardMarkup {
	row := make([]tgbotapi.InlineKeyboardButton, 0, len(minPriceChoices))
	for _, p := range minPriceChoices {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(
			fmt.Sprintf("Q%.0f", p),
			fmt.Sprintf("%s%.0f", prefixPriceMin, p),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(
		row,
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔙 Volver", cbConfigure),
		),
	)
}

// priceMaxMenu offers ceilings above the chosen floor, three per row.
func priceMaxMenu(minPrice float64) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for _, p := range maxPriceChoices {
		if p <= minPrice {
			continue
		}
		label := fmt.Sprintf("Q%.0f", p)
		if p == legacyNoLimitLabel {
			label = "Sin límite"
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(
			label,
			fmt.Sprintf("%s%.0f", prefixPriceMax, p),
		))
		if len(row) == 3 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🔙 Volver", cbPricesMenu),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// countMenu asks how many of total offers to show. Small result sets skip
// this menu entirely; see handleBrowseOffers.
func countMenu(total int) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	row := []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData("5", prefixCount+"5"),
	}
	for _, step := range []int{10, 15, 20} {
		if total <= step-5 {
			break
		}
		if total <= step {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("Todas (%d)", total),
				fmt.Sprintf("%s%d", prefixCount, total),
			))
			break
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(
			fmt.Sprintf("%d", step),
			fmt.Sprintf("%s%d", prefixCount, step),
		))
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// orderMenu asks how to sort the chosen offers.
func orderMenu() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📉 Mayor Descuento", prefixOrder+"desc"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💰 Mayor Precio", prefixOrder+"precio"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🎲 Aleatorio", prefixOrder+"random"),
		),
	)
}

// adminMenu is the /admin panel.
func adminMenu() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("➕ Añadir Categoría", cbAdminAddCat),
		),
	)
}
