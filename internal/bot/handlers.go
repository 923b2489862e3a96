package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"github.com/ofertasgt/go-deals-backend/internal/domain"
	"github.com/ofertasgt/go-deals-backend/internal/services"
)

// handleStart registers the user and shows either the first-run welcome or
// the configuration summary. Summaries replace each other: the previous
// summary message is deleted before a new one is sent so the chat does not
// fill up with stale snapshots.
func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) {
	user := userFromTelegram(msg.From)
	if err := b.users.Register(ctx, user); err != nil {
		log.Error().Err(err).Int64("telegram_id", user.TelegramID).Msg("user registration failed")
		b.sendText(msg.Chat.ID, "Lo siento, ocurrió un error al procesar tu solicitud.")
		return
	}

	stored, err := b.users.Get(ctx, user.TelegramID)
	if err != nil {
		log.Error().Err(err).Int64("telegram_id", user.TelegramID).Msg("user lookup failed")
		b.sendText(msg.Chat.ID, "Lo siento, ocurrió un error al procesar tu solicitud.")
		return
	}

	if !stored.SetupComplete {
		text := fmt.Sprintf("¡Hola, *%s*! 👋\n\nBienvenido al *Buscador de Ofertas*.\n\n"+
			"Antes de empezar a enviarte las mejores promociones, necesito saber qué tipo de productos te interesan.\n\n"+
			"¡Vamos a configurar tus preferencias en un momento!", msg.From.FirstName)
		b.sendWithMarkup(msg.Chat.ID, text, welcomeMenu())
		return
	}

	b.sendSummary(ctx, msg.Chat.ID, msg.From)
}

// sendSummary sends the current-configuration summary with the browse
// button, replacing the previous summary message when one exists.
func (b *Bot) sendSummary(ctx context.Context, chatID int64, from *tgbotapi.User) {
	prefs, err := b.prefs.Ensure(ctx, from.ID)
	if err != nil {
		log.Error().Err(err).Int64("telegram_id", from.ID).Msg("preferences load failed")
		b.sendText(chatID, "Lo siento, ocurrió un error al procesar tu solicitud.")
		return
	}
	catalog, err := b.cats.Catalog(ctx)
	if err != nil {
		log.Error().Err(err).Msg("category catalog load failed")
		b.sendText(chatID, "Lo siento, ocurrió un error al procesar tu solicitud.")
		return
	}
	selected, err := b.cats.SelectedIDs(ctx, from.ID)
	if err != nil {
		log.Error().Err(err).Int64("telegram_id", from.ID).Msg("category selection load failed")
		b.sendText(chatID, "Lo siento, ocurrió un error al procesar tu solicitud.")
		return
	}

	if stored, err := b.users.Get(ctx, from.ID); err == nil && stored.LastSummaryMessageID != nil {
		del := tgbotapi.NewDeleteMessage(chatID, *stored.LastSummaryMessageID)
		if _, err := b.api.Request(del); err != nil {
			log.Warn().Err(err).Int64("chat_id", chatID).Msg("previous summary delete failed")
		}
	}

	text := renderSummary(from.FirstName, prefs, catalog, selected)
	msgID, err := b.sendWithMarkup(chatID, text, summaryMenu())
	if err != nil {
		return
	}
	if err := b.users.RememberSummaryMessage(ctx, from.ID, &msgID); err != nil {
		log.Warn().Err(err).Int64("telegram_id", from.ID).Msg("summary message id save failed")
	}
}

// handleConfigure opens the preference hub.
func (b *Bot) handleConfigure(chatID int64) {
	b.sendWithMarkup(chatID,
		"🛠️ *Modo de Configuración*\n\nSelecciona la preferencia que deseas ajustar.",
		b.configureMenu(true))
}

// handleAdmin opens the admin panel for admin users.
func (b *Bot) handleAdmin(ctx context.Context, msg *tgbotapi.Message) {
	if !b.users.IsAdmin(ctx, msg.From.ID) {
		b.sendText(msg.Chat.ID, "🚫 Acceso denegado.")
		return
	}
	b.sendWithMarkup(msg.Chat.ID, "👑 *Panel de Administración*\n\nSelecciona una opción:", adminMenu())
}

// handleBrowseOffers starts the guided browse flow: load the offer set,
// then either deliver everything (small sets) or ask how many to show.
func (b *Bot) handleBrowseOffers(ctx context.Context, chatID int64, from *tgbotapi.User) {
	if err := b.users.Register(ctx, userFromTelegram(from)); err != nil {
		log.Error().Err(err).Int64("telegram_id", from.ID).Msg("user registration failed")
	}

	b.sendText(chatID, "🔎 Analizando ofertas disponibles...")

	offers := b.offs.LoadOffers(ctx, from.ID)
	total := len(offers)
	if total == 0 {
		b.sendText(chatID, "😔 No encontré ofertas que coincidan con tus filtros en este momento.")
		return
	}

	if total <= 5 {
		b.sendText(chatID, fmt.Sprintf("✨ He encontrado %d ofertas. Aquí las tienes:", total))
		b.sendOffers(ctx, chatID, from, total, services.OrderDiscount)
		return
	}

	b.sendWithMarkup(chatID,
		fmt.Sprintf("🔢 He encontrado *%d ofertas* disponibles.\n¿Cuántas quieres ver?", total),
		countMenu(total))
}

// sendOffers reloads the offer set (a cache hit after handleBrowseOffers),
// sorts and truncates it, and delivers one card per offer.
func (b *Bot) sendOffers(ctx context.Context, chatID int64, from *tgbotapi.User, count int, order string) {
	b.sendText(chatID, "🔎 Buscando y ordenando ofertas... dame unos segundos.")

	offers := b.offs.LoadOffers(ctx, from.ID)
	if len(offers) == 0 {
		b.sendText(chatID, "😔 No encontré ofertas que coincidan con tus filtros en este momento.")
		return
	}

	services.SortOffers(offers, order)
	top := services.TopN(offers, count)

	for _, o := range top {
		caption := renderOfferCaption(o)
		if o.Image != nil && *o.Image != "" {
			photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileURL(*o.Image))
			photo.Caption = caption
			photo.ParseMode = tgbotapi.ModeMarkdown
			if _, err := b.api.Send(photo); err != nil {
				log.Warn().Err(err).Str("link", o.Link).Msg("offer photo send failed, falling back to text")
				b.sendText(chatID, caption)
			}
			continue
		}
		b.sendText(chatID, caption)
	}

	if rest := len(offers) - len(top); rest > 0 {
		b.sendText(chatID, fmt.Sprintf("... y %d ofertas más disponibles. Vuelve a buscar para ver otras.", rest))
	}
}

// handleCallback routes inline keyboard presses.
func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if cb.Message == nil {
		return
	}
	chatID := cb.Message.Chat.ID
	msgID := cb.Message.MessageID
	data := cb.Data

	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		log.Warn().Err(err).Msg("callback ack failed")
	}

	switch {
	case data == cbConfigure:
		st := b.stateSnapshot(chatID)
		b.editWithMarkup(chatID, msgID,
			"Aquí puedes ajustar tus preferencias. Cuando termines, pulsa 'Terminar'.",
			b.configureMenu(st.changed))

	case data == cbFinishConfig:
		b.finishConfiguration(ctx, cb)

	case data == cbDiscountMenu:
		b.editWithMarkup(chatID, msgID, "📉 Elige el *descuento mínimo* que te interesa:", discountMenu())

	case strings.HasPrefix(data, prefixDiscount):
		b.applyDiscount(ctx, cb, strings.TrimPrefix(data, prefixDiscount))

	case data == cbPricesMenu:
		b.editWithMarkup(chatID, msgID, "💰 Primero, elige un *precio mínimo*:", priceMinMenu())

	case strings.HasPrefix(data, prefixPriceMin):
		b.pickPriceFloor(cb, strings.TrimPrefix(data, prefixPriceMin))

	case strings.HasPrefix(data, prefixPriceMax):
		b.applyPriceRange(ctx, cb, strings.TrimPrefix(data, prefixPriceMax))

	case data == cbBrowseOffers:
		b.handleBrowseOffers(ctx, chatID, cb.From)

	case strings.HasPrefix(data, prefixCount):
		if n, err := strconv.Atoi(strings.TrimPrefix(data, prefixCount)); err == nil && n > 0 {
			b.withState(chatID, func(st *chatState) { st.count = n })
			b.editWithMarkup(chatID, msgID,
				fmt.Sprintf("👍 Entendido: *%d ofertas*.\n\n🔃 ¿Cómo las ordenamos?", n),
				orderMenu())
		}

	case strings.HasPrefix(data, prefixOrder):
		count := b.stateSnapshot(chatID).count
		if count <= 0 {
			count = 10
		}
		b.sendOffers(ctx, chatID, cb.From, count, orderFromCallback(strings.TrimPrefix(data, prefixOrder)))

	case data == cbAdminAddCat:
		if !b.users.IsAdmin(ctx, cb.From.ID) {
			b.sendText(chatID, "🚫 Acceso denegado.")
			return
		}
		b.setState(chatID, &chatState{adminAction: adminActionCatName})
		b.sendText(chatID, "✏️ Introduce el nombre para la nueva categoría:")

	case strings.HasPrefix(data, prefixCatParent):
		b.finishCreateCategory(ctx, cb)
	}
}

// finishConfiguration marks setup complete, removes the menu message, and
// shows the fresh summary.
func (b *Bot) finishConfiguration(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	chatID := cb.Message.Chat.ID
	st := b.stateSnapshot(chatID)
	if !st.changed {
		b.sendText(chatID, "👍 ¡Entendido! Hemos establecido las preferencias por defecto por ti.\n\n"+
			"Recuerda que puedes cambiarlas cuando quieras usando el comando /configurar.")
	}
	if err := b.users.CompleteSetup(ctx, cb.From.ID); err != nil {
		log.Error().Err(err).Int64("telegram_id", cb.From.ID).Msg("setup completion failed")
	}
	if _, err := b.api.Request(tgbotapi.NewDeleteMessage(chatID, cb.Message.MessageID)); err != nil {
		log.Warn().Err(err).Int64("chat_id", chatID).Msg("menu message delete failed")
	}
	b.clearState(chatID)
	b.sendSummary(ctx, chatID, cb.From)
}

// applyDiscount persists a minimum-discount pick and returns to the hub.
func (b *Bot) applyDiscount(ctx context.Context, cb *tgbotapi.CallbackQuery, raw string) {
	chatID := cb.Message.Chat.ID
	discount, err := strconv.Atoi(raw)
	if err != nil || discount < 0 || discount > 100 {
		return
	}

	prefs, err := b.prefs.Ensure(ctx, cb.From.ID)
	if err != nil {
		log.Error().Err(err).Int64("telegram_id", cb.From.ID).Msg("preferences load failed")
		b.sendText(chatID, "Ocurrió un error al procesar tu selección. Inténtalo de nuevo.")
		return
	}
	prefs.MinDiscount = discount
	if err := b.prefs.Update(ctx, cb.From.ID, *prefs); err != nil {
		log.Error().Err(err).Int64("telegram_id", cb.From.ID).Msg("preferences update failed")
		b.sendText(chatID, "Ocurrió un error al procesar tu selección. Inténtalo de nuevo.")
		return
	}

	b.withState(chatID, func(st *chatState) { st.changed = true })
	b.editWithMarkup(chatID, cb.Message.MessageID,
		fmt.Sprintf("✅ Descuento fijado en *%d%%*.\n\nPuedes ajustar otro valor o terminar la configuración.", discount),
		b.configureMenu(true))
}

// pickPriceFloor stores the chosen floor and asks for the ceiling.
func (b *Bot) pickPriceFloor(cb *tgbotapi.CallbackQuery, raw string) {
	chatID := cb.Message.Chat.ID
	minPrice, err := strconv.ParseFloat(raw, 64)
	if err != nil || minPrice < 0 {
		return
	}
	b.withState(chatID, func(st *chatState) { st.minPrice = &minPrice })
	b.editWithMarkup(chatID, cb.Message.MessageID,
		fmt.Sprintf("Mínimo: *Q%.0f*.\n\nAhora, elige un *precio máximo*:", minPrice),
		priceMaxMenu(minPrice))
}

// applyPriceRange persists the floor/ceiling pair and returns to the hub.
// The "Sin límite" ceiling is a legacy sentinel the preferences service
// normalizes to 0 (unbounded).
func (b *Bot) applyPriceRange(ctx context.Context, cb *tgbotapi.CallbackQuery, raw string) {
	chatID := cb.Message.Chat.ID
	maxPrice, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return
	}

	st := b.stateSnapshot(chatID)
	if st.minPrice == nil {
		b.sendText(chatID, "Hubo un error, por favor empieza de nuevo desde /configurar.")
		return
	}
	minPrice := *st.minPrice

	prefs, err := b.prefs.Ensure(ctx, cb.From.ID)
	if err != nil {
		log.Error().Err(err).Int64("telegram_id", cb.From.ID).Msg("preferences load failed")
		b.sendText(chatID, "Ocurrió un error al procesar tu selección. Inténtalo de nuevo.")
		return
	}
	prefs.MinPrice = minPrice
	prefs.MaxPrice = maxPrice
	if err := b.prefs.Update(ctx, cb.From.ID, *prefs); err != nil {
		log.Error().Err(err).Int64("telegram_id", cb.From.ID).Msg("preferences update failed")
		b.sendText(chatID, "Ocurrió un error al procesar tu selección. Inténtalo de nuevo.")
		return
	}

	b.withState(chatID, func(st *chatState) {
		st.minPrice = nil
		st.changed = true
	})

	maxLabel := fmt.Sprintf("Q%.0f", maxPrice)
	if services.UnboundedCeiling(maxPrice) {
		maxLabel = "Sin límite"
	}
	b.editWithMarkup(chatID, cb.Message.MessageID,
		fmt.Sprintf("✅ Rango de precios fijado en *Q%.0f - %s*.\n\nPuedes ajustar otro valor o terminar.", minPrice, maxLabel),
		b.configureMenu(true))
}

// Admin add-category wizard steps tracked in chatState.adminAction.
const (
	adminActionCatName   = "add_cat_name"
	adminActionCatEmoji  = "add_cat_emoji"
	adminActionCatParent = "add_cat_parent"
)

// handleText advances the admin add-category wizard; any other free text
// is ignored.
func (b *Bot) handleText(ctx context.Context, msg *tgbotapi.Message) {
	st := b.stateSnapshot(msg.Chat.ID)
	if st.adminAction == "" || strings.HasPrefix(msg.Text, "/") {
		return
	}
	if !b.users.IsAdmin(ctx, msg.From.ID) {
		return
	}

	switch st.adminAction {
	case adminActionCatName:
		b.withState(msg.Chat.ID, func(st *chatState) {
			st.catName = msg.Text
			st.adminAction = adminActionCatEmoji
		})
		b.sendText(msg.Chat.ID, "👍 Nombre guardado. Ahora, envía el emoji para esta categoría (o escribe 'no' si no quieres uno).")

	case adminActionCatEmoji:
		b.withState(msg.Chat.ID, func(st *chatState) {
			if !strings.EqualFold(msg.Text, "no") {
				emoji := msg.Text
				st.catEmoji = &emoji
			}
			st.adminAction = adminActionCatParent
		})

		catalog, err := b.cats.Catalog(ctx)
		if err != nil {
			log.Error().Err(err).Msg("category catalog load failed")
			b.sendText(msg.Chat.ID, "❌ Ocurrió un error. Proceso cancelado.")
			b.clearState(msg.Chat.ID)
			return
		}
		rows := [][]tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("Ninguna (es categoría principal)", catParentNone),
			),
		}
		for _, c := range catalog {
			if c.ParentID != nil || c.IsAllCategories() {
				continue
			}
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(c.Name, fmt.Sprintf("%s%d", prefixCatParent, c.ID)),
			))
		}
		b.sendWithMarkup(msg.Chat.ID,
			"✨ Emoji guardado. ¿Esta es una subcategoría de alguna de las siguientes?",
			tgbotapi.NewInlineKeyboardMarkup(rows...))
	}
}

// finishCreateCategory resolves the parent pick and creates the category.
func (b *Bot) finishCreateCategory(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	chatID := cb.Message.Chat.ID
	st := b.stateSnapshot(chatID)
	if st.adminAction != adminActionCatParent {
		return
	}
	defer b.clearState(chatID)

	var parentID *uint
	if cb.Data != catParentNone {
		n, err := strconv.ParseUint(strings.TrimPrefix(cb.Data, prefixCatParent), 10, 32)
		if err != nil {
			return
		}
		id := uint(n)
		parentID = &id
	}

	if _, err := b.cats.Create(ctx, st.catName, st.catEmoji, parentID); err != nil {
		b.sendText(chatID, fmt.Sprintf("❌ Error: %v", err))
		return
	}

	edit := tgbotapi.NewEditMessageText(chatID, cb.Message.MessageID,
		fmt.Sprintf("✅ ¡Categoría \"*%s*\" creada con éxito!", st.catName))
	edit.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(edit); err != nil {
		log.Warn().Err(err).Int64("chat_id", chatID).Msg("telegram edit failed")
	}
}

// orderFromCallback maps the callback suffix to a sort order.
func orderFromCallback(suffix string) string {
	switch suffix {
	case "precio":
		return services.OrderPrice
	case "random":
		return services.OrderRandom
	default:
		return services.OrderDiscount
	}
}

// userFromTelegram projects a Telegram user into the persistence model.
func userFromTelegram(from *tgbotapi.User) domain.User {
	u := domain.User{
		TelegramID: from.ID,
		Name:       strings.TrimSpace(from.FirstName + " " + from.LastName),
		IsBot:      from.IsBot,
	}
	if from.UserName != "" {
		username := from.UserName
		u.Username = &username
	}
	return u
}
