// Package bot implements the Telegram delivery layer: the /start welcome
// and summary flow, the /configurar preference menus, the guided offer
// browsing flow, and the role-gated admin panel. It drives the same
// application services as the HTTP API.
package bot

import (
	"context"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"github.com/ofertasgt/go-deals-backend/internal/domain"
)

// sender is the subset of tgbotapi.BotAPI the handlers need. Narrowing it
// lets tests capture outgoing messages without a live Telegram session.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// UserService covers the user operations the bot depends on.
type UserService interface {
	Register(ctx context.Context, u domain.User) error
	Get(ctx context.Context, telegramID int64) (*domain.User, error)
	IsAdmin(ctx context.Context, telegramID int64) bool
	CompleteSetup(ctx context.Context, telegramID int64) error
	RememberSummaryMessage(ctx context.Context, telegramID int64, messageID *int) error
}

// PreferenceService covers the preference operations the bot depends on.
type PreferenceService interface {
	Ensure(ctx context.Context, telegramID int64) (*domain.Preferences, error)
	Update(ctx context.Context, telegramID int64, p domain.Preferences) error
}

// CategoryService covers the category operations the bot depends on. The
// picker web page writes category selections through the HTTP API, so the
// bot only reads them.
type CategoryService interface {
	Catalog(ctx context.Context) ([]domain.Category, error)
	SelectedIDs(ctx context.Context, telegramID int64) (map[uint]struct{}, error)
	Create(ctx context.Context, name string, emoji *string, parentID *uint) (*domain.Category, error)
}

// OfferService runs the ingestion pipeline for a user.
type OfferService interface {
	LoadOffers(ctx context.Context, telegramID int64) []domain.Offer
}

// chatState tracks one chat's position inside a multi-step flow. Telegram
// callbacks arrive as independent updates, so the bot keeps this small
// amount of conversation state in memory.
type chatState struct {
	// changed flips once the user adjusts any preference during /configurar.
	changed bool
	// minPrice holds the chosen floor while waiting for the ceiling pick.
	minPrice *float64
	// count holds the chosen offer count while waiting for the order pick.
	count int

	// adminAction and the cat* fields drive the add-category wizard.
	adminAction string
	catName     string
	catEmoji    *string
}

// Bot wires Telegram updates to the application services.
type Bot struct {
	api   sender
	users UserService
	prefs PreferenceService
	cats  CategoryService
	offs  OfferService

	// miniAppURL is the category picker web page linked from /configurar.
	miniAppURL string

	mu     sync.Mutex
	states map[int64]*chatState
}

// New constructs a Bot bound to the given Telegram API client and services.
func New(api sender, users UserService, prefs PreferenceService, cats CategoryService, offs OfferService, miniAppURL string) *Bot {
	return &Bot{
		api:        api,
		users:      users,
		prefs:      prefs,
		cats:       cats,
		offs:       offs,
		miniAppURL: miniAppURL,
		states:     make(map[int64]*chatState),
	}
}

// Run consumes updates until ctx is cancelled. Each update is handled on
// its own goroutine so a slow offer load never blocks other chats.
func (b *Bot) Run(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	for {
		select {
		case <-ctx.Done():
			return
		case update, open := <-updates:
			if !open {
				return
			}
			go b.handleUpdate(ctx, update)
		}
	}
}

// handleUpdate routes one Telegram update to its handler.
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("bot update handler panicked")
		}
	}()

	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.IsCommand():
		b.handleCommand(ctx, update.Message)
	case update.Message != nil:
		b.handleText(ctx, update.Message)
	}
}

// handleCommand dispatches slash commands.
func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		b.clearState(msg.Chat.ID)
		b.handleStart(ctx, msg)
	case "configurar":
		b.setState(msg.Chat.ID, &chatState{changed: true})
		b.handleConfigure(msg.Chat.ID)
	case "ofertas":
		b.handleBrowseOffers(ctx, msg.Chat.ID, msg.From)
	case "admin":
		b.handleAdmin(ctx, msg)
	default:
		b.sendText(msg.Chat.ID, "Comando no reconocido. Usa /start para ver tu configuración u /ofertas para buscar promociones.")
	}
}

// withState runs fn on the chat's flow state while holding the lock,
// creating the state on first use. Updates are handled on separate
// goroutines, so every state read or write must go through here.
func (b *Bot) withState(chatID int64, fn func(*chatState)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	st, ok := b.states[chatID]
	if !ok {
		st = &chatState{}
		b.states[chatID] = st
	}
	fn(st)
}

// stateSnapshot copies the chat's flow state under the lock.
func (b *Bot) stateSnapshot(chatID int64) chatState {
	var snap chatState
	b.withState(chatID, func(st *chatState) { snap = *st })
	return snap
}

func (b *Bot) setState(chatID int64, st *chatState) {
	b.mu.Lock()
	b.states[chatID] = st
	b.mu.Unlock()
}

func (b *Bot) clearState(chatID int64) {
	b.mu.Lock()
	delete(b.states, chatID)
	b.mu.Unlock()
}

// sendText sends a plain Markdown message, logging delivery failures.
func (b *Bot) sendText(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(msg); err != nil {
		log.Error().Err(err).Int64("chat_id", chatID).Msg("telegram send failed")
	}
}

// sendWithMarkup sends a Markdown message with an inline keyboard and
// returns the sent message id.
func (b *Bot) sendWithMarkup(chatID int64, text string, markup tgbotapi.InlineKeyboardMarkup) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyMarkup = markup
	sent, err := b.api.Send(msg)
	if err != nil {
		log.Error().Err(err).Int64("chat_id", chatID).Msg("telegram send failed")
		return 0, err
	}
	return sent.MessageID, nil
}

// editWithMarkup swaps a previously sent menu message in place.
func (b *Bot) editWithMarkup(chatID int64, messageID int, text string, markup tgbotapi.InlineKeyboardMarkup) {
	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, markup)
	edit.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(edit); err != nil {
		log.Error().Err(err).Int64("chat_id", chatID).Msg("telegram edit failed")
	}
}
