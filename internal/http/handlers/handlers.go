// API handler wiring.
//
// Handlers are transport-thin: they parse and validate input, call
// application services through narrow interfaces, and translate results
// into HTTP responses. Endpoint inventory:
//
//   - GET  /categorias                            catalog
//   - GET  /usuario/:telegramId/categorias        selected category ids
//   - POST /usuario/:telegramId/configuracion     save full configuration
//   - GET  /fuentes                               source catalog
//   - PUT  /usuario/:telegramId/fuentes           replace selected sources
//   - GET  /usuario/:telegramId/ofertas           run the ingestion pipeline
package handlers

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ofertasgt/go-deals-backend/internal/domain"
)

// CategoryService defines the category operations consumed by handlers.
type CategoryService interface {
	Catalog(ctx context.Context) ([]domain.Category, error)
	SelectedIDs(ctx context.Context, telegramID int64) (map[uint]struct{}, error)
	ReplaceSelection(ctx context.Context, telegramID int64, categoryIDs []uint) error
}

// SourceService defines the source operations consumed by handlers.
type SourceService interface {
	List(ctx context.Context) ([]domain.Source, error)
	ReplaceSelection(ctx context.Context, telegramID int64, sourceIDs []uint) error
}

// PreferenceService defines the preference operations consumed by handlers.
type PreferenceService interface {
	Update(ctx context.Context, telegramID int64, p domain.Preferences) error
}

// UserService defines the user operations consumed by handlers.
type UserService interface {
	UpdateName(ctx context.Context, telegramID int64, name string) error
	CompleteSetup(ctx context.Context, telegramID int64) error
}

// OfferService runs the ingestion pipeline.
type OfferService interface {
	LoadOffers(ctx context.Context, telegramID int64) []domain.Offer
}

// Handlers groups the HTTP endpoints and their service dependencies.
type Handlers struct {
	categories CategoryService
	sources    SourceService
	prefs      PreferenceService
	users      UserService
	offers     OfferService
}

// New constructs a Handlers instance bound to the given services.
func New(categories CategoryService, sources SourceService, prefs PreferenceService, users UserService, offers OfferService) *Handlers {
	return &Handlers{
		categories: categories,
		sources:    sources,
		prefs:      prefs,
		users:      users,
		offers:     offers,
	}
}

// telegramID parses the :telegramId route parameter.
func telegramID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("telegramId"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
