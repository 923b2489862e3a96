// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging, panic recovery, metrics, CORS,
// security headers, and rate limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/ofertasgt/go-deals-backend/internal/config"
	"github.com/ofertasgt/go-deals-backend/internal/domain"
	"github.com/ofertasgt/go-deals-backend/internal/http/handlers"
	"github.com/ofertasgt/go-deals-backend/internal/http/middleware"
	"github.com/ofertasgt/go-deals-backend/internal/repo"
	"github.com/ofertasgt/go-deals-backend/internal/scraper"
	"github.com/ofertasgt/go-deals-backend/internal/services"
)

// categoryRepoShim adapts the repository free functions to the
// services.CategoryRepo interface. This keeps services decoupled from the
// concrete repo package while reusing existing functions.
type categoryRepoShim struct{}

func (categoryRepoShim) ListCategories(ctx context.Context, db *gorm.DB) ([]domain.Category, error) {
	return repo.ListCategories(ctx, db)
}

func (categoryRepoShim) GetCategoryByName(ctx context.Context, db *gorm.DB, name string) (*domain.Category, error) {
	return repo.GetCategoryByName(ctx, db, name)
}

func (categoryRepoShim) CreateCategory(ctx context.Context, db *gorm.DB, c *domain.Category) error {
	return repo.CreateCategory(ctx, db, c)
}

func (categoryRepoShim) ListUserCategoryIDs(ctx context.Context, db *gorm.DB, telegramID int64) (map[uint]struct{}, error) {
	return repo.ListUserCategoryIDs(ctx, db, telegramID)
}

func (categoryRepoShim) ReplaceUserCategories(ctx context.Context, db *gorm.DB, telegramID int64, categoryIDs []uint) error {
	return repo.ReplaceUserCategories(ctx, db, telegramID, categoryIDs)
}

func (categoryRepoShim) ToggleUserCategory(ctx context.Context, db *gorm.DB, telegramID int64, categoryID uint) error {
	return repo.ToggleUserCategory(ctx, db, telegramID, categoryID)
}

// sourceRepoShim adapts the repository free functions to services.SourceRepo.
type sourceRepoShim struct{}

func (sourceRepoShim) ListSources(ctx context.Context, db *gorm.DB) ([]domain.Source, error) {
	return repo.ListSources(ctx, db)
}

func (sourceRepoShim) GetSource(ctx context.Context, db *gorm.DB, id uint) (*domain.Source, error) {
	return repo.GetSource(ctx, db, id)
}

func (sourceRepoShim) ListUserSources(ctx context.Context, db *gorm.DB, telegramID int64) ([]domain.Source, error) {
	return repo.ListUserSources(ctx, db, telegramID)
}

func (sourceRepoShim) ReplaceUserSources(ctx context.Context, db *gorm.DB, telegramID int64, sourceIDs []uint) error {
	return repo.ReplaceUserSources(ctx, db, telegramID, sourceIDs)
}

// preferenceRepoShim adapts the repository free functions to
// services.PreferenceRepo.
type preferenceRepoShim struct{}

func (preferenceRepoShim) GetPreferences(ctx context.Context, db *gorm.DB, telegramID int64) (*domain.Preferences, error) {
	return repo.GetPreferences(ctx, db, telegramID)
}

func (preferenceRepoShim) CreateDefaultPreferences(ctx context.Context, db *gorm.DB, p domain.Preferences) error {
	return repo.CreateDefaultPreferences(ctx, db, p)
}

func (preferenceRepoShim) UpdatePreferences(ctx context.Context, db *gorm.DB, p domain.Preferences) error {
	return repo.UpdatePreferences(ctx, db, p)
}

// userRepoShim adapts the repository free functions to services.UserRepo.
type userRepoShim struct{}

func (userRepoShim) UpsertUser(ctx context.Context, db *gorm.DB, u domain.User) error {
	return repo.UpsertUser(ctx, db, u)
}

func (userRepoShim) GetUser(ctx context.Context, db *gorm.DB, telegramID int64) (*domain.User, error) {
	return repo.GetUser(ctx, db, telegramID)
}

func (userRepoShim) UpdateUserName(ctx context.Context, db *gorm.DB, telegramID int64, name string) error {
	return repo.UpdateUserName(ctx, db, telegramID, name)
}

func (userRepoShim) MarkSetupComplete(ctx context.Context, db *gorm.DB, telegramID int64) error {
	return repo.MarkSetupComplete(ctx, db, telegramID)
}

func (userRepoShim) SetLastSummaryMessageID(ctx context.Context, db *gorm.DB, telegramID int64, messageID *int) error {
	return repo.SetLastSummaryMessageID(ctx, db, telegramID, messageID)
}

// offerCacheShim adapts repo.ListFreshOffers to services.OfferCacheRepo.
type offerCacheShim struct{}

func (offerCacheShim) ListFreshOffers(ctx context.Context, db *gorm.DB, sourceID uint, ttl time.Duration) ([]domain.Offer, error) {
	return repo.ListFreshOffers(ctx, db, sourceID, ttl)
}

// offerStore gives the fetcher its write-through target. Fetched offers are
// upserted into the cache before the fetch call returns.
type offerStore struct {
	db    *gorm.DB
	batch int
}

func (s offerStore) UpsertOffers(ctx context.Context, sourceID uint, offers []domain.Offer) error {
	return repo.UpsertOffers(ctx, s.db, sourceID, offers, s.batch)
}

// Services bundles the application services built by BuildServices so the
// HTTP router and the Telegram bot can share one set of instances.
type Services struct {
	Categories *services.CategoryService
	Sources    *services.SourceService
	Prefs      *services.PreferenceService
	Users      *services.UserService
	Offers     *services.OfferService
}

// BuildServices performs the dependency injection: services ← repo/db/cfg.
func BuildServices(db *gorm.DB, cfg config.Config) *Services {
	catSvc := services.NewCategoryService(db, categoryRepoShim{})
	srcSvc := services.NewSourceService(db, sourceRepoShim{})
	prefSvc := services.NewPreferenceService(db, preferenceRepoShim{},
		cfg.Defaults.MinDiscount, cfg.Defaults.MinPrice, cfg.Defaults.MaxPrice)
	userSvc := services.NewUserService(db, userRepoShim{}, prefSvc)

	fetcher := scraper.NewFetcher(
		offerStore{db: db, batch: cfg.Ingest.UpsertBatchSize},
		cfg.Ingest.FetchTimeout,
	)
	offerSvc := services.NewOfferService(db, offerCacheShim{}, fetcher,
		prefSvc, catSvc, srcSvc, cfg.Ingest.CacheTTL, cfg.Ingest.FetchWait)

	return &Services{
		Categories: catSvc,
		Sources:    srcSvc,
		Prefs:      prefSvc,
		Users:      userSvc,
		Offers:     offerSvc,
	}
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), rate limiting,
// CORS and security headers, health and metrics endpoints, and then mounts
// the versioned public API under cfg.APIBasePath.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. Logger: structured request logs
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Gzip compression
//  7. Metrics
//  8. Rate limiter (per client IP)
//  9. CORS and security headers
func RegisterRoutes(r *gin.Engine, svcs *Services, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured request logging
	r.Use(middleware.Logger())

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (1 MiB)
	r.Use(limitBody(1 << 20))

	// 6) Compress responses (offer payloads are repetitive JSON)
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	// 7) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 8) Token-bucket rate limiter per client IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByClientIP())
	r.Use(rl.Handler())

	// 9) CORS posture (safe defaults: allow all if none configured)
	if len(cfg.CORS.AllowedOrigins) == 0 {
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS: cfg.Security.EnableHSTS,
		HSTSMaxAge: cfg.Security.HSTSMaxAge,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, handlers.ErrorResponse{
			RequestID: middleware.RequestIDFrom(c),
			Code:      "not_found",
			Message:   "route not found",
		})
	})
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, handlers.ErrorResponse{
			RequestID: middleware.RequestIDFrom(c),
			Code:      "method_not_allowed",
			Message:   "method not allowed",
		})
	})

	// Liveness/health
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	h := handlers.New(svcs.Categories, svcs.Sources, svcs.Prefs, svcs.Users, svcs.Offers)

	// Public API
	api := groupWithPrefix(r, cfg.APIBasePath)
	{
		// Categories
		api.GET("/categorias", h.ListCategories)
		api.GET("/usuario/:telegramId/categorias", h.ListUserCategories)

		// Configuration (category picker web app submit)
		api.POST("/usuario/:telegramId/configuracion", h.SaveConfig)

		// Sources
		api.GET("/fuentes", h.ListSources)
		api.PUT("/usuario/:telegramId/fuentes", h.ReplaceUserSources)

		// Offers (runs the ingestion pipeline)
		api.GET("/usuario/:telegramId/ofertas", h.ListOffers)
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
