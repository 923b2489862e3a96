// Package services – OfferService
//
// This file implements the ingestion orchestrator. For one user request it
// decides, source by source, whether cached offers are fresh enough or a
// live fetch is needed, runs the needed fetches concurrently under a bounded
// wait, merges the results, and hands them to the preference filter.
//
// The orchestrator is the error boundary for the whole pipeline: nothing
// below it may escape to the caller. A failed pipeline yields an empty
// result, indistinguishable from "no matching offers"; failures surface
// only in the structured logs.
package services

import (
	"context"
	"math/rand"
	"sort"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	"github.com/ofertasgt/go-deals-backend/internal/domain"
)

// Sort orders accepted by SortOffers. Unknown values fall back to
// OrderDiscount.
const (
	OrderDiscount = "descuento"
	OrderPrice    = "precio"
	OrderRandom   = "aleatorio"
)

// OfferCacheRepo is the repository contract for cached offers.
type OfferCacheRepo interface {
	// ListFreshOffers returns cached offers for sourceID newer than ttl,
	// ordered by discount descending.
	ListFreshOffers(ctx context.Context, db *gorm.DB, sourceID uint, ttl time.Duration) ([]domain.Offer, error)
}

// SourceFetcher runs one live fetch against a source. Implementations write
// their results through to the offer cache before returning.
type SourceFetcher interface {
	Fetch(ctx context.Context, src domain.Source) ([]domain.Offer, error)
}

// PreferenceProvider loads (and first-touch creates) user preferences.
type PreferenceProvider interface {
	Ensure(ctx context.Context, telegramID int64) (*domain.Preferences, error)
}

// CategoryProvider exposes the catalog and per-user category selections.
type CategoryProvider interface {
	Catalog(ctx context.Context) ([]domain.Category, error)
	SelectedIDs(ctx context.Context, telegramID int64) (map[uint]struct{}, error)
}

// SourceProvider resolves the user's source selection, assigning the full
// catalog when the selection is empty (auto-healing).
type SourceProvider interface {
	EnsureSelection(ctx context.Context, telegramID int64) ([]domain.Source, error)
}

// OfferService orchestrates the ingestion pipeline for user requests.
type OfferService struct {
	DB      *gorm.DB
	Cache   OfferCacheRepo
	Fetcher SourceFetcher

	Prefs      PreferenceProvider
	Categories CategoryProvider
	Sources    SourceProvider

	// CacheTTL is the freshness window for cache reads.
	CacheTTL time.Duration
	// FetchWait bounds how long one call waits for live fetches. Fetches
	// continue past the deadline and warm the cache for the next call.
	FetchWait time.Duration

	// flight deduplicates concurrent fetches per source id, so two users
	// hitting the same cold source trigger one upstream request and share
	// its result.
	flight singleflight.Group
}

// NewOfferService constructs an OfferService with the given collaborators
// and tuning.
func NewOfferService(
	db *gorm.DB,
	cache OfferCacheRepo,
	fetcher SourceFetcher,
	prefs PreferenceProvider,
	categories CategoryProvider,
	sources SourceProvider,
	cacheTTL, fetchWait time.Duration,
) *OfferService {
	if cacheTTL <= 0 {
		cacheTTL = 12 * time.Hour
	}
	if fetchWait <= 0 {
		fetchWait = 30 * time.Second
	}
	return &OfferService{
		DB:         db,
		Cache:      cache,
		Fetcher:    fetcher,
		Prefs:      prefs,
		Categories: categories,
		Sources:    sources,
		CacheTTL:   cacheTTL,
		FetchWait:  fetchWait,
	}
}

// LoadOffers runs the full pipeline for telegramID and returns the filtered
// offer set. It never fails: any error is logged and an empty slice is
// returned instead.
func (s *OfferService) LoadOffers(ctx context.Context, telegramID int64) []domain.Offer {
	offers, err := s.loadOffers(ctx, telegramID)
	if err != nil {
		log.Error().Err(err).Int64("telegram_id", telegramID).Msg("offer pipeline failed")
		return []domain.Offer{}
	}
	return offers
}

func (s *OfferService) loadOffers(ctx context.Context, telegramID int64) ([]domain.Offer, error) {
	ctx, span := otel.Tracer("services").Start(ctx, "OfferService.LoadOffers")
	defer span.End()

	prefs, err := s.Prefs.Ensure(ctx, telegramID)
	if err != nil {
		return nil, err
	}
	selectedIDs, err := s.Categories.SelectedIDs(ctx, telegramID)
	if err != nil {
		return nil, err
	}
	catalog, err := s.Categories.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	sources, err := s.Sources.EnsureSelection(ctx, telegramID)
	if err != nil {
		return nil, err
	}

	// Split sources into cache hits and fetch candidates.
	var merged []domain.Offer
	var misses []domain.Source
	for _, src := range sources {
		fresh, err := s.Cache.ListFreshOffers(ctx, s.DB, src.ID, s.CacheTTL)
		if err != nil {
			log.Warn().Err(err).Str("source", src.Name).Msg("cache read failed, falling back to fetch")
			misses = append(misses, src)
			continue
		}
		if len(fresh) == 0 {
			misses = append(misses, src)
			continue
		}
		merged = append(merged, fresh...)
	}

	merged = append(merged, s.fetchConcurrently(ctx, misses)...)

	span.SetAttributes(
		attribute.Int("offers.merged", len(merged)),
		attribute.Int("sources.fetched", len(misses)),
	)

	out := FilterOffers(merged, *prefs, selectedIDs, catalog)
	log.Info().
		Int64("telegram_id", telegramID).
		Int("sources", len(sources)).
		Int("cache_misses", len(misses)).
		Int("merged", len(merged)).
		Int("matched", len(out)).
		Msg("offers loaded")
	return out, nil
}

// fetchConcurrently fans out one fetch per source and collects whatever
// completes within FetchWait. Late fetches are not cancelled: they run on a
// detached context and their write-through keeps the cache warm for the
// next request. Concurrent calls for the same source share one in-flight
// fetch via singleflight.
func (s *OfferService) fetchConcurrently(ctx context.Context, sources []domain.Source) []domain.Offer {
	if len(sources) == 0 {
		return nil
	}

	// Detached from the request: a caller that stops waiting must not
	// cancel in-flight fetches.
	fetchCtx := context.WithoutCancel(ctx)

	results := make(chan []domain.Offer, len(sources))
	for _, src := range sources {
		src := src
		ch := s.flight.DoChan(strconv.FormatUint(uint64(src.ID), 10), func() (any, error) {
			return s.Fetcher.Fetch(fetchCtx, src)
		})
		go func() {
			res := <-ch
			if res.Err != nil {
				log.Warn().Err(res.Err).Str("source", src.Name).Msg("source fetch failed")
				results <- nil
				return
			}
			offers, _ := res.Val.([]domain.Offer)
			results <- offers
		}()
	}

	deadline := time.NewTimer(s.FetchWait)
	defer deadline.Stop()

	var out []domain.Offer
	for i := 0; i < len(sources); i++ {
		select {
		case offers := <-results:
			out = append(out, offers...)
		case <-deadline.C:
			log.Warn().
				Dur("wait", s.FetchWait).
				Int("pending", len(sources)-i).
				Msg("fetch wait elapsed, serving partial results")
			return out
		}
	}
	return out
}

// SortOffers orders offers in place: by discount descending (default), by
// sale price descending, or randomly.
func SortOffers(offers []domain.Offer, order string) {
	switch order {
	case OrderPrice:
		sort.SliceStable(offers, func(i, j int) bool {
			return offers[i].SalePrice > offers[j].SalePrice
		})
	case OrderRandom:
		rand.Shuffle(len(offers), func(i, j int) {
			offers[i], offers[j] = offers[j], offers[i]
		})
	default:
		sort.SliceStable(offers, func(i, j int) bool {
			return offers[i].DiscountPercent > offers[j].DiscountPercent
		})
	}
}

// TopN returns at most n offers from the front of the slice.
func TopN(offers []domain.Offer, n int) []domain.Offer {
	if n <= 0 || n >= len(offers) {
		return offers
	}
	return offers[:n]
}
