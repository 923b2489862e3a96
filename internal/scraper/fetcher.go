package scraper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ofertasgt/go-deals-backend/internal/domain"
)

// OfferStore is the narrow cache contract the fetcher writes through.
type OfferStore interface {
	// UpsertOffers persists offers for sourceID, idempotent per link.
	UpsertOffers(ctx context.Context, sourceID uint, offers []domain.Offer) error
}

// FetchError reports a non-2xx response from a source. Callers treat it as
// "zero offers this cycle", never as a pipeline failure.
type FetchError struct {
	Source     string
	StatusCode int
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	return fmt.Sprintf("source %s: unexpected status %d", e.Source, e.StatusCode)
}

// Fetcher performs one HTTP request per source and normalizes the response
// through the field mapper. Successful fetches write through to the offer
// store before returning, so even a caller that stopped waiting leaves the
// cache warm for the next request.
type Fetcher struct {
	client *http.Client
	store  OfferStore
}

// NewFetcher constructs a Fetcher with a per-request timeout. The timeout
// guards a single upstream call; the orchestrator applies its own bound on
// how long it waits across sources.
func NewFetcher(store OfferStore, timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Fetcher{
		client: &http.Client{Timeout: timeout},
		store:  store,
	}
}

// Fetch executes the source's configured request and returns its normalized
// offers. Unsupported response kinds yield no offers and no error; they are
// a configuration gap, not a failure. Errors returned here are per-source
// and non-fatal for the surrounding ingestion.
func (f *Fetcher) Fetch(ctx context.Context, src domain.Source) ([]domain.Offer, error) {
	lg := log.With().Str("source", src.Name).Uint("source_id", src.ID).Logger()

	if err := validate.Var(src.URL, "required,url"); err != nil {
		return nil, fmt.Errorf("source %s: invalid url %q", src.Name, src.URL)
	}

	if src.ResponseKind != domain.ResponseKindJSON {
		// HTML scraping intentionally unimplemented.
		lg.Warn().Str("kind", src.ResponseKind).Msg("unsupported response kind, skipping source")
		return nil, nil
	}

	spec, err := ParseMappingSpec(src.FieldMap)
	if err != nil {
		return nil, fmt.Errorf("source %s: %w", src.Name, err)
	}

	req, err := f.buildRequest(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("source %s: %w", src.Name, err)
	}

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("source %s: %w", src.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &FetchError{Source: src.Name, StatusCode: resp.StatusCode}
	}

	var raw any
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("source %s: decoding response: %w", src.Name, err)
	}

	offers := MapOffers(raw, spec, src)
	lg.Info().
		Int("offers", len(offers)).
		Dur("elapsed", time.Since(start)).
		Msg("source fetched")

	// Write-through. A cache failure must not discard the fetched data,
	// so it is logged and the offers are still returned.
	if len(offers) > 0 && f.store != nil {
		if err := f.store.UpsertOffers(ctx, src.ID, offers); err != nil {
			lg.Error().Err(err).Msg("offer cache write failed")
		}
	}

	return offers, nil
}

// buildRequest assembles the configured HTTP request: method, optional JSON
// body for POST, and the stored header map.
func (f *Fetcher) buildRequest(ctx context.Context, src domain.Source) (*http.Request, error) {
	method := src.Method
	if method == "" {
		method = http.MethodGet
	}

	var body *bytes.Reader
	if method == http.MethodPost && src.BodyTemplate != "" {
		body = bytes.NewReader([]byte(src.BodyTemplate))
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, src.URL, body)
	if err != nil {
		return nil, err
	}
	if method == http.MethodPost && src.BodyTemplate != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	if src.Headers != "" {
		var headers map[string]string
		if err := json.Unmarshal([]byte(src.Headers), &headers); err != nil {
			return nil, fmt.Errorf("parsing headers: %w", err)
		}
		for k, v := range headers {
			req.Header.Set(k, v)
		}
	}
	return req, nil
}
