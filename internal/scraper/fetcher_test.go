package scraper

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ofertasgt/go-deals-backend/internal/domain"
)

type fakeStore struct {
	sourceID uint
	offers   []domain.Offer
	calls    int
	err      error
}

func (s *fakeStore) UpsertOffers(ctx context.Context, sourceID uint, offers []domain.Offer) error {
	s.calls++
	s.sourceID = sourceID
	s.offers = offers
	return s.err
}

const testFieldMap = `{"list_path":"items","id":"id","title":"t","sale_price":"p","link_base":"https://x.example/"}`

func TestFetch_WritesThroughAndReturnsOffers(t *testing.T) {
	var gotHeader string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Get("X-Api-Key")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items":[{"id":"1","t":"Prod","p":99.9}]}`))
	}))
	defer ts.Close()

	store := &fakeStore{}
	f := NewFetcher(store, time.Second)

	src := domain.Source{
		ID:           3,
		Name:         "prueba",
		URL:          ts.URL,
		Method:       http.MethodGet,
		ResponseKind: domain.ResponseKindJSON,
		Headers:      `{"X-Api-Key":"secreto"}`,
		FieldMap:     testFieldMap,
	}

	offers, err := f.Fetch(context.Background(), src)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(offers) != 1 || offers[0].SalePrice != 99.9 {
		t.Fatalf("offers = %+v", offers)
	}
	if gotHeader != "secreto" {
		t.Errorf("configured header not sent, got %q", gotHeader)
	}
	if store.calls != 1 || store.sourceID != 3 || len(store.offers) != 1 {
		t.Errorf("write-through not performed: calls=%d sourceID=%d", store.calls, store.sourceID)
	}
}

func TestFetch_PostSendsBodyTemplate(t *testing.T) {
	var gotMethod, gotCT string
	body := make([]byte, 64)
	var n int
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotCT = r.Header.Get("Content-Type")
		n, _ = r.Body.Read(body)
		w.Write([]byte(`{"items":[]}`))
	}))
	defer ts.Close()

	f := NewFetcher(&fakeStore{}, time.Second)
	src := domain.Source{
		Name:         "post",
		URL:          ts.URL,
		Method:       http.MethodPost,
		ResponseKind: domain.ResponseKindJSON,
		BodyTemplate: `{"pagina":1}`,
		FieldMap:     testFieldMap,
	}

	if _, err := f.Fetch(context.Background(), src); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if gotMethod != http.MethodPost {
		t.Errorf("method = %q", gotMethod)
	}
	if gotCT != "application/json" {
		t.Errorf("content type = %q", gotCT)
	}
	if string(body[:n]) != `{"pagina":1}` {
		t.Errorf("body = %q", body[:n])
	}
}

func TestFetch_NonOKStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	store := &fakeStore{}
	f := NewFetcher(store, time.Second)
	src := domain.Source{
		Name:         "caida",
		URL:          ts.URL,
		ResponseKind: domain.ResponseKindJSON,
		FieldMap:     testFieldMap,
	}

	_, err := f.Fetch(context.Background(), src)
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("err = %v, want *FetchError", err)
	}
	if fe.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("StatusCode = %d", fe.StatusCode)
	}
	if store.calls != 0 {
		t.Errorf("store written on failed fetch")
	}
}

func TestFetch_UnsupportedKindSkips(t *testing.T) {
	store := &fakeStore{}
	f := NewFetcher(store, time.Second)
	src := domain.Source{
		Name:         "html",
		URL:          "https://example.com/deals",
		ResponseKind: domain.ResponseKindHTML,
	}

	offers, err := f.Fetch(context.Background(), src)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if offers != nil || store.calls != 0 {
		t.Fatalf("HTML source must contribute nothing, got %v", offers)
	}
}

func TestFetch_InvalidURL(t *testing.T) {
	f := NewFetcher(&fakeStore{}, time.Second)
	src := domain.Source{Name: "rota", URL: "not-a-url", ResponseKind: domain.ResponseKindJSON, FieldMap: testFieldMap}

	if _, err := f.Fetch(context.Background(), src); err == nil {
		t.Fatal("expected error for invalid url")
	}
}

func TestFetch_CacheWriteFailureStillReturnsOffers(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items":[{"id":"1","t":"Prod","p":10}]}`))
	}))
	defer ts.Close()

	store := &fakeStore{err: errors.New("disk full")}
	f := NewFetcher(store, time.Second)
	src := domain.Source{
		Name:         "cachefail",
		URL:          ts.URL,
		ResponseKind: domain.ResponseKindJSON,
		FieldMap:     testFieldMap,
	}

	offers, err := f.Fetch(context.Background(), src)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(offers) != 1 {
		t.Fatalf("offers lost on cache write failure: %v", offers)
	}
}
