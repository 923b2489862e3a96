package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/ofertasgt/go-deals-backend/internal/config"
	"github.com/ofertasgt/go-deals-backend/internal/repo"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newTestServer boots the real stack on a temp sqlite file: migrations,
// seed data, service wiring, and the full middleware chain.
func newTestServer(t *testing.T) *gin.Engine {
	t.Helper()

	db, err := repo.OpenSQLite(filepath.Join(t.TempDir(), "router_test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := repo.Seed(context.Background(), db); err != nil {
		t.Fatalf("seed: %v", err)
	}

	cfg := config.Load()
	cfg.RateRPS = 1000
	cfg.RateBurst = 1000

	r := gin.New()
	RegisterRoutes(r, BuildServices(db, cfg), cfg)
	return r
}

func TestHealthz(t *testing.T) {
	r := newTestServer(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"ok"`) {
		t.Fatalf("body = %s", w.Body.String())
	}
}

func TestMetricsEndpoint(t *testing.T) {
	r := newTestServer(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestNoRouteAndNoMethod(t *testing.T) {
	r := newTestServer(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown route status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "not_found") {
		t.Fatalf("unknown route body = %s", w.Body.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/v1/categorias", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("bad method status = %d", w.Code)
	}
}

func TestSeededCatalogServed(t *testing.T) {
	r := newTestServer(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/categorias", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "TODO") {
		t.Fatalf("seeded tag missing: %s", w.Body.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/fuentes", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("fuentes status = %d", w.Code)
	}
	// Credentials-bearing source fields must never be serialized.
	for _, secret := range []string{"mapeo_campos", "body_config", "headers"} {
		if strings.Contains(w.Body.String(), secret) {
			t.Errorf("source field %q leaked: %s", secret, w.Body.String())
		}
	}
}

func TestConfigurationRoundTrip(t *testing.T) {
	r := newTestServer(t)

	body := `{"nombre":"Ana","porcentajeDescuento":40,"precioMin":100,"precioMax":2000,"selectedIds":[1]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/usuario/7/configuracion", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("save status = %d: %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/usuario/7/categorias", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("read status = %d", w.Code)
	}
	var env struct {
		Data struct {
			SelectedIDs []uint `json:"selectedIds"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v (%s)", err, w.Body.String())
	}
	if len(env.Data.SelectedIDs) != 1 || env.Data.SelectedIDs[0] != 1 {
		t.Fatalf("selectedIds = %v", env.Data.SelectedIDs)
	}
}

func TestRequestIDHeaderOnResponses(t *testing.T) {
	r := newTestServer(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatal("X-Request-ID missing")
	}
}
