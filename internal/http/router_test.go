package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-outreach-backend/internal/config"
	"github.com/tbourn/go-outreach-backend/internal/domain"
	"github.com/tbourn/go-outreach-backend/internal/repo"
)

// staticGen satisfies generation.Client without network access.
type staticGen struct{}

func (staticGen) Complete(ctx context.Context, systemPrompt, userPayload string) (string, error) {
	return `[{"subject":"s","message":"m","selected_highlight":"h","selected_challenge":"c"}]`, nil
}

func testConfig() config.Config {
	return config.Config{
		Port:              "0",
		ReadTimeout:       time.Second,
		ReadHeaderTimeout: time.Second,
		WriteTimeout:      time.Minute,
		IdleTimeout:       time.Second,
		MaxHeaderBytes:    1 << 20,
		GinMode:           gin.TestMode,
		APIBasePath:       "/api/v1",
		QuotaDailyLimit:   25,
		BatchSize:         5,
		RateRPS:           1000,
		RateBurst:         1000,
	}
}

func newTestRouter(t *testing.T, cfg config.Config) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := repo.OpenSQLite(filepath.Join(t.TempDir(), "app.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
	sqlDB, _ := db.DB()
	t.Cleanup(func() { _ = sqlDB.Close() })

	r := gin.New()
	RegisterRoutes(r, db, staticGen{}, cfg)
	return r
}

func TestRouter_HealthAndMetricsArePublic(t *testing.T) {
	r := newTestRouter(t, testConfig())

	for _, path := range []string{"/health", "/metrics"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Errorf("%s status = %d, want 200", path, w.Code)
		}
	}
}

func TestRouter_UnknownRouteEnvelope(t *testing.T) {
	r := newTestRouter(t, testConfig())

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"code":"not_found"`) {
		t.Fatalf("body = %s", w.Body.String())
	}
}

func TestRouter_APIRequiresIdentity(t *testing.T) {
	r := newTestRouter(t, testConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/messages", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/messages", nil)
	req.Header.Set("X-User-ID", "u1")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("authed status = %d, want 200 (body %s)", w.Code, w.Body.String())
	}
}

func TestRouter_TokenAuthWhenConfigured(t *testing.T) {
	cfg := testConfig()
	cfg.AuthTokens = []string{"tok-1:alice"}
	r := newTestRouter(t, cfg)

	// The identity header is not trusted once a resolver exists.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/messages", nil)
	req.Header.Set("X-User-ID", "mallory")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("header-only status = %d, want 401", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/messages", nil)
	req.Header.Set("Authorization", "Bearer tok-1")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("bearer status = %d, want 200", w.Code)
	}
}

func TestRouter_GenerateEndToEndStream(t *testing.T) {
	cfg := testConfig()
	r := newTestRouter(t, cfg)

	// No profile yet: the precondition fails before any streaming.
	req := httptest.NewRequest(http.MethodPost, "/api/v1/outreach/generate", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "u1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("no-profile status = %d, want 400 (body %s)", w.Code, w.Body.String())
	}
}

func TestRouter_GenerateStreamsWithSeededData(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db, err := repo.OpenSQLite(filepath.Join(t.TempDir(), "app.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
	sqlDB, _ := db.DB()
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.Create(&domain.CandidateProfile{UserID: "u1", Highlights: "shipped a thing"}).Error; err != nil {
		t.Fatalf("seed profile: %v", err)
	}
	if err := db.Create(&domain.Prospect{ID: "p1", UserID: "u1", Company: "Acme", JobTitle: "Eng"}).Error; err != nil {
		t.Fatalf("seed prospect: %v", err)
	}
	if err := db.Create(&domain.ProspectMatch{ID: "m1", ProspectID: "p1", ContactName: "Anna Lee"}).Error; err != nil {
		t.Fatalf("seed match: %v", err)
	}
	if err := db.Create(&domain.Challenge{ID: "c1", ProspectID: "p1", Text: "scaling"}).Error; err != nil {
		t.Fatalf("seed challenge: %v", err)
	}

	r := gin.New()
	RegisterRoutes(r, db, staticGen{}, testConfig())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/outreach/generate", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "u1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	body := w.Body.String()
	for _, frame := range []string{"status: ", "message: ", "complete: "} {
		if !strings.Contains(body, frame) {
			t.Fatalf("stream missing %q frame: %s", frame, body)
		}
	}

	// The draft landed in the store and is visible through the list endpoint.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/messages", nil)
	req.Header.Set("X-User-ID", "u1")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"content":"m"`) {
		t.Fatalf("list status = %d, body = %s", w.Code, w.Body.String())
	}
}
