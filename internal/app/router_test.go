package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"jbcnews/internal/delivery"
	"jbcnews/internal/ingest"
	"jbcnews/internal/middleware"
	"jbcnews/internal/models"
	"jbcnews/internal/testutil"
	"jbcnews/internal/validator"
)

func init() {
	gin.SetMode(gin.TestMode)
	if err := validator.Register(); err != nil {
		panic(err)
	}
}

type stubPusher struct{}

func (stubPusher) Breaking(_ context.Context, newsID string) (*delivery.Report, error) {
	return &delivery.Report{NewsID: newsID}, nil
}

type stubIngester struct{}

func (stubIngester) RunAll(_ context.Context) ([]ingest.RunResult, error) {
	return []ingest.RunResult{{Country: "IN"}}, nil
}

func (stubIngester) RunCountryCode(_ context.Context, code string) (ingest.RunResult, error) {
	return ingest.RunResult{Country: code}, nil
}

type fixture struct {
	router *gin.Engine
	auth   *middleware.JWTAuth
}

func setup(t *testing.T, apiKey string) (*fixture, func() *models.User) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.TeardownTestDB(t, db) })

	auth := middleware.NewJWTAuth("test-secret", time.Hour)
	router := NewRouter(RouterDeps{
		Services:       NewServices(db),
		Auth:           auth,
		Pusher:         stubPusher{},
		Ingester:       stubIngester{},
		PipelineAPIKey: apiKey,
	})
	return &fixture{router: router, auth: auth}, func() *models.User {
		return testutil.CreateTestUserWithRole(t, db, models.RoleStaff, nil)
	}
}

func (f *fixture) do(t *testing.T, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) bearer(t *testing.T, user *models.User) map[string]string {
	t.Helper()
	token, err := f.auth.GenerateToken(user)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return map[string]string{"Authorization": "Bearer " + token}
}

func TestRouter(t *testing.T) {
	t.Run("health", func(t *testing.T) {
		f, _ := setup(t, "")
		rec := f.do(t, http.MethodGet, "/api/health", "", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("public news listing", func(t *testing.T) {
		f, _ := setup(t, "")
		rec := f.do(t, http.MethodGet, "/api/v1/news", "", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("staff login then tickets", func(t *testing.T) {
		f, newStaff := setup(t, "")
		staff := newStaff()

		rec := f.do(t, http.MethodPost, "/api/v1/auth/login",
			`{"email":"`+staff.Email+`","password":"`+testutil.TestPassword+`"}`, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		var login struct {
			Token string `json:"token"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &login); err != nil || login.Token == "" {
			t.Fatalf("expected a token, got %s", rec.Body.String())
		}

		rec = f.do(t, http.MethodGet, "/api/v1/tickets", "", map[string]string{"Authorization": "Bearer " + login.Token})
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("tickets require a token", func(t *testing.T) {
		f, _ := setup(t, "")
		rec := f.do(t, http.MethodGet, "/api/v1/tickets", "", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("readers are refused", func(t *testing.T) {
		f, _ := setup(t, "")
		reader := &models.User{Base: models.Base{ID: "reader-1"}, Role: models.RoleUser}
		rec := f.do(t, http.MethodGet, "/api/v1/tickets", "", f.bearer(t, reader))
		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
	})

	t.Run("promotion is admin only", func(t *testing.T) {
		f, newStaff := setup(t, "")
		staff := newStaff()
		rec := f.do(t, http.MethodPost, "/api/v1/staff", `{"user_id":"`+staff.ID+`","role":"admin"}`, f.bearer(t, staff))
		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
	})

	t.Run("pipeline disabled without key", func(t *testing.T) {
		f, _ := setup(t, "")
		rec := f.do(t, http.MethodPost, "/api/v1/pipeline/ingest", "", map[string]string{middleware.APIKeyHeader: "anything"})
		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected 503, got %d", rec.Code)
		}
	})

	t.Run("pipeline with key", func(t *testing.T) {
		f, _ := setup(t, "pipeline-key")
		rec := f.do(t, http.MethodPost, "/api/v1/pipeline/ingest/IN", "", map[string]string{middleware.APIKeyHeader: "pipeline-key"})
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("cors preflight", func(t *testing.T) {
		router := NewRouter(RouterDeps{
			Services:    Services{},
			Auth:        middleware.NewJWTAuth("test-secret", time.Hour),
			CORSOrigins: []string{"http://localhost:5173"},
		})
		req := httptest.NewRequest(http.MethodOptions, "/api/v1/news", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		req.Header.Set("Access-Control-Request-Method", http.MethodGet)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", rec.Code)
		}
		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
			t.Errorf("expected allowed origin header, got %q", got)
		}
	})
}
