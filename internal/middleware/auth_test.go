package middleware

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"jbcnews/internal/models"
)

func setupAuthRouter(auth *JWTAuth, roles ...models.Role) *gin.Engine {
	r := gin.New()
	r.GET("/staff", auth.AuthMiddleware(), RequireRole(roles...), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id": c.GetString(UserIDKey),
			"email":   c.GetString(EmailKey),
		})
	})
	return r
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func TestJWTAuth(t *testing.T) {
	auth := NewJWTAuth("test-secret", time.Hour)
	staff := &models.User{Base: models.Base{ID: "staff-1"}, Email: "editor@jbc.com", Role: models.RoleStaff}
	admin := &models.User{Base: models.Base{ID: "admin-1"}, Email: "chief@jbc.com", Role: models.RoleAdmin}

	t.Run("round_trip", func(t *testing.T) {
		token, err := auth.GenerateToken(staff)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		claims, err := auth.ParseToken(token)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if claims.UserID != "staff-1" || claims.Role != models.RoleStaff || claims.Subject != "staff-1" {
			t.Errorf("unexpected claims %+v", claims)
		}
	})

	t.Run("staff_route_admits_staff", func(t *testing.T) {
		token, _ := auth.GenerateToken(staff)
		rec := doRequest(setupAuthRouter(auth, models.RoleStaff, models.RoleAdmin), http.MethodGet, "/staff", bearer(token))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		body := parseBody(t, rec)
		if body["user_id"] != "staff-1" || body["email"] != "editor@jbc.com" {
			t.Errorf("unexpected context values %v", body)
		}
	})

	t.Run("admin_route_refuses_staff", func(t *testing.T) {
		token, _ := auth.GenerateToken(staff)
		rec := doRequest(setupAuthRouter(auth, models.RoleAdmin), http.MethodGet, "/staff", bearer(token))

		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
		if code := errorCode(t, rec); code != "FORBIDDEN" {
			t.Errorf("expected FORBIDDEN, got %q", code)
		}
	})

	t.Run("admin_route_admits_admin", func(t *testing.T) {
		token, _ := auth.GenerateToken(admin)
		rec := doRequest(setupAuthRouter(auth, models.RoleAdmin), http.MethodGet, "/staff", bearer(token))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("missing_header", func(t *testing.T) {
		rec := doRequest(setupAuthRouter(auth, models.RoleStaff), http.MethodGet, "/staff", nil)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		if code := errorCode(t, rec); code != "UNAUTHORIZED" {
			t.Errorf("expected UNAUTHORIZED, got %q", code)
		}
	})

	t.Run("malformed_header", func(t *testing.T) {
		headers := map[string]string{"Authorization": "Token abc"}
		rec := doRequest(setupAuthRouter(auth, models.RoleStaff), http.MethodGet, "/staff", headers)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("wrong_secret", func(t *testing.T) {
		token, _ := NewJWTAuth("other-secret", time.Hour).GenerateToken(staff)
		rec := doRequest(setupAuthRouter(auth, models.RoleStaff), http.MethodGet, "/staff", bearer(token))

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("expired_token", func(t *testing.T) {
		issued := NewJWTAuth("test-secret", time.Minute)
		issued.now = func() time.Time { return time.Now().Add(-time.Hour) }
		token, _ := issued.GenerateToken(staff)

		if _, err := auth.ParseToken(token); err == nil {
			t.Error("expected expired token to be rejected")
		}
	})

	t.Run("rejects_none_algorithm", func(t *testing.T) {
		claims := &JWTClaims{UserID: "staff-1", Role: models.RoleAdmin, RegisteredClaims: jwt.RegisteredClaims{Issuer: issuer}}
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := auth.ParseToken(token); err == nil {
			t.Error("expected unsigned token to be rejected")
		}
	})
}

func TestRequestLogging(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogging())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	t.Run("generates_request_id", func(t *testing.T) {
		rec := doRequest(r, http.MethodGet, "/ping", nil)
		if rec.Header().Get(requestIDHeader) == "" {
			t.Error("expected a request id header")
		}
	})

	t.Run("reuses_inbound_request_id", func(t *testing.T) {
		rec := doRequest(r, http.MethodGet, "/ping", map[string]string{requestIDHeader: "abc-123"})
		if got := rec.Header().Get(requestIDHeader); got != "abc-123" {
			t.Errorf("expected abc-123, got %q", got)
		}
	})
}
